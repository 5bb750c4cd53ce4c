package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is a recebedor (cash-drawer operator) identified by matrícula.
// The Email column holds the synthesized login address ({matricula}@dominio)
// used against the identity provider; it is derived, never typed by the user.
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Matricula string    `gorm:"uniqueIndex;not null"`
	Nome      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	SenhaHash string    `gorm:"not null"`
	// Admin is granted when the matrícula is on the configured allow-list,
	// either at registration or promoted on a later login.
	Admin     bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
