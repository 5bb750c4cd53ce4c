package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CaixaAberto  = "aberto"
	CaixaFechado = "fechado"
)

// Caixa represents one recebedor's working session, bounded by an open and a
// close action. Status: "aberto" | "fechado". The transition to "fechado" is
// terminal; a new shift means a new Caixa. At most one Caixa per recebedor may
// be "aberto" at any time — enforced by a partial unique index on
// (usuario_id) WHERE status = 'aberto' (see infra.applySchemaPatches).
type Caixa struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(20);not null;default:'aberto'"`
	// DataCaixa is the business date (YYYY-MM-DD) the shift accounts for.
	DataCaixa string `gorm:"type:varchar(10);not null"`
	// Nome/Matricula are snapshots of the owner at open time.
	Matricula string `gorm:"type:varchar(20);not null"`
	Nome      string `gorm:"not null"`
	OpenedAt  time.Time
	ClosedAt  *time.Time

	Lancamentos []Lancamento `gorm:"foreignKey:CaixaID"`
	Sangrias    []Sangria    `gorm:"foreignKey:CaixaID"`
}

// Lancamento is an immutable value-received entry in a Caixa's ledger.
// Valor is always computed as QtdBordos × the configured unit price, never
// taken from user input. Entries are NEVER updated or deleted.
type Lancamento struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaID       uuid.UUID `gorm:"type:uuid;index;not null"`
	TipoValidador string    `gorm:"type:varchar(30);not null"`
	QtdBordos     int       `gorm:"not null"`
	Valor         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Prefixo is the 5-character network-prefixed site code, e.g. "55005".
	Prefixo            string `gorm:"type:varchar(5);not null"`
	DataCaixa          string `gorm:"type:varchar(10);not null"`
	MatriculaMotorista string `gorm:"type:varchar(20);not null"`
	MatriculaRecebedor string `gorm:"type:varchar(20);not null"`
	CreatedAt          time.Time
}

// Sangria is an immutable cash withdrawal recorded against an open Caixa.
type Sangria struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CaixaID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo    string          `gorm:"not null"`
	CreatedAt time.Time
}
