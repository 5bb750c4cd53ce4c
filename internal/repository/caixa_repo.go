package repository

import (
	"context"

	"movecaixa/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaixaRepository interface {
	CreateCaixa(ctx context.Context, c *model.Caixa) error
	FindCaixaByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error)
	// FindCaixasAbertos returns every open caixa of the recebedor, oldest
	// first. Correct serialization guarantees at most one row; callers must
	// surface anything beyond that as a consistency problem.
	FindCaixasAbertos(ctx context.Context, usuarioID uuid.UUID) ([]model.Caixa, error)
	UpdateCaixa(ctx context.Context, c *model.Caixa) error
	CreateLancamento(ctx context.Context, l *model.Lancamento) error
	ListLancamentos(ctx context.Context, caixaID uuid.UUID) ([]model.Lancamento, error)
	CreateSangria(ctx context.Context, s *model.Sangria) error
	ListSangrias(ctx context.Context, caixaID uuid.UUID) ([]model.Sangria, error)
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

// CreateCaixa inserts a new open caixa. The partial unique index
// uni_caixas_recebedor_aberto makes a concurrent second open fail with
// gorm.ErrDuplicatedKey, which the service maps to ErrCaixaJaAberto.
func (r *caixaRepo) CreateCaixa(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindCaixaByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *caixaRepo) FindCaixasAbertos(ctx context.Context, usuarioID uuid.UUID) ([]model.Caixa, error) {
	var caixas []model.Caixa
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND status = ?", usuarioID, model.CaixaAberto).
		Order("opened_at ASC").
		Find(&caixas).Error
	return caixas, err
}

func (r *caixaRepo) UpdateCaixa(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *caixaRepo) CreateLancamento(ctx context.Context, l *model.Lancamento) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *caixaRepo) ListLancamentos(ctx context.Context, caixaID uuid.UUID) ([]model.Lancamento, error) {
	var lancs []model.Lancamento
	err := r.db.WithContext(ctx).
		Where("caixa_id = ?", caixaID).
		Order("created_at ASC").
		Find(&lancs).Error
	return lancs, err
}

func (r *caixaRepo) CreateSangria(ctx context.Context, s *model.Sangria) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *caixaRepo) ListSangrias(ctx context.Context, caixaID uuid.UUID) ([]model.Sangria, error) {
	var sangrias []model.Sangria
	err := r.db.WithContext(ctx).
		Where("caixa_id = ?", caixaID).
		Order("created_at ASC").
		Find(&sangrias).Error
	return sangrias, err
}
