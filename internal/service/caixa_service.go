package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movecaixa/internal/config"
	"movecaixa/internal/dto"
	"movecaixa/internal/model"
	"movecaixa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Despachante enqueues fire-and-forget rendering jobs. A failed enqueue never
// rolls back the operation that triggered it.
type Despachante interface {
	EnqueueRelatorio(ctx context.Context, caixaID uuid.UUID) error
	EnqueueRecibo(ctx context.Context, recibo *dto.ReciboResponse) error
}

// CaixaService operates strictly on the authenticated recebedor's own
// caixas. A caixa id belonging to another recebedor is indistinguishable
// from a nonexistent one.
type CaixaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.ReporteCaixaResponse, error)
	// Ativo returns the recebedor's open caixa, or nil when there is none.
	Ativo(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaAtivoResponse, error)
	RegistrarLancamento(ctx context.Context, usuarioID uuid.UUID, req dto.LancamentoRequest) (*dto.ReciboResponse, error)
	RegistrarSangria(ctx context.Context, usuarioID uuid.UUID, req dto.SangriaRequest) error
	Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.ReporteCaixaResponse, error)
	ObterReporte(ctx context.Context, usuarioID, caixaID uuid.UUID) (*dto.ReporteCaixaResponse, error)
}

type caixaService struct {
	repo     repository.CaixaRepository
	usuarios repository.UsuarioRepository
	disp     Despachante

	valorBordo  decimal.Decimal
	prefixoRede string
}

func NewCaixaService(repo repository.CaixaRepository, usuarios repository.UsuarioRepository, disp Despachante, cfg *config.Config) CaixaService {
	return &caixaService{
		repo:        repo,
		usuarios:    usuarios,
		disp:        disp,
		valorBordo:  decimal.NewFromInt(int64(cfg.ValorBordo)),
		prefixoRede: cfg.PrefixoRede,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.ReporteCaixaResponse, error) {
	// Friendly guard first; the partial unique index is the real gate when
	// two opens race past this read.
	abertos, err := s.repo.FindCaixasAbertos(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("consultar caixas abertos: %w", err)
	}
	if len(abertos) > 0 {
		return nil, ErrCaixaJaAberto
	}

	usuario, err := s.usuarios.FindByID(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("carregar recebedor: %w", err)
	}

	data := req.DataCaixa
	if data == "" {
		data = time.Now().Format("2006-01-02")
	}
	caixa := &model.Caixa{
		UsuarioID: usuarioID,
		Status:    model.CaixaAberto,
		DataCaixa: data,
		Matricula: usuario.Matricula,
		Nome:      usuario.Nome,
		OpenedAt:  time.Now(),
	}
	if err := s.repo.CreateCaixa(ctx, caixa); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCaixaJaAberto
		}
		return nil, fmt.Errorf("abrir caixa: %w", err)
	}

	return MontarReporte(caixa, nil, nil), nil
}

// ── Ativo ─────────────────────────────────────────────────────────────────────
// Idempotent read used on (re)connect to restore the operator's session.

func (s *caixaService) Ativo(ctx context.Context, usuarioID uuid.UUID) (*dto.CaixaAtivoResponse, error) {
	abertos, err := s.repo.FindCaixasAbertos(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("consultar caixas abertos: %w", err)
	}
	if len(abertos) == 0 {
		return nil, nil
	}
	if len(abertos) > 1 {
		// Should be impossible under the unique index; surface, never repair.
		log.Warn().
			Str("usuario_id", usuarioID.String()).
			Int("caixas_abertos", len(abertos)).
			Msg("inconsistência: mais de um caixa aberto para o mesmo recebedor")
	}
	caixa := abertos[0]
	return &dto.CaixaAtivoResponse{
		CaixaID:       caixa.ID.String(),
		Status:        caixa.Status,
		DataCaixa:     caixa.DataCaixa,
		AbertoEm:      caixa.OpenedAt.Format(time.RFC3339),
		Inconsistente: len(abertos) > 1,
	}, nil
}

// ── RegistrarLancamento ───────────────────────────────────────────────────────
// Lançamentos are immutable — no Update/Delete anywhere in the repository.

func (s *caixaService) RegistrarLancamento(ctx context.Context, usuarioID uuid.UUID, req dto.LancamentoRequest) (*dto.ReciboResponse, error) {
	caixa, err := s.caixaAberto(ctx, usuarioID, req.CaixaID)
	if err != nil {
		return nil, err
	}

	lanc, err := NormalizarLancamento(req, s.valorBordo, s.prefixoRede)
	if err != nil {
		return nil, err
	}
	lanc.CaixaID = caixa.ID
	lanc.MatriculaRecebedor = caixa.Matricula

	if err := s.repo.CreateLancamento(ctx, lanc); err != nil {
		return nil, fmt.Errorf("gravar lançamento: %w", err)
	}

	recibo := MontarRecibo(lanc, caixa)
	if s.disp != nil {
		if err := s.disp.EnqueueRecibo(ctx, recibo); err != nil {
			log.Warn().Err(err).Str("caixa_id", caixa.ID.String()).Msg("falha ao enfileirar recibo térmico")
		}
	}
	return recibo, nil
}

// ── RegistrarSangria ──────────────────────────────────────────────────────────

func (s *caixaService) RegistrarSangria(ctx context.Context, usuarioID uuid.UUID, req dto.SangriaRequest) error {
	caixa, err := s.caixaAberto(ctx, usuarioID, req.CaixaID)
	if err != nil {
		return err
	}
	sangria, err := NormalizarSangria(req)
	if err != nil {
		return err
	}
	sangria.CaixaID = caixa.ID
	if err := s.repo.CreateSangria(ctx, sangria); err != nil {
		return fmt.Errorf("gravar sangria: %w", err)
	}
	return nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// The closing report is assembled from listings read while the caixa is still
// open; only then is the record flipped to "fechado". PDF rendering and
// delivery happen asynchronously — a render failure is reported to the
// operator but never reverts the close.

func (s *caixaService) Fechar(ctx context.Context, usuarioID uuid.UUID, req dto.FecharCaixaRequest) (*dto.ReporteCaixaResponse, error) {
	var caixa *model.Caixa
	if req.CaixaID != "" {
		var err error
		if caixa, err = s.caixaAberto(ctx, usuarioID, req.CaixaID); err != nil {
			return nil, err
		}
	} else {
		abertos, err := s.repo.FindCaixasAbertos(ctx, usuarioID)
		if err != nil {
			return nil, fmt.Errorf("consultar caixas abertos: %w", err)
		}
		if len(abertos) == 0 {
			return nil, ErrCaixaFechado
		}
		caixa = &abertos[0]
	}

	lancs, err := s.repo.ListLancamentos(ctx, caixa.ID)
	if err != nil {
		return nil, fmt.Errorf("listar lançamentos: %w", err)
	}
	sangrias, err := s.repo.ListSangrias(ctx, caixa.ID)
	if err != nil {
		return nil, fmt.Errorf("listar sangrias: %w", err)
	}
	reporte := MontarReporte(caixa, lancs, sangrias)

	now := time.Now()
	caixa.Status = model.CaixaFechado
	caixa.ClosedAt = &now
	if err := s.repo.UpdateCaixa(ctx, caixa); err != nil {
		return nil, fmt.Errorf("fechar caixa: %w", err)
	}

	reporte.Status = model.CaixaFechado
	fechadoEm := now.Format(time.RFC3339)
	reporte.FechadoEm = &fechadoEm

	pendente := false
	if s.disp != nil {
		if err := s.disp.EnqueueRelatorio(ctx, caixa.ID); err != nil {
			log.Warn().Err(err).Str("caixa_id", caixa.ID.String()).Msg("falha ao enfileirar relatório de fechamento")
		} else {
			pendente = true
		}
	}
	reporte.RelatorioPendente = &pendente

	return reporte, nil
}

// ── ObterReporte ──────────────────────────────────────────────────────────────
// Works for open (partial view) and closed caixas alike; totals are always
// recomputed from the stored records.

func (s *caixaService) ObterReporte(ctx context.Context, usuarioID, caixaID uuid.UUID) (*dto.ReporteCaixaResponse, error) {
	caixa, err := s.repo.FindCaixaByID(ctx, caixaID)
	if err != nil {
		return nil, ErrCaixaNaoEncontrado
	}
	if caixa.UsuarioID != usuarioID {
		return nil, ErrCaixaNaoEncontrado
	}
	lancs, err := s.repo.ListLancamentos(ctx, caixaID)
	if err != nil {
		return nil, fmt.Errorf("listar lançamentos: %w", err)
	}
	sangrias, err := s.repo.ListSangrias(ctx, caixaID)
	if err != nil {
		return nil, fmt.Errorf("listar sangrias: %w", err)
	}
	return MontarReporte(caixa, lancs, sangrias), nil
}

// caixaAberto re-reads the caixa row and verifies it belongs to the
// recebedor and is still open. The client-held id is only a cache; a close
// that raced this call makes the append fail instead of writing into a
// closed caixa. The ownership check comes before the status check so a
// foreign id reveals nothing about that caixa's state.
func (s *caixaService) caixaAberto(ctx context.Context, usuarioID uuid.UUID, id string) (*model.Caixa, error) {
	caixaID, err := uuid.Parse(id)
	if err != nil {
		return nil, invalido("caixa_id", "inválido")
	}
	caixa, err := s.repo.FindCaixaByID(ctx, caixaID)
	if err != nil {
		return nil, ErrCaixaNaoEncontrado
	}
	if caixa.UsuarioID != usuarioID {
		return nil, ErrCaixaNaoEncontrado
	}
	if caixa.Status != model.CaixaAberto {
		return nil, ErrCaixaFechado
	}
	return caixa, nil
}
