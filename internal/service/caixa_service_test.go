package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"movecaixa/internal/config"
	"movecaixa/internal/dto"
	"movecaixa/internal/model"
	"movecaixa/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Full in-memory CaixaRepository ───────────────────────────────────────────

type fullCaixaRepo struct {
	caixas      map[uuid.UUID]*model.Caixa
	lancamentos []model.Lancamento
	sangrias    []model.Sangria
}

func newFullCaixaRepo() *fullCaixaRepo {
	return &fullCaixaRepo{caixas: make(map[uuid.UUID]*model.Caixa)}
}

func (r *fullCaixaRepo) CreateCaixa(_ context.Context, c *model.Caixa) error {
	// Emulates the partial unique index on (usuario_id) WHERE status = 'aberto'.
	for _, existing := range r.caixas {
		if existing.UsuarioID == c.UsuarioID && existing.Status == model.CaixaAberto {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.caixas[c.ID] = c
	return nil
}

func (r *fullCaixaRepo) FindCaixaByID(_ context.Context, id uuid.UUID) (*model.Caixa, error) {
	c, ok := r.caixas[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *fullCaixaRepo) FindCaixasAbertos(_ context.Context, usuarioID uuid.UUID) ([]model.Caixa, error) {
	var result []model.Caixa
	for _, c := range r.caixas {
		if c.UsuarioID == usuarioID && c.Status == model.CaixaAberto {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fullCaixaRepo) UpdateCaixa(_ context.Context, c *model.Caixa) error {
	r.caixas[c.ID] = c
	return nil
}

func (r *fullCaixaRepo) CreateLancamento(_ context.Context, l *model.Lancamento) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	r.lancamentos = append(r.lancamentos, *l)
	return nil
}

func (r *fullCaixaRepo) ListLancamentos(_ context.Context, caixaID uuid.UUID) ([]model.Lancamento, error) {
	var result []model.Lancamento
	for _, l := range r.lancamentos {
		if l.CaixaID == caixaID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fullCaixaRepo) CreateSangria(_ context.Context, s *model.Sangria) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sangrias = append(r.sangrias, *s)
	return nil
}

func (r *fullCaixaRepo) ListSangrias(_ context.Context, caixaID uuid.UUID) ([]model.Sangria, error) {
	var result []model.Sangria
	for _, s := range r.sangrias {
		if s.CaixaID == caixaID {
			result = append(result, s)
		}
	}
	return result, nil
}

// ── In-memory UsuarioRepository ──────────────────────────────────────────────

type memUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newMemUsuarioRepo() *memUsuarioRepo {
	return &memUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *memUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range r.usuarios {
		if existing.Matricula == u.Matricula {
			return gorm.ErrDuplicatedKey
		}
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *memUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *memUsuarioRepo) FindByMatricula(_ context.Context, matricula string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Matricula == matricula {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *memUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var all []model.Usuario
	for _, u := range r.usuarios {
		all = append(all, *u)
	}
	return all, nil
}

// ── Fake dispatcher ──────────────────────────────────────────────────────────

type fakeDespachante struct {
	relatorios []uuid.UUID
	recibos    []*dto.ReciboResponse
	fail       bool
}

func (d *fakeDespachante) EnqueueRelatorio(_ context.Context, caixaID uuid.UUID) error {
	if d.fail {
		return errors.New("redis unavailable")
	}
	d.relatorios = append(d.relatorios, caixaID)
	return nil
}

func (d *fakeDespachante) EnqueueRecibo(_ context.Context, recibo *dto.ReciboResponse) error {
	if d.fail {
		return errors.New("redis unavailable")
	}
	d.recibos = append(d.recibos, recibo)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		ValorBordo:      5,
		PrefixoRede:     "55",
		EmailDominio:    "movebuss.com",
		AdminMatriculas: []string{"4144", "70029", "6266"},
		JWTSecret:       "test-secret",
		JWTExpirationHours: 8,
	}
}

func seedRecebedor(t *testing.T, usuarios *memUsuarioRepo, matricula, nome string) *model.Usuario {
	t.Helper()
	u := &model.Usuario{Matricula: matricula, Nome: nome}
	require.NoError(t, usuarios.Create(context.Background(), u))
	return u
}

func newCaixaService(repo *fullCaixaRepo, usuarios *memUsuarioRepo, disp *fakeDespachante) service.CaixaService {
	return service.NewCaixaService(repo, usuarios, disp, testConfig())
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestAbrirCaixa(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	resp, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.CaixaAberto, resp.Status)
	assert.Equal(t, "70123", resp.Matricula)
	assert.Equal(t, "Maria Souza", resp.Nome)
	assert.Equal(t, time.Now().Format("2006-01-02"), resp.DataCaixa)
	assert.Nil(t, resp.FechadoEm)
	assert.True(t, resp.Resumo.SaldoFinal.IsZero())
}

func TestAbrirCaixaDuplicado(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	primeiro, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	assert.ErrorIs(t, err, service.ErrCaixaJaAberto)

	// The first caixa stays open and untouched.
	ativo, err := svc.Ativo(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, ativo)
	assert.Equal(t, primeiro.CaixaID, ativo.CaixaID)
	assert.False(t, ativo.Inconsistente)
}

func TestAbrirCaixaAposFechar(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	primeiro, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	_, err = svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{CaixaID: primeiro.CaixaID})
	require.NoError(t, err)

	segundo, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, primeiro.CaixaID, segundo.CaixaID)
}

func TestAtivoSemCaixa(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	resp, err := svc.Ativo(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestAtivoInconsistente(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	// Plant two open caixas directly, bypassing the service guard, the way a
	// broken migration or manual edit could.
	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < 2; i++ {
		c := &model.Caixa{
			ID:        uuid.New(),
			UsuarioID: u.ID,
			Status:    model.CaixaAberto,
			DataCaixa: base.Format("2006-01-02"),
			Matricula: u.Matricula,
			Nome:      u.Nome,
			OpenedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		repo.caixas[c.ID] = c
	}

	resp, err := svc.Ativo(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Inconsistente)
}

func TestLancamentoValorDerivado(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	caixa, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)

	recibo, err := svc.RegistrarLancamento(context.Background(), u.ID, dto.LancamentoRequest{
		CaixaID:            caixa.CaixaID,
		TipoValidador:      "prodata",
		QtdBordos:          3,
		Prefixo:            "12",
		MatriculaMotorista: "88221",
	})
	require.NoError(t, err)
	assert.True(t, recibo.Valor.Equal(decimal.NewFromInt(15)), "3 bordos a R$5 = 15, got %s", recibo.Valor)
	assert.Equal(t, "55012", recibo.Prefixo)
	assert.Equal(t, "70123", recibo.MatriculaRecebedor)
	assert.Equal(t, "Maria Souza", recibo.NomeRecebedor)
}

func TestLancamentoEmCaixaFechado(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	caixa, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	_, err = svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{CaixaID: caixa.CaixaID})
	require.NoError(t, err)

	_, err = svc.RegistrarLancamento(context.Background(), u.ID, dto.LancamentoRequest{
		CaixaID:            caixa.CaixaID,
		TipoValidador:      "prodata",
		QtdBordos:          1,
		MatriculaMotorista: "88221",
	})
	assert.ErrorIs(t, err, service.ErrCaixaFechado)
	assert.Empty(t, repo.lancamentos, "nothing may be written into a closed caixa")

	err = svc.RegistrarSangria(context.Background(), u.ID, dto.SangriaRequest{
		CaixaID: caixa.CaixaID,
		Valor:   decimal.NewFromInt(10),
		Motivo:  "troco",
	})
	assert.ErrorIs(t, err, service.ErrCaixaFechado)
	assert.Empty(t, repo.sangrias)
}

func TestLancamentoCaixaInexistente(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	_, err := svc.RegistrarLancamento(context.Background(), u.ID, dto.LancamentoRequest{
		CaixaID:            uuid.NewString(),
		TipoValidador:      "prodata",
		QtdBordos:          1,
		MatriculaMotorista: "88221",
	})
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)
}

func TestFluxoCompletoFechamento(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	disp := &fakeDespachante{}
	svc := newCaixaService(repo, usuarios, disp)

	caixa, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)

	_, err = svc.RegistrarLancamento(context.Background(), u.ID, dto.LancamentoRequest{
		CaixaID:            caixa.CaixaID,
		TipoValidador:      "prodata",
		QtdBordos:          3,
		Prefixo:            "5",
		MatriculaMotorista: "88221",
	})
	require.NoError(t, err)

	err = svc.RegistrarSangria(context.Background(), u.ID, dto.SangriaRequest{
		CaixaID: caixa.CaixaID,
		Valor:   decimal.NewFromInt(10),
		Motivo:  "malote para tesouraria",
	})
	require.NoError(t, err)

	reporte, err := svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.CaixaFechado, reporte.Status)
	require.NotNil(t, reporte.FechadoEm)
	assert.True(t, reporte.Resumo.TotalLancamentos.Equal(decimal.NewFromInt(15)))
	assert.True(t, reporte.Resumo.TotalSangrias.Equal(decimal.NewFromInt(10)))
	assert.True(t, reporte.Resumo.SaldoFinal.Equal(decimal.NewFromInt(5)))
	assert.Len(t, reporte.Lancamentos, 1)
	assert.Len(t, reporte.Sangrias, 1)

	fechadoEm, err := time.Parse(time.RFC3339, *reporte.FechadoEm)
	require.NoError(t, err)
	abertoEm, err := time.Parse(time.RFC3339, reporte.AbertoEm)
	require.NoError(t, err)
	assert.False(t, fechadoEm.Before(abertoEm))

	require.NotNil(t, reporte.RelatorioPendente)
	assert.True(t, *reporte.RelatorioPendente)
	assert.Len(t, disp.relatorios, 1)
}

func TestFecharCaixaVazio(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	_, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)

	reporte, err := svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{})
	require.NoError(t, err)
	assert.True(t, reporte.Resumo.TotalLancamentos.IsZero())
	assert.True(t, reporte.Resumo.TotalSangrias.IsZero())
	assert.True(t, reporte.Resumo.SaldoFinal.IsZero())
	assert.Empty(t, reporte.Lancamentos)
	assert.Empty(t, reporte.Sangrias)
}

func TestFecharSemCaixaAberto(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	_, err := svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{})
	assert.ErrorIs(t, err, service.ErrCaixaFechado)
}

func TestFecharComEnfileiramentoIndisponivel(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	disp := &fakeDespachante{fail: true}
	svc := newCaixaService(repo, usuarios, disp)

	caixa, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)

	// The close itself must survive a broken queue; only the report flag
	// tells the operator the PDF is not coming.
	reporte, err := svc.Fechar(context.Background(), u.ID, dto.FecharCaixaRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.CaixaFechado, reporte.Status)
	require.NotNil(t, reporte.RelatorioPendente)
	assert.False(t, *reporte.RelatorioPendente)

	caixaID, _ := uuid.Parse(caixa.CaixaID)
	stored, err := repo.FindCaixaByID(context.Background(), caixaID)
	require.NoError(t, err)
	assert.Equal(t, model.CaixaFechado, stored.Status)
	assert.NotNil(t, stored.ClosedAt)
}

func TestObterReporteParcial(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	u := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	caixa, err := svc.Abrir(context.Background(), u.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.RegistrarLancamento(context.Background(), u.ID, dto.LancamentoRequest{
			CaixaID:            caixa.CaixaID,
			TipoValidador:      "digicon",
			QtdBordos:          2,
			MatriculaMotorista: "88221",
		})
		require.NoError(t, err)
	}

	caixaID, _ := uuid.Parse(caixa.CaixaID)
	reporte, err := svc.ObterReporte(context.Background(), u.ID, caixaID)
	require.NoError(t, err)
	assert.Equal(t, model.CaixaAberto, reporte.Status)
	assert.Nil(t, reporte.FechadoEm)
	assert.True(t, reporte.Resumo.TotalLancamentos.Equal(decimal.NewFromInt(20)))

	// Reading again yields the same totals — recompute, never accumulate.
	novamente, err := svc.ObterReporte(context.Background(), u.ID, caixaID)
	require.NoError(t, err)
	assert.True(t, novamente.Resumo.TotalLancamentos.Equal(reporte.Resumo.TotalLancamentos))
}

func TestObterReporteNaoEncontrado(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	_, err := svc.ObterReporte(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)
}

func TestCaixaDeOutroRecebedor(t *testing.T) {
	repo := newFullCaixaRepo()
	usuarios := newMemUsuarioRepo()
	dona := seedRecebedor(t, usuarios, "70123", "Maria Souza")
	intruso := seedRecebedor(t, usuarios, "70456", "João Lima")
	svc := newCaixaService(repo, usuarios, &fakeDespachante{})

	caixa, err := svc.Abrir(context.Background(), dona.ID, dto.AbrirCaixaRequest{})
	require.NoError(t, err)
	caixaID, _ := uuid.Parse(caixa.CaixaID)

	// Another recebedor's caixa looks nonexistent, whatever the operation.
	_, err = svc.RegistrarLancamento(context.Background(), intruso.ID, dto.LancamentoRequest{
		CaixaID:            caixa.CaixaID,
		TipoValidador:      "prodata",
		QtdBordos:          1,
		MatriculaMotorista: "88221",
	})
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)
	assert.Empty(t, repo.lancamentos)

	err = svc.RegistrarSangria(context.Background(), intruso.ID, dto.SangriaRequest{
		CaixaID: caixa.CaixaID,
		Valor:   decimal.NewFromInt(10),
		Motivo:  "troco",
	})
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)
	assert.Empty(t, repo.sangrias)

	_, err = svc.Fechar(context.Background(), intruso.ID, dto.FecharCaixaRequest{CaixaID: caixa.CaixaID})
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)

	_, err = svc.ObterReporte(context.Background(), intruso.ID, caixaID)
	assert.ErrorIs(t, err, service.ErrCaixaNaoEncontrado)

	// The caixa is untouched and still open for its owner.
	stored, err := repo.FindCaixaByID(context.Background(), caixaID)
	require.NoError(t, err)
	assert.Equal(t, model.CaixaAberto, stored.Status)
	assert.Nil(t, stored.ClosedAt)
}
