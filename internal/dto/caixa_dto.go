package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	// DataCaixa is optional; defaults to today's business date.
	DataCaixa string `json:"data_caixa" validate:"omitempty,datetime=2006-01-02"`
}

type LancamentoRequest struct {
	CaixaID       string `json:"caixa_id"       validate:"required,uuid"`
	TipoValidador string `json:"tipo_validador" validate:"required,min=1,max=30"`
	// QtdBordos and MatriculaMotorista are checked by the lançamento
	// validator so the rules live in one place.
	QtdBordos int `json:"qtd_bordos"`
	// Prefixo is the raw site code as typed; normalization (digits only,
	// 3 chars, network code) happens in the validator, not here.
	Prefixo            string `json:"prefixo"`
	DataCaixa          string `json:"data_caixa" validate:"omitempty,datetime=2006-01-02"`
	MatriculaMotorista string `json:"matricula_motorista"`
}

type SangriaRequest struct {
	CaixaID string          `json:"caixa_id" validate:"required,uuid"`
	Valor   decimal.Decimal `json:"valor"`
	Motivo  string          `json:"motivo"`
}

type FecharCaixaRequest struct {
	// CaixaID is optional; when empty the recebedor's open caixa is used.
	CaixaID string `json:"caixa_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// LancamentoRow is one ordered entry line of a report.
type LancamentoRow struct {
	Horario            string          `json:"horario"`
	TipoValidador      string          `json:"tipo_validador"`
	Prefixo            string          `json:"prefixo"`
	QtdBordos          int             `json:"qtd_bordos"`
	Valor              decimal.Decimal `json:"valor"`
	MatriculaMotorista string          `json:"matricula_motorista"`
}

// SangriaRow is one ordered withdrawal line of a report.
type SangriaRow struct {
	Horario string          `json:"horario"`
	Valor   decimal.Decimal `json:"valor"`
	Motivo  string          `json:"motivo"`
}

// ResumoResponse is the reconciled summary block.
type ResumoResponse struct {
	TotalLancamentos decimal.Decimal `json:"total_lancamentos"`
	TotalSangrias    decimal.Decimal `json:"total_sangrias"`
	SaldoFinal       decimal.Decimal `json:"saldo_final"`
}

// ReporteCaixaResponse is the renderer-agnostic report document: header,
// ordered rows and the summary. The same shape serves the on-screen partial
// view of an open caixa and the closing report handed to the PDF renderer.
type ReporteCaixaResponse struct {
	CaixaID     string          `json:"caixa_id"`
	Status      string          `json:"status"`
	DataCaixa   string          `json:"data_caixa"`
	Matricula   string          `json:"matricula"`
	Nome        string          `json:"nome"`
	AbertoEm    string          `json:"aberto_em"`
	FechadoEm   *string         `json:"fechado_em"`
	Lancamentos []LancamentoRow `json:"lancamentos"`
	Sangrias    []SangriaRow    `json:"sangrias"`
	Resumo      ResumoResponse  `json:"resumo"`
	// RelatorioPendente is false when the async closing-report job could not
	// be enqueued; the close itself still stands.
	RelatorioPendente *bool `json:"relatorio_pendente,omitempty"`
}

// ReciboResponse is the single-lançamento thermal receipt document.
type ReciboResponse struct {
	TipoValidador      string          `json:"tipo_validador"`
	Prefixo            string          `json:"prefixo"`
	QtdBordos          int             `json:"qtd_bordos"`
	Valor              decimal.Decimal `json:"valor"`
	MatriculaMotorista string          `json:"matricula_motorista"`
	MatriculaRecebedor string          `json:"matricula_recebedor"`
	NomeRecebedor      string          `json:"nome_recebedor"`
	DataRecebimento    string          `json:"data_recebimento"`
}

// CaixaAtivoResponse describes the recebedor's open caixa, if any.
type CaixaAtivoResponse struct {
	CaixaID   string `json:"caixa_id"`
	Status    string `json:"status"`
	DataCaixa string `json:"data_caixa"`
	AbertoEm  string `json:"aberto_em"`
	// Inconsistente is set when more than one open caixa was found for the
	// recebedor — an invariant violation that is surfaced, never auto-repaired.
	Inconsistente bool `json:"inconsistente,omitempty"`
}
