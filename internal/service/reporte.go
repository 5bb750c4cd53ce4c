package service

import (
	"time"

	"movecaixa/internal/dto"
	"movecaixa/internal/model"

	"github.com/shopspring/decimal"
)

// Resumo is the reconciled summary of a caixa. It is always recomputed from
// the underlying records — there is no stored running total to drift.
type Resumo struct {
	TotalLancamentos decimal.Decimal
	TotalSangrias    decimal.Decimal
	SaldoFinal       decimal.Decimal
}

// CalcularResumo sums the ordered listings of a caixa. Empty lists are a
// valid zero-total case. Order affects only display; the sums are
// order-independent.
func CalcularResumo(lancs []model.Lancamento, sangrias []model.Sangria) Resumo {
	total := decimal.Zero
	for _, l := range lancs {
		total = total.Add(l.Valor)
	}
	totalS := decimal.Zero
	for _, s := range sangrias {
		totalS = totalS.Add(s.Valor)
	}
	return Resumo{
		TotalLancamentos: total,
		TotalSangrias:    totalS,
		SaldoFinal:       total.Sub(totalS),
	}
}

// MontarReporte combines caixa metadata with the aggregated listings into the
// renderer-agnostic report document. It has no knowledge of markup or pixels;
// the screen view, the thermal receipt and the closing PDF all consume its
// output.
func MontarReporte(caixa *model.Caixa, lancs []model.Lancamento, sangrias []model.Sangria) *dto.ReporteCaixaResponse {
	resumo := CalcularResumo(lancs, sangrias)

	rows := make([]dto.LancamentoRow, len(lancs))
	for i, l := range lancs {
		rows[i] = dto.LancamentoRow{
			Horario:            l.CreatedAt.Format("15:04"),
			TipoValidador:      l.TipoValidador,
			Prefixo:            l.Prefixo,
			QtdBordos:          l.QtdBordos,
			Valor:              l.Valor,
			MatriculaMotorista: l.MatriculaMotorista,
		}
	}
	srows := make([]dto.SangriaRow, len(sangrias))
	for i, s := range sangrias {
		srows[i] = dto.SangriaRow{
			Horario: s.CreatedAt.Format("15:04"),
			Valor:   s.Valor,
			Motivo:  s.Motivo,
		}
	}

	reporte := &dto.ReporteCaixaResponse{
		CaixaID:     caixa.ID.String(),
		Status:      caixa.Status,
		DataCaixa:   caixa.DataCaixa,
		Matricula:   caixa.Matricula,
		Nome:        caixa.Nome,
		AbertoEm:    caixa.OpenedAt.Format(time.RFC3339),
		Lancamentos: rows,
		Sangrias:    srows,
		Resumo: dto.ResumoResponse{
			TotalLancamentos: resumo.TotalLancamentos,
			TotalSangrias:    resumo.TotalSangrias,
			SaldoFinal:       resumo.SaldoFinal,
		},
	}
	if caixa.ClosedAt != nil {
		t := caixa.ClosedAt.Format(time.RFC3339)
		reporte.FechadoEm = &t
	}
	return reporte
}

// MontarRecibo shapes the thermal-receipt document for one lançamento,
// stamped with the session owner's snapshot.
func MontarRecibo(l *model.Lancamento, caixa *model.Caixa) *dto.ReciboResponse {
	quando := l.CreatedAt
	if quando.IsZero() {
		quando = time.Now()
	}
	return &dto.ReciboResponse{
		TipoValidador:      l.TipoValidador,
		Prefixo:            l.Prefixo,
		QtdBordos:          l.QtdBordos,
		Valor:              l.Valor,
		MatriculaMotorista: l.MatriculaMotorista,
		MatriculaRecebedor: caixa.Matricula,
		NomeRecebedor:      caixa.Nome,
		DataRecebimento:    quando.Format("02/01/2006 15:04:05"),
	}
}
