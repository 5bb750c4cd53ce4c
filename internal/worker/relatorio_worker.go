package worker

// relatorio_worker.go
// Renders the closing report of a caixa to an A4 PDF and hands it off to the
// email queue when delivery is configured. Runs strictly after the close has
// been committed; any failure here is logged and never affects the closed
// caixa. There is no automatic retry — a lost report is regenerated by the
// operator re-requesting it.

import (
	"context"
	"encoding/json"
	"fmt"

	"movecaixa/internal/infra"
	"movecaixa/internal/repository"
	"movecaixa/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RelatorioJobPayload is the job envelope sent to QueueRelatorio.
type RelatorioJobPayload struct {
	CaixaID string `json:"caixa_id"`
}

type RelatorioWorker struct {
	repo        repository.CaixaRepository
	dispatcher  *Dispatcher
	storagePath string
	destino     string
}

func NewRelatorioWorker(repo repository.CaixaRepository, dispatcher *Dispatcher, storagePath, destino string) *RelatorioWorker {
	return &RelatorioWorker{
		repo:        repo,
		dispatcher:  dispatcher,
		storagePath: storagePath,
		destino:     destino,
	}
}

// Process re-reads the caixa's records, assembles the report and renders the
// PDF. Totals are recomputed here rather than carried in the payload so the
// document always reflects the stored ledger.
func (w *RelatorioWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RelatorioJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("relatorio_worker: invalid payload")
		return
	}
	caixaID, err := uuid.Parse(payload.CaixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: invalid caixa id")
		return
	}

	caixa, err := w.repo.FindCaixaByID(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: caixa not found")
		return
	}
	lancs, err := w.repo.ListLancamentos(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: list lançamentos failed")
		return
	}
	sangrias, err := w.repo.ListSangrias(ctx, caixaID)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: list sangrias failed")
		return
	}

	reporte := service.MontarReporte(caixa, lancs, sangrias)
	pdfPath, err := infra.GerarRelatorioPDF(reporte, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: PDF generation failed")
		return
	}
	log.Info().Str("caixa_id", payload.CaixaID).Str("pdf", pdfPath).Msg("relatorio_worker: closing report generated")

	if w.destino == "" {
		return
	}
	err = w.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.destino,
		Subject: fmt.Sprintf("Fechamento de caixa %s — %s", caixa.Matricula, caixa.DataCaixa),
		Body:    fmt.Sprintf("Relatório de fechamento do caixa de %s (matrícula %s).", caixa.Nome, caixa.Matricula),
		PDFPath: pdfPath,
	})
	if err != nil {
		log.Error().Err(err).Str("caixa_id", payload.CaixaID).Msg("relatorio_worker: enqueue email failed")
	}
}
