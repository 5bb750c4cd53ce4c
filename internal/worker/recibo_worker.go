package worker

// recibo_worker.go
// Renders the thermal-style receipt PDF for a single lançamento. The receipt
// document itself was already returned to the operator synchronously; this
// only produces the printable artifact.

import (
	"context"
	"encoding/json"

	"movecaixa/internal/dto"
	"movecaixa/internal/infra"

	"github.com/rs/zerolog/log"
)

type ReciboWorker struct {
	storagePath string
}

func NewReciboWorker(storagePath string) *ReciboWorker {
	return &ReciboWorker{storagePath: storagePath}
}

func (w *ReciboWorker) Process(_ context.Context, raw json.RawMessage) {
	var recibo dto.ReciboResponse
	if err := json.Unmarshal(raw, &recibo); err != nil {
		log.Error().Err(err).Msg("recibo_worker: invalid payload")
		return
	}

	pdfPath, err := infra.GerarReciboPDF(&recibo, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("recebedor", recibo.MatriculaRecebedor).Msg("recibo_worker: PDF generation failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Msg("recibo_worker: recibo generated")
}
