package worker

import (
	"context"
	"encoding/json"
	"time"

	"movecaixa/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRelatorio = "jobs:relatorio"
	QueueRecibo    = "jobs:recibo"
	QueueEmail     = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP. Delivery is fire-and-forget: a job failure is logged and
// the originating operation (e.g. the caixa close) stands.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRelatorio pushes a closing-report rendering job.
func (d *Dispatcher) EnqueueRelatorio(ctx context.Context, caixaID uuid.UUID) error {
	return d.enqueue(ctx, QueueRelatorio, "relatorio", RelatorioJobPayload{CaixaID: caixaID.String()})
}

// EnqueueRecibo pushes a thermal-receipt rendering job.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, recibo *dto.ReciboResponse) error {
	return d.enqueue(ctx, QueueRecibo, "recibo", recibo)
}

// EnqueueEmail pushes a report-delivery email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers bundles the concrete job processors wired at the
// composition root.
type WorkerHandlers struct {
	Relatorio *RelatorioWorker
	Recibo    *ReciboWorker
	Email     *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueRelatorio, QueueRecibo, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	switch queue {
	case QueueRelatorio:
		handlers.Relatorio.Process(ctx, job.Payload)
	case QueueRecibo:
		handlers.Recibo.Process(ctx, job.Payload)
	case QueueEmail:
		handlers.Email.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job on unknown queue")
	}
}
