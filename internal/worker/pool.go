package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/queue"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

const maxRetryDelay = 5 * time.Minute

// PoolConfig holds the consumer settings of one queue.
type PoolConfig struct {
	Queue       string
	Size        int           // WORKER_POOL_SIZE
	MaxAttempts int           // WORKER_MAX_ATTEMPTS, the last failure goes to the DLQ
	BaseDelay   time.Duration // first retry delay, doubled per attempt
	PollTimeout time.Duration // how long Reserve blocks before checking ctx
}

// Pool consumes one queue with Size goroutines. Each job is dispatched to
// the registry handler named by its process.
type Pool struct {
	q        queue.Queue
	registry Registry
	cfg      PoolConfig
	wg       sync.WaitGroup
}

func NewPool(q queue.Queue, registry Registry, cfg PoolConfig) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	return &Pool{q: q, registry: registry, cfg: cfg}
}

// Start launches the consumers. They stop once ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Str("queue", p.cfg.Queue).Msgf("worker pool started with %d workers", p.cfg.Size)
}

// Wait blocks until every consumer has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("queue", p.cfg.Queue).Msgf("worker %d shutting down", id)
			return
		default:
		}

		// Blocking move into the processing list, waits up to PollTimeout
		d, err := p.q.Reserve(ctx, p.cfg.Queue, p.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Str("queue", p.cfg.Queue).Int("worker", id).Msg("worker: reserve failed")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if d == nil {
			continue
		}
		p.Process(ctx, d)
	}
}

// Process runs one delivery and settles it: ack on success, delayed retry
// on failure, DLQ once the attempts are used up or the error is permanent.
func (p *Pool) Process(ctx context.Context, d *queue.Delivery) {
	start := time.Now()
	// Settle even when shutdown cancelled ctx mid-job.
	settle := context.WithoutCancel(ctx)

	err := p.handle(ctx, d)
	if err == nil {
		if err := p.q.Ack(settle, d); err != nil {
			log.Error().Err(err).Str("queue", d.Queue).Str("job_id", d.Job.ID).Msg("worker: ack failed")
			return
		}
		log.Debug().Str("queue", d.Queue).Str("job_id", d.Job.ID).Dur("runtime", time.Since(start)).Msg("worker: job done")
		return
	}

	attempt := d.Job.Attempts + 1
	log.Error().Stack().Err(err).
		Str("queue", d.Queue).
		Str("job_id", d.Job.ID).
		Int("attempt", attempt).
		Msg("worker: job failed")

	if IsPermanent(err) || attempt >= p.cfg.MaxAttempts {
		reason := fmt.Sprintf("failed after %d attempts: %v", attempt, err)
		if err := p.q.DeadLetter(settle, d, reason); err != nil {
			log.Error().Err(err).Str("queue", d.Queue).Str("job_id", d.Job.ID).Msg("worker: dead letter failed")
		}
		return
	}
	if err := p.q.Retry(settle, d, p.backoff(attempt)); err != nil {
		log.Error().Err(err).Str("queue", d.Queue).Str("job_id", d.Job.ID).Msg("worker: retry scheduling failed")
	}
}

func (p *Pool) handle(ctx context.Context, d *queue.Delivery) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.Errorf("handler panic: %v", r)
		}
	}()

	var msg replication.Message
	if err := json.Unmarshal(d.Job.Data, &msg); err != nil {
		return Permanent(pkgerrors.Wrap(err, "decode message"))
	}
	h, ok := p.registry[msg.Process]
	if !ok {
		log.Warn().Str("queue", d.Queue).Str("process", string(msg.Process)).Str("source", string(msg.Source)).Msg("worker: process not implemented, skipping")
		return nil
	}
	if err := h(ctx, msg); err != nil {
		return pkgerrors.WithStack(err)
	}
	log.Info().Str("queue", d.Queue).Str("process", string(msg.Process)).Msg("worker: message applied")
	return nil
}

// backoff doubles BaseDelay per attempt, capped at maxRetryDelay.
func (p *Pool) backoff(attempt int) time.Duration {
	delay := p.cfg.BaseDelay
	for i := 1; i < attempt && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
