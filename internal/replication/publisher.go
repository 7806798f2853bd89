package replication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/queue"
)

// JobName is the job name every replication message is enqueued under.
const JobName = "job"

// ErrTransport wraps broker failures that outlasted the retry budget.
var ErrTransport = errors.New("replication transport error")

// Enqueuer is the part of queue.Queue the publisher needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue string, job queue.Job) error
}

// PublisherConfig carries EXECUTION_RETRIES and EXECUTION_BASE_DELAY.
type PublisherConfig struct {
	Queues    []string
	Retries   int
	BaseDelay time.Duration
}

// Publisher pushes each message onto every configured queue. A failed push
// is retried with exponential backoff through the broker circuit breaker.
type Publisher struct {
	q       Enqueuer
	cb      *infra.CircuitBreaker
	queues  []string
	retries int
	delay   time.Duration
}

func NewPublisher(q Enqueuer, cb *infra.CircuitBreaker, cfg PublisherConfig) *Publisher {
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig("replication"))
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Publisher{q: q, cb: cb, queues: cfg.Queues, retries: cfg.Retries, delay: cfg.BaseDelay}
}

// Publish sends msgs in order. It returns on the first message that could
// not be enqueued; earlier messages stay published.
func (p *Publisher) Publish(ctx context.Context, msgs ...Message) error {
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("replication: marshal %s: %w", m.Process, err)
		}
		job := queue.NewJob(JobName, data)

		for _, name := range p.queues {
			err := withRetry(ctx, p.retries+1, p.delay, func(attempt int) error {
				err := p.cb.Execute(func() error { return p.q.Enqueue(ctx, name, job) })
				if err != nil {
					log.Warn().Err(err).
						Int("attempt", attempt+1).
						Str("queue", name).
						Str("process", string(m.Process)).
						Msg("replication: enqueue failed")
				}
				return err
			})
			if err != nil {
				return fmt.Errorf("%w: queue=%s process=%s: %v", ErrTransport, name, m.Process, err)
			}
		}
		log.Debug().Str("process", string(m.Process)).Strs("queues", p.queues).Msg("replication: message published")
	}
	return nil
}

// BreakerState exposes the broker breaker for /health.
func (p *Publisher) BreakerState() infra.CBState { return p.cb.State() }
