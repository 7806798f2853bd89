package worker

// promoter.go
// Background goroutine that moves due jobs from each queue's delayed set
// back onto the queue, so retried jobs are picked up by the pool again.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/queue"
)

const promoteTickInterval = time.Second

// StartPromoter ticks every interval (one second when zero) until ctx ends.
func StartPromoter(ctx context.Context, q queue.Queue, queues []string, interval time.Duration) {
	if interval <= 0 {
		interval = promoteTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Strs("queues", queues).Msg("promoter: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("promoter: shutting down")
				return
			case now := <-ticker.C:
				promote(ctx, q, queues, now)
			}
		}
	}()
}

func promote(ctx context.Context, q queue.Queue, queues []string, now time.Time) {
	for _, name := range queues {
		n, err := q.PromoteDue(ctx, name, now)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Str("queue", name).Msg("promoter: failed to promote delayed jobs")
			}
			continue
		}
		if n > 0 {
			log.Debug().Int("count", n).Str("queue", name).Msg("promoter: delayed jobs back on queue")
		}
	}
}

// Recover puts jobs stranded in the processing lists back on their queues.
// Call it once before Start.
func Recover(ctx context.Context, q queue.Queue, queues ...string) error {
	for _, name := range queues {
		n, err := q.RecoverInFlight(ctx, name)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Warn().Int("count", n).Str("queue", name).Msg("recovered in-flight jobs")
		}
	}
	return nil
}
