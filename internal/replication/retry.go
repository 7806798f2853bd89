package replication

import (
	"context"
	"errors"
	"time"

	"github.com/profaxno/siproad-products-api/internal/infra"
)

// withRetry calls fn up to maxAttempts times with exponential backoff:
// attempt 1 is immediate, then baseDelay, 2*baseDelay, ... An open circuit
// breaker ends the loop at once.
func withRetry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := baseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			if errors.Is(err, infra.ErrCircuitOpen) {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}
