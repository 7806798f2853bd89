package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

var errNoReplicator = errors.New("replication is not configured")

// synchronize republishes every row of a company, active and inactive,
// one page at a time until a page comes back empty. Each page is published
// as one blocking batch; a publish failure stops the run and is returned
// together with what was sent so far.
func synchronize[T any](
	ctx context.Context,
	r Replicator,
	entity string,
	limit int,
	fetch func(ctx context.Context, limit, offset int) ([]T, error),
	toMessage func(T) (replication.Message, error),
) (*dto.SyncSummary, error) {
	if r == nil {
		return nil, errNoReplicator
	}
	start := time.Now()
	limit = pageSize(limit)
	summary := &dto.SyncSummary{Entity: entity}

	for offset := 0; ; offset += limit {
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return summary, fmt.Errorf("synchronize %s: load page at offset %d: %w", entity, offset, err)
		}
		if len(page) == 0 {
			break
		}

		msgs := make([]replication.Message, 0, len(page))
		for _, row := range page {
			msg, err := toMessage(row)
			if err != nil {
				return summary, fmt.Errorf("synchronize %s: %w", entity, err)
			}
			msgs = append(msgs, msg)
		}
		if err := r.Publish(ctx, msgs...); err != nil {
			log.Error().Err(err).Str("entity", entity).Int("batch", summary.Batches+1).Msg("synchronize: publish failed, stopping")
			return summary, err
		}
		summary.Rows += len(page)
		summary.Batches++

		if len(page) < limit {
			break
		}
	}

	summary.Complete = true
	log.Info().
		Str("entity", entity).
		Int("rows", summary.Rows).
		Int("batches", summary.Batches).
		Dur("runtime", time.Since(start)).
		Msg("synchronize executed")
	return summary, nil
}
