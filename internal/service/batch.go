package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/dto"
)

// runBatch applies fn to every item in order. A failing item is recorded
// and never stops the rest of the batch.
func runBatch[T any](ctx context.Context, entity string, items []T, name func(T) string, fn func(context.Context, T) error) dto.ProcessSummary {
	start := time.Now()
	summary := dto.ProcessSummary{
		TotalRows:     len(items),
		DetailsRowsOK: []string{},
		DetailsRowsKO: []string{},
	}

	for i, item := range items {
		if err := fn(ctx, item); err != nil {
			summary.RowsKO++
			summary.DetailsRowsKO = append(summary.DetailsRowsKO, fmt.Sprintf("(%d) name=%s, error=%s", i, name(item), err))
			continue
		}
		summary.RowsOK++
		summary.DetailsRowsOK = append(summary.DetailsRowsOK, fmt.Sprintf("(%d) name=%s, message=OK", i, name(item)))
	}

	log.Info().
		Str("entity", entity).
		Int("total", summary.TotalRows).
		Int("ok", summary.RowsOK).
		Int("ko", summary.RowsKO).
		Dur("runtime", time.Since(start)).
		Msg("batch update executed")
	return summary
}
