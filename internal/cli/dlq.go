package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/queue"
)

// DLQReader is the dead letter side of the Redis queue.
type DLQReader interface {
	DLQLength(ctx context.Context, queue string) (int64, error)
	PeekDLQ(ctx context.Context, queue string, n int64) ([]queue.DLQEntry, error)
}

// DLQReport is the json output of the dlq command.
type DLQReport struct {
	Queue   string           `json:"queue"`
	Length  int64            `json:"length"`
	Entries []queue.DLQEntry `json:"entries"`
}

// NewDLQCommand creates the dlq command.
func NewDLQCommand(rootOpts *RootOptions) *cobra.Command {
	var queueName string
	var limit int64

	cmd := &cobra.Command{
		Use:          "dlq",
		Short:        "Show the dead letter queue of a job queue",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if queueName == "" {
				queueName = rootOpts.cfg.QueueProductsSales
			}
			rdb, err := infra.NewRedis(infra.RedisOptions{URL: rootOpts.cfg.RedisURL, ClientName: "siproadctl"})
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer rdb.Close()
			return runDLQ(cmd.Context(), rootOpts, cmd.OutOrStdout(), queue.NewRedisQueue(rdb), queueName, limit)
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "", "job queue name (default REDIS_JOB_QUEUE_PRODUCTS_SALES)")
	cmd.Flags().Int64Var(&limit, "limit", 20, "entries to show")
	return cmd
}

func runDLQ(ctx context.Context, opts *RootOptions, w io.Writer, r DLQReader, queueName string, limit int64) error {
	n, err := r.DLQLength(ctx, queueName)
	if err != nil {
		return fmt.Errorf("dlq length: %w", err)
	}
	report := DLQReport{Queue: queueName, Length: n, Entries: []queue.DLQEntry{}}
	if n > 0 && limit > 0 {
		if report.Entries, err = r.PeekDLQ(ctx, queueName, limit); err != nil {
			return fmt.Errorf("dlq peek: %w", err)
		}
	}
	return opts.print(w, report, func(w io.Writer) {
		fmt.Fprintf(w, "%s%s: %d entries\n", queue.DLQPrefix, queueName, n)
		for _, e := range report.Entries {
			fmt.Fprintf(w, "  %s  job=%s attempts=%d  %s\n", e.FailedAt, e.JobID, e.Attempts, e.Reason)
		}
	})
}
