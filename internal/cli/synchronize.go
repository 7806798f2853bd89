package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/queue"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
	"github.com/profaxno/siproad-products-api/internal/service"
)

// Synchronizer is one entity's full re-publish.
type Synchronizer interface {
	Synchronize(ctx context.Context, companyID uuid.UUID) (*dto.SyncSummary, error)
}

// Entities lists the values accepted by --entity.
var Entities = []string{"productTypes", "formulas", "products"}

// NewSynchronizeCommand creates the synchronize command.
func NewSynchronizeCommand(rootOpts *RootOptions) *cobra.Command {
	var companyID, entity string

	cmd := &cobra.Command{
		Use:   "synchronize",
		Short: "Re-publish a company's catalog to the replication queues",
		Long: `Publishes every product type, formula or product of a company as
UPDATE and DELETE messages, in pages of DB_DEFAULT_LIMIT rows.

Without --entity all three are sent, product types first so the replica
can resolve them when the products arrive.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(companyID)
			if err != nil {
				return fmt.Errorf("invalid --company %q", companyID)
			}
			targets := Entities
			if entity != "" {
				targets = []string{entity}
			}

			syncers, closeFn, err := openSynchronizers(rootOpts)
			if err != nil {
				return err
			}
			defer closeFn()
			return runSynchronize(cmd.Context(), rootOpts, cmd.OutOrStdout(), syncers, targets, id)
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	cmd.Flags().StringVar(&entity, "entity", "", "productTypes|formulas|products (default all)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

// runSynchronize runs targets in order and stops at the first failure.
func runSynchronize(ctx context.Context, opts *RootOptions, w io.Writer, syncers map[string]Synchronizer, targets []string, companyID uuid.UUID) error {
	var done []*dto.SyncSummary
	for _, name := range targets {
		s, ok := syncers[name]
		if !ok {
			return fmt.Errorf("unknown entity %q: must be one of %v", name, Entities)
		}
		summary, err := s.Synchronize(ctx, companyID)
		if summary != nil {
			done = append(done, summary)
		}
		if err != nil {
			_ = printSummaries(opts, w, done)
			return fmt.Errorf("synchronize %s: %w", name, err)
		}
	}
	return printSummaries(opts, w, done)
}

func printSummaries(opts *RootOptions, w io.Writer, list []*dto.SyncSummary) error {
	return opts.print(w, list, func(w io.Writer) {
		for _, s := range list {
			fmt.Fprintf(w, "%-12s rows=%d batches=%d complete=%t\n", s.Entity, s.Rows, s.Batches, s.Complete)
		}
	})
}

// openSynchronizers wires the services over the configured database and
// broker. The returned func releases both connections.
func openSynchronizers(opts *RootOptions) (map[string]Synchronizer, func(), error) {
	cfg := opts.cfg
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	rdb, err := infra.NewRedis(infra.RedisOptions{URL: cfg.RedisURL, ClientName: "siproadctl"})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	publisher := replication.NewPublisher(queue.NewRedisQueue(rdb), nil, replication.PublisherConfig{
		Queues:    cfg.Queues(),
		Retries:   cfg.ExecutionRetries,
		BaseDelay: cfg.ExecutionBaseDelay(),
	})
	replicator := replication.NewReplicator(publisher)

	companies := repository.NewCompanyRepository(db)
	productTypes := repository.NewProductTypeRepository(db)
	elements := repository.NewElementRepository(db)
	formulas := repository.NewFormulaRepository(db)
	products := repository.NewProductRepository(db)

	syncers := map[string]Synchronizer{
		"productTypes": service.NewProductTypeService(productTypes, companies, replicator, cfg.DBDefaultLimit),
		"formulas":     service.NewFormulaService(formulas, elements, companies, replicator, cfg.DBDefaultLimit),
		"products":     service.NewProductService(products, elements, formulas, productTypes, companies, replicator, cfg.DBDefaultLimit),
	}
	closeFn := func() {
		replicator.Wait()
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return syncers, closeFn, nil
}
