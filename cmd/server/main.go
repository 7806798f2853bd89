package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/config"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/queue"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
	"github.com/profaxno/siproad-products-api/internal/router"
	"github.com/profaxno/siproad-products-api/internal/service"
	"github.com/profaxno/siproad-products-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg.IsProduction())

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate catalog schema")
	}

	rdb, err := infra.NewRedis(infra.RedisOptions{URL: cfg.RedisURL, ClientName: "siproad-products-api", Workers: cfg.WorkerPoolSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	q := queue.NewRedisQueue(rdb)
	publisher := replication.NewPublisher(q, infra.NewCircuitBreaker(infra.DefaultCBConfig("replication")), replication.PublisherConfig{
		Queues:    cfg.Queues(),
		Retries:   cfg.ExecutionRetries,
		BaseDelay: cfg.ExecutionBaseDelay(),
	})
	replicator := replication.NewReplicator(publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Company changes arrive from the admin service on its own queue.
	if err := worker.Recover(ctx, q, cfg.QueueAdminProducts); err != nil {
		log.Fatal().Err(err).Msg("failed to recover in-flight jobs")
	}
	worker.StartPromoter(ctx, q, []string{cfg.QueueAdminProducts}, time.Second)
	reception := worker.NewPool(q,
		worker.NewReceptionRegistry(service.NewCompanyService(repository.NewCompanyRepository(db))),
		worker.PoolConfig{
			Queue:       cfg.QueueAdminProducts,
			Size:        cfg.WorkerPoolSize,
			MaxAttempts: cfg.WorkerMaxAttempts,
			BaseDelay:   cfg.ExecutionBaseDelay(),
		})
	reception.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, db, rdb, publisher, replicator),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // synchronize publishes every page before answering
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Strs("replication_queues", cfg.Queues()).Msgf("siproad-products listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	reception.Wait()
	replicator.Wait()
	log.Info().Msg("server exited")
}
