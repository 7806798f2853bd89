// Command replica consumes the products-sales queue and keeps the sales
// side copy of the catalog up to date.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/profaxno/siproad-products-api/internal/config"
	"github.com/profaxno/siproad-products-api/internal/infra"
	"github.com/profaxno/siproad-products-api/internal/queue"
	"github.com/profaxno/siproad-products-api/internal/repository"
	"github.com/profaxno/siproad-products-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg.IsProduction())

	db, err := infra.NewDatabase(cfg.ReplicaDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to replica postgres")
	}
	if err := infra.MigrateReplica(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate replica schema")
	}

	rdb, err := infra.NewRedis(infra.RedisOptions{URL: cfg.RedisURL, ClientName: "siproad-products-replica", Workers: cfg.WorkerPoolSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewRedisQueue(rdb)
	if err := worker.Recover(ctx, q, cfg.QueueProductsSales); err != nil {
		log.Fatal().Err(err).Msg("failed to recover in-flight jobs")
	}
	worker.StartPromoter(ctx, q, []string{cfg.QueueProductsSales}, time.Second)

	pool := worker.NewPool(q, worker.NewReplicaRegistry(repository.NewReplicaRepository(db)), worker.PoolConfig{
		Queue:       cfg.QueueProductsSales,
		Size:        cfg.WorkerPoolSize,
		MaxAttempts: cfg.WorkerMaxAttempts,
		BaseDelay:   cfg.ExecutionBaseDelay(),
	})
	pool.Start(ctx)
	log.Info().Str("queue", cfg.QueueProductsSales).Int("workers", cfg.WorkerPoolSize).Msg("replica consumer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("stopping replica consumer")
	cancel()
	pool.Wait()
	log.Info().Msg("replica consumer exited")
}
