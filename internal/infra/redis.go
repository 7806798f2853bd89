package infra

import (
	"context"
	"runtime"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	redisPingTimeout = 5 * time.Second
	// connections kept free for publishers while every worker sits in BLMOVE
	redisPoolHeadroom = 4
)

// RedisOptions tunes the broker connection of one process.
type RedisOptions struct {
	URL string
	// ClientName shows up in CLIENT LIST so queue consumers can be told apart.
	ClientName string
	// Workers is the number of goroutines that block on Reserve.
	Workers int
}

func redisClientOptions(o RedisOptions) (*redis.Options, error) {
	opts, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse redis url")
	}
	if o.ClientName != "" {
		opts.ClientName = o.ClientName
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if floor := o.Workers + redisPoolHeadroom; opts.PoolSize < floor {
		opts.PoolSize = floor
	}
	return opts, nil
}

// NewRedis opens the broker connection and pings it before returning.
func NewRedis(o RedisOptions) (*redis.Client, error) {
	opts, err := redisClientOptions(o)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, pkgerrors.Wrapf(err, "ping redis %s", opts.Addr)
	}
	return rdb, nil
}
