package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the client backing the relatório/recibo job queues.
// Workers block on BRPOP, so idle connections are kept warm to avoid a
// reconnect between every job.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
