// Package cache owns the Redis connection shared by the event stream, the
// provider geo index and chat pub/sub.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diya-thabet/hirfa/internal/config"
)

const pingTimeout = 5 * time.Second

// NewRedisClient connects and pings; the client is closed again if the ping fails.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Options maps the config onto go-redis options. Stream reads block, so the
// read timeout is left to the per-call context.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		DialTimeout:           pingTimeout,
		ReadTimeout:           -1,
		ContextTimeoutEnabled: true,
		MinIdleConns:          1,
	}
}
