package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheClientName  = "buspass-api"
	cachePingTimeout = 3 * time.Second
)

// NewRedisClient opens the cache behind idempotency replay and login rate
// limiting. url uses the redis:// or rediss:// scheme; the connection is
// pinged before the client is returned.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("REDIS_URL is empty")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if opt.ClientName == "" {
		opt.ClientName = cacheClientName
	}

	cache := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()
	if err := cache.Ping(pingCtx).Err(); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opt.Addr, err)
	}
	return cache, nil
}
