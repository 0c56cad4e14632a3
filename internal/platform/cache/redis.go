package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"qrgen/internal/platform/config"
)

const opTimeout = 1 * time.Second

// RenderCache keeps rendered images in Redis. Failures are logged and treated as misses.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl <= 0 {
		ttl = 1 * time.Minute
	}
	return &RenderCache{client: client, ttl: ttl}
}

func (c *RenderCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis read failed")
		return nil, false
	}

	log.Debug().Str("key", key).Msg("render cache hit")
	return data, true
}

func (c *RenderCache) Set(ctx context.Context, key string, data []byte) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis write failed")
	}
}

// Ping reports whether Redis is reachable.
func (c *RenderCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}
