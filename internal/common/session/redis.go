package session

import (
	"context"
	"fmt"
	"time"

	"admin-console/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens the client used by the shared debouncer.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
}

// Ping tests the Redis connection
func Ping(ctx context.Context, client redis.Cmdable) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// NewDebouncer builds the debouncer selected by config. The returned close
// func releases the Redis client, if one was opened.
func NewDebouncer(ctx context.Context, cfg *config.Config) (Debouncer, func() error, error) {
	window := config.GetDuration(cfg.Session.UnauthorizedDebounce)
	if !cfg.Session.UsesRedis() {
		return NewMemoryDebouncer(window), func() error { return nil }, nil
	}

	client := NewRedisClient(cfg.Redis)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return NewRedisDebouncer(client, cfg.Session.RedisKey, window), client.Close, nil
}
