package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	scanBatch       = 100
	connectAttempts = 3
)

// Cache is a Redis-backed repository.Cache. Every command runs under its own
// short deadline so a stalled Redis degrades into errors quickly instead of
// blocking request handling.
type Cache struct {
	client    *redis.Client
	opTimeout time.Duration
	logger    *zap.Logger
}

func NewCache(cfg config.RedisConfig, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  cfg.OpTimeout,
		WriteTimeout: cfg.OpTimeout,
		MaxRetries:   1,
	})
	c := &Cache{client: client, opTimeout: cfg.OpTimeout, logger: logger}

	for i := range connectAttempts {
		err := c.Ping(context.Background())
		if err == nil {
			logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))
			return c
		}
		logger.Warn("Failed to connect to Redis, retrying...", zap.Error(err), zap.Int("attempt", i+1))
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	logger.Warn("Redis unavailable, continuing without cache", zap.String("addr", cfg.Addr))
	return c
}

func (c *Cache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate deletes every key matching the glob pattern and reports how
// many were removed, including when it stops early on an error.
func (c *Cache) Invalidate(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.scan(ctx, cursor, pattern)
		if err != nil {
			return removed, fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.del(ctx, keys)
			removed += n
			if err != nil {
				return removed, fmt.Errorf("redis del failed: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (c *Cache) scan(ctx context.Context, cursor uint64, pattern string) ([]string, uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
}

func (c *Cache) del(ctx context.Context, keys []string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	n, err := c.client.Del(ctx, keys...).Result()
	return int(n), err
}

func (c *Cache) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
		return err
	}
	return nil
}
