// Package caching implements read-through memoization on top of a
// repository.Cache. Cache failures never reach the caller: a broken or slow
// cache degrades to calling compute directly.
package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

// ProductsNamespace prefixes every cached product listing.
const ProductsNamespace = "get_products"

// ProductsPattern matches every cached product listing.
const ProductsPattern = ProductsNamespace + ":*"

// Key derives a cache key from an operation name and its arguments.
// Structurally equal arguments produce the same key.
func Key(name string, args ...any) string {
	if len(args) == 0 {
		return name + ":[]"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, args)
	}
	return name + ":" + string(data)
}

// GetOrCompute returns the cached value for key, or runs compute and stores
// its result for ttl.
func GetOrCompute[T any](
	ctx context.Context,
	cache repository.Cache,
	logger *zap.Logger,
	key string,
	ttl time.Duration,
	compute func(context.Context) (T, error),
) (T, error) {
	data, err := cache.Get(ctx, key)
	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			logger.Debug("Cache hit", zap.String("key", key))
			return value, nil
		}
		logger.Warn("Failed to decode cached value, recomputing", zap.String("key", key), zap.Error(err))
	case errors.Is(err, repository.ErrCacheMiss):
		logger.Debug("Cache miss", zap.String("key", key))
	default:
		logger.Warn("Cache unavailable, computing without cache", zap.String("key", key), zap.Error(err))
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Failed to encode value for cache", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := cache.Set(ctx, key, payload, ttl); err != nil {
		logger.Warn("Failed to store value in cache", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// Invalidate removes every key matching pattern. Failures are logged and
// returned so callers can decide whether they matter.
func Invalidate(ctx context.Context, cache repository.Cache, logger *zap.Logger, pattern string) error {
	removed, err := cache.Invalidate(ctx, pattern)
	if err != nil {
		logger.Error("Cache invalidation incomplete",
			zap.String("pattern", pattern), zap.Int("removed", removed), zap.Error(err))
		return err
	}
	logger.Info("Invalidated cache keys", zap.String("pattern", pattern), zap.Int("removed", removed))
	return nil
}
