package repository

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

//go:generate mockgen -source=cache.go -destination=mocks/cache.go -package=mocks
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate deletes every key matching a glob pattern and reports how
	// many keys were removed, also when it fails part way.
	Invalidate(ctx context.Context, pattern string) (int, error)
	Close() error
}
