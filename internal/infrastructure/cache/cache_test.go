package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/application/caching"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/config"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := tcRedis.Run(ctx,
		"redis:7-alpine",
		tcRedis.WithSnapshotting(0, 0),
		tcRedis.WithLogLevel(tcRedis.LogLevelVerbose),
	)
	require.NoError(t, err, "failed to start redis container")

	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})
	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get redis endpoint")

	c := NewCache(config.RedisConfig{Addr: endpoint, OpTimeout: time.Second}, zap.NewNop())

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func TestCache_SetAndGet(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte(`{"a":1}`), time.Minute))

	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestCache_MissingKey(t *testing.T) {
	c := setupTestCache(t)

	data, err := c.Get(context.Background(), "absent")

	require.ErrorIs(t, err, repository.ErrCacheMiss)
	assert.Nil(t, data)
}

func TestCache_Expiry(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")
		return errors.Is(err, repository.ErrCacheMiss)
	}, 5*time.Second, 100*time.Millisecond)
}

func TestCache_SetRejectsNonPositiveTTL(t *testing.T) {
	c := setupTestCache(t)

	require.Error(t, c.Set(context.Background(), "k", []byte("v"), 0))
}

func TestCache_InvalidateRemovesOnlyMatchingKeys(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	for i := range 250 {
		key := caching.Key(caching.ProductsNamespace, i, 0)
		require.NoError(t, c.Set(ctx, key, []byte("[]"), time.Minute))
	}
	require.NoError(t, c.Set(ctx, "get_users:[]", []byte("[]"), time.Minute))
	require.NoError(t, c.Set(ctx, "get_productsX", []byte("[]"), time.Minute))

	removed, err := c.Invalidate(ctx, caching.ProductsPattern)

	require.NoError(t, err)
	assert.Equal(t, 250, removed)

	_, err = c.Get(ctx, caching.Key(caching.ProductsNamespace, 0, 0))
	require.ErrorIs(t, err, repository.ErrCacheMiss)
	_, err = c.Get(ctx, "get_users:[]")
	require.NoError(t, err)
	_, err = c.Get(ctx, "get_productsX")
	require.NoError(t, err)

	removed, err = c.Invalidate(ctx, caching.ProductsPattern)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCache_ReadThroughAfterInvalidation(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	logger := zap.NewNop()
	key := caching.Key(caching.ProductsNamespace, 100, 0)

	stock := 5
	calls := 0
	compute := func(context.Context) ([]*model.Product, error) {
		calls++
		return []*model.Product{{ID: 1, Name: gofakeit.ProductName(), Price: decimal.NewFromInt(3), Quantity: stock}}, nil
	}

	first, err := caching.GetOrCompute(ctx, c, logger, key, time.Minute, compute)
	require.NoError(t, err)
	second, err := caching.GetOrCompute(ctx, c, logger, key, time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first[0].Quantity, second[0].Quantity)
	assert.True(t, first[0].Price.Equal(second[0].Price))

	stock = 2
	require.NoError(t, caching.Invalidate(ctx, c, logger, caching.ProductsPattern))

	third, err := caching.GetOrCompute(ctx, c, logger, key, time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third[0].Quantity)
}

func TestCache_UnreachableFailsOpen(t *testing.T) {
	c := NewCache(config.RedisConfig{Addr: "127.0.0.1:1", OpTimeout: 50 * time.Millisecond}, zap.NewNop())
	t.Cleanup(func() {
		_ = c.Close()
	})
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrCacheMiss)

	removed, err := c.Invalidate(ctx, caching.ProductsPattern)
	require.Error(t, err)
	assert.Zero(t, removed)

	calls := 0
	got, err := caching.GetOrCompute(ctx, c, zap.NewNop(), "get_products:[1,0]", time.Minute,
		func(context.Context) (string, error) {
			calls++
			return fmt.Sprintf("computed-%d", calls), nil
		})
	require.NoError(t, err)
	assert.Equal(t, "computed-1", got)
}
