package usecases

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/application/caching"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

type ListProductsUseCase struct {
	products repository.ProductRepository
	cache    repository.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

func NewListProductsUseCase(products repository.ProductRepository, cache repository.Cache, ttl time.Duration, logger *zap.Logger) *ListProductsUseCase {
	return &ListProductsUseCase{products: products, cache: cache, ttl: ttl, logger: logger}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	key := caching.Key(caching.ProductsNamespace, limit, offset)
	products, err := caching.GetOrCompute(ctx, uc.cache, uc.logger, key, uc.ttl,
		func(ctx context.Context) ([]*model.Product, error) {
			return uc.products.List(ctx, limit, offset)
		})
	if err != nil {
		uc.logger.Error("Failed to list products", zap.Int("limit", limit), zap.Int("offset", offset), zap.Error(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
