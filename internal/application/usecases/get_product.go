package usecases

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

// GetProductUseCase reads a product from the store of record, never from
// the cache.
type GetProductUseCase struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewGetProductUseCase(products repository.ProductRepository, logger *zap.Logger) *GetProductUseCase {
	return &GetProductUseCase{products: products, logger: logger}
}

func (uc *GetProductUseCase) Execute(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return nil, model.NewProductError(productID, "", model.ErrProductNotFound)
		}
		uc.logger.Error("Failed to get product from DB", zap.Int64("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("failed to get product from DB: %w", err)
	}
	return product, nil
}
