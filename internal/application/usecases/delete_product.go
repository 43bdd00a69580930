package usecases

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/application/caching"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

type DeleteProductUseCase struct {
	products repository.ProductRepository
	files    repository.FileStorage
	cache    repository.Cache
	logger   *zap.Logger
}

func NewDeleteProductUseCase(products repository.ProductRepository, files repository.FileStorage, cache repository.Cache, logger *zap.Logger) *DeleteProductUseCase {
	return &DeleteProductUseCase{products: products, files: files, cache: cache, logger: logger}
}

func (uc *DeleteProductUseCase) Execute(ctx context.Context, principal model.Principal, productID int64) error {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			uc.logger.Info("Product not found", zap.Int64("product_id", productID))
			return model.NewProductError(productID, "", model.ErrProductNotFound)
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if product.OwnerID != principal.UserID {
		uc.logger.Warn("Permission denied for deleting product",
			zap.Int64("product_id", productID), zap.Int64("user_id", principal.UserID))
		return model.ErrPermissionDenied
	}

	if err := uc.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return model.NewProductError(productID, product.Name, model.ErrProductNotFound)
		}
		uc.logger.Error("Failed to delete product", zap.Int64("product_id", productID), zap.Error(err))
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if product.ImageURL != nil {
		if err := uc.files.Delete(context.WithoutCancel(ctx), *product.ImageURL); err != nil {
			uc.logger.Error("Failed to delete product image", zap.Int64("product_id", productID), zap.Error(err))
		} else {
			uc.logger.Info("Image deleted for product", zap.Int64("product_id", productID))
		}
	}

	_ = caching.Invalidate(context.WithoutCancel(ctx), uc.cache, uc.logger, caching.ProductsPattern)

	uc.logger.Info("Product deleted successfully", zap.Int64("product_id", productID))
	return nil
}
