package usecases

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/application/caching"
	"storefront/internal/application/validation"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"go.uber.org/zap"
)

type CreateProductUseCase struct {
	products  repository.ProductRepository
	files     repository.FileStorage
	cache     repository.Cache
	validator *validation.Validator
	logger    *zap.Logger
}

func NewCreateProductUseCase(products repository.ProductRepository, files repository.FileStorage, cache repository.Cache, validator *validation.Validator, logger *zap.Logger) *CreateProductUseCase {
	return &CreateProductUseCase{products: products, files: files, cache: cache, validator: validator, logger: logger}
}

func (uc *CreateProductUseCase) Execute(ctx context.Context, principal model.Principal, product *model.Product, image *model.ProductImage) (*model.Product, error) {
	if !principal.IsSuperuser {
		uc.logger.Warn("Permission denied for creating product", zap.Int64("user_id", principal.UserID))
		return nil, model.ErrPermissionDenied
	}
	if err := uc.validator.ValidateProduct(*product); err != nil {
		uc.logger.Warn("Product validation failed", zap.String("name", product.Name), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	product.OwnerID = principal.UserID
	product.ImageURL = nil
	if image != nil {
		path, err := uc.files.Save(ctx, image.Filename, image.Content)
		if err != nil {
			uc.logger.Warn("Failed to store product image", zap.String("name", product.Name), zap.Error(err))
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		product.ImageURL = &path
		uc.logger.Info("Image uploaded for product", zap.String("name", product.Name), zap.String("path", path))
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	if err := uc.products.Create(ctx, product); err != nil {
		uc.logger.Error("Failed to save product", zap.String("name", product.Name), zap.Error(err))
		if product.ImageURL != nil {
			if delErr := uc.files.Delete(context.WithoutCancel(ctx), *product.ImageURL); delErr != nil {
				uc.logger.Error("Failed to remove orphaned image", zap.String("path", *product.ImageURL), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	_ = caching.Invalidate(context.WithoutCancel(ctx), uc.cache, uc.logger, caching.ProductsPattern)

	uc.logger.Info("Product created successfully", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}
