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

// DeleteUserUseCase removes an account together with every product it owns.
type DeleteUserUseCase struct {
	uow    repository.UnitOfWork
	files  repository.FileStorage
	cache  repository.Cache
	logger *zap.Logger
}

func NewDeleteUserUseCase(uow repository.UnitOfWork, files repository.FileStorage, cache repository.Cache, logger *zap.Logger) *DeleteUserUseCase {
	return &DeleteUserUseCase{uow: uow, files: files, cache: cache, logger: logger}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, principal model.Principal) error {
	var removed []*model.Product
	err := uc.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		products, err := tx.Products().DeleteByOwner(ctx, principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to delete owned products: %w", err)
		}
		if err := tx.Users().Delete(ctx, principal.UserID); err != nil {
			return err
		}
		removed = products
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUserNotFound
		}
		uc.logger.Error("Failed to delete user", zap.Int64("user_id", principal.UserID), zap.Error(err))
		return err
	}

	cleanup := context.WithoutCancel(ctx)
	for _, product := range removed {
		if product.ImageURL == nil {
			continue
		}
		if err := uc.files.Delete(cleanup, *product.ImageURL); err != nil {
			uc.logger.Error("Failed to delete product image",
				zap.Int64("product_id", product.ID), zap.String("path", *product.ImageURL), zap.Error(err))
		}
	}
	if len(removed) > 0 {
		_ = caching.Invalidate(cleanup, uc.cache, uc.logger, caching.ProductsPattern)
	}

	uc.logger.Info("User deleted", zap.Int64("user_id", principal.UserID), zap.Int("products_removed", len(removed)))
	return nil
}
