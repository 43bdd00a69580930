package usecases

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/application/caching"
	"storefront/internal/application/validation"
	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PlaceOrderUseCase struct {
	uow       repository.UnitOfWork
	cache     repository.Cache
	validator *validation.Validator
	logger    *zap.Logger
}

func NewPlaceOrderUseCase(uow repository.UnitOfWork, cache repository.Cache, validator *validation.Validator, logger *zap.Logger) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{uow: uow, cache: cache, validator: validator, logger: logger}
}

// Execute applies every line item against live stock inside one transaction.
// Either all decrements commit or none do; listings are invalidated only
// after a successful commit.
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error) {
	if len(req.ProductIDs) != len(req.Quantities) {
		uc.logger.Warn("Invalid order request: product IDs and quantities mismatch",
			zap.Int64("user_id", req.UserID),
			zap.Int("product_ids", len(req.ProductIDs)),
			zap.Int("quantities", len(req.Quantities)))
		return nil, model.ErrMalformedRequest
	}
	if err := uc.validator.ValidateOrder(req); err != nil {
		uc.logger.Warn("Order validation failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	var total decimal.Decimal
	err := uc.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		total = decimal.Zero
		products := tx.Products()

		for _, item := range req.LineItems() {
			product, err := products.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, model.ErrProductNotFound) {
					return model.NewProductError(item.ProductID, "", model.ErrProductNotFound)
				}
				return fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
			}

			if _, err := products.DecrementStock(ctx, product.ID, item.Quantity); err != nil {
				if errors.Is(err, model.ErrInsufficientStock) || errors.Is(err, model.ErrProductNotFound) {
					return model.NewProductError(product.ID, product.Name, err)
				}
				return fmt.Errorf("failed to decrement stock of product %d: %w", product.ID, err)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		return nil
	})
	if err != nil {
		var productErr *model.ProductError
		if errors.As(err, &productErr) {
			uc.logger.Warn("Order rejected",
				zap.Int64("user_id", req.UserID), zap.Int64("product_id", productErr.ProductID), zap.Error(err))
			return nil, err
		}
		uc.logger.Error("Failed to place order", zap.Int64("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	// The order is durable now; a canceled request must not skip invalidation.
	_ = caching.Invalidate(context.WithoutCancel(ctx), uc.cache, uc.logger, caching.ProductsPattern)

	uc.logger.Info("Order created successfully",
		zap.Int64("user_id", req.UserID), zap.String("request_id", req.RequestID), zap.String("total", total.String()))
	return &model.OrderResult{Total: total}, nil
}
