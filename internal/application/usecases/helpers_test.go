package usecases

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/repository/mocks"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func createProduct(t *testing.T, id int64, price string, quantity int) *model.Product {
	t.Helper()

	return &model.Product{
		ID:        id,
		Name:      gofakeit.ProductName(),
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
		OwnerID:   int64(gofakeit.Number(1, 1000)),
		CreatedAt: time.Now().UTC(),
	}
}

// runInTx makes the mocked unit of work run fn against tx exactly once.
func runInTx(uow *mocks.MockUnitOfWork, tx repository.Tx) *gomock.Call {
	return uow.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, repository.Tx) error) error {
			return fn(ctx, tx)
		})
}
