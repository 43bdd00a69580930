package repository

import (
	"context"

	"storefront/internal/domain/model"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository.go -package=mocks
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetForUpdate reads the product and locks its row until the enclosing
	// unit of work ends. Outside a unit of work it behaves like GetByID.
	GetForUpdate(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, limit, offset int) ([]*model.Product, error)
	Delete(ctx context.Context, id int64) error
	DeleteByOwner(ctx context.Context, ownerID int64) ([]*model.Product, error)
	// DecrementStock subtracts amount only if enough stock is left and returns
	// the new quantity.
	DecrementStock(ctx context.Context, id int64, amount int) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, id int64) error
}

// Tx exposes repositories bound to a single database transaction.
type Tx interface {
	Products() ProductRepository
	Users() UserRepository
}

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
