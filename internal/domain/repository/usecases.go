package repository

import (
	"context"

	"storefront/internal/domain/model"
)

//go:generate mockgen -source=usecases.go -destination=mocks/usecases.go -package=mocks
type OrderPlacer interface {
	Execute(ctx context.Context, req model.OrderRequest) (*model.OrderResult, error)
}

type ProductCreator interface {
	Execute(ctx context.Context, principal model.Principal, product *model.Product, image *model.ProductImage) (*model.Product, error)
}

type ProductDeleter interface {
	Execute(ctx context.Context, principal model.Principal, productID int64) error
}

type ProductGetter interface {
	Execute(ctx context.Context, productID int64) (*model.Product, error)
}

type ProductLister interface {
	Execute(ctx context.Context, limit, offset int) ([]*model.Product, error)
}

type UserRegistrar interface {
	Execute(ctx context.Context, email, password string, isSuperuser bool) (*model.User, error)
}

type Authenticator interface {
	Execute(ctx context.Context, email, password string) (string, error)
}

type UserDeleter interface {
	Execute(ctx context.Context, principal model.Principal) error
}

type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*model.Principal, error)
}
