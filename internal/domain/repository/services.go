package repository

import "context"

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks
type FileStorage interface {
	// Save stores content under a name derived from filename and returns the
	// path to persist on the product.
	Save(ctx context.Context, filename string, content []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

type TokenIssuer interface {
	Issue(subject string) (string, error)
	Parse(token string) (string, error)
}
