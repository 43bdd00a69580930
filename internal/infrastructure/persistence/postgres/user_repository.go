package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain/model"

	"github.com/jackc/pgerrcode"
	"go.uber.org/zap"
)

const userColumns = `id, email, hashed_password, is_active, is_superuser, created_at`

type UserRepository struct {
	q      querier
	logger *zap.Logger
}

func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{q: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.q.QueryRowContext(ctx, `
        INSERT INTO users (email, hashed_password, is_active, is_superuser, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		user.Email, user.HashedPassword, user.IsActive, user.IsSuperuser, user.CreatedAt,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return model.ErrEmailTaken
		}
		return classify("failed to insert user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.IsSuperuser, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, classify("failed to get user", err)
	}
	return &u, nil
}

// Delete removes the user row. Owned products must already be gone; a
// remaining reference fails with a foreign key violation.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("user %d still owns products: %w", id, err)
		}
		return classify("failed to delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
