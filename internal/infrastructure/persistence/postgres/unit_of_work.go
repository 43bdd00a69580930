package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/domain/repository"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	defaultTxRetries   = 3
	defaultRetryPeriod = 20 * time.Millisecond
)

type txRepositories struct {
	products *ProductRepository
	users    *UserRepository
}

func (t *txRepositories) Products() repository.ProductRepository { return t.products }
func (t *txRepositories) Users() repository.UserRepository { return t.users }

// UnitOfWork runs a function inside one database transaction and replays it
// when Postgres aborts the transaction with a deadlock or serialization
// failure. Once the replays run out the error wraps model.ErrStoreUnavailable.
type UnitOfWork struct {
	db      *sql.DB
	logger  *zap.Logger
	retries uint64
	base    time.Duration
}

func NewUnitOfWork(db *sql.DB, logger *zap.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, logger: logger, retries: defaultTxRetries, base: defaultRetryPeriod}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	backoff := retry.WithMaxRetries(u.retries, retry.NewExponential(u.base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := u.run(ctx, fn)
		if err != nil && isRetryable(err) {
			u.logger.Warn("Transaction aborted, retrying", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if isRetryable(err) && !errors.Is(err, model.ErrStoreUnavailable) {
		return fmt.Errorf("transaction kept aborting after %d attempts: %w: %w", attempt, model.ErrStoreUnavailable, err)
	}
	return err
}

func (u *UnitOfWork) run(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("failed to begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			u.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	repos := &txRepositories{
		products: &ProductRepository{q: tx, logger: u.logger},
		users:    &UserRepository{q: tx, logger: u.logger},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("failed to commit transaction", err)
	}
	committed = true
	return nil
}
