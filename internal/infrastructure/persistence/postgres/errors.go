package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"storefront/internal/domain/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same code runs standalone or inside a unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUnavailable(err error) bool {
	if code := pgErrorCode(err); code != "" {
		return pgerrcode.IsConnectionException(code) ||
			code == pgerrcode.AdminShutdown ||
			code == pgerrcode.CrashShutdown ||
			code == pgerrcode.CannotConnectNow ||
			code == pgerrcode.TooManyConnections
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	return errors.As(err, &connErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone)
}

// isRetryable reports errors after which the whole transaction may be
// replayed safely.
func isRetryable(err error) bool {
	switch pgErrorCode(err) {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	}
	return false
}

// classify tags infrastructure failures with model.ErrStoreUnavailable and
// wraps everything else with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
