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

const productColumns = `id, name, description, price, quantity, image_url, owner_id, created_at`

type ProductRepository struct {
	q      querier
	logger *zap.Logger
}

func NewProductRepository(db *sql.DB, logger *zap.Logger) *ProductRepository {
	return &ProductRepository{q: db, logger: logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageURL, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts product and copies back the generated id and the price as
// stored, which Postgres rounds to two decimals.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	if product.Quantity > model.MaxQuantity {
		return fmt.Errorf("%w: quantity %d exceeds %d", model.ErrValidation, product.Quantity, model.MaxQuantity)
	}

	err := r.q.QueryRowContext(ctx, `
        INSERT INTO products (name, description, price, quantity, image_url, owner_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, price, created_at`,
		product.Name, product.Description, product.Price, product.Quantity,
		product.ImageURL, product.OwnerID, product.CreatedAt,
	).Scan(&product.ID, &product.Price, &product.CreatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgerrcode.CheckViolation, pgerrcode.NumericValueOutOfRange:
			return fmt.Errorf("%w: %w", model.ErrValidation, err)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: owner %d", model.ErrUserNotFound, product.OwnerID)
		}
		return classify("failed to insert product", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate reads a product and locks its row until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepository) get(ctx context.Context, query string, id int64) (*model.Product, error) {
	product, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, classify("failed to get product", err)
	}
	return product, nil
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*model.Product, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classify("failed to list products", err)
	}
	return r.collect(rows, "List")
}

func (r *ProductRepository) collect(rows *sql.Rows, op string) ([]*model.Product, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.Warn("Failed to close rows in "+op, zap.Error(closeErr))
		}
	}()

	products := make([]*model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("error during rows iteration", err)
	}
	return products, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return classify("failed to delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// DeleteByOwner removes every product owned by ownerID and returns the
// removed rows.
func (r *ProductRepository) DeleteByOwner(ctx context.Context, ownerID int64) ([]*model.Product, error) {
	rows, err := r.q.QueryContext(ctx,
		`DELETE FROM products WHERE owner_id = $1 RETURNING `+productColumns, ownerID)
	if err != nil {
		return nil, classify("failed to delete products by owner", err)
	}
	return r.collect(rows, "DeleteByOwner")
}

// DecrementStock subtracts amount from the product's quantity in a single
// conditional statement, so concurrent callers can never drive it below zero.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: decrement amount must be positive, got %d", model.ErrValidation, amount)
	}

	// No row can hold more than MaxQuantity, so a larger amount only needs
	// the existence check.
	if amount <= model.MaxQuantity {
		var remaining int
		err := r.q.QueryRowContext(ctx, `
        UPDATE products SET quantity = quantity - $1
        WHERE id = $2 AND quantity >= $1
        RETURNING quantity`, amount, id).Scan(&remaining)
		switch {
		case err == nil:
			return remaining, nil
		case errors.Is(err, sql.ErrNoRows):
		case pgErrorCode(err) == pgerrcode.CheckViolation:
			return 0, model.ErrInsufficientStock
		default:
			return 0, classify("failed to decrement stock", err)
		}
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, classify("failed to check product existence", err)
	}
	if !exists {
		return 0, model.ErrProductNotFound
	}
	return 0, model.ErrInsufficientStock
}
