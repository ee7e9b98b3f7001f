package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikram-javatech/product-order-service/internal/domain/product"
)

const (
	productColumns = `id, name, description, price, quantity, available, deleted, created_at, updated_at`

	insertProductSQL = `INSERT INTO products (name, description, price, quantity, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1 AND NOT deleted`

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING ` + productColumns

	softDeleteProductSQL = `UPDATE products SET deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT deleted`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// Every read excludes soft-deleted rows.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new catalog item, filling in the generated fields.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	rows, err := r.pool.Query(ctx, insertProductSQL,
		p.Name, p.Description, p.Price, p.Quantity, p.Available)
	if err != nil {
		return errors.Wrap(err, "create product")
	}

	created, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return errors.Wrap(err, "create product")
	}
	*p = created
	return nil
}

// GetByID returns a single non-deleted product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &p, nil
}

// Update replaces the mutable fields of a product, preserving its id and
// deleted flag.
func (r *ProductRepository) Update(ctx context.Context, id int64, upd product.Update) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, updateProductSQL,
		id, upd.Name, upd.Description, upd.Price, upd.Quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "update product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "update product %d", id)
	}
	return &p, nil
}

// SoftDelete flags the row as deleted. Absent or already deleted rows are a
// no-op.
func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, softDeleteProductSQL, id); err != nil {
		return errors.Wrapf(err, "soft delete product %d", id)
	}
	return nil
}

// Search returns a page of non-deleted products matching the filter.
func (r *ProductRepository) Search(ctx context.Context, f product.Filter, page, size int) (*product.Page, error) {
	where := []string{"NOT deleted"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Name != "" {
		where = append(where, "name ILIKE "+arg("%"+f.Name+"%"))
	}
	if f.MinPrice != nil {
		where = append(where, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "price <= "+arg(*f.MaxPrice))
	}
	if f.Available != nil {
		where = append(where, "available = "+arg(*f.Available))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products WHERE "+cond, args...).Scan(&total)
	if err != nil {
		return nil, errors.Wrap(err, "count products")
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY id LIMIT %s OFFSET %s",
		productColumns, cond, arg(size), arg(page*size))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}

	content, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &product.Page{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity,
		&p.Available, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
