package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikram-javatech/product-order-service/internal/domain/order"
	"github.com/ikram-javatech/product-order-service/internal/domain/product"
)

const (
	productForUpdateSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1 AND NOT deleted FOR UPDATE`

	decrementStockSQL = `UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1`

	insertOrderSQL = `INSERT INTO orders (user_id, order_total)
		VALUES ($1, $2) RETURNING id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items
		(order_id, product_id, quantity, unit_price, discount_applied, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`

	getOrderByIDSQL = `SELECT id, user_id, order_total, created_at
		FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT id, user_id, order_total, created_at
		FROM orders ORDER BY id`

	listOrderItemsSQL = `SELECT product_id, quantity, unit_price, discount_applied, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	listAllOrderItemsSQL = `SELECT order_id, product_id, quantity, unit_price, discount_applied, total_price
		FROM order_items ORDER BY order_id, id`
)

var _ order.Store = (*OrderStore)(nil)

// OrderStore implements order.Store backed by PostgreSQL. Order placement
// runs inside a single transaction; product rows are locked with FOR UPDATE
// so concurrent placements against the same product serialize on the
// read-modify-write of quantity.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// InTx runs fn inside a single transaction, committing on nil and rolling
// back on error.
func (s *OrderStore) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

// orderTx adapts a pgx transaction to the order.Tx contract.
type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) ProductForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := t.tx.Query(ctx, productForUpdateSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "lock product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "lock product %d", id)
	}
	return &p, nil
}

func (t *orderTx) DecrementStock(ctx context.Context, id int64, qty int) error {
	ct, err := t.tx.Exec(ctx, decrementStockSQL, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return errors.Errorf("product %d not updated", id)
	}
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, insertOrderSQL, o.UserID, o.OrderTotal).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return err
	}
	for _, it := range o.Items {
		_, err := t.tx.Exec(ctx, insertOrderItemSQL,
			o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountApplied, it.TotalPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns an order with its line items.
func (s *OrderStore) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := s.pool.QueryRow(ctx, getOrderByIDSQL, id).
		Scan(&o.ID, &o.UserID, &o.OrderTotal, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %d", id)
	}

	rows, err := s.pool.Query(ctx, listOrderItemsSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d items", id)
	}
	o.Items, err = pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %d items", id)
	}
	return &o, nil
}

// List returns every order with its line items.
func (s *OrderStore) List(ctx context.Context) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.UserID, &o.OrderTotal, &o.CreatedAt)
		return o, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	itemRows, err := s.pool.Query(ctx, listAllOrderItemsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			orderID int64
			it      order.Item
		)
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.DiscountApplied, &it.TotalPrice); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	return orders, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice, &it.DiscountApplied, &it.TotalPrice)
	return it, err
}
