// Package order implements the order placement workflow: line validation,
// discount pricing, stock decrement, and persistence inside one transaction.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ikram-javatech/product-order-service/internal/domain/product"
)

// Order is a completed customer order. Orders are created once, atomically,
// and never updated or deleted.
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Items      []Item          `json:"items"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Item is a single order line. UnitPrice and DiscountApplied are snapshots
// taken at order time and stay fixed regardless of later catalog changes.
type Item struct {
	ProductID       int64           `json:"productId"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountApplied decimal.Decimal `json:"discountApplied"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// ItemRequest is a requested order line before pricing.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// Tx is the set of operations available inside a single order placement
// transaction. ProductForUpdate must lock the product row so that concurrent
// placements against the same product serialize on the stock check.
type Tx interface {
	// ProductForUpdate returns the product with its row locked for the rest
	// of the transaction. Absent and soft-deleted products yield
	// product.ErrNotFound.
	ProductForUpdate(ctx context.Context, id int64) (*product.Product, error)
	// DecrementStock subtracts qty from the product's quantity.
	DecrementStock(ctx context.Context, id int64, qty int) error
	// InsertOrder persists the order and its items, filling in o.ID and
	// o.CreatedAt.
	InsertOrder(ctx context.Context, o *Order) error
}

// Store defines persistence operations for orders.
type Store interface {
	// InTx runs fn inside a single transaction. Any error from fn rolls the
	// transaction back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
}
