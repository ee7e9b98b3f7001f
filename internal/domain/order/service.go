package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
	"github.com/ikram-javatech/product-order-service/internal/domain/product"
	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// Sentinel errors for order validation and access control.
var (
	ErrEmptyItems   = errors.New("items required")
	ErrNotFound     = errors.New("order not found")
	ErrAccessDenied = errors.New("you are not allowed to access this order")
)

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// InsufficientStockError indicates a line requesting more units than are in
// stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Service encapsulates the order placement workflow and order reads.
type Service struct {
	users user.Repository
	store Store
}

// NewService creates an order Service.
func NewService(users user.Repository, store Store) *Service {
	return &Service{users: users, store: store}
}

// PlaceOrder resolves the user, then inside a single transaction validates
// every line against row-locked stock, prices the order with the discount
// policy, decrements stock, and persists the order. Any failure rolls the
// whole transaction back: a rejected order never mutates stock.
func (s *Service) PlaceOrder(ctx context.Context, username string, items []ItemRequest) (*Order, error) {
	zctx.From(ctx).Info("Placing order",
		zap.String("username", username),
		zap.Int("items", len(items)),
	)

	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, "resolve user")
	}

	var placed *Order
	err = s.store.InTx(ctx, func(tx Tx) error {
		// Lock every requested product and accumulate the subtotal. The row
		// locks hold until commit, so the stock check below cannot race with
		// a concurrent placement.
		products := make([]*product.Product, len(items))
		subtotal := decimal.Zero
		for i, it := range items {
			p, err := tx.ProductForUpdate(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p.Quantity < it.Quantity {
				return &InsufficientStockError{
					ProductID: p.ID,
					Requested: it.Quantity,
					Available: p.Quantity,
				}
			}
			products[i] = p
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		totalDiscount := ComputeDiscount(subtotal, u.Roles)

		// Allocate the discount proportionally across lines, rounding each
		// share half-up to 2 decimals. The order total is the subtotal minus
		// the sum of the allocated shares, so it always equals the sum of the
		// line totals exactly.
		o := &Order{
			UserID: u.ID,
			Items:  make([]Item, len(items)),
		}
		allocated := decimal.Zero
		for i, it := range items {
			p := products[i]
			line := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))

			lineDiscount := decimal.Zero
			if !subtotal.IsZero() {
				lineDiscount = line.Mul(totalDiscount).Div(subtotal).Round(2)
			}
			allocated = allocated.Add(lineDiscount)

			o.Items[i] = Item{
				ProductID:       p.ID,
				Quantity:        it.Quantity,
				UnitPrice:       p.Price,
				DiscountApplied: lineDiscount,
				TotalPrice:      line.Sub(lineDiscount),
			}

			if err := tx.DecrementStock(ctx, p.ID, it.Quantity); err != nil {
				return errors.Wrapf(err, "decrement stock for product %d", p.ID)
			}
		}
		o.OrderTotal = subtotal.Sub(allocated)

		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("total", placed.OrderTotal.StringFixed(2)),
	)
	return placed, nil
}

// GetOrderByID returns an order by id. When the context carries a caller
// identity, the caller must be the order's owner or hold ADMIN; otherwise the
// call is treated as trusted internal and the ownership check is skipped.
func (s *Service) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ident, ok := auth.IdentityFrom(ctx)
	if !ok {
		return o, nil
	}
	if ident.HasRole(user.RoleAdmin) {
		return o, nil
	}

	requester, err := s.users.GetByUsername(ctx, ident.Username)
	if err != nil {
		return nil, errors.Wrap(err, "resolve requester")
	}
	if requester.ID != o.UserID {
		return nil, ErrAccessDenied
	}
	return o, nil
}

// ListOrders returns every order. Authorization is enforced at the HTTP
// boundary, not here.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.store.List(ctx)
}
