package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikram-javatech/product-order-service/internal/domain/auth"
	"github.com/ikram-javatech/product-order-service/internal/domain/product"
	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byName map[string]*user.User
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Create(_ context.Context, u *user.User) error {
	m.byName[u.Username] = u
	return nil
}

type decrement struct {
	id  int64
	qty int
}

// mockStore stages all mutations inside the transaction callback and applies
// them only when the callback succeeds, mimicking commit/rollback.
type mockStore struct {
	products   map[int64]*product.Product
	orders     map[int64]*Order
	nextID     int64
	decrements []decrement
	inserted   *Order
	rolledBack bool
}

func newMockStore(products ...product.Product) *mockStore {
	byID := make(map[int64]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockStore{products: byID, orders: map[int64]*Order{}, nextID: 1}
}

func (s *mockStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	tx := &mockTx{store: s}
	if err := fn(tx); err != nil {
		s.rolledBack = true
		return err
	}
	for _, d := range tx.decrements {
		s.products[d.id].Quantity -= d.qty
	}
	s.decrements = tx.decrements
	s.inserted = tx.inserted
	if tx.inserted != nil {
		s.orders[tx.inserted.ID] = tx.inserted
	}
	return nil
}

func (s *mockStore) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *mockStore) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

type mockTx struct {
	store      *mockStore
	decrements []decrement
	inserted   *Order
}

func (t *mockTx) ProductForUpdate(_ context.Context, id int64) (*product.Product, error) {
	p, ok := t.store.products[id]
	if !ok || p.Deleted {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *mockTx) DecrementStock(_ context.Context, id int64, qty int) error {
	t.decrements = append(t.decrements, decrement{id: id, qty: qty})
	return nil
}

func (t *mockTx) InsertOrder(_ context.Context, o *Order) error {
	o.ID = t.store.nextID
	t.store.nextID++
	t.inserted = o
	return nil
}

// --- Helpers ---

func newTestProduct(id int64, name, price string, qty int) product.Product {
	return product.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
		Available: true,
	}
}

func newUsers(users ...*user.User) *mockUserRepo {
	byName := make(map[string]*user.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &mockUserRepo{byName: byName}
}

func plainUser(id int64, username string) *user.User {
	return &user.User{ID: id, Username: username, Roles: []string{user.RoleUser}}
}

func premiumUser(id int64, username string) *user.User {
	return &user.User{ID: id, Username: username, Roles: []string{user.RolePremium}}
}

func eq(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// --- PlaceOrder ---

func TestPlaceOrder_EmptyItems(t *testing.T) {
	svc := NewService(newUsers(plainUser(1, "alice")), newMockStore())

	_, err := svc.PlaceOrder(context.Background(), "alice", nil)
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Widget", "10.00", 5))
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	_, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 1, Quantity: 0}})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ProductID)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	svc := NewService(newUsers(), newMockStore(newTestProduct(1, "Widget", "10.00", 5)))

	_, err := svc.PlaceOrder(context.Background(), "ghost", []ItemRequest{{ProductID: 1, Quantity: 1}})
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	svc := NewService(newUsers(plainUser(1, "alice")), newMockStore())

	_, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 99, Quantity: 1}})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestPlaceOrder_SoftDeletedProduct(t *testing.T) {
	p := newTestProduct(1, "Widget", "10.00", 5)
	p.Deleted = true
	store := newMockStore(p)
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	_, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 1, Quantity: 1}})
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.True(t, store.rolledBack)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Widget", "10.00", 3))
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	_, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 1, Quantity: 4}})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// A rejected order never mutates stock and never creates an order.
	assert.True(t, store.rolledBack)
	assert.Equal(t, 3, store.products[1].Quantity)
	assert.Nil(t, store.inserted)
}

func TestPlaceOrder_PartialFailureMutatesNothing(t *testing.T) {
	store := newMockStore(
		newTestProduct(1, "Widget", "10.00", 10),
		newTestProduct(2, "Gadget", "20.00", 1),
	)
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	_, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 5},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, store.products[1].Quantity)
	assert.Equal(t, 1, store.products[2].Quantity)
	assert.Nil(t, store.inserted)
}

func TestPlaceOrder_NoDiscount(t *testing.T) {
	store := newMockStore(
		newTestProduct(1, "Widget", "50.00", 10),
		newTestProduct(2, "Gadget", "100.00", 10),
	)
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	o, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	eq(t, "200.00", o.OrderTotal)
	eq(t, "0", o.Items[0].DiscountApplied)
	eq(t, "100.00", o.Items[0].TotalPrice)
	eq(t, "100.00", o.Items[1].TotalPrice)
	assert.Equal(t, 8, store.products[1].Quantity)
	assert.Equal(t, 9, store.products[2].Quantity)
}

func TestPlaceOrder_PremiumDiscount(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Widget", "100.00", 10))
	svc := NewService(newUsers(premiumUser(1, "bob")), store)

	o, err := svc.PlaceOrder(context.Background(), "bob", []ItemRequest{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	// PREMIUM_USER with subtotal 200 gets exactly 20.00 off.
	eq(t, "180.00", o.OrderTotal)
	eq(t, "20.00", o.Items[0].DiscountApplied)
	eq(t, "180.00", o.Items[0].TotalPrice)
}

func TestPlaceOrder_SurchargeDiscount(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Monitor", "300.00", 10))
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	o, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	// Subtotal 600 exceeds 500: any role gets a further 5% (30.00).
	eq(t, "570.00", o.OrderTotal)
}

func TestPlaceOrder_PremiumWithSurcharge(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Monitor", "300.00", 10))
	svc := NewService(newUsers(premiumUser(1, "bob")), store)

	o, err := svc.PlaceOrder(context.Background(), "bob", []ItemRequest{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	eq(t, "510.00", o.OrderTotal)
}

func TestPlaceOrder_TotalEqualsSumOfLineTotals(t *testing.T) {
	// Prices chosen so the raw 10% discount (2.002) cannot be split into
	// cents without rounding: each line's share rounds half-up to 1.00.
	store := newMockStore(
		newTestProduct(1, "A", "10.01", 10),
		newTestProduct(2, "B", "10.01", 10),
	)
	svc := NewService(newUsers(premiumUser(1, "bob")), store)

	o, err := svc.PlaceOrder(context.Background(), "bob", []ItemRequest{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, o.OrderTotal.Equal(sum), "order total %s != line sum %s", o.OrderTotal, sum)
	eq(t, "1.00", o.Items[0].DiscountApplied)
	eq(t, "18.02", o.OrderTotal)
}

func TestPlaceOrder_UnitPriceSnapshot(t *testing.T) {
	store := newMockStore(newTestProduct(1, "Widget", "12.34", 10))
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	o, err := svc.PlaceOrder(context.Background(), "alice", []ItemRequest{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)

	eq(t, "12.34", o.Items[0].UnitPrice)
	assert.Equal(t, 3, o.Items[0].Quantity)
	eq(t, "37.02", o.Items[0].TotalPrice)
}

// --- GetOrderByID ---

func placedOrder(store *mockStore, userID int64) *Order {
	o := &Order{ID: 42, UserID: userID, OrderTotal: decimal.RequireFromString("10.00")}
	store.orders[o.ID] = o
	return o
}

func TestGetOrderByID_NotFound(t *testing.T) {
	svc := NewService(newUsers(), newMockStore())

	_, err := svc.GetOrderByID(context.Background(), 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrderByID_NoIdentitySkipsOwnershipCheck(t *testing.T) {
	store := newMockStore()
	placedOrder(store, 1)
	svc := NewService(newUsers(), store)

	o, err := svc.GetOrderByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), o.ID)
}

func TestGetOrderByID_Owner(t *testing.T) {
	store := newMockStore()
	placedOrder(store, 1)
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		Username: "alice", Roles: []string{user.RoleUser},
	})
	_, err := svc.GetOrderByID(ctx, 42)
	require.NoError(t, err)
}

func TestGetOrderByID_NonOwnerDenied(t *testing.T) {
	store := newMockStore()
	placedOrder(store, 1)
	svc := NewService(newUsers(plainUser(1, "alice"), plainUser(2, "carol")), store)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		Username: "carol", Roles: []string{user.RoleUser},
	})
	_, err := svc.GetOrderByID(ctx, 42)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetOrderByID_AdminBypassesOwnership(t *testing.T) {
	store := newMockStore()
	placedOrder(store, 1)
	svc := NewService(newUsers(plainUser(1, "alice")), store)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		Username: "admin", Roles: []string{user.RoleAdmin},
	})
	_, err := svc.GetOrderByID(ctx, 42)
	require.NoError(t, err)
}

func TestListOrders(t *testing.T) {
	store := newMockStore()
	placedOrder(store, 1)
	svc := NewService(newUsers(), store)

	list, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
