// Package product holds the catalog entity, its persistence contract, and the
// filtered search types.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or has been
// soft-deleted.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Deleted marks a
// soft-deleted row: it stays in the table for audit but is excluded from reads
// and from ordering.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Available   bool            `json:"available"`
	Deleted     bool            `json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filter narrows a catalog search. Nil fields are ignored.
type Filter struct {
	Name      string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Available *bool
}

// Page is a paginated slice of the catalog.
type Page struct {
	Content       []Product `json:"content"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
}

// Update carries the mutable fields of a product. ID and the deleted flag are
// never touched by an update.
type Update struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

// Repository defines persistence operations for the product catalog. All read
// operations exclude soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, upd Update) (*Product, error)
	// SoftDelete flags the row as deleted. Deleting an absent or already
	// deleted product is a no-op.
	SoftDelete(ctx context.Context, id int64) error
	Search(ctx context.Context, f Filter, page, size int) (*Page, error)
}
