package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. Price is in minor units (satang).
type Product struct {
	ID        string
	Name      string
	Price     int64
	ImageURL  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines catalog persistence. The pricing engine only consumes
// FindActiveByIDs; the remaining operations serve the admin surface.
type Repository interface {
	// ListActive returns all purchasable products ordered by name.
	ListActive(ctx context.Context) ([]Product, error)
	// GetByID returns a single product regardless of its active flag.
	GetByID(ctx context.Context, id string) (*Product, error)
	// FindActiveByIDs returns only currently active products among the
	// requested identifiers. Absence of an id in the result means the
	// product is unavailable.
	FindActiveByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	// Deactivate soft-deletes a product. Sold products are never removed
	// from the table.
	Deactivate(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
