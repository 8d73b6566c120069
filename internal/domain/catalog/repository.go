package catalog

import "context"

// StockMode selects how AdjustStock interprets its delta.
type StockMode string

const (
	// StockDecrease subtracts delta, clamping at zero.
	StockDecrease StockMode = "decrease"
	// StockIncrease adds delta.
	StockIncrease StockMode = "increase"
	// StockSet replaces the quantity with delta.
	StockSet StockMode = "set"
)

// ListFilter narrows product listings. Zero values mean "no constraint".
type ListFilter struct {
	Search     string
	CategoryID string
	ActiveOnly bool
	InStock    bool
	Limit      int64
	Offset     int64
}

// ProductRepository is the authoritative stock and pricing store. Stock
// mutations must be single atomic document updates that re-derive the
// denormalized in-stock flag; they are never read-modify-write at this layer.
type ProductRepository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// ReserveStock decrements quantity by qty only when at least qty units
	// are available, failing with ErrInsufficientStock otherwise. The
	// purchases counter advances with the reservation.
	ReserveStock(ctx context.Context, productID string, qty int) error

	// AdjustStock applies an unconditional adjustment: decrease clamps at
	// zero, set rejects negative values with ErrInvalidStock. It returns the
	// resulting quantity.
	AdjustStock(ctx context.Context, productID string, delta int, mode StockMode) (int, error)

	// UpdateRatings persists a freshly recomputed ratings summary.
	UpdateRatings(ctx context.Context, productID string, ratings Ratings) error
}

type CategoryRepository interface {
	Insert(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}
