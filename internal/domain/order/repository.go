package order

import (
	"context"
	"time"
)

// ListFilter narrows order listings for the back office.
type ListFilter struct {
	UserID        string
	Status        Status
	PaymentStatus string
	From, To      *time.Time
	Limit         int64
	Offset        int64
}

// Repository persists orders. Insert must enforce order number uniqueness
// and report a violation as ErrConflict so the caller can regenerate and
// retry. Orders are never deleted; cancellation is a status.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	// UpdateFrom writes o only while the stored order still carries the
	// prior status, reporting ErrConflict when a concurrent writer moved
	// it first. Status transitions go through it so their side effects
	// (stock restoration, refund records) run at most once.
	UpdateFrom(ctx context.Context, o *Order, prior Status) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindByProviderRef(ctx context.Context, ref string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
}
