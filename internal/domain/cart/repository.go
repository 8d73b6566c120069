package cart

import "context"

// Repository persists carts keyed by user. Carts are user-scoped so
// load-then-upsert is safe; the catalog's stock counters remain the only
// cross-request synchronization point.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Upsert(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, userID string) error
}
