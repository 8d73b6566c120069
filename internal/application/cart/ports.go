package cart

import (
	"context"

	domain "github.com/greenmart/storefront/internal/domain/cart"
)

// Cache is an optional read-through layer in front of the cart store. Get
// reports found=false on a miss; mutations invalidate.
type Cache interface {
	Get(ctx context.Context, userID string) (c *domain.Cart, found bool, err error)
	Set(ctx context.Context, userID string, c *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
