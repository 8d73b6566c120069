package order

import (
	"context"
	"errors"

	domain "github.com/greenmart/storefront/internal/domain/order"
	"github.com/greenmart/storefront/internal/domain/pricing"
)

var ErrPromoNotFound = errors.New("order: unknown promo code")

// IDGenerator mints order document identifiers.
type IDGenerator interface {
	NewID() string
}

// NumberGenerator mints human-readable order numbers. Numbers are unique
// with overwhelming probability only, so the workflow re-generates and
// retries when the store reports a collision.
type NumberGenerator interface {
	Next() string
}

// PromoResolver turns a promo code into a resolvable discount. A code that
// does not exist fails with ErrPromoNotFound.
type PromoResolver interface {
	Resolve(ctx context.Context, code string) (pricing.Promo, error)
}

// CartClearer empties the buyer's cart after a successful checkout.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Notifier delivers buyer-facing notifications. All calls are best-effort:
// failures are logged by the caller and never fail the order operation.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, userID string, o *domain.Order) error
	SendStatusUpdate(ctx context.Context, userID string, o *domain.Order) error
}
