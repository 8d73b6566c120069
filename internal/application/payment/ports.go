package payment

import (
	"context"

	domain "github.com/greenmart/storefront/internal/domain/order"
)

// Provider creates payment intents with the external processor. The core
// only keeps the returned correlation reference; confirmation arrives later
// through the webhook.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (ref string, err error)
}

// Notifier delivers the payment confirmation, best-effort.
type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, userID string, o *domain.Order) error
}
