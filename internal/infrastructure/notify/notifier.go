package notify

import (
	"context"

	domain "github.com/greenmart/storefront/internal/domain/order"
	"github.com/greenmart/storefront/internal/observability"
)

// LogNotifier is the default notification channel: it writes structured log
// events where a mail or push integration would send messages. It satisfies
// the order and payment notifier ports.
type LogNotifier struct {
	log observability.Logger
}

func NewLogNotifier(tel observability.Observability) *LogNotifier {
	if tel == nil {
		tel = observability.Nop()
	}
	return &LogNotifier{
		log: tel.Logger().With(observability.F("component", "notifier")),
	}
}

func (n *LogNotifier) SendOrderConfirmation(ctx context.Context, userID string, o *domain.Order) error {
	_ = ctx
	n.log.Info("notify_order_confirmation",
		observability.F("user_id", userID),
		observability.F("order_number", o.Number),
		observability.F("total", o.Pricing.Total),
	)
	return nil
}

func (n *LogNotifier) SendStatusUpdate(ctx context.Context, userID string, o *domain.Order) error {
	_ = ctx
	n.log.Info("notify_status_update",
		observability.F("user_id", userID),
		observability.F("order_number", o.Number),
		observability.F("status", string(o.Status)),
	)
	return nil
}

func (n *LogNotifier) SendPaymentConfirmation(ctx context.Context, userID string, o *domain.Order) error {
	_ = ctx
	n.log.Info("notify_payment_confirmation",
		observability.F("user_id", userID),
		observability.F("order_number", o.Number),
		observability.F("payment_status", string(o.Payment.Status)),
	)
	return nil
}
