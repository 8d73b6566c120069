package payment

import (
	"context"
	"fmt"
	"time"

	domorder "github.com/greenmart/storefront/internal/domain/order"
	domain "github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

const notifyTimeout = 2 * time.Second

// Service reconciles asynchronous provider confirmations with orders. The
// payment status moves independently of the order status but is constrained
// by it: cancelled and refunded orders are no longer payable.
type Service struct {
	orders   domorder.Repository
	provider Provider
	notifier Notifier

	log         observability.Logger
	notifyFails observability.Counter
}

func NewService(orders domorder.Repository, provider Provider, notifier Notifier, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		orders:      orders,
		provider:    provider,
		notifier:    notifier,
		log:         tel.Logger().With(observability.F("component", "payment_service")),
		notifyFails: tel.Metrics().Counter(observability.MNotifyFailures),
	}
}

// MarkPaid confirms a payment. It is idempotent: confirming an already-paid
// order short-circuits successfully with no state change, because provider
// webhooks may deliver duplicate notifications.
func (s *Service) MarkPaid(ctx context.Context, orderID, transactionID string) (*domorder.Order, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	changed, err := o.MarkPaid(transactionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.Info("payment_already_confirmed")
		return o, nil
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("payment: update order: %w", err)
	}

	s.sendConfirmation(ctx, logger, o)
	logger.Info("payment_confirmed", observability.F("transaction_id", transactionID))
	return o, nil
}

// MarkFailed records a failed payment attempt; invalid once paid.
func (s *Service) MarkFailed(ctx context.Context, orderID string) (*domorder.Order, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkPaymentFailed(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("payment: update order: %w", err)
	}

	logger.Info("payment_failed")
	return o, nil
}

// ConfirmBankTransfer is the manual, admin-only stand-in for a provider
// webhook on bank-transfer orders. Same idempotency contract as MarkPaid.
func (s *Service) ConfirmBankTransfer(ctx context.Context, orderID, note string, actor domorder.Actor) (*domorder.Order, error) {
	if !actor.Admin {
		return nil, domorder.ErrForbidden
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Payment.Method != domain.MethodBankTransfer {
		return nil, fmt.Errorf("%w: order is not a bank transfer", domain.ErrNotPayable)
	}

	logctx.FromOr(ctx, s.log).Info("bank_transfer_confirmed",
		observability.F("order_id", orderID),
		observability.F("actor_id", actor.ID),
		observability.F("note", note),
	)
	return s.MarkPaid(ctx, orderID, "")
}

// IntentResult is what the client needs to complete a provider checkout.
type IntentResult struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	ProviderRef string  `json:"provider_ref"`
	Amount      float64 `json:"amount"`
}

// CreateIntent registers the order with the external provider and stores the
// correlation reference used by later webhook lookups.
func (s *Service) CreateIntent(ctx context.Context, orderID string, actor domorder.Actor) (*IntentResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("payment: no provider configured")
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(o.UserID) {
		return nil, domorder.ErrForbidden
	}
	if o.Payment.Status == domain.StatusPaid {
		return nil, domain.ErrAlreadyPaid
	}
	if o.Status == domorder.StatusCancelled {
		return nil, domain.ErrNotPayable
	}

	currency := "VND"
	ref, err := s.provider.CreateIntent(ctx, o.ID, o.Pricing.Total, currency)
	if err != nil {
		return nil, fmt.Errorf("payment: create intent: %w", err)
	}
	if err := o.AttachIntent(s.provider.Name(), ref, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("payment: update order: %w", err)
	}

	return &IntentResult{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		ProviderRef: ref,
		Amount:      o.Pricing.Total,
	}, nil
}

// HandleProviderEvent reconciles one verified webhook event. Unknown event
// types are logged and ignored; they are not errors, so the provider does
// not keep redelivering them.
func (s *Service) HandleProviderEvent(ctx context.Context, evt domain.ProviderEvent) error {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("event_id", evt.ID),
		observability.F("event_type", evt.Type),
	)

	switch evt.Type {
	case domain.EventIntentSucceeded, domain.EventIntentFailed:
	default:
		logger.Info("provider_event_ignored")
		return nil
	}

	o, err := s.orders.FindByProviderRef(ctx, evt.IntentID)
	if err != nil {
		return fmt.Errorf("payment: lookup by provider ref %q: %w", evt.IntentID, err)
	}

	switch evt.Type {
	case domain.EventIntentSucceeded:
		_, err = s.MarkPaid(ctx, o.ID, evt.TransactionID)
	case domain.EventIntentFailed:
		_, err = s.MarkFailed(ctx, o.ID)
	}
	return err
}

func (s *Service) sendConfirmation(ctx context.Context, logger observability.Logger, o *domorder.Order) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.SendPaymentConfirmation(nctx, o.UserID, o); err != nil {
		s.notifyFails.Add(1, observability.L("kind", "payment_confirmation"))
		logger.Warn("notification_failed",
			observability.F("kind", "payment_confirmation"),
			observability.F("error", err.Error()),
		)
	}
}
