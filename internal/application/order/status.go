package order

import (
	"context"
	"fmt"
	"time"

	"github.com/greenmart/storefront/internal/domain/catalog"
	domain "github.com/greenmart/storefront/internal/domain/order"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

// UpdateStatus moves an order along the state machine. An illegal transition
// fails without touching the order. Moving to cancelled restores stock for
// every item exactly once and forces the payment to refunded; moving to
// delivered forces it to paid.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.Status, note string, actor domain.Actor) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	prior := o.Status
	if err := o.TransitionTo(status, note, actor, time.Now().UTC()); err != nil {
		return nil, err
	}
	// Compare-and-swap on the prior status: when two writers race the same
	// transition only one lands, so the cancellation side effects below
	// cannot double-apply.
	if err := s.orders.UpdateFrom(ctx, o, prior); err != nil {
		return nil, fmt.Errorf("order: update: %w", err)
	}

	if status == domain.StatusCancelled {
		s.restoreStock(ctx, logger, o)
	}

	s.notify(ctx, logger, "status_update", func(nctx context.Context) error {
		return s.notifier.SendStatusUpdate(nctx, o.UserID, o)
	})

	logger.Info("order_status_updated",
		observability.F("status", string(status)),
		observability.F("actor_id", actor.ID),
	)
	return o, nil
}

// Cancel is the permission-gated cancellation: only the owning user or an
// admin, and only while the order is still pending or confirmed.
func (s *Service) Cancel(ctx context.Context, orderID, reason string, actor domain.Actor) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(o.UserID) {
		return nil, domain.ErrForbidden
	}
	if !o.CanBeCancelled() {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrNotCancellable, o.Status)
	}
	if reason == "" {
		reason = "order cancelled by customer"
	}
	return s.UpdateStatus(ctx, orderID, domain.StatusCancelled, reason, actor)
}

// Refund records a refund on a delivered, paid order; admin only.
func (s *Service) Refund(ctx context.Context, orderID string, amount float64, reason string, actor domain.Actor) (*domain.Order, error) {
	if !actor.Admin {
		return nil, domain.ErrForbidden
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	prior := o.Status
	if err := o.RecordRefund(amount, reason, actor, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateFrom(ctx, o, prior); err != nil {
		return nil, fmt.Errorf("order: update: %w", err)
	}

	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))
	s.notify(ctx, logger, "status_update", func(nctx context.Context) error {
		return s.notifier.SendStatusUpdate(nctx, o.UserID, o)
	})
	logger.Info("order_refunded", observability.F("amount", amount))
	return o, nil
}

// restoreStock is the inverse of reservation, run once on cancellation. The
// caller's compare-and-swap guarantees only one cancel lands per order, so
// restoration cannot double-apply. Failures are reconciliation gaps
// surfaced to operators.
func (s *Service) restoreStock(ctx context.Context, logger observability.Logger, o *domain.Order) {
	for _, item := range o.Items {
		if _, err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity, catalog.StockIncrease); err != nil {
			logger.Error("stock_reconcile_required",
				observability.F("order_id", o.ID),
				observability.F("product_id", item.ProductID),
				observability.F("quantity", item.Quantity),
				observability.F("error", err.Error()),
			)
		}
	}
}
