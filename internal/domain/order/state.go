package order

import (
	"fmt"
	"time"

	"github.com/greenmart/storefront/internal/domain/payment"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// transitions is the complete adjacency table. Anything not listed is
// illegal; there are no skips.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// KnownStatus reports whether s is a valid lifecycle state.
func KnownStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether from -> to is in the adjacency table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to the next status, appending exactly one
// timeline entry. An illegal transition fails and leaves the order
// unmodified.
//
// Two transitions couple the payment sub-record to the order status:
// cancellation forces the payment to refunded, and delivery forces it to
// paid, covering the cash-on-delivery flow where delivery confirms payment.
func (o *Order) TransitionTo(status Status, note string, actor Actor, now time.Time) error {
	if !KnownStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	if !CanTransition(o.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}

	switch status {
	case StatusCancelled:
		o.Payment.Status = payment.StatusRefunded
		o.Cancellation = &Cancellation{
			Reason:      note,
			CancelledAt: now,
			CancelledBy: actor.ID,
		}
	case StatusDelivered:
		o.Payment.Status = payment.StatusPaid
		if o.Payment.PaidAt == nil {
			paidAt := now
			o.Payment.PaidAt = &paidAt
		}
	}

	o.Status = status
	if note == "" {
		note = fmt.Sprintf("order status updated to %s", status)
	}
	o.appendTimeline(status, note, actor.ID, now)
	o.UpdatedAt = now
	return nil
}

// RecordRefund moves a delivered order to refunded and records the refund
// sub-record. The payment sub-record follows.
func (o *Order) RecordRefund(amount float64, reason string, actor Actor, now time.Time) error {
	if !o.CanBeRefunded() {
		return ErrNotRefundable
	}
	if amount <= 0 || amount > o.Pricing.Total {
		return fmt.Errorf("order: refund amount must be within (0, %.2f]", o.Pricing.Total)
	}
	if err := o.TransitionTo(StatusRefunded, reason, actor, now); err != nil {
		return err
	}
	o.Payment.Status = payment.StatusRefunded
	o.Refund = &Refund{
		Amount:     amount,
		Reason:     reason,
		RefundedAt: now,
		RefundedBy: actor.ID,
	}
	return nil
}
