package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/domain/pricing"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New(
		"order-1", "DH12345678001", "user-1",
		[]Item{{ProductID: "p1", Name: "Widget", Quantity: 2, Price: 100, TotalPrice: 200}},
		Address{FullName: "A B", City: "Hanoi"},
		nil,
		payment.MethodCOD,
		ShippingMethod{Name: "standard", Cost: 30},
		pricing.Breakdown{Subtotal: 200, Tax: 16, Shipping: 30, Total: 246},
		"", "",
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return o
}

func TestNewOrderSeedsTimeline(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, payment.StatusPending, o.Payment.Status)
	require.Len(t, o.Timeline, 1)
	assert.Equal(t, StatusPending, o.Timeline[0].Status)
	assert.Equal(t, o.ShippingAddress, o.BillingAddress)
}

func TestTransitionHappyPath(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now().UTC()

	for _, next := range []Status{StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered} {
		require.NoError(t, o.TransitionTo(next, "", Actor{ID: "admin-1", Admin: true}, now))
		assert.Equal(t, next, o.Status)
	}
	assert.Len(t, o.Timeline, 5)
}

func TestTransitionRejectsSkips(t *testing.T) {
	cases := []struct {
		from, to Status
	}{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusConfirmed, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusCancelled, StatusConfirmed},
		{StatusRefunded, StatusPending},
		{StatusDelivered, StatusShipped},
	}
	for _, tc := range cases {
		o := newTestOrder(t)
		o.Status = tc.from
		before := len(o.Timeline)

		err := o.TransitionTo(tc.to, "", Actor{}, time.Now().UTC())

		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, o.Status)
		assert.Len(t, o.Timeline, before, "failed transition must not touch the timeline")
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	o := newTestOrder(t)
	err := o.TransitionTo(Status("lost"), "", Actor{}, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelForcesPaymentRefunded(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now().UTC()

	require.NoError(t, o.TransitionTo(StatusCancelled, "changed my mind", Actor{ID: "user-1"}, now))

	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, payment.StatusRefunded, o.Payment.Status)
	require.NotNil(t, o.Cancellation)
	assert.Equal(t, "changed my mind", o.Cancellation.Reason)
	assert.Equal(t, "user-1", o.Cancellation.CancelledBy)
}

func TestDeliveredForcesPaymentPaid(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now().UTC()
	o.Status = StatusShipped

	require.NoError(t, o.TransitionTo(StatusDelivered, "", Actor{Admin: true}, now))

	assert.Equal(t, payment.StatusPaid, o.Payment.Status)
	require.NotNil(t, o.Payment.PaidAt)
}

func TestMarkPaidIdempotent(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now().UTC()

	changed, err := o.MarkPaid("tx-1", now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, payment.StatusPaid, o.Payment.Status)
	assert.Equal(t, "tx-1", o.Payment.TransactionID)
	entries := len(o.Timeline)

	changed, err = o.MarkPaid("tx-2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "tx-1", o.Payment.TransactionID, "duplicate confirmation must not overwrite")
	assert.Len(t, o.Timeline, entries, "duplicate confirmation must not append")
}

func TestMarkPaidRejectedForCancelled(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(StatusCancelled, "", Actor{}, time.Now().UTC()))

	_, err := o.MarkPaid("tx-1", time.Now().UTC())
	assert.ErrorIs(t, err, payment.ErrNotPayable)
}

func TestMarkPaymentFailedAfterPaid(t *testing.T) {
	o := newTestOrder(t)
	_, err := o.MarkPaid("tx-1", time.Now().UTC())
	require.NoError(t, err)

	err = o.MarkPaymentFailed(time.Now().UTC())
	assert.ErrorIs(t, err, payment.ErrAlreadyPaid)
	assert.Equal(t, payment.StatusPaid, o.Payment.Status)
}

func TestRecordRefund(t *testing.T) {
	o := newTestOrder(t)
	now := time.Now().UTC()

	err := o.RecordRefund(100, "damaged", Actor{ID: "admin-1", Admin: true}, now)
	assert.ErrorIs(t, err, ErrNotRefundable, "pending orders cannot be refunded")

	o.Status = StatusDelivered
	o.Payment.Status = payment.StatusPaid

	assert.Error(t, o.RecordRefund(0, "zero", Actor{Admin: true}, now))
	assert.Error(t, o.RecordRefund(o.Pricing.Total+1, "too much", Actor{Admin: true}, now))

	require.NoError(t, o.RecordRefund(o.Pricing.Total, "damaged", Actor{ID: "admin-1", Admin: true}, now))
	assert.Equal(t, StatusRefunded, o.Status)
	assert.Equal(t, payment.StatusRefunded, o.Payment.Status)
	require.NotNil(t, o.Refund)
	assert.Equal(t, o.Pricing.Total, o.Refund.Amount)
}

func TestCanBeCancelled(t *testing.T) {
	o := newTestOrder(t)
	assert.True(t, o.CanBeCancelled())
	o.Status = StatusConfirmed
	assert.True(t, o.CanBeCancelled())
	o.Status = StatusShipped
	assert.False(t, o.CanBeCancelled())
}

func TestActorCanActOn(t *testing.T) {
	assert.True(t, Actor{ID: "u1"}.CanActOn("u1"))
	assert.False(t, Actor{ID: "u1"}.CanActOn("u2"))
	assert.True(t, Actor{ID: "a1", Admin: true}.CanActOn("u2"))
	assert.False(t, Actor{}.CanActOn(""))
}

func TestCloneIsolation(t *testing.T) {
	o := newTestOrder(t)
	clone := o.Clone()

	clone.Items[0].Quantity = 99
	clone.Timeline[0].Note = "mutated"

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.NotEqual(t, "mutated", o.Timeline[0].Note)
}
