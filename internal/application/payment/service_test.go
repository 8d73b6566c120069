package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/greenmart/storefront/internal/application/payment"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	dompayment "github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/domain/pricing"
	"github.com/greenmart/storefront/internal/infrastructure/memory"
)

type stubProvider struct{ refs int }

func (p *stubProvider) Name() string { return "testpay" }

func (p *stubProvider) CreateIntent(_ context.Context, _ string, _ float64, _ string) (string, error) {
	p.refs++
	return "pi_test_1", nil
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) SendPaymentConfirmation(_ context.Context, _ string, _ *domorder.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

func seedOrder(t *testing.T, orders *memory.OrderRepository, method dompayment.Method) *domorder.Order {
	t.Helper()
	o, err := domorder.New(
		"order-1", "DH00000001", "u1",
		[]domorder.Item{{ProductID: "p1", Name: "Widget", Quantity: 1, Price: 100, TotalPrice: 100}},
		domorder.Address{City: "Hanoi"},
		nil,
		method,
		domorder.ShippingMethod{Name: "standard", Cost: 30},
		pricing.Breakdown{Subtotal: 100, Tax: 8, Shipping: 30, Total: 138},
		"", "",
		time.Now().UTC(),
	)
	require.NoError(t, err)
	require.NoError(t, orders.Insert(context.Background(), o))
	return o
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	orders := memory.NewOrderRepository()
	notifier := &countingNotifier{}
	svc := apppayment.NewService(orders, &stubProvider{}, notifier, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	paid, err := svc.MarkPaid(context.Background(), o.ID, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, dompayment.StatusPaid, paid.Payment.Status)
	assert.Equal(t, "tx-1", paid.Payment.TransactionID)
	require.NotNil(t, paid.Payment.PaidAt)
	entries := len(paid.Timeline)
	assert.Equal(t, 1, notifier.calls)

	again, err := svc.MarkPaid(context.Background(), o.ID, "tx-2")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", again.Payment.TransactionID)
	assert.Len(t, again.Timeline, entries, "duplicate confirmation leaves the order untouched")
	assert.Equal(t, 1, notifier.calls, "no second confirmation notification")
}

func TestMarkPaidRejectsCancelledOrder(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, nil, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	require.NoError(t, o.TransitionTo(domorder.StatusCancelled, "", domorder.Actor{}, time.Now().UTC()))
	require.NoError(t, orders.Update(context.Background(), o))

	_, err := svc.MarkPaid(context.Background(), o.ID, "tx-1")
	assert.ErrorIs(t, err, dompayment.ErrNotPayable)
}

func TestMarkFailedInvalidOncePaid(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, nil, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	failed, err := svc.MarkFailed(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, dompayment.StatusFailed, failed.Payment.Status)

	_, err = svc.MarkPaid(context.Background(), o.ID, "tx-1")
	require.NoError(t, err, "a failed payment may be retried")

	_, err = svc.MarkFailed(context.Background(), o.ID)
	assert.ErrorIs(t, err, dompayment.ErrAlreadyPaid)
}

func TestConfirmBankTransfer(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, nil, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodBankTransfer)

	_, err := svc.ConfirmBankTransfer(context.Background(), o.ID, "", domorder.Actor{ID: "u1"})
	assert.ErrorIs(t, err, domorder.ErrForbidden)

	confirmed, err := svc.ConfirmBankTransfer(context.Background(), o.ID, "slip verified", domorder.Actor{ID: "staff", Admin: true})
	require.NoError(t, err)
	assert.Equal(t, dompayment.StatusPaid, confirmed.Payment.Status)
}

func TestConfirmBankTransferRejectsOtherMethods(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, nil, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCOD)

	_, err := svc.ConfirmBankTransfer(context.Background(), o.ID, "", domorder.Actor{Admin: true})
	assert.ErrorIs(t, err, dompayment.ErrNotPayable)
}

func TestCreateIntentStoresProviderRef(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, &stubProvider{}, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	_, err := svc.CreateIntent(context.Background(), o.ID, domorder.Actor{ID: "other"})
	assert.ErrorIs(t, err, domorder.ErrForbidden)

	result, err := svc.CreateIntent(context.Background(), o.ID, domorder.Actor{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", result.ProviderRef)
	assert.Equal(t, o.Pricing.Total, result.Amount)

	stored, err := orders.FindByProviderRef(context.Background(), "pi_test_1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)
	assert.Equal(t, "testpay", stored.Payment.Provider)
}

func TestHandleProviderEventSucceeded(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, &stubProvider{}, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	_, err := svc.CreateIntent(context.Background(), o.ID, domorder.Actor{ID: "u1"})
	require.NoError(t, err)

	err = svc.HandleProviderEvent(context.Background(), dompayment.ProviderEvent{
		ID:            "evt-1",
		Type:          dompayment.EventIntentSucceeded,
		IntentID:      "pi_test_1",
		TransactionID: "tx-99",
	})
	require.NoError(t, err)

	stored, _ := orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, dompayment.StatusPaid, stored.Payment.Status)
	assert.Equal(t, "tx-99", stored.Payment.TransactionID)
}

func TestHandleProviderEventFailed(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, &stubProvider{}, nil, nil)
	o := seedOrder(t, orders, dompayment.MethodCreditCard)

	_, err := svc.CreateIntent(context.Background(), o.ID, domorder.Actor{ID: "u1"})
	require.NoError(t, err)

	err = svc.HandleProviderEvent(context.Background(), dompayment.ProviderEvent{
		ID:       "evt-1",
		Type:     dompayment.EventIntentFailed,
		IntentID: "pi_test_1",
	})
	require.NoError(t, err)

	stored, _ := orders.FindByID(context.Background(), o.ID)
	assert.Equal(t, dompayment.StatusFailed, stored.Payment.Status)
}

func TestHandleProviderEventIgnoresUnknownTypes(t *testing.T) {
	orders := memory.NewOrderRepository()
	svc := apppayment.NewService(orders, nil, nil, nil)

	err := svc.HandleProviderEvent(context.Background(), dompayment.ProviderEvent{
		ID:   "evt-1",
		Type: "charge.dispute.created",
	})
	assert.NoError(t, err, "unknown event types are ignored, not errors")
}
