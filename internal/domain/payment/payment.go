package payment

import "errors"

var (
	ErrAlreadyPaid      = errors.New("payment: order already paid")
	ErrNotPayable       = errors.New("payment: order cannot be paid in its current state")
	ErrInvalidSignature = errors.New("payment: webhook signature verification failed")
	ErrUnknownEvent     = errors.New("payment: unhandled provider event type")
)

// Status is the payment sub-state of an order, tracked independently of the
// order status but constrained by it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Method identifies how the buyer pays.
type Method string

const (
	MethodCOD          Method = "cod"
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodEWallet      Method = "e_wallet"
)

// KnownMethod reports whether the method is one the storefront accepts.
func KnownMethod(m Method) bool {
	switch m {
	case MethodCOD, MethodBankTransfer, MethodCreditCard, MethodEWallet:
		return true
	}
	return false
}

// Provider event types the reconciliation layer understands. Anything else
// is logged and ignored.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// ProviderEvent is a verified, parsed webhook notification. IntentID is the
// correlation reference the provider was given at intent creation.
type ProviderEvent struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	IntentID      string `json:"intent_id"`
	TransactionID string `json:"transaction_id"`
}
