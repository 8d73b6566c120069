package order

import (
	"errors"
	"time"

	"github.com/greenmart/storefront/internal/domain/catalog"
	"github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/domain/pricing"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrConflict          = errors.New("order: conflicting concurrent write")
	ErrInvalidQuantity   = errors.New("order: quantity must be at least 1")
	ErrEmptyOrder        = errors.New("order: must contain at least one item")
	ErrPriceChanged      = errors.New("order: product price has changed")
	ErrNotCancellable    = errors.New("order: can only be cancelled while pending or confirmed")
	ErrNotRefundable     = errors.New("order: only delivered and paid orders can be refunded")
	ErrForbidden         = errors.New("order: operation not permitted for this user")
	ErrInvalidTransition = errors.New("order: invalid status transition")
)

// Actor is the identity performing a mutation, supplied by the caller layer
// which has already authenticated it.
type Actor struct {
	ID    string
	Admin bool
}

// CanActOn reports whether the actor may mutate an order owned by userID.
func (a Actor) CanActOn(userID string) bool {
	return a.Admin || (a.ID != "" && a.ID == userID)
}

// Item is an immutable snapshot of one ordered product. Price and name are
// captured at order time and never track later product changes.
type Item struct {
	ProductID      string                  `bson:"product_id" json:"product_id"`
	Name           string                  `bson:"name" json:"name"`
	Quantity       int                     `bson:"quantity" json:"quantity"`
	Price          float64                 `bson:"price" json:"price"`
	TotalPrice     float64                 `bson:"total_price" json:"total_price"`
	Specifications []catalog.Specification `bson:"specifications,omitempty" json:"specifications,omitempty"`
}

type Address struct {
	FullName string `bson:"full_name" json:"full_name"`
	Phone    string `bson:"phone" json:"phone"`
	Street   string `bson:"street" json:"street"`
	Ward     string `bson:"ward,omitempty" json:"ward,omitempty"`
	District string `bson:"district" json:"district"`
	City     string `bson:"city" json:"city"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PaymentRecord is the payment sub-record of an order.
type PaymentRecord struct {
	Method        payment.Method `bson:"method" json:"method"`
	Provider      string         `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderRef   string         `bson:"provider_ref,omitempty" json:"provider_ref,omitempty"`
	TransactionID string         `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	Status        payment.Status `bson:"status" json:"status"`
	PaidAt        *time.Time     `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

type ShippingMethod struct {
	Name           string  `bson:"name" json:"name"`
	Cost           float64 `bson:"cost" json:"cost"`
	EstimatedDays  int     `bson:"estimated_days,omitempty" json:"estimated_days,omitempty"`
	TrackingNumber string  `bson:"tracking_number,omitempty" json:"tracking_number,omitempty"`
}

// TimelineEntry is one append-only audit record of a status transition.
// Entries are never edited after the fact.
type TimelineEntry struct {
	Status    Status    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	ActorID   string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
}

type Cancellation struct {
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CancelledAt time.Time `bson:"cancelled_at" json:"cancelled_at"`
	CancelledBy string    `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
}

type Refund struct {
	Amount     float64   `bson:"amount" json:"amount"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundedAt time.Time `bson:"refunded_at" json:"refunded_at"`
	RefundedBy string    `bson:"refunded_by,omitempty" json:"refunded_by,omitempty"`
}

type Order struct {
	ID              string            `bson:"_id" json:"id"`
	Number          string            `bson:"number" json:"number"`
	UserID          string            `bson:"user_id" json:"user_id"`
	Items           []Item            `bson:"items" json:"items"`
	ShippingAddress Address           `bson:"shipping_address" json:"shipping_address"`
	BillingAddress  Address           `bson:"billing_address" json:"billing_address"`
	Payment         PaymentRecord     `bson:"payment" json:"payment"`
	Status          Status            `bson:"status" json:"status"`
	Shipping        ShippingMethod    `bson:"shipping" json:"shipping"`
	Pricing         pricing.Breakdown `bson:"pricing" json:"pricing"`
	PromoCode       string            `bson:"promo_code,omitempty" json:"promo_code,omitempty"`
	Timeline        []TimelineEntry   `bson:"timeline" json:"timeline"`
	Cancellation    *Cancellation     `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Refund          *Refund           `bson:"refund,omitempty" json:"refund,omitempty"`
	Note            string            `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
}

// New builds a pending order from already-validated item snapshots. The
// timeline is seeded with a single pending entry.
func New(id, number, userID string, items []Item, shipping Address, billing *Address, method payment.Method, shippingMethod ShippingMethod, breakdown pricing.Breakdown, promoCode, note string, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	bill := shipping
	if billing != nil {
		bill = *billing
	}

	return &Order{
		ID:              id,
		Number:          number,
		UserID:          userID,
		Items:           items,
		ShippingAddress: shipping,
		BillingAddress:  bill,
		Payment: PaymentRecord{
			Method: method,
			Status: payment.StatusPending,
		},
		Status:    StatusPending,
		Shipping:  shippingMethod,
		Pricing:   breakdown,
		PromoCode: promoCode,
		Timeline: []TimelineEntry{{
			Status:    StatusPending,
			Timestamp: now,
			Note:      "order created",
		}},
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ItemTotal recomputes the order value from the frozen item snapshots. It
// must always equal Pricing.Subtotal.
func (o *Order) ItemTotal() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.TotalPrice
	}
	return total
}

// CanBeCancelled reports whether a cancellation is still legal.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// CanBeRefunded reports whether a refund is legal: delivered and paid.
func (o *Order) CanBeRefunded() bool {
	return o.Status == StatusDelivered && o.Payment.Status == payment.StatusPaid
}

// MarkPaid records a successful payment. It is idempotent: a second
// confirmation reports changed=false and leaves the order untouched, because
// provider webhooks may deliver duplicates.
func (o *Order) MarkPaid(transactionID string, now time.Time) (changed bool, err error) {
	if o.Payment.Status == payment.StatusPaid {
		return false, nil
	}
	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		return false, payment.ErrNotPayable
	}

	o.Payment.Status = payment.StatusPaid
	if transactionID != "" {
		o.Payment.TransactionID = transactionID
	}
	paidAt := now
	o.Payment.PaidAt = &paidAt
	o.appendTimeline(o.Status, "payment confirmed", "", now)
	o.UpdatedAt = now
	return true, nil
}

// MarkPaymentFailed records a failed payment attempt. Invalid once paid.
func (o *Order) MarkPaymentFailed(now time.Time) error {
	if o.Payment.Status == payment.StatusPaid {
		return payment.ErrAlreadyPaid
	}
	o.Payment.Status = payment.StatusFailed
	o.appendTimeline(o.Status, "payment failed", "", now)
	o.UpdatedAt = now
	return nil
}

// AttachIntent stores the provider correlation reference.
func (o *Order) AttachIntent(provider, ref string, now time.Time) error {
	if o.Payment.Status == payment.StatusPaid {
		return payment.ErrAlreadyPaid
	}
	if o.Status == StatusCancelled || o.Status == StatusRefunded {
		return payment.ErrNotPayable
	}
	o.Payment.Provider = provider
	o.Payment.ProviderRef = ref
	o.UpdatedAt = now
	return nil
}

func (o *Order) appendTimeline(status Status, note, actorID string, now time.Time) {
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    status,
		Timestamp: now,
		Note:      note,
		ActorID:   actorID,
	})
}

// Clone returns a deep copy so repositories can hand out isolated values.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	clone.Timeline = append([]TimelineEntry(nil), o.Timeline...)
	if o.Payment.PaidAt != nil {
		paidAt := *o.Payment.PaidAt
		clone.Payment.PaidAt = &paidAt
	}
	if o.Cancellation != nil {
		c := *o.Cancellation
		clone.Cancellation = &c
	}
	if o.Refund != nil {
		r := *o.Refund
		clone.Refund = &r
	}
	return &clone
}
