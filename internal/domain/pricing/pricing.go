package pricing

import "errors"

var ErrInvalidPromo = errors.New("pricing: promo code is not applicable")

// Rates are the deployment-configured pricing constants shared by the cart
// and the order workflow, so both always apply the same formula.
type Rates struct {
	TaxRate               float64
	ShippingFlatFee       float64
	FreeShippingThreshold float64
}

// Breakdown is the frozen pricing of a cart or an order.
// Total = Subtotal + Tax + Shipping - Discount, always.
type Breakdown struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Tax      float64 `bson:"tax" json:"tax"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Discount float64 `bson:"discount" json:"discount"`
	Total    float64 `bson:"total" json:"total"`
}

// Compute derives the full breakdown from a subtotal and an already-resolved
// discount. Shipping is waived above the free-shipping threshold. The discount
// is capped at the subtotal so the total can never go negative.
func Compute(subtotal, discount float64, r Rates) Breakdown {
	if subtotal < 0 {
		subtotal = 0
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	tax := subtotal * r.TaxRate
	shipping := r.ShippingFlatFee
	if subtotal > r.FreeShippingThreshold {
		shipping = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal + tax + shipping - discount,
	}
}

// Promo is a resolvable discount. Percent promos take a share of the
// subtotal, amount promos a fixed cut; MinSubtotal gates both.
type Promo struct {
	Code        string  `bson:"code" json:"code"`
	Percent     float64 `bson:"percent" json:"percent"`
	Amount      float64 `bson:"amount" json:"amount"`
	MinSubtotal float64 `bson:"min_subtotal" json:"min_subtotal"`
}

// DiscountFor resolves the promo against a subtotal. It fails when the
// subtotal does not meet the promo's minimum.
func (p Promo) DiscountFor(subtotal float64) (float64, error) {
	if subtotal < p.MinSubtotal {
		return 0, ErrInvalidPromo
	}
	discount := p.Amount
	if p.Percent > 0 {
		discount += subtotal * p.Percent
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, nil
}
