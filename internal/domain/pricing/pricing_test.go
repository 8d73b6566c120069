package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = Rates{TaxRate: 0.08, ShippingFlatFee: 30000, FreeShippingThreshold: 500000}

func TestComputeFlatShipping(t *testing.T) {
	b := Compute(200000, 0, testRates)

	assert.Equal(t, 200000.0, b.Subtotal)
	assert.InDelta(t, 16000.0, b.Tax, 1e-6)
	assert.Equal(t, 30000.0, b.Shipping)
	assert.InDelta(t, 246000.0, b.Total, 1e-6)
}

func TestComputeFreeShippingOverThreshold(t *testing.T) {
	b := Compute(600000, 0, testRates)
	assert.Equal(t, 0.0, b.Shipping)

	atThreshold := Compute(500000, 0, testRates)
	assert.Equal(t, 30000.0, atThreshold.Shipping, "threshold is exclusive")
}

func TestComputeCapsDiscount(t *testing.T) {
	b := Compute(100, 500, testRates)
	assert.Equal(t, 100.0, b.Discount)
	assert.GreaterOrEqual(t, b.Total, 0.0)
}

func TestComputeTotalIdentity(t *testing.T) {
	b := Compute(350000, 20000, testRates)
	assert.InDelta(t, b.Subtotal+b.Tax+b.Shipping-b.Discount, b.Total, 1e-9)
}

func TestPromoDiscountFor(t *testing.T) {
	percent := Promo{Code: "SAVE10", Percent: 0.1, MinSubtotal: 100}

	_, err := percent.DiscountFor(50)
	assert.ErrorIs(t, err, ErrInvalidPromo)

	d, err := percent.DiscountFor(200)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, d, 1e-9)

	amount := Promo{Code: "TAKE50", Amount: 50}
	d, err = amount.DiscountFor(40)
	require.NoError(t, err)
	assert.Equal(t, 40.0, d, "fixed discount is capped at the subtotal")
}
