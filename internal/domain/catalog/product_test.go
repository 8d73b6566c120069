package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func saleProduct(original, sale float64, start, end *time.Time) *Product {
	return &Product{
		ID:        "p1",
		Name:      "Widget",
		Price:     Price{Original: original, Sale: sale, Currency: "VND"},
		Inventory: Inventory{Quantity: 10, InStock: true},
		Active:    true,
		OnSale:    true,
		SaleStart: start,
		SaleEnd:   end,
	}
}

func TestEffectivePriceInsideSaleWindow(t *testing.T) {
	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	p := saleProduct(100, 80, &start, &end)

	assert.Equal(t, 80.0, p.EffectivePrice(now))
}

func TestEffectivePriceOutsideSaleWindow(t *testing.T) {
	now := time.Now().UTC()

	start := now.Add(time.Hour)
	end := now.Add(2 * time.Hour)
	before := saleProduct(100, 80, &start, &end)
	assert.Equal(t, 100.0, before.EffectivePrice(now), "sale not started yet")

	start = now.Add(-2 * time.Hour)
	end = now.Add(-time.Hour)
	after := saleProduct(100, 80, &start, &end)
	assert.Equal(t, 100.0, after.EffectivePrice(now), "sale already over")
}

func TestEffectivePriceWithoutWindowBounds(t *testing.T) {
	now := time.Now().UTC()
	p := saleProduct(100, 80, nil, nil)
	assert.Equal(t, 80.0, p.EffectivePrice(now), "open-ended sale applies")

	p.OnSale = false
	assert.Equal(t, 100.0, p.EffectivePrice(now))

	p.OnSale = true
	p.Price.Sale = 0
	assert.Equal(t, 100.0, p.EffectivePrice(now), "zero sale price means no sale price set")
}

func TestInStock(t *testing.T) {
	p := saleProduct(100, 0, nil, nil)
	assert.True(t, p.InStock())

	p.Inventory.Quantity = 0
	assert.False(t, p.InStock())

	p.Inventory.Quantity = 5
	p.Inventory.InStock = false
	assert.False(t, p.InStock(), "flag can pull a product from sale without zeroing stock")
}

func TestRecomputeStockFlag(t *testing.T) {
	p := saleProduct(100, 0, nil, nil)
	p.Inventory.Quantity = 0
	p.RecomputeStockFlag()
	assert.False(t, p.Inventory.InStock)

	p.Inventory.Quantity = 3
	p.RecomputeStockFlag()
	assert.True(t, p.Inventory.InStock)
}

func TestValidate(t *testing.T) {
	p := saleProduct(100, 120, nil, nil)
	assert.ErrorIs(t, p.Validate(), ErrInvalidPrice)

	p.Price.Sale = 80
	p.Inventory.Quantity = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidStock)

	p.Inventory.Quantity = 0
	assert.NoError(t, p.Validate())
}

func TestRecomputeRatings(t *testing.T) {
	assert.Equal(t, Ratings{}, RecomputeRatings(nil))
	assert.Equal(t, Ratings{Average: 5, Count: 1}, RecomputeRatings([]int{5}))
	assert.Equal(t, Ratings{Average: 3.7, Count: 3}, RecomputeRatings([]int{5, 4, 2}))
	assert.Equal(t, Ratings{Average: 2.5, Count: 2}, RecomputeRatings([]int{2, 3}))
}
