package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcart "github.com/greenmart/storefront/internal/application/cart"
	domcart "github.com/greenmart/storefront/internal/domain/cart"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	"github.com/greenmart/storefront/internal/domain/pricing"
	"github.com/greenmart/storefront/internal/infrastructure/memory"
)

var testRates = pricing.Rates{TaxRate: 0.08, ShippingFlatFee: 30, FreeShippingThreshold: 500}

func newCartFixture(t *testing.T) (*appcart.Service, *memory.ProductRepository) {
	t.Helper()
	products := memory.NewProductRepository()
	svc := appcart.NewService(memory.NewCartRepository(), products, nil, testRates, nil)
	return svc, products
}

func seedProduct(t *testing.T, repo *memory.ProductRepository, id string, price float64, qty int) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &domcatalog.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     domcatalog.Price{Original: price, Currency: "VND"},
		Inventory: domcatalog.Inventory{Quantity: qty, InStock: qty > 0},
		Active:    true,
	}))
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "p1", 100, 10)

	v, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)
	require.Len(t, v.Cart.Items, 1)
	assert.Equal(t, 100.0, v.Cart.Items[0].Price)
	assert.Equal(t, 2, v.ItemCount)

	// Later price changes must not affect the stored snapshot.
	p, _ := products.FindByID(context.Background(), "p1")
	p.Price.Original = 150
	require.NoError(t, products.Update(context.Background(), p))

	v, err = svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v.Cart.Items[0].Price)
}

func TestAddItemSnapshotsSalePrice(t *testing.T) {
	svc, products := newCartFixture(t)
	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	require.NoError(t, products.Insert(context.Background(), &domcatalog.Product{
		ID:        "p1",
		Name:      "Widget",
		Price:     domcatalog.Price{Original: 100, Sale: 80, Currency: "VND"},
		Inventory: domcatalog.Inventory{Quantity: 10, InStock: true},
		Active:    true,
		OnSale:    true,
		SaleStart: &start,
		SaleEnd:   &end,
	}))

	v, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 80.0, v.Cart.Items[0].Price, "active sale price is the effective price")
}

func TestAddItemMergeRecheckedAgainstStock(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "p1", 100, 5)

	_, err := svc.AddItem(context.Background(), "u1", "p1", 3)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), "u1", "p1", 3)
	assert.ErrorIs(t, err, domcatalog.ErrInsufficientStock, "merged quantity exceeds stock")

	v, err := svc.AddItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Cart.Items[0].Quantity)
}

func TestAddItemRejectsInactiveAndOutOfStock(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "inactive", 100, 5)
	seedProduct(t, products, "empty", 100, 0)

	p, _ := products.FindByID(context.Background(), "inactive")
	p.Active = false
	require.NoError(t, products.Update(context.Background(), p))

	_, err := svc.AddItem(context.Background(), "u1", "inactive", 1)
	assert.ErrorIs(t, err, domcatalog.ErrInactive)

	_, err = svc.AddItem(context.Background(), "u1", "empty", 1)
	assert.ErrorIs(t, err, domcatalog.ErrInsufficientStock)

	_, err = svc.AddItem(context.Background(), "u1", "missing", 1)
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)

	_, err = svc.AddItem(context.Background(), "u1", "empty", 0)
	assert.ErrorIs(t, err, domcart.ErrInvalidQuantity)
}

func TestUpdateAndRemove(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "p1", 100, 5)

	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)

	v, err := svc.UpdateQuantity(context.Background(), "u1", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(context.Background(), "u1", "p1", 9)
	assert.ErrorIs(t, err, domcatalog.ErrInsufficientStock)

	v, err = svc.RemoveItem(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Empty(t, v.Cart.Items)
}

func TestGetReturnsEmptyCartForNewUser(t *testing.T) {
	svc, _ := newCartFixture(t)

	v, err := svc.Get(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Empty(t, v.Cart.Items)
	assert.Equal(t, 0, v.ItemCount)
	assert.Equal(t, 0.0, v.Totals.Subtotal)
}

func TestValidateForCheckoutFlagsStaleItems(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "priced", 100, 10)
	seedProduct(t, products, "drained", 100, 10)
	seedProduct(t, products, "retired", 100, 10)

	for _, id := range []string{"priced", "drained", "retired"} {
		_, err := svc.AddItem(context.Background(), "u1", id, 2)
		require.NoError(t, err)
	}

	issues, err := svc.ValidateForCheckout(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Mutate the catalog behind the cart's back.
	p, _ := products.FindByID(context.Background(), "priced")
	p.Price.Original = 130
	require.NoError(t, products.Update(context.Background(), p))

	_, err = products.AdjustStock(context.Background(), "drained", 0, domcatalog.StockSet)
	require.NoError(t, err)

	p, _ = products.FindByID(context.Background(), "retired")
	p.Active = false
	require.NoError(t, products.Update(context.Background(), p))

	issues, err = svc.ValidateForCheckout(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, issues, 3)

	byProduct := map[string]string{}
	for _, issue := range issues {
		byProduct[issue.ProductID] = issue.Reason
	}
	assert.Contains(t, byProduct["priced"], "price has changed")
	assert.Contains(t, byProduct["drained"], "out of stock")
	assert.Contains(t, byProduct["retired"], "no longer available")
}

func TestClear(t *testing.T) {
	svc, products := newCartFixture(t)
	seedProduct(t, products, "p1", 100, 5)

	_, err := svc.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "u1"))

	v, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, v.Cart.Items)
}
