package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/greenmart/storefront/internal/domain/catalog"
)

func seed(t *testing.T, repo *ProductRepository, qty int) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &domain.Product{
		ID:        "p1",
		Name:      "Widget",
		Price:     domain.Price{Original: 100, Currency: "VND"},
		Inventory: domain.Inventory{Quantity: qty, InStock: qty > 0},
		Active:    true,
	}))
}

func TestReserveStockGuards(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 3)

	require.NoError(t, repo.ReserveStock(context.Background(), "p1", 2))

	err := repo.ReserveStock(context.Background(), "p1", 2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, _ := repo.FindByID(context.Background(), "p1")
	assert.Equal(t, 1, p.Inventory.Quantity)
	assert.Equal(t, 2, p.Purchases)
	assert.True(t, p.Inventory.InStock)

	require.NoError(t, repo.ReserveStock(context.Background(), "p1", 1))
	p, _ = repo.FindByID(context.Background(), "p1")
	assert.Equal(t, 0, p.Inventory.Quantity)
	assert.False(t, p.Inventory.InStock, "flag re-derives with the quantity")

	assert.ErrorIs(t, repo.ReserveStock(context.Background(), "missing", 1), domain.ErrNotFound)
}

func TestReserveStockNeverGoesNegativeUnderConcurrency(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 50)

	var wg sync.WaitGroup
	successes := make(chan struct{}, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.ReserveStock(context.Background(), "p1", 1); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	assert.Equal(t, 50, won, "only as many reservations as units may succeed")

	p, _ := repo.FindByID(context.Background(), "p1")
	assert.Equal(t, 0, p.Inventory.Quantity)
}

func TestAdjustStockModes(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 5)
	ctx := context.Background()

	qty, err := repo.AdjustStock(ctx, "p1", 8, domain.StockDecrease)
	require.NoError(t, err)
	assert.Equal(t, 0, qty, "decrease clamps at zero")

	qty, err = repo.AdjustStock(ctx, "p1", 3, domain.StockIncrease)
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	qty, err = repo.AdjustStock(ctx, "p1", 10, domain.StockSet)
	require.NoError(t, err)
	assert.Equal(t, 10, qty)

	_, err = repo.AdjustStock(ctx, "p1", -1, domain.StockSet)
	assert.ErrorIs(t, err, domain.ErrInvalidStock)

	p, _ := repo.FindByID(ctx, "p1")
	assert.True(t, p.Inventory.InStock)
}

func TestFindReturnsClones(t *testing.T) {
	repo := NewProductRepository()
	seed(t, repo, 5)

	p, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	p.Inventory.Quantity = 999

	fresh, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Inventory.Quantity)
}

func TestListFilters(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.Product{
		ID: "a", Name: "Red Phone", CategoryID: "c1", Active: true,
		Inventory: domain.Inventory{Quantity: 1, InStock: true},
	}))
	require.NoError(t, repo.Insert(ctx, &domain.Product{
		ID: "b", Name: "Blue Phone", CategoryID: "c2", Active: false,
		Inventory: domain.Inventory{Quantity: 0},
	}))

	active, err := repo.List(ctx, domain.ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)

	byCategory, err := repo.List(ctx, domain.ListFilter{CategoryID: "c2"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "b", byCategory[0].ID)

	search, err := repo.List(ctx, domain.ListFilter{Search: "phone"})
	require.NoError(t, err)
	assert.Len(t, search, 2)
}
