package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/greenmart/storefront/internal/domain/catalog"
)

// ProductRepository is the in-memory catalog store used for tests and for
// running without a database. Stock mutations hold the write lock for the
// whole check-and-update, giving the same atomicity the document store gets
// from conditional updates.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		return domain.ErrNotFound
	}
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.InStock && !p.InStock() {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	return paginate(out, filter.Offset, filter.Limit), nil
}

func (r *ProductRepository) ReserveStock(ctx context.Context, productID string, qty int) error {
	_ = ctx
	if qty < 1 {
		return domain.ErrInvalidStock
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Inventory.Quantity < qty {
		return domain.ErrInsufficientStock
	}
	p.Inventory.Quantity -= qty
	p.Purchases += qty
	p.RecomputeStockFlag()
	return nil
}

func (r *ProductRepository) AdjustStock(ctx context.Context, productID string, delta int, mode domain.StockMode) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}

	switch mode {
	case domain.StockDecrease:
		p.Inventory.Quantity -= delta
		if p.Inventory.Quantity < 0 {
			p.Inventory.Quantity = 0
		}
	case domain.StockIncrease:
		p.Inventory.Quantity += delta
	case domain.StockSet:
		if delta < 0 {
			return 0, domain.ErrInvalidStock
		}
		p.Inventory.Quantity = delta
	default:
		return 0, fmt.Errorf("product repository: unknown stock mode %q", mode)
	}
	p.RecomputeStockFlag()
	return p.Inventory.Quantity, nil
}

func (r *ProductRepository) UpdateRatings(ctx context.Context, productID string, ratings domain.Ratings) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Ratings = ratings
	return nil
}

func matchesSearch(p *domain.Product, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Brand), search)
}

func paginate[T any](items []T, offset, limit int64) []T {
	if offset > 0 {
		if offset >= int64(len(items)) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < int64(len(items)) {
		items = items[:limit]
	}
	return items
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Specifications = append([]domain.Specification(nil), p.Specifications...)
	if p.SaleStart != nil {
		t := *p.SaleStart
		clone.SaleStart = &t
	}
	if p.SaleEnd != nil {
		t := *p.SaleEnd
		clone.SaleEnd = &t
	}
	return &clone
}
