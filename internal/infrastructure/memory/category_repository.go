package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/greenmart/storefront/internal/domain/catalog"
)

type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[string]*domain.Category),
	}
}

func (r *CategoryRepository) Insert(ctx context.Context, c *domain.Category) error {
	_ = ctx
	if c == nil || c.ID == "" {
		return fmt.Errorf("category repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories[c.ID] = cloneCategory(c)
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return cloneCategory(c), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, cloneCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneCategory(c *domain.Category) *domain.Category {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
