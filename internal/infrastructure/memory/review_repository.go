package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/greenmart/storefront/internal/domain/review"
)

// ReviewRepository enforces the one-review-per-(product, user) constraint,
// reporting violations as ErrDuplicate.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
	byPair  map[string]string
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[string]*domain.Review),
		byPair:  make(map[string]string),
	}
}

func pairKey(productID, userID string) string {
	return productID + "/" + userID
}

func (r *ReviewRepository) Insert(ctx context.Context, rev *domain.Review) error {
	_ = ctx
	if rev == nil || rev.ID == "" {
		return fmt.Errorf("review repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(rev.ProductID, rev.UserID)
	if _, exists := r.byPair[key]; exists {
		return domain.ErrDuplicate
	}

	clone := *rev
	r.reviews[rev.ID] = &clone
	r.byPair[key] = rev.ID
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	rev, ok := r.reviews[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.reviews, id)
	delete(r.byPair, pairKey(rev.ProductID, rev.UserID))
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	rev, ok := r.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rev
	return &clone, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Review, 0)
	for _, rev := range r.reviews {
		if rev.ProductID != productID {
			continue
		}
		clone := *rev
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReviewRepository) RatingsForProduct(ctx context.Context, productID string) ([]int, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var ratings []int
	for _, rev := range r.reviews {
		if rev.ProductID == productID {
			ratings = append(ratings, rev.Rating)
		}
	}
	return ratings, nil
}
