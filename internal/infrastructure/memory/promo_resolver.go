package memory

import (
	"context"
	"strings"
	"sync"

	apporder "github.com/greenmart/storefront/internal/application/order"
	"github.com/greenmart/storefront/internal/domain/pricing"
)

// PromoResolver serves promo codes from a static in-process table. Codes are
// matched case-insensitively.
type PromoResolver struct {
	mu     sync.RWMutex
	promos map[string]pricing.Promo
}

func NewPromoResolver(promos ...pricing.Promo) *PromoResolver {
	r := &PromoResolver{promos: make(map[string]pricing.Promo)}
	for _, p := range promos {
		r.promos[strings.ToUpper(p.Code)] = p
	}
	return r
}

func (r *PromoResolver) Add(p pricing.Promo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promos[strings.ToUpper(p.Code)] = p
}

func (r *PromoResolver) Resolve(ctx context.Context, code string) (pricing.Promo, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.promos[strings.ToUpper(code)]
	if !ok {
		return pricing.Promo{}, apporder.ErrPromoNotFound
	}
	return p, nil
}
