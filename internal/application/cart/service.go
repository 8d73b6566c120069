package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	domain "github.com/greenmart/storefront/internal/domain/cart"
	"github.com/greenmart/storefront/internal/domain/catalog"
	"github.com/greenmart/storefront/internal/domain/pricing"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

// priceEpsilon bounds how far a snapshot price may drift from the live
// effective price before checkout is blocked.
const priceEpsilon = 0.01

// Service maintains per-user candidate orders. Cart state is a cache of
// product state, so every mutation and the checkout validation re-check the
// live catalog.
type Service struct {
	carts    domain.Repository
	products catalog.ProductRepository
	cache    Cache
	rates    pricing.Rates
	log      observability.Logger
}

func NewService(carts domain.Repository, products catalog.ProductRepository, cache Cache, rates pricing.Rates, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		carts:    carts,
		products: products,
		cache:    cache,
		rates:    rates,
		log:      tel.Logger().With(observability.F("component", "cart_service")),
	}
}

// View is a priced cart.
type View struct {
	Cart      *domain.Cart
	Totals    pricing.Breakdown
	ItemCount int
}

func (s *Service) view(c *domain.Cart) *View {
	return &View{
		Cart:      c,
		Totals:    c.Totals(s.rates),
		ItemCount: c.ItemCount(),
	}
}

// Get returns the user's cart, creating an empty one in memory when none is
// stored yet.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) load(ctx context.Context, userID string) (*domain.Cart, error) {
	if s.cache != nil {
		if c, found, err := s.cache.Get(ctx, userID); err == nil && found {
			return c, nil
		} else if err != nil {
			logctx.FromOr(ctx, s.log).Warn("cart_cache_get_failed",
				observability.F("user_id", userID), observability.F("error", err.Error()))
		}
	}

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, c); err != nil {
			logctx.FromOr(ctx, s.log).Warn("cart_cache_set_failed",
				observability.F("user_id", userID), observability.F("error", err.Error()))
		}
	}
	return c, nil
}

func (s *Service) store(ctx context.Context, c *domain.Cart) error {
	c.UpdatedAt = time.Now().UTC()
	if err := s.carts.Upsert(ctx, c); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	s.invalidate(ctx, c.UserID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		logctx.FromOr(ctx, s.log).Warn("cart_cache_invalidate_failed",
			observability.F("user_id", userID), observability.F("error", err.Error()))
	}
}

// AddItem puts quantity units of a product into the cart, snapshotting the
// current effective price. An existing entry merges; the merged quantity is
// re-checked against live stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, catalog.ErrInactive
	}
	if !p.InStock() {
		return nil, fmt.Errorf("%w: %s is out of stock", catalog.ErrInsufficientStock, p.Name)
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	if existing, ok := c.Item(productID); ok {
		requested += existing.Quantity
	}
	if requested > p.Inventory.Quantity {
		return nil, fmt.Errorf("%w: only %d units available", catalog.ErrInsufficientStock, p.Inventory.Quantity)
	}

	now := time.Now().UTC()
	if err := c.Upsert(productID, p.Name, quantity, p.EffectivePrice(now), now); err != nil {
		return nil, err
	}
	if err := s.store(ctx, c); err != nil {
		return nil, err
	}

	logctx.FromOr(ctx, s.log).Info("cart_item_added",
		observability.F("user_id", userID),
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
	)
	return s.view(c), nil
}

// UpdateQuantity sets the quantity of an existing entry, re-validated
// against live stock.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.InStock() || quantity > p.Inventory.Quantity {
		return nil, fmt.Errorf("%w: only %d units available", catalog.ErrInsufficientStock, p.Inventory.Quantity)
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.store(ctx, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*View, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	if err := s.store(ctx, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// Clear drops the stored cart entirely.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("cart: clear: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// Issue is one per-item checkout blocker with a reason the client can show.
type Issue struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}

// ValidateForCheckout re-checks every cart item against the live catalog.
// A non-empty issue list blocks checkout; cart contents may have gone stale
// between add-to-cart and checkout.
func (s *Service) ValidateForCheckout(ctx context.Context, userID string) ([]Issue, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var issues []Issue
	for _, item := range c.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			issues = append(issues, Issue{ProductID: item.ProductID, Name: item.Name, Reason: "product no longer exists"})
			continue
		case err != nil:
			return nil, fmt.Errorf("cart: validate: %w", err)
		}

		if !p.Active {
			issues = append(issues, Issue{ProductID: p.ID, Name: p.Name, Reason: "product is no longer available"})
			continue
		}
		if !p.InStock() {
			issues = append(issues, Issue{ProductID: p.ID, Name: p.Name, Reason: "product is out of stock"})
			continue
		}
		if item.Quantity > p.Inventory.Quantity {
			issues = append(issues, Issue{
				ProductID: p.ID,
				Name:      p.Name,
				Reason:    fmt.Sprintf("only %d units available", p.Inventory.Quantity),
			})
			continue
		}
		if math.Abs(p.EffectivePrice(now)-item.Price) > priceEpsilon {
			issues = append(issues, Issue{ProductID: p.ID, Name: p.Name, Reason: "price has changed, please refresh"})
		}
	}
	return issues, nil
}
