package review

import (
	"context"
	"fmt"
	"time"

	"github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	domain "github.com/greenmart/storefront/internal/domain/review"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

// IDGenerator mints review identifiers.
type IDGenerator interface {
	NewID() string
}

// Service manages product reviews and keeps the denormalized ratings
// summary on the product in sync. Every write funnels through one
// recomputation path that rebuilds the summary from the stored ratings.
type Service struct {
	reviews  domain.Repository
	products catalog.ProductRepository
	ids      IDGenerator
	log      observability.Logger
}

func NewService(reviews domain.Repository, products catalog.ProductRepository, ids IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		reviews:  reviews,
		products: products,
		ids:      ids,
		log:      tel.Logger().With(observability.F("component", "review_service")),
	}
}

type CreateInput struct {
	ProductID string
	UserID    string
	Rating    int
	Title     string
	Content   string
}

// Create adds one review per (product, user) and refreshes the product's
// ratings summary. A second review from the same user fails with
// ErrDuplicate.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Review, error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("product_id", input.ProductID),
		observability.F("user_id", input.UserID),
	)

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	r, err := domain.New(s.ids.NewID(), input.ProductID, input.UserID, input.Rating, input.Title, input.Content, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Insert(ctx, r); err != nil {
		return nil, err
	}

	s.refreshRatings(ctx, logger, input.ProductID)
	logger.Info("review_created", observability.F("rating", input.Rating))
	return r, nil
}

// Delete removes a review; only the author or an admin may do so. The
// product's ratings summary is refreshed afterwards.
func (s *Service) Delete(ctx context.Context, id string, actor domorder.Actor) error {
	r, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActOn(r.UserID) {
		return domain.ErrForbidden
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	logger := logctx.FromOr(ctx, s.log).With(observability.F("product_id", r.ProductID))
	s.refreshRatings(ctx, logger, r.ProductID)
	logger.Info("review_deleted", observability.F("review_id", id))
	return nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// refreshRatings rebuilds the product's ratings summary from every stored
// rating. A failure leaves the summary stale, not wrong in kind, so it is
// logged rather than propagated: the review write already committed.
func (s *Service) refreshRatings(ctx context.Context, logger observability.Logger, productID string) {
	values, err := s.reviews.RatingsForProduct(ctx, productID)
	if err != nil {
		logger.Error("ratings_refresh_failed", observability.F("error", err.Error()))
		return
	}
	ratings := catalog.RecomputeRatings(values)
	if err := s.products.UpdateRatings(ctx, productID, ratings); err != nil {
		logger.Error("ratings_refresh_failed", observability.F("error", fmt.Sprintf("update product: %v", err)))
	}
}
