package review_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreview "github.com/greenmart/storefront/internal/application/review"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	domreview "github.com/greenmart/storefront/internal/domain/review"
	"github.com/greenmart/storefront/internal/infrastructure/memory"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("rev-%d", s.n)
}

func newReviewFixture(t *testing.T) (*appreview.Service, *memory.ProductRepository) {
	t.Helper()
	products := memory.NewProductRepository()
	require.NoError(t, products.Insert(context.Background(), &domcatalog.Product{
		ID:        "p1",
		Name:      "Widget",
		Price:     domcatalog.Price{Original: 100, Currency: "VND"},
		Inventory: domcatalog.Inventory{Quantity: 5, InStock: true},
		Active:    true,
	}))
	svc := appreview.NewService(memory.NewReviewRepository(), products, &seqIDs{}, nil)
	return svc, products
}

func TestCreateReviewUpdatesRatings(t *testing.T) {
	svc, products := newReviewFixture(t)

	_, err := svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 5, Title: "great",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u2", Rating: 4,
	})
	require.NoError(t, err)

	p, err := products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domcatalog.Ratings{Average: 4.5, Count: 2}, p.Ratings)
}

func TestCreateReviewRejectsDuplicate(t *testing.T) {
	svc, _ := newReviewFixture(t)

	_, err := svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 5,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 1,
	})
	assert.ErrorIs(t, err, domreview.ErrDuplicate)
}

func TestCreateReviewValidation(t *testing.T) {
	svc, _ := newReviewFixture(t)

	_, err := svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 0,
	})
	assert.ErrorIs(t, err, domreview.ErrInvalidRating)

	_, err = svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 6,
	})
	assert.ErrorIs(t, err, domreview.ErrInvalidRating)

	_, err = svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "missing", UserID: "u1", Rating: 3,
	})
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
}

func TestDeleteReviewRecomputesRatings(t *testing.T) {
	svc, products := newReviewFixture(t)

	first, err := svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u1", Rating: 5,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), appreview.CreateInput{
		ProductID: "p1", UserID: "u2", Rating: 1,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), first.ID, domorder.Actor{ID: "u2"})
	assert.ErrorIs(t, err, domreview.ErrForbidden, "only the author or an admin may delete")

	require.NoError(t, svc.Delete(context.Background(), first.ID, domorder.Actor{ID: "u1"}))

	p, err := products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domcatalog.Ratings{Average: 1, Count: 1}, p.Ratings)

	reviews, err := svc.ListByProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}
