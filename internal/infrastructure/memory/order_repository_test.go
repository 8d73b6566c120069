package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/greenmart/storefront/internal/domain/order"
)

func seedOrder(t *testing.T, repo *OrderRepository, id, number string) *domain.Order {
	t.Helper()
	o := &domain.Order{ID: id, Number: number, UserID: "u1", Status: domain.StatusPending}
	require.NoError(t, repo.Insert(context.Background(), o))
	return o
}

func TestOrderInsertEnforcesNumberUniqueness(t *testing.T) {
	repo := NewOrderRepository()
	seedOrder(t, repo, "o1", "DH1")

	err := repo.Insert(context.Background(), &domain.Order{ID: "o2", Number: "DH1", Status: domain.StatusPending})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUpdateFromGuardsOnPriorStatus(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	o := seedOrder(t, repo, "o1", "DH1")

	o.Status = domain.StatusCancelled
	require.NoError(t, repo.UpdateFrom(ctx, o, domain.StatusPending))

	// A second writer that also read the order as pending loses the swap.
	stale := &domain.Order{ID: "o1", Number: "DH1", UserID: "u1", Status: domain.StatusCancelled}
	err := repo.UpdateFrom(ctx, stale, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, err := repo.FindByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestUpdateFromMissingOrder(t *testing.T) {
	repo := NewOrderRepository()

	err := repo.UpdateFrom(context.Background(), &domain.Order{ID: "ghost", Status: domain.StatusPending}, domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
