package providerhook

import (
	"context"

	"github.com/google/uuid"
)

// StubProvider stands in for the external processor in development: it mints
// an intent reference locally and never talks to a network.
type StubProvider struct{}

func NewStubProvider() StubProvider { return StubProvider{} }

func (StubProvider) Name() string { return "stub" }

func (StubProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (string, error) {
	_ = ctx
	_ = orderID
	_ = amount
	_ = currency
	return "pi_" + uuid.NewString(), nil
}
