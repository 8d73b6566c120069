package review

import "context"

// Repository persists reviews. Insert must enforce the (product, user)
// uniqueness constraint and report violations as ErrDuplicate.
type Repository interface {
	Insert(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Review, error)
	ListByProduct(ctx context.Context, productID string) ([]*Review, error)

	// RatingsForProduct returns every rating value for the product, feeding
	// the single ratings recomputation path.
	RatingsForProduct(ctx context.Context, productID string) ([]int, error)
}
