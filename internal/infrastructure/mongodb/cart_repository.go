package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/greenmart/storefront/internal/domain/cart"
)

// CartRepository stores one cart document per user, keyed by user_id under a
// unique index. The whole document is replaced on write; the cart is small
// and the service layer already merged the items.
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{collection: db.Collection("carts")}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("cart repository: get: %w", err)
	}
	return &c, nil
}

func (r *CartRepository) Upsert(ctx context.Context, c *domain.Cart) error {
	filter := bson.M{"user_id": c.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    c.UserID,
		"items":      c.Items,
		"updated_at": c.UpdatedAt,
	}, "$setOnInsert": bson.M{
		"created_at": c.CreatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("cart repository: upsert: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("cart repository: delete: %w", err)
	}
	return nil
}
