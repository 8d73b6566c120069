package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/greenmart/storefront/internal/domain/catalog"
)

// ProductRepository persists products. Stock mutations are single
// aggregation-pipeline updates so the quantity check, the decrement, and the
// denormalized in-stock flag all change atomically; the repository never
// reads, modifies, and writes stock in separate steps.
type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{collection: db.Collection("products")}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("product repository: slug %q already exists: %w", p.Slug, err)
		}
		return fmt.Errorf("product repository: insert: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("product repository: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("product repository: find: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["active"] = true
	}
	if filter.InStock {
		query["inventory.in_stock"] = true
	}
	if filter.CategoryID != "" {
		query["category_id"] = filter.CategoryID
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("product repository: list: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("product repository: decode: %w", err)
	}
	return products, nil
}

// ReserveStock decrements stock only when enough units remain. The floor
// guard lives in the filter, so two concurrent reservations for the last
// units cannot both match; the loser sees MatchedCount zero.
func (r *ProductRepository) ReserveStock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return domain.ErrInvalidStock
	}

	filter := bson.M{
		"_id":                productID,
		"inventory.quantity": bson.M{"$gte": qty},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"inventory.quantity": bson.M{"$subtract": bson.A{"$inventory.quantity", qty}},
			"purchases":          bson.M{"$add": bson.A{"$purchases", qty}},
			"updated_at":         time.Now().UTC(),
		}},
		bson.M{"$set": bson.M{
			"inventory.in_stock": bson.M{"$gt": bson.A{"$inventory.quantity", 0}},
		}},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("product repository: reserve stock: %w", err)
	}
	if res.MatchedCount == 0 {
		exists, eerr := r.exists(ctx, productID)
		if eerr != nil {
			return eerr
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// AdjustStock applies an unconditional adjustment in one pipeline update and
// returns the resulting quantity. Decrease clamps at zero via $max.
func (r *ProductRepository) AdjustStock(ctx context.Context, productID string, delta int, mode domain.StockMode) (int, error) {
	var quantityExpr interface{}
	switch mode {
	case domain.StockDecrease:
		quantityExpr = bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$inventory.quantity", delta}}}}
	case domain.StockIncrease:
		quantityExpr = bson.M{"$add": bson.A{"$inventory.quantity", delta}}
	case domain.StockSet:
		if delta < 0 {
			return 0, domain.ErrInvalidStock
		}
		quantityExpr = delta
	default:
		return 0, fmt.Errorf("product repository: unknown stock mode %q", mode)
	}

	update := bson.A{
		bson.M{"$set": bson.M{
			"inventory.quantity": quantityExpr,
			"updated_at":         time.Now().UTC(),
		}},
		bson.M{"$set": bson.M{
			"inventory.in_stock": bson.M{"$gt": bson.A{"$inventory.quantity", 0}},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p domain.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": productID}, update, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("product repository: adjust stock: %w", err)
	}
	return p.Inventory.Quantity, nil
}

func (r *ProductRepository) UpdateRatings(ctx context.Context, productID string, ratings domain.Ratings) error {
	update := bson.M{"$set": bson.M{
		"ratings":    ratings,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		return fmt.Errorf("product repository: update ratings: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) exists(ctx context.Context, productID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": productID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("product repository: exists: %w", err)
	}
	return count > 0, nil
}
