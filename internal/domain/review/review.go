package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("review: not found")
	ErrDuplicate     = errors.New("review: user already reviewed this product")
	ErrInvalidRating = errors.New("review: rating must be between 1 and 5")
	ErrForbidden     = errors.New("review: operation not permitted for this user")
)

// Review is tied 1:1 to a (product, user) pair; the repository enforces
// uniqueness.
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Rating    int       `bson:"rating" json:"rating"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Verified  bool      `bson:"verified" json:"verified"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// New validates and builds a review.
func New(id, productID, userID string, rating int, title, content string, now time.Time) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:        id,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     title,
		Content:   content,
		CreatedAt: now,
	}, nil
}
