package cart

import (
	"errors"
	"time"

	"github.com/greenmart/storefront/internal/domain/pricing"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrItemNotFound    = errors.New("cart: item not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
)

// Item is one (product, quantity, price) tuple. Price is a snapshot of the
// product's effective price at the time the item was added, not a live
// reference.
type Item struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Name      string    `bson:"name" json:"name"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Price     float64   `bson:"price" json:"price"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Cart is the per-user candidate order. At most one item per product.
type Cart struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Items     []Item    `bson:"items" json:"items"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Item returns the entry for the given product, if present.
func (c *Cart) Item(productID string) (*Item, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// Upsert merges quantity into an existing entry or appends a new one with the
// given price snapshot. Stock checks belong to the caller.
func (c *Cart) Upsert(productID, name string, quantity int, price float64, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if item, ok := c.Item(productID); ok {
		item.Quantity += quantity
		return nil
	}
	c.Items = append(c.Items, Item{
		ProductID: productID,
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		AddedAt:   now,
	})
	return nil
}

// SetQuantity replaces the quantity of an existing entry.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	item, ok := c.Item(productID)
	if !ok {
		return ErrItemNotFound
	}
	item.Quantity = quantity
	return nil
}

// Remove deletes the entry for the given product.
func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear drops every item.
func (c *Cart) Clear() {
	c.Items = nil
}

// ItemCount is the total number of units across all entries.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums the snapshot prices.
func (c *Cart) Subtotal() float64 {
	subtotal := 0.0
	for _, item := range c.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}

// Totals prices the cart with the configured rates. No discount applies at
// cart stage; promo codes resolve during checkout.
func (c *Cart) Totals(rates pricing.Rates) pricing.Breakdown {
	return pricing.Compute(c.Subtotal(), 0, rates)
}
