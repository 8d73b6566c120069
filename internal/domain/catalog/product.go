package catalog

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrCategoryNotFound  = errors.New("catalog: category not found")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrInvalidStock      = errors.New("catalog: stock quantity must not be negative")
	ErrInvalidPrice      = errors.New("catalog: sale price must not exceed original price")
	ErrInactive          = errors.New("catalog: product is not available")
)

// Price holds the original price and an optional sale price. A zero sale
// price means no sale price is set.
type Price struct {
	Original float64 `bson:"original" json:"original"`
	Sale     float64 `bson:"sale,omitempty" json:"sale,omitempty"`
	Currency string  `bson:"currency" json:"currency"`
}

// Inventory is the authoritative stock record. InStock is denormalized from
// Quantity for fast filtering and must be recomputed by every mutator.
type Inventory struct {
	SKU               string `bson:"sku" json:"sku"`
	Quantity          int    `bson:"quantity" json:"quantity"`
	InStock           bool   `bson:"in_stock" json:"in_stock"`
	LowStockThreshold int    `bson:"low_stock_threshold" json:"low_stock_threshold"`
}

// Ratings is derived from the product's reviews, never edited directly.
type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

// Specification is an explicit name/value extension pair replacing the
// free-form nested documents of the legacy data.
type Specification struct {
	Name  string `bson:"name" json:"name"`
	Value string `bson:"value" json:"value"`
	Unit  string `bson:"unit,omitempty" json:"unit,omitempty"`
}

type Product struct {
	ID             string          `bson:"_id" json:"id"`
	Name           string          `bson:"name" json:"name"`
	Slug           string          `bson:"slug" json:"slug"`
	Description    string          `bson:"description" json:"description"`
	Brand          string          `bson:"brand,omitempty" json:"brand,omitempty"`
	Price          Price           `bson:"price" json:"price"`
	Inventory      Inventory       `bson:"inventory" json:"inventory"`
	CategoryID     string          `bson:"category_id" json:"category_id"`
	Specifications []Specification `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Ratings        Ratings         `bson:"ratings" json:"ratings"`
	Active         bool            `bson:"active" json:"active"`
	Featured       bool            `bson:"featured" json:"featured"`
	OnSale         bool            `bson:"on_sale" json:"on_sale"`
	SaleStart      *time.Time      `bson:"sale_start,omitempty" json:"sale_start,omitempty"`
	SaleEnd        *time.Time      `bson:"sale_end,omitempty" json:"sale_end,omitempty"`
	Views          int             `bson:"views" json:"views"`
	Purchases      int             `bson:"purchases" json:"purchases"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updated_at"`
}

// Validate checks the construction-time invariants.
func (p *Product) Validate() error {
	if p.Price.Sale > 0 && p.Price.Sale > p.Price.Original {
		return ErrInvalidPrice
	}
	if p.Inventory.Quantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// InStock reports whether the product is sellable right now. The quantity is
// authoritative; the denormalized flag is checked as well so a product can be
// pulled from sale without zeroing its stock.
func (p *Product) InStock() bool {
	return p.Inventory.Quantity > 0 && p.Inventory.InStock
}

// SaleActive reports whether the sale price applies at the given instant.
func (p *Product) SaleActive(now time.Time) bool {
	if !p.OnSale || p.Price.Sale <= 0 {
		return false
	}
	if p.SaleStart != nil && now.Before(*p.SaleStart) {
		return false
	}
	if p.SaleEnd != nil && now.After(*p.SaleEnd) {
		return false
	}
	return true
}

// EffectivePrice is the price a buyer pays at the given instant: the sale
// price during an active sale window, the original price otherwise.
func (p *Product) EffectivePrice(now time.Time) float64 {
	if p.SaleActive(now) {
		return p.Price.Sale
	}
	return p.Price.Original
}

// RecomputeStockFlag re-derives the denormalized InStock flag. Storage
// adapters do the equivalent inside their atomic updates; this is for
// in-process mutations.
func (p *Product) RecomputeStockFlag() {
	p.Inventory.InStock = p.Inventory.Quantity > 0
}

// RecomputeRatings derives the ratings summary from the full list of review
// ratings. It is the single recomputation path for the denormalized ratings
// fields; every review mutation must go through it.
func RecomputeRatings(ratings []int) Ratings {
	if len(ratings) == 0 {
		return Ratings{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return Ratings{
		Average: math.Round(avg*10) / 10,
		Count:   len(ratings),
	}
}
