package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/greenmart/storefront/internal/domain/catalog"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

// Service owns admin-side catalog mutations and the stock adjustment
// operation shared with the order workflow.
type Service struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	ids        IDGenerator

	log          observability.Logger
	stockCounter observability.Counter
}

func NewService(products domain.ProductRepository, categories domain.CategoryRepository, ids IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		products:     products,
		categories:   categories,
		ids:          ids,
		log:          tel.Logger().With(observability.F("component", "catalog_service")),
		stockCounter: tel.Metrics().Counter(observability.MStockAdjustments),
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.products.FindByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	return s.products.List(ctx, filter)
}

// ProductInput is the admin-facing product payload.
type ProductInput struct {
	Name           string
	Description    string
	Brand          string
	SKU            string
	OriginalPrice  float64
	SalePrice      float64
	Currency       string
	Quantity       int
	CategoryID     string
	Specifications []domain.Specification
	Active         bool
	OnSale         bool
	SaleStart      *time.Time
	SaleEnd        *time.Time
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("catalog: product name is required")
	}
	if input.OriginalPrice < 0 {
		return nil, fmt.Errorf("catalog: price must not be negative")
	}
	if input.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	currency := input.Currency
	if currency == "" {
		currency = "VND"
	}
	p := &domain.Product{
		ID:          s.ids.NewID(),
		Name:        input.Name,
		Slug:        Slugify(input.Name),
		Description: input.Description,
		Brand:       input.Brand,
		Price: domain.Price{
			Original: input.OriginalPrice,
			Sale:     input.SalePrice,
			Currency: currency,
		},
		Inventory: domain.Inventory{
			SKU:               strings.ToUpper(input.SKU),
			Quantity:          input.Quantity,
			LowStockThreshold: 5,
		},
		CategoryID:     input.CategoryID,
		Specifications: input.Specifications,
		Active:         input.Active,
		OnSale:         input.OnSale,
		SaleStart:      input.SaleStart,
		SaleEnd:        input.SaleEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.RecomputeStockFlag()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: insert product: %w", err)
	}
	s.log.Info("product_created", observability.F("product_id", p.ID), observability.F("sku", p.Inventory.SKU))
	return p, nil
}

// UpdateProductInput is a partial product payload: nil and empty fields
// keep their stored values.
type UpdateProductInput struct {
	Name           string
	Description    string
	Brand          string
	OriginalPrice  *float64
	SalePrice      *float64
	CategoryID     string
	Specifications []domain.Specification
	Active         *bool
	OnSale         *bool
	SaleStart      *time.Time
	SaleEnd        *time.Time
}

// UpdateProduct applies a partial update, so an admin request carries only
// the fields it changes. The sale window (OnSale, SaleStart, SaleEnd) is
// replaced as a unit when OnSale is present.
func (s *Service) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		p.Name = input.Name
		p.Slug = Slugify(input.Name)
	}
	if input.Description != "" {
		p.Description = input.Description
	}
	if input.Brand != "" {
		p.Brand = input.Brand
	}
	if input.OriginalPrice != nil {
		p.Price.Original = *input.OriginalPrice
	}
	if input.SalePrice != nil {
		p.Price.Sale = *input.SalePrice
	}
	if input.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = input.CategoryID
	}
	if input.Specifications != nil {
		p.Specifications = input.Specifications
	}
	if input.Active != nil {
		p.Active = *input.Active
	}
	if input.OnSale != nil {
		p.OnSale = *input.OnSale
		p.SaleStart = input.SaleStart
		p.SaleEnd = input.SaleEnd
	}
	p.UpdatedAt = time.Now().UTC()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: update product: %w", err)
	}
	return p, nil
}

// AdjustStock applies an admin stock correction. Order placement does not go
// through here; it reserves stock with a guard instead.
func (s *Service) AdjustStock(ctx context.Context, productID string, delta int, mode domain.StockMode) (int, error) {
	logger := logctx.FromOr(ctx, s.log)

	switch mode {
	case domain.StockDecrease, domain.StockIncrease:
		if delta < 0 {
			return 0, fmt.Errorf("%w: delta must not be negative", domain.ErrInvalidStock)
		}
	case domain.StockSet:
		if delta < 0 {
			return 0, domain.ErrInvalidStock
		}
	default:
		return 0, fmt.Errorf("catalog: unknown stock mode %q", mode)
	}

	remaining, err := s.products.AdjustStock(ctx, productID, delta, mode)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.stockCounter.Add(1,
		observability.L("mode", string(mode)),
		observability.L("outcome", outcome),
	)
	if err != nil {
		return 0, err
	}

	logger.Info("stock_adjusted",
		observability.F("product_id", productID),
		observability.F("mode", string(mode)),
		observability.F("delta", delta),
		observability.F("remaining", remaining),
	)
	return remaining, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, description, parentID string) (*domain.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("catalog: category name is required")
	}
	c := &domain.Category{
		ID:          s.ids.NewID(),
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		ParentID:    parentID,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.categories.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("catalog: insert category: %w", err)
	}
	return c, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// Slugify lowercases and hyphenates a name for URL use.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
