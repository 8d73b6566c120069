package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/greenmart/storefront/internal/domain/catalog"
	domain "github.com/greenmart/storefront/internal/domain/order"
	"github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/domain/pricing"
	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// priceEpsilon bounds acceptable drift between the submitted unit price
	// and the live effective price; anything larger means the client is
	// holding a stale price.
	priceEpsilon = 0.01

	useCaseCreateOrder = "order.create"
	insertAttempts     = 3
	notifyTimeout      = 2 * time.Second
)

// Service is the order workflow engine: it converts validated items into an
// immutable order, reserves stock, walks the status state machine, and
// reverses stock on cancellation. Every operation is all-or-nothing per
// call; the engine never retries on its own.
type Service struct {
	orders   domain.Repository
	products catalog.ProductRepository
	carts    CartClearer
	ids      IDGenerator
	numbers  NumberGenerator
	promos   PromoResolver
	notifier Notifier
	rates    pricing.Rates

	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	notifyFails  observability.Counter
}

func NewService(
	orders domain.Repository,
	products catalog.ProductRepository,
	carts CartClearer,
	ids IDGenerator,
	numbers NumberGenerator,
	promos PromoResolver,
	notifier Notifier,
	rates pricing.Rates,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		orders:       orders,
		products:     products,
		carts:        carts,
		ids:          ids,
		numbers:      numbers,
		promos:       promos,
		notifier:     notifier,
		rates:        rates,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", "order_service")),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
		notifyFails:  tel.Metrics().Counter(observability.MNotifyFailures),
	}
}

// ItemInput is one requested line: the submitted price is the client's
// snapshot and must still match the live effective price.
type ItemInput struct {
	ProductID      string
	Quantity       int
	Price          float64
	Specifications []catalog.Specification
}

type CreateOrderInput struct {
	UserID             string
	Items              []ItemInput
	ShippingAddress    domain.Address
	BillingAddress     *domain.Address
	PaymentMethod      payment.Method
	ShippingMethodName string
	PromoCode          string
	Note               string
}

// CreateOrder runs the checkout workflow:
//
//  1. every item is validated against the live catalog (active, in stock,
//     price unchanged); any failure aborts the whole order;
//  2. totals are computed once and frozen into the order;
//  3. the order is persisted as pending with a fresh order number,
//     retrying with a new number on a uniqueness conflict;
//  4. stock is reserved per item after persistence; a losing race is
//     compensated by releasing what was reserved and soft-cancelling the
//     order, so stock never goes negative and at most one of two racing
//     orders survives;
//  5. the cart is cleared and a confirmation is sent, both best-effort.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseCreateOrder))

	ctx, span := s.tel.Tracer().Start(ctx, "UC.CreateOrder",
		attribute.String("use_case", useCaseCreateOrder),
		attribute.String("order.user_id", input.UserID),
		attribute.Int("order.item_count", len(input.Items)),
	)
	start := time.Now()
	outcome := "success"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
		s.reqCounter.Add(1,
			observability.L("use_case", useCaseCreateOrder),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseCreateOrder),
		)
	}()

	if input.UserID == "" {
		return nil, fmt.Errorf("order: user id is required")
	}
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if !payment.KnownMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("order: unknown payment method %q", input.PaymentMethod)
	}

	now := time.Now().UTC()

	// Step 1: validate every item against the live catalog. No partial
	// orders: the first failure aborts everything.
	items := make([]domain.Item, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		p, perr := s.products.FindByID(ctx, in.ProductID)
		if perr != nil {
			return nil, perr
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", catalog.ErrInactive, p.Name)
		}
		if !p.InStock() || in.Quantity > p.Inventory.Quantity {
			return nil, fmt.Errorf("%w: only %d units of %s available", catalog.ErrInsufficientStock, p.Inventory.Quantity, p.Name)
		}
		current := p.EffectivePrice(now)
		if math.Abs(current-in.Price) > priceEpsilon {
			return nil, fmt.Errorf("%w: %s is now %.2f", domain.ErrPriceChanged, p.Name, current)
		}
		items = append(items, domain.Item{
			ProductID:      p.ID,
			Name:           p.Name,
			Quantity:       in.Quantity,
			Price:          in.Price,
			TotalPrice:     in.Price * float64(in.Quantity),
			Specifications: in.Specifications,
		})
	}

	// Step 2: freeze pricing from the validated snapshot.
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.TotalPrice
	}
	discount := 0.0
	if input.PromoCode != "" {
		promo, perr := s.promos.Resolve(ctx, input.PromoCode)
		if perr != nil {
			return nil, perr
		}
		discount, perr = promo.DiscountFor(subtotal)
		if perr != nil {
			return nil, perr
		}
	}
	breakdown := pricing.Compute(subtotal, discount, s.rates)

	shippingName := input.ShippingMethodName
	if shippingName == "" {
		shippingName = "standard"
	}
	shipping := domain.ShippingMethod{Name: shippingName, Cost: breakdown.Shipping}

	// Steps 3-4: persist, retrying the order number on collision.
	o, err := s.persistNew(ctx, input, items, shipping, breakdown, now)
	if err != nil {
		return nil, err
	}
	logger = logger.With(observability.F("order_id", o.ID), observability.F("order_number", o.Number))
	span.SetAttributes(attribute.String("order.id", o.ID))

	// Step 5: reserve stock only after the order exists. This ordering
	// favors "order exists, stock possibly stale" over the reverse; a
	// reservation lost to a concurrent order is compensated below.
	if err := s.reserveAll(ctx, logger, o); err != nil {
		return nil, err
	}

	// Step 6: clear the cart. Failure is logged, never propagated.
	if s.carts != nil {
		if cerr := s.carts.Clear(ctx, input.UserID); cerr != nil {
			logger.Warn("cart_clear_failed", observability.F("error", cerr.Error()))
		}
	}

	// Step 7: best-effort confirmation.
	s.notify(ctx, logger, "order_confirmation", func(nctx context.Context) error {
		return s.notifier.SendOrderConfirmation(nctx, o.UserID, o)
	})

	logger.Info("order_created",
		observability.F("status", string(o.Status)),
		observability.F("total", o.Pricing.Total),
	)
	return o, nil
}

func (s *Service) persistNew(ctx context.Context, input CreateOrderInput, items []domain.Item, shipping domain.ShippingMethod, breakdown pricing.Breakdown, now time.Time) (*domain.Order, error) {
	var lastErr error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		o, err := domain.New(
			s.ids.NewID(),
			s.numbers.Next(),
			input.UserID,
			items,
			input.ShippingAddress,
			input.BillingAddress,
			input.PaymentMethod,
			shipping,
			breakdown,
			input.PromoCode,
			input.Note,
			now,
		)
		if err != nil {
			return nil, err
		}
		err = s.orders.Insert(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("order: insert: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("order: could not allocate a unique order number: %w", lastErr)
}

// reserveAll decrements stock for every item of a freshly persisted order.
// When a reservation fails the already-reserved items are released and the
// order is soft-cancelled, so the caller sees the failure and no stock is
// lost. Release or cancel failures after that point are reconciliation
// gaps and are logged for operators rather than swallowed.
func (s *Service) reserveAll(ctx context.Context, logger observability.Logger, o *domain.Order) error {
	for i, item := range o.Items {
		err := s.products.ReserveStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		for _, reserved := range o.Items[:i] {
			if _, rerr := s.products.AdjustStock(ctx, reserved.ProductID, reserved.Quantity, catalog.StockIncrease); rerr != nil {
				logger.Error("stock_reconcile_required",
					observability.F("order_id", o.ID),
					observability.F("product_id", reserved.ProductID),
					observability.F("quantity", reserved.Quantity),
					observability.F("error", rerr.Error()),
				)
			}
		}

		if terr := o.TransitionTo(domain.StatusCancelled, "insufficient stock at reservation", domain.Actor{}, time.Now().UTC()); terr == nil {
			if uerr := s.orders.Update(ctx, o); uerr != nil {
				logger.Error("order_reconcile_required",
					observability.F("order_id", o.ID),
					observability.F("error", uerr.Error()),
				)
			}
		}

		if errors.Is(err, catalog.ErrInsufficientStock) {
			return fmt.Errorf("%w: %s", catalog.ErrInsufficientStock, item.Name)
		}
		return fmt.Errorf("order: reserve stock: %w", err)
	}
	return nil
}

// Get returns an order, enforcing that only the owner or an admin may see it.
func (s *Service) Get(ctx context.Context, id string, actor domain.Actor) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(o.UserID) {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int64) ([]*domain.Order, error) {
	return s.orders.List(ctx, domain.ListFilter{UserID: userID, Limit: limit, Offset: offset})
}

// List is the back-office listing; callers gate it to admins.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	return s.orders.List(ctx, filter)
}

// notify runs a best-effort side effect with a short deadline; errors are
// logged and counted, never returned.
func (s *Service) notify(ctx context.Context, logger observability.Logger, kind string, send func(context.Context) error) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := send(nctx); err != nil {
		s.notifyFails.Add(1, observability.L("kind", kind))
		logger.Warn("notification_failed",
			observability.F("kind", kind),
			observability.F("error", err.Error()),
		)
	}
}
