package httppresentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appcart "github.com/greenmart/storefront/internal/application/cart"
	appcatalog "github.com/greenmart/storefront/internal/application/catalog"
	apporder "github.com/greenmart/storefront/internal/application/order"
	apppayment "github.com/greenmart/storefront/internal/application/payment"
	appreview "github.com/greenmart/storefront/internal/application/review"
	dompayment "github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/observability"
)

// WebhookGate verifies and decodes provider webhook deliveries before they
// reach the reconciliation layer.
type WebhookGate interface {
	Verify(payload []byte, header string) error
	Parse(payload []byte) (dompayment.ProviderEvent, error)
}

type Handler struct {
	catalog  *appcatalog.Service
	carts    *appcart.Service
	orders   *apporder.Service
	payments *apppayment.Service
	reviews  *appreview.Service
	webhook  WebhookGate

	log observability.Logger
	tel observability.Observability
}

func NewHandler(
	catalogSvc *appcatalog.Service,
	cartSvc *appcart.Service,
	orderSvc *apporder.Service,
	paymentSvc *apppayment.Service,
	reviewSvc *appreview.Service,
	webhook WebhookGate,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		catalog:  catalogSvc,
		carts:    cartSvc,
		orders:   orderSvc,
		payments: paymentSvc,
		reviews:  reviewSvc,
		webhook:  webhook,
		log:      tel.Logger().With(observability.F("component", "http_server")),
		tel:      tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestMiddleware(h.log, h.tel))

	r.Get("/health", h.handleHealth)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Post("/", h.handleCreateProduct)
		r.Get("/{id}", h.handleGetProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Patch("/{id}", h.handleUpdateProduct)
		r.Post("/{id}/stock", h.handleAdjustStock)
		r.Get("/{id}/reviews", h.handleListReviews)
		r.Post("/{id}/reviews", h.handleCreateReview)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.handleListCategories)
		r.Post("/", h.handleCreateCategory)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleGetCart)
		r.Post("/items", h.handleAddCartItem)
		r.Put("/items/{productID}", h.handleUpdateCartItem)
		r.Delete("/items/{productID}", h.handleRemoveCartItem)
		r.Delete("/", h.handleClearCart)
		r.Get("/validate", h.handleValidateCart)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.handleCreateOrder)
		r.Get("/", h.handleListOrders)
		r.Get("/{id}", h.handleGetOrder)
		r.Put("/{id}/status", h.handleUpdateOrderStatus)
		r.Post("/{id}/cancel", h.handleCancelOrder)
		r.Post("/{id}/refund", h.handleRefundOrder)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/orders/{id}/intent", h.handleCreateIntent)
		r.Post("/orders/{id}/confirm-transfer", h.handleConfirmTransfer)
		r.Post("/webhook", h.handleWebhook)
	})

	r.Delete("/reviews/{id}", h.handleDeleteReview)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
