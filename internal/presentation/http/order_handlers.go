package httppresentation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apporder "github.com/greenmart/storefront/internal/application/order"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	dompayment "github.com/greenmart/storefront/internal/domain/payment"
)

type orderItemRequest struct {
	ProductID      string                     `json:"product_id"`
	Quantity       int                        `json:"quantity"`
	Price          float64                    `json:"price"`
	Specifications []domcatalog.Specification `json:"specifications"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items"`
	ShippingAddress domorder.Address   `json:"shipping_address"`
	BillingAddress  *domorder.Address  `json:"billing_address"`
	PaymentMethod   string             `json:"payment_method"`
	ShippingMethod  string             `json:"shipping_method"`
	PromoCode       string             `json:"promo_code"`
	Note            string             `json:"note"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]apporder.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, apporder.ItemInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Price:          item.Price,
			Specifications: item.Specifications,
		})
	}

	o, err := h.orders.CreateOrder(r.Context(), apporder.CreateOrderInput{
		UserID:             userID,
		Items:              items,
		ShippingAddress:    req.ShippingAddress,
		BillingAddress:     req.BillingAddress,
		PaymentMethod:      dompayment.Method(req.PaymentMethod),
		ShippingMethodName: req.ShippingMethod,
		PromoCode:          req.PromoCode,
		Note:               req.Note,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	q := r.URL.Query()
	limit := parseInt64(q.Get("limit"), 20)
	offset := parseInt64(q.Get("offset"), 0)

	if actor.Admin {
		filter := domorder.ListFilter{
			UserID:        q.Get("user_id"),
			Status:        domorder.Status(q.Get("status")),
			PaymentStatus: q.Get("payment_status"),
			Limit:         limit,
			Offset:        offset,
		}
		if from := q.Get("from"); from != "" {
			if t, err := time.Parse(time.RFC3339, from); err == nil {
				filter.From = &t
			}
		}
		if to := q.Get("to"); to != "" {
			if t, err := time.Parse(time.RFC3339, to); err == nil {
				filter.To = &t
			}
		}
		orders, err := h.orders.List(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
		return
	}

	if actor.ID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}
	orders, err := h.orders.ListByUser(r.Context(), actor.ID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !actor.Admin {
		writeDomainError(w, domorder.ErrForbidden)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domorder.Status(req.Status), req.Note, actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelOrderRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason, actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type refundOrderRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func (h *Handler) handleRefundOrder(w http.ResponseWriter, r *http.Request) {
	var req refundOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.orders.Refund(r.Context(), chi.URLParam(r, "id"), req.Amount, req.Reason, actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
