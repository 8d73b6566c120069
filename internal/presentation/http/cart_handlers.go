package httppresentation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appcart "github.com/greenmart/storefront/internal/application/cart"
	domcart "github.com/greenmart/storefront/internal/domain/cart"
	"github.com/greenmart/storefront/internal/domain/pricing"
)

var errMissingUser = errors.New("missing " + headerUserID + " header")

type cartResponse struct {
	Cart      *domcart.Cart     `json:"cart"`
	Totals    pricing.Breakdown `json:"totals"`
	ItemCount int               `json:"item_count"`
}

func toCartResponse(v *appcart.View) cartResponse {
	return cartResponse{Cart: v.Cart, Totals: v.Totals, ItemCount: v.ItemCount}
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	v, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(v))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(v))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.carts.UpdateQuantity(r.Context(), userID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(v))
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	v, err := h.carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(v))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidateCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errMissingUser)
		return
	}

	issues, err := h.carts.ValidateForCheckout(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}
