package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	apporder "github.com/greenmart/storefront/internal/application/order"
	domcart "github.com/greenmart/storefront/internal/domain/cart"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
	dompayment "github.com/greenmart/storefront/internal/domain/payment"
	"github.com/greenmart/storefront/internal/domain/pricing"
	domreview "github.com/greenmart/storefront/internal/domain/review"
)

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps sentinel errors onto HTTP statuses. Unmapped errors
// become 500s with their message withheld from the body.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domcatalog.ErrCategoryNotFound),
		errors.Is(err, domcart.ErrNotFound),
		errors.Is(err, domcart.ErrItemNotFound),
		errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domreview.ErrNotFound):
		writeError(w, http.StatusNotFound, err)

	case errors.Is(err, domorder.ErrForbidden),
		errors.Is(err, domreview.ErrForbidden):
		writeError(w, http.StatusForbidden, err)

	case errors.Is(err, domreview.ErrDuplicate),
		errors.Is(err, domorder.ErrConflict):
		writeError(w, http.StatusConflict, err)

	case errors.Is(err, domcatalog.ErrInsufficientStock),
		errors.Is(err, domorder.ErrPriceChanged),
		errors.Is(err, domorder.ErrNotCancellable),
		errors.Is(err, domorder.ErrNotRefundable),
		errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, dompayment.ErrAlreadyPaid),
		errors.Is(err, dompayment.ErrNotPayable):
		writeError(w, http.StatusUnprocessableEntity, err)

	case errors.Is(err, domcatalog.ErrInactive),
		errors.Is(err, domcatalog.ErrInvalidStock),
		errors.Is(err, domcatalog.ErrInvalidPrice),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrEmptyOrder),
		errors.Is(err, domreview.ErrInvalidRating),
		errors.Is(err, pricing.ErrInvalidPromo),
		errors.Is(err, apporder.ErrPromoNotFound):
		writeError(w, http.StatusBadRequest, err)

	case errors.Is(err, dompayment.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, err)

	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
