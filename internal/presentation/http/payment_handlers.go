package httppresentation

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenmart/storefront/internal/observability"
	"github.com/greenmart/storefront/internal/observability/logctx"
)

const headerWebhookSignature = "X-Provider-Signature"

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

func (h *Handler) handleCreateIntent(w http.ResponseWriter, r *http.Request) {
	result, err := h.payments.CreateIntent(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type confirmTransferRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	var req confirmTransferRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	o, err := h.payments.ConfirmBankTransfer(r.Context(), chi.URLParam(r, "id"), req.Note, actorFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleWebhook receives provider notifications. The signature is verified
// before the payload is trusted; a verified but unprocessable event still
// returns 200 so the provider stops redelivering it, with the failure left
// to the logs.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.webhook.Verify(payload, r.Header.Get(headerWebhookSignature)); err != nil {
		writeDomainError(w, err)
		return
	}

	evt, err := h.webhook.Parse(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.payments.HandleProviderEvent(r.Context(), evt); err != nil {
		logctx.FromOr(r.Context(), h.log).Error("webhook_event_failed",
			observability.F("event_id", evt.ID),
			observability.F("event_type", evt.Type),
			observability.F("error", err.Error()),
		)
	}
	writeJSON(w, http.StatusOK, map[string]string{"received": evt.ID})
}
