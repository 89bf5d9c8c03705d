package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/emberline/glowmart/internal/domain/order"
	"github.com/emberline/glowmart/internal/payment"
)

// maxWebhookBody bounds the payload read from the payment processor.
const maxWebhookBody = 1 << 16

// handleWebhook receives payment processor events. The body must verify
// against the shared signing secret; verified events that do not settle an
// order, and settlements for unknown orders, are acknowledged so the
// processor stops redelivering them.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	settlement, err := h.webhook.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			respondError(w, http.StatusBadRequest, payment.ErrInvalidSignature.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "malformed event")
		return
	}
	if settlement == nil {
		respondSuccess(w, http.StatusOK, envelope{"message": "event ignored"})
		return
	}

	o, err := h.checkout.Settle(r.Context(), *settlement)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			// Ack so the processor does not retry an order we will never have.
			zctx.From(r.Context()).Warn("settlement for unknown order",
				zap.String("order_id", settlement.OrderID))
			respondSuccess(w, http.StatusOK, envelope{"message": "order not found"})
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondSuccess(w, http.StatusOK, envelope{
		"message": "payment recorded",
		"order":   toOrderResponse(o),
	})
}
