// internal/api/handler/webhook.go
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"custodial-wallet/internal/api/types"
	"custodial-wallet/internal/gateway/paystack"
	"custodial-wallet/internal/service"
	"custodial-wallet/internal/util"
)

// WebhookHandler receives Paystack payment notifications.
type WebhookHandler struct {
	responder
	settlement service.SettlementService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(settlement service.SettlementService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		responder:  newResponder(logger, nil),
		settlement: settlement,
	}
}

// Paystack settles a deposit from a signed notification. Only a signature
// failure is refused; everything else is acknowledged so the sender does not
// retry on our internal faults.
// POST /wallet/paystack/webhook
func (h *WebhookHandler) Paystack(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	outcome, err := h.settlement.HandleWebhook(r.Context(), body, r.Header.Get(paystack.SignatureHeader))
	if util.IsError(err, util.ErrInvalidSignature) {
		h.logger.Warn("webhook rejected", "remote_addr", r.RemoteAddr)
		h.respondWithError(w, r, err)
		return
	}
	if err != nil {
		h.logger.Error("webhook acknowledged despite settlement failure", "outcome", outcome, "error", err)
	}

	h.respondWithJSON(w, http.StatusOK, types.WebhookAck{Status: true})
}
