package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 64 << 10
)

// WebhookHandler receives payment processor events.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Stripe handles POST /api/webhooks/stripe. Signature verification needs the raw body.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}

	if err := h.facade.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
