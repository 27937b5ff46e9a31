package api

import (
	"log"
	"net/http"

	"detectorbot/relay/internal/service"
	"detectorbot/relay/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

// WebhookHandler terminates the WhatsApp webhook: the verification handshake
// on GET, event deliveries on POST.
type WebhookHandler struct {
	relay       *service.RelayService
	verifyToken string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(relay *service.RelayService, verifyToken string) *WebhookHandler {
	return &WebhookHandler{relay: relay, verifyToken: verifyToken}
}

// Verify handles the GET challenge/token handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if token != h.verifyToken {
		log.Printf("WARN: Webhook verification failed")
		c.String(http.StatusForbidden, "Verification failed")
		return
	}

	log.Printf("INFO: Webhook verified successfully")
	c.String(http.StatusOK, challenge)
}

// Receive handles POST deliveries. It always acks 200 — even when handling
// fails — so the transport does not redeliver the same event indefinitely.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload whatsapp.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("WARN: Undecodable webhook payload: %v", err)
		c.String(http.StatusOK, "ok")
		return
	}

	for _, msg := range payload.Messages() {
		h.relay.HandleMessage(c.Request.Context(), msg)
	}

	c.String(http.StatusOK, "ok")
}
