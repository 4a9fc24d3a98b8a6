package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/domain/models"
	service "github.com/mamadbah2/importados/internal/service/whatsapp"
)

// Meta callbacks are small; anything bigger is not ours.
const maxWebhookBody = 1 << 20

// WebhookHandler exposes the WhatsApp callback endpoints of the stock bot.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify answers Meta's subscription challenge with hub.challenge when the token matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	challenge, err := h.svc.VerifyWebhookToken(mode, c.Query("hub.verify_token"), c.Query("hub.challenge"))
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.String("mode", mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	h.logger.Info("webhook subscription verified")
	c.String(http.StatusOK, challenge)
}

// Receive acknowledges every well-formed callback. Meta redelivers anything
// that is not a 200, which would repeat replies already sent, so failures
// while answering are logged rather than returned.
func (h *WebhookHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.Object != models.WhatsAppObject {
		h.logger.Debug("ignoring callback for another object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed answering stock query", zap.Error(err))
	}
	c.Status(http.StatusOK)
}
