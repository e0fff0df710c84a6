package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/modules/payments"
)

// WebhookParser validates the signature header and decodes the event.
type WebhookParser interface {
	ParseWebhook(headers http.Header, body []byte) (payments.WebhookEvent, error)
}

// WebhookProcessor applies a verified event.
type WebhookProcessor interface {
	Handle(ctx context.Context, ev payments.WebhookEvent, rawBody []byte) error
}

type WebhookHandler struct {
	Logger     *slog.Logger
	Parser     WebhookParser
	WebhookSvc WebhookProcessor
}

func NewWebhookHandler(logger *slog.Logger, parser WebhookParser, svc WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{Logger: logger, Parser: parser, WebhookSvc: svc}
}

// POST /webhooks/paystack
// Body is raw JSON; X-Paystack-Signature is checked against it.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ev, err := h.Parser.ParseWebhook(c.Request.Header, body)
	if err != nil {
		h.Logger.Warn("webhook rejected", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid signature or payload"})
		return
	}

	if err := h.WebhookSvc.Handle(c.Request.Context(), ev, body); err != nil {
		// 500 so the gateway retries the delivery
		h.Logger.Error("webhook apply failed", "event_id", ev.EventID(), "type", ev.Event, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
