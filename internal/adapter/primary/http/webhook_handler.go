package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/input"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/labstack/echo/v4"
)

// WebhookHandler receives gateway notifications. With a queue configured the
// body is handed to the worker; otherwise it is reconciled in the request.
type WebhookHandler struct {
	paymentService input.PaymentService
	queue          output.WebhookQueue
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler; queue may be nil
func NewWebhookHandler(paymentService input.PaymentService, queue output.WebhookQueue, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
		queue:          queue,
		logger:         logger,
	}
}

// Handle handles POST /payments/webhook
func (h *WebhookHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if h.queue != nil {
		err := h.queue.PublishWebhook(ctx, body)
		if err == nil {
			return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
		}
		h.logger.ErrorContext(ctx, "failed to queue webhook, processing inline", "err", err)
	}

	_, err = h.paymentService.HandleWebhook(ctx, body)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	case core.IsWebhookRejection(err):
		// acknowledged so the gateway stops redelivering it
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	default:
		h.logger.ErrorContext(ctx, "webhook processing failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to process webhook",
		})
	}
}
