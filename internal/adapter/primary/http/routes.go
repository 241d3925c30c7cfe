package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the payment API on e under /api/v1
func RegisterRoutes(e *echo.Echo, payments *PaymentHandler, webhooks *WebhookHandler) {
	api := e.Group("/api/v1")

	// Gateway callbacks carry no user identity
	api.POST("/payments/webhook", webhooks.Handle)

	owned := api.Group("/payments", RequireOwner())
	owned.POST("/create-session", payments.CreateSession)
	owned.GET("/status/:id", payments.GetStatus)
	owned.GET("", payments.ListPayments)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
