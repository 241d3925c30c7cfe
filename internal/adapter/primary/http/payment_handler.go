package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cashflow/geidea-payments/internal/port/input"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CheckoutURLs are handed to the checkout page along with the session id
type CheckoutURLs struct {
	Success string
	Cancel  string
}

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService input.PaymentService
	urls           CheckoutURLs
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService, urls CheckoutURLs, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		urls:           urls,
		logger:         logger,
	}
}

// CreateSessionRequest represents the HTTP request to open a payment session
type CreateSessionRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Language        string          `json:"language"`
	Order           json.RawMessage `json:"order"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
}

// CreateSessionResponse represents the HTTP response for an opened session
type CreateSessionResponse struct {
	SessionID           string `json:"session_id"`
	PaymentID           string `json:"payment_id"`
	MerchantReferenceID string `json:"merchant_reference_id"`
	SuccessURL          string `json:"success_url"`
	CancelURL           string `json:"cancel_url"`
}

// PaymentResponse represents the HTTP response for a payment
type PaymentResponse struct {
	ID                  string          `json:"id"`
	Status              string          `json:"status"`
	Amount              string          `json:"amount"`
	Currency            string          `json:"currency"`
	MerchantReferenceID string          `json:"merchant_reference_id"`
	GatewaySessionID    string          `json:"gateway_session_id,omitempty"`
	GatewayOrderID      string          `json:"gateway_order_id,omitempty"`
	Order               json.RawMessage `json:"order,omitempty"`
	ShippingAddress     json.RawMessage `json:"shipping_address,omitempty"`
	CreatedAt           string          `json:"created_at"`
}

func toPaymentResponse(v input.PaymentView) PaymentResponse {
	return PaymentResponse{
		ID:                  v.ID.String(),
		Status:              string(v.Status),
		Amount:              v.Amount.StringFixed(2),
		Currency:            string(v.Currency),
		MerchantReferenceID: v.MerchantReferenceID,
		GatewaySessionID:    v.GatewaySessionID,
		GatewayOrderID:      v.GatewayOrderID,
		Order:               v.Order,
		ShippingAddress:     v.ShippingAddress,
		CreatedAt:           v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *PaymentHandler) errorResponse(c echo.Context, err error) error {
	status, msg := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request().Context(), "payment request failed",
			"path", c.Path(), "status", status, "err", err)
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// CreateSession handles POST /payments/create-session
func (h *PaymentHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	// Call service (input port)
	response, err := h.paymentService.CreateSession(c.Request().Context(), input.CreateSessionRequest{
		OwnerID:         ownerID(c),
		Amount:          req.Amount,
		Currency:        req.Currency,
		Language:        req.Language,
		Order:           req.Order,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID:           response.SessionID,
		PaymentID:           response.PaymentID.String(),
		MerchantReferenceID: response.MerchantReferenceID,
		SuccessURL:          h.urls.Success,
		CancelURL:           h.urls.Cancel,
	})
}

// GetStatus handles GET /payments/status/:id
func (h *PaymentHandler) GetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid payment ID",
		})
	}

	view, err := h.paymentService.GetStatus(c.Request().Context(), ownerID(c), id)
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, toPaymentResponse(*view))
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	views, err := h.paymentService.ListPayments(c.Request().Context(), ownerID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}

	payments := make([]PaymentResponse, 0, len(views))
	for _, v := range views {
		payments = append(payments, toPaymentResponse(v))
	}
	return c.JSON(http.StatusOK, payments)
}
