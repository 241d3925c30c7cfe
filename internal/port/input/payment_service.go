package input

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=payment_service.go -destination=mocks/mock_payment_service.go -package=mocks

// PaymentService is an input port (primary port) for payment operations
// Primary adapters (HTTP handlers, queue consumers) will use this
type PaymentService interface {
	// CreateSession records a PENDING payment and opens a gateway session for it
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error)

	// HandleWebhook reconciles one gateway notification
	HandleWebhook(ctx context.Context, payload []byte) (*WebhookResult, error)

	// GetStatus returns the caller's payment
	GetStatus(ctx context.Context, ownerID string, paymentID uuid.UUID) (*PaymentView, error)

	// ListPayments returns the caller's payments, newest first
	ListPayments(ctx context.Context, ownerID string) ([]PaymentView, error)
}

// CreateSessionRequest represents the request to open a payment session
type CreateSessionRequest struct {
	OwnerID         string
	Amount          decimal.Decimal
	Currency        string
	Language        string
	Order           json.RawMessage
	ShippingAddress json.RawMessage
}

// CreateSessionResponse represents the response for a created session
type CreateSessionResponse struct {
	SessionID           string
	PaymentID           uuid.UUID
	MerchantReferenceID string
}

// WebhookResult reports the outcome of a single reconciliation attempt
type WebhookResult struct {
	PaymentID           uuid.UUID
	MerchantReferenceID string
	Status              core.PaymentStatus
	Duplicate           bool
}

// PaymentView is the read-only projection returned to the payment owner
type PaymentView struct {
	ID                  uuid.UUID
	Status              core.PaymentStatus
	Amount              decimal.Decimal
	Currency            core.Currency
	MerchantReferenceID string
	GatewaySessionID    string
	GatewayOrderID      string
	Order               json.RawMessage
	ShippingAddress     json.RawMessage
	CreatedAt           time.Time
}

// NewPaymentView projects a payment for its owner
func NewPaymentView(p *core.Payment) PaymentView {
	return PaymentView{
		ID:                  p.ID,
		Status:              p.Status,
		Amount:              p.Amount,
		Currency:            p.Currency,
		MerchantReferenceID: p.MerchantReferenceID,
		GatewaySessionID:    p.GatewaySessionID,
		GatewayOrderID:      p.GatewayOrderID,
		Order:               p.OrderPayload,
		ShippingAddress:     p.ShippingPayload,
		CreatedAt:           p.CreatedAt,
	}
}
