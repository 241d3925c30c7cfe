package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusUnknown   PaymentStatus = "UNKNOWN"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusUnknown:
		return true
	}
	return false
}

// ParseGatewayStatus maps the status string reported by a gateway webhook
// to the internal status. Matching is case-insensitive; anything
// unrecognised resolves to UNKNOWN.
func ParseGatewayStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return PaymentStatusSuccess
	case "failed", "declined":
		return PaymentStatusFailed
	case "cancelled", "canceled":
		return PaymentStatusCancelled
	default:
		return PaymentStatusUnknown
	}
}

// Currency is an ISO 4217 alphabetic code, always upper case.
type Currency string

// ParseCurrency normalises a caller supplied currency code.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
		}
	}
	return Currency(code), nil
}

// Payment represents a payment domain entity
type Payment struct {
	ID                  uuid.UUID       `json:"id"`
	OwnerID             string          `json:"owner_id"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            Currency        `json:"currency"`
	MerchantReferenceID string          `json:"merchant_reference_id"`
	GatewaySessionID    string          `json:"gateway_session_id,omitempty"`
	GatewayOrderID      string          `json:"gateway_order_id,omitempty"`
	CardToken           string          `json:"card_token,omitempty"`
	OrderPayload        json.RawMessage `json:"order_payload,omitempty"`
	ShippingPayload     json.RawMessage `json:"shipping_payload,omitempty"`
	Status              PaymentStatus   `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsPending checks if payment is in pending status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsTerminal checks if payment is in a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// HasSession reports whether a gateway session was already attached.
func (p *Payment) HasSession() bool {
	return p.GatewaySessionID != ""
}

// Transition is the write applied by webhook reconciliation. GatewayOrderID
// and CardToken are only meaningful when Status is SUCCESS.
type Transition struct {
	Status         PaymentStatus
	GatewayOrderID string
	CardToken      string
}
