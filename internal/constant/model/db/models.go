package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
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

// Payment represents a payment entity in the database
type Payment struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID             string          `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	Amount              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency            string          `gorm:"type:varchar(3);not null" json:"currency"`
	MerchantReferenceID string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"merchant_reference_id"`
	GatewaySessionID    *string         `gorm:"type:varchar(64)" json:"gateway_session_id"`
	GatewayOrderID      *string         `gorm:"type:varchar(64);uniqueIndex" json:"gateway_order_id"`
	CardToken           *string         `gorm:"type:varchar(64)" json:"card_token"`
	OrderPayload        datatypes.JSON  `gorm:"type:jsonb" json:"order_payload"`
	ShippingPayload     datatypes.JSON  `gorm:"type:jsonb" json:"shipping_payload"`
	Status              PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// IsPending checks if payment is in pending status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// PaymentWebhook is one gateway notification as received, with the
// reconciliation outcome
type PaymentWebhook struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID           *uuid.UUID     `gorm:"type:uuid;index" json:"payment_id"`
	MerchantReferenceID string         `gorm:"type:text;index" json:"merchant_reference_id"`
	GatewayOrderID      string         `gorm:"type:text" json:"gateway_order_id"`
	GatewayStatus       string         `gorm:"type:text" json:"gateway_status"`
	Outcome             string         `gorm:"type:varchar(16);not null;index" json:"outcome"`
	Error               *string        `gorm:"type:text" json:"error"`
	Payload             datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ReceivedAt          time.Time      `gorm:"not null;index" json:"received_at"`
}

// TableName specifies the table name for GORM
func (PaymentWebhook) TableName() string {
	return "payment_webhooks"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (w *PaymentWebhook) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.ReceivedAt.IsZero() {
		w.ReceivedAt = time.Now()
	}
	return nil
}
