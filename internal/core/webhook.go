package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookOutcome records what reconciliation did with a delivery.
type WebhookOutcome string

const (
	WebhookOutcomeApplied   WebhookOutcome = "applied"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeRejected  WebhookOutcome = "rejected"
	WebhookOutcomeFailed    WebhookOutcome = "failed"
)

// WebhookDelivery is one journaled gateway notification.
type WebhookDelivery struct {
	ID                  uuid.UUID
	MerchantReferenceID string
	GatewayOrderID      string
	GatewayStatus       string
	PaymentID           *uuid.UUID
	Outcome             WebhookOutcome
	Error               string
	Payload             json.RawMessage
	ReceivedAt          time.Time
}
