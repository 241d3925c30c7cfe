package output

import (
	"context"

	"github.com/cashflow/geidea-payments/internal/core"
)

//go:generate mockgen -source=webhook.go -destination=mocks/mock_webhook.go -package=mocks

// WebhookJournal keeps an audit row for every gateway notification.
type WebhookJournal interface {
	Record(ctx context.Context, delivery core.WebhookDelivery) error
}

// WebhookQueue is an output port for deferring webhook reconciliation to a worker
type WebhookQueue interface {
	// PublishWebhook enqueues the raw notification body
	PublishWebhook(ctx context.Context, payload []byte) error
	// Close closes the messaging connection
	Close() error
}
