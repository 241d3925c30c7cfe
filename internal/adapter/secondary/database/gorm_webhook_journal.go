package database

import (
	"context"
	"encoding/json"
	"unicode/utf8"

	"github.com/cashflow/geidea-payments/internal/constant/model/db"
	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxJournalError = 255

// GormWebhookJournal appends every gateway notification to payment_webhooks
type GormWebhookJournal struct {
	gormDB *gorm.DB
}

var _ output.WebhookJournal = (*GormWebhookJournal)(nil)

// NewGormWebhookJournal creates a new GORM webhook journal
func NewGormWebhookJournal(gormDB *gorm.DB) *GormWebhookJournal {
	return &GormWebhookJournal{gormDB: gormDB}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Record inserts one journal row
func (j *GormWebhookJournal) Record(ctx context.Context, delivery core.WebhookDelivery) error {
	row := &db.PaymentWebhook{
		ID:                  delivery.ID,
		PaymentID:           delivery.PaymentID,
		MerchantReferenceID: delivery.MerchantReferenceID,
		GatewayOrderID:      delivery.GatewayOrderID,
		GatewayStatus:       delivery.GatewayStatus,
		Outcome:             string(delivery.Outcome),
		ReceivedAt:          delivery.ReceivedAt,
	}
	if delivery.Error != "" {
		msg := truncate(delivery.Error, maxJournalError)
		row.Error = &msg
	}
	// jsonb refuses malformed bodies; those are kept only as the error text
	if len(delivery.Payload) > 0 && json.Valid(delivery.Payload) {
		row.Payload = datatypes.JSON(delivery.Payload)
	}

	if err := j.gormDB.WithContext(ctx).Create(row).Error; err != nil {
		return persistenceErr("record webhook", err)
	}
	return nil
}
