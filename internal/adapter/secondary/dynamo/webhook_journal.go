package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
)

const DefaultWebhooksTable = "payment_webhooks"

type webhookItem struct {
	ID                  string `dynamodbav:"id"`
	PaymentID           string `dynamodbav:"payment_id,omitempty"`
	MerchantReferenceID string `dynamodbav:"merchant_reference_id,omitempty"`
	GatewayOrderID      string `dynamodbav:"gateway_order_id,omitempty"`
	GatewayStatus       string `dynamodbav:"gateway_status,omitempty"`
	Outcome             string `dynamodbav:"outcome"`
	Error               string `dynamodbav:"error,omitempty"`
	Payload             string `dynamodbav:"payload,omitempty"`
	ReceivedAt          string `dynamodbav:"received_at"`
}

// WebhookJournal writes one item per gateway notification. PK: id (string)
type WebhookJournal struct {
	ddb       API
	tableName string
}

var _ output.WebhookJournal = (*WebhookJournal)(nil)

func NewWebhookJournal(ddb API, tableName string) *WebhookJournal {
	if tableName == "" {
		tableName = DefaultWebhooksTable
	}
	return &WebhookJournal{ddb: ddb, tableName: tableName}
}

func toWebhookItem(d core.WebhookDelivery) webhookItem {
	it := webhookItem{
		ID:                  d.ID.String(),
		MerchantReferenceID: d.MerchantReferenceID,
		GatewayOrderID:      d.GatewayOrderID,
		GatewayStatus:       d.GatewayStatus,
		Outcome:             string(d.Outcome),
		Error:               d.Error,
		Payload:             string(d.Payload),
		ReceivedAt:          formatTime(d.ReceivedAt),
	}
	if d.PaymentID != nil {
		it.PaymentID = d.PaymentID.String()
	}
	return it
}

func (j *WebhookJournal) Record(ctx context.Context, delivery core.WebhookDelivery) error {
	av, err := attributevalue.MarshalMap(toWebhookItem(delivery))
	if err != nil {
		return persistenceErr("encode webhook", err)
	}
	if _, err := j.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(j.tableName),
		Item:      av,
	}); err != nil {
		return persistenceErr("record webhook", err)
	}
	return nil
}
