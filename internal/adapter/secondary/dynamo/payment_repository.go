package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPaymentsTable = "payments"

	ownerIndex     = "owner_id-index"
	referenceIndex = "merchant_reference_id-index"

	// fixed width so created_at sorts lexically in the owner index
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type paymentItem struct {
	ID                  string `dynamodbav:"id"`
	OwnerID             string `dynamodbav:"owner_id"`
	Amount              string `dynamodbav:"amount"`
	Currency            string `dynamodbav:"currency"`
	MerchantReferenceID string `dynamodbav:"merchant_reference_id"`
	GatewaySessionID    string `dynamodbav:"gateway_session_id,omitempty"`
	GatewayOrderID      string `dynamodbav:"gateway_order_id,omitempty"`
	CardToken           string `dynamodbav:"card_token,omitempty"`
	OrderPayload        string `dynamodbav:"order_payload,omitempty"`
	ShippingPayload     string `dynamodbav:"shipping_payload,omitempty"`
	Status              string `dynamodbav:"status"`
	CreatedAt           string `dynamodbav:"created_at"`
	UpdatedAt           string `dynamodbav:"updated_at"`
}

// PaymentRepository persists payments in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: owner_id-index (PK: owner_id, SK: created_at)
//   - GSI: merchant_reference_id-index (PK: merchant_reference_id)
type PaymentRepository struct {
	ddb       API
	tableName string
	now       func() time.Time
}

var _ output.PaymentStore = (*PaymentRepository)(nil)

func NewPaymentRepository(ddb API, tableName string) *PaymentRepository {
	if tableName == "" {
		tableName = DefaultPaymentsTable
	}
	return &PaymentRepository{ddb: ddb, tableName: tableName, now: time.Now}
}

func toPaymentItem(p *core.Payment) paymentItem {
	return paymentItem{
		ID:                  p.ID.String(),
		OwnerID:             p.OwnerID,
		Amount:              p.Amount.String(),
		Currency:            string(p.Currency),
		MerchantReferenceID: p.MerchantReferenceID,
		GatewaySessionID:    p.GatewaySessionID,
		GatewayOrderID:      p.GatewayOrderID,
		CardToken:           p.CardToken,
		OrderPayload:        string(p.OrderPayload),
		ShippingPayload:     string(p.ShippingPayload),
		Status:              string(p.Status),
		CreatedAt:           formatTime(p.CreatedAt),
		UpdatedAt:           formatTime(p.UpdatedAt),
	}
}

func fromPaymentItem(it paymentItem) (*core.Payment, error) {
	id, err := uuid.Parse(it.ID)
	if err != nil {
		return nil, fmt.Errorf("payment id %q: %w", it.ID, err)
	}
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return nil, fmt.Errorf("payment %s amount %q: %w", it.ID, it.Amount, err)
	}
	created, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("payment %s created_at %q: %w", it.ID, it.CreatedAt, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("payment %s updated_at %q: %w", it.ID, it.UpdatedAt, err)
	}

	p := &core.Payment{
		ID:                  id,
		OwnerID:             it.OwnerID,
		Amount:              amount,
		Currency:            core.Currency(it.Currency),
		MerchantReferenceID: it.MerchantReferenceID,
		GatewaySessionID:    it.GatewaySessionID,
		GatewayOrderID:      it.GatewayOrderID,
		CardToken:           it.CardToken,
		Status:              core.PaymentStatus(it.Status),
		CreatedAt:           created,
		UpdatedAt:           updated,
	}
	if it.OrderPayload != "" {
		p.OrderPayload = json.RawMessage(it.OrderPayload)
	}
	if it.ShippingPayload != "" {
		p.ShippingPayload = json.RawMessage(it.ShippingPayload)
	}
	return p, nil
}

func decodePayment(av map[string]types.AttributeValue) (*core.Payment, error) {
	var it paymentItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, persistenceErr("decode payment", err)
	}
	p, err := fromPaymentItem(it)
	if err != nil {
		return nil, persistenceErr("decode payment", err)
	}
	return p, nil
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrPersistence, op, err)
}

func idKey(id uuid.UUID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id.String()},
	}
}

// conditionFailed returns the pre-update item when err is a failed
// condition check; a nil item means the row does not exist
func conditionFailed(err error) (map[string]types.AttributeValue, bool) {
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return nil, false
	}
	return ccf.Item, true
}

func (r *PaymentRepository) Insert(ctx context.Context, ownerID string, amount decimal.Decimal, currency core.Currency) (*core.Payment, error) {
	now := r.now().UTC()
	p := &core.Payment{
		ID:                  uuid.New(),
		OwnerID:             ownerID,
		Amount:              amount,
		Currency:            currency,
		MerchantReferenceID: uuid.NewString(),
		Status:              core.PaymentStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return nil, persistenceErr("encode payment", err)
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return nil, persistenceErr("create payment", err)
	}
	return p, nil
}

func (r *PaymentRepository) AttachSession(ctx context.Context, paymentID uuid.UUID, sessionID string) error {
	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 idKey(paymentID),
		UpdateExpression:    aws.String("SET #sid = :sid, #upd = :upd"),
		ConditionExpression: aws.String("attribute_exists(#id) AND attribute_not_exists(#sid)"),
		ExpressionAttributeNames: map[string]string{
			"#id":  "id",
			"#sid": "gateway_session_id",
			"#upd": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sessionID},
			":upd": &types.AttributeValueMemberS{Value: formatTime(r.now())},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}
	if old, ok := conditionFailed(err); ok {
		if len(old) == 0 {
			return core.ErrPaymentNotFound
		}
		return fmt.Errorf("%w: payment %s", core.ErrSessionAlreadyAttached, paymentID)
	}
	return persistenceErr("attach session", err)
}

func (r *PaymentRepository) AttachOptionalPayloads(ctx context.Context, paymentID uuid.UUID, order, shipping json.RawMessage) error {
	update := "SET #upd = :upd"
	names := map[string]string{"#id": "id", "#upd": "updated_at"}
	values := map[string]types.AttributeValue{
		":upd": &types.AttributeValueMemberS{Value: formatTime(r.now())},
	}
	if len(order) > 0 {
		update += ", #ord = :ord"
		names["#ord"] = "order_payload"
		values[":ord"] = &types.AttributeValueMemberS{Value: string(order)}
	}
	if len(shipping) > 0 {
		update += ", #shp = :shp"
		names["#shp"] = "shipping_payload"
		values[":shp"] = &types.AttributeValueMemberS{Value: string(shipping)}
	}

	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       idKey(paymentID),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err == nil {
		return nil
	}
	if _, ok := conditionFailed(err); ok {
		return core.ErrPaymentNotFound
	}
	return persistenceErr("attach payloads", err)
}

func (r *PaymentRepository) getByID(ctx context.Context, paymentID uuid.UUID) (*core.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            idKey(paymentID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, persistenceErr("get payment", err)
	}
	if len(out.Item) == 0 {
		return nil, core.ErrPaymentNotFound
	}
	return decodePayment(out.Item)
}

func (r *PaymentRepository) FindByOwnerAndID(ctx context.Context, ownerID string, paymentID uuid.UUID) (*core.Payment, error) {
	p, err := r.getByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, core.ErrPaymentNotFound
	}
	return p, nil
}

func (r *PaymentRepository) FindByMerchantReference(ctx context.Context, merchantReferenceID string) (*core.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(referenceIndex),
		KeyConditionExpression: aws.String("merchant_reference_id = :ref"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: merchantReferenceID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, persistenceErr("get payment by reference", err)
	}
	if len(out.Items) == 0 {
		return nil, core.ErrPaymentNotFound
	}
	return decodePayment(out.Items[0])
}

func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]core.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(ownerIndex),
		KeyConditionExpression: aws.String("owner_id = :oid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: ownerID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, persistenceErr("list payments", err)
	}

	payments := make([]core.Payment, 0, len(out.Items))
	for _, raw := range out.Items {
		p, err := decodePayment(raw)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, nil
}

// TransitionStatus relies on a conditional update on status = PENDING,
// so concurrent deliveries cannot both win.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, paymentID uuid.UUID, t core.Transition) (*core.Payment, error) {
	update := "SET #status = :status, #upd = :upd"
	names := map[string]string{"#status": "status", "#upd": "updated_at"}
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: string(t.Status)},
		":pending": &types.AttributeValueMemberS{Value: string(core.PaymentStatusPending)},
		":upd":     &types.AttributeValueMemberS{Value: formatTime(r.now())},
	}
	if t.Status == core.PaymentStatusSuccess {
		if t.GatewayOrderID != "" {
			update += ", #oid = :oid"
			names["#oid"] = "gateway_order_id"
			values[":oid"] = &types.AttributeValueMemberS{Value: t.GatewayOrderID}
		}
		if t.CardToken != "" {
			update += ", #tok = :tok"
			names["#tok"] = "card_token"
			values[":tok"] = &types.AttributeValueMemberS{Value: t.CardToken}
		}
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 idKey(paymentID),
		UpdateExpression:                    aws.String(update),
		ConditionExpression:                 aws.String("#status = :pending"),
		ExpressionAttributeNames:            names,
		ExpressionAttributeValues:           values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		old, ok := conditionFailed(err)
		if !ok {
			return nil, persistenceErr("update payment status", err)
		}
		if len(old) == 0 {
			return nil, core.ErrPaymentNotFound
		}
		current, decErr := decodePayment(old)
		if decErr != nil {
			return nil, decErr
		}
		return current, fmt.Errorf("%w: current status is %s", core.ErrAlreadyTerminal, current.Status)
	}
	return decodePayment(out.Attributes)
}
