package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/input"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultLanguage = "en"
	ListLimit       = 50
)

// amounts are stored as decimal(12,2)
var maxAmount = decimal.New(1, 10)

// PaymentLifecycleManager implements the PaymentService input port
type PaymentLifecycleManager struct {
	store   output.PaymentStore
	gateway output.PaymentGateway
	journal output.WebhookJournal
	cache   output.PaymentCache
	logger  *slog.Logger
	now     func() time.Time
}

var _ input.PaymentService = (*PaymentLifecycleManager)(nil)

// NewPaymentLifecycleManager creates the payment service. journal and cache
// may be nil.
func NewPaymentLifecycleManager(
	store output.PaymentStore,
	gateway output.PaymentGateway,
	journal output.WebhookJournal,
	cache output.PaymentCache,
	logger *slog.Logger,
) *PaymentLifecycleManager {
	return &PaymentLifecycleManager{
		store:   store,
		gateway: gateway,
		journal: journal,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateSession records a PENDING payment, then opens a gateway session for it
func (s *PaymentLifecycleManager) CreateSession(ctx context.Context, req input.CreateSessionRequest) (*input.CreateSessionResponse, error) {
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", core.ErrValidation)
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	currency, err := core.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = DefaultLanguage
	}
	order, err := jsonObject("order", req.Order)
	if err != nil {
		return nil, err
	}
	shipping, err := jsonObject("shippingAddress", req.ShippingAddress)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.Insert(ctx, ownerID, req.Amount, currency)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("payment_id", payment.ID, "merchant_reference_id", payment.MerchantReferenceID)
	log.InfoContext(ctx, "payment created", "amount", payment.Amount.StringFixed(2), "currency", payment.Currency)

	// Reporting data only; the payment stands without it
	if order != nil || shipping != nil {
		if err := s.store.AttachOptionalPayloads(ctx, payment.ID, order, shipping); err != nil {
			log.WarnContext(ctx, "failed to store order/shipping payloads", "err", err)
		}
	}

	// Once the request is on the wire the outcome must be recorded, so the
	// caller going away does not cancel it. The client applies its own timeout.
	gwCtx := context.WithoutCancel(ctx)
	sessionID, err := s.gateway.CreateSession(gwCtx, payment, language, order, shipping)
	if err != nil {
		log.WarnContext(ctx, "gateway session failed, payment stays pending", "err", err)
		return nil, err
	}

	if err := s.store.AttachSession(gwCtx, payment.ID, sessionID); err != nil {
		log.ErrorContext(ctx, "failed to attach gateway session", "session_id", sessionID, "err", err)
		return nil, err
	}
	log.InfoContext(ctx, "gateway session attached", "session_id", sessionID)

	return &input.CreateSessionResponse{
		SessionID:           sessionID,
		PaymentID:           payment.ID,
		MerchantReferenceID: payment.MerchantReferenceID,
	}, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", core.ErrValidation)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount must have at most two decimal places", core.ErrValidation)
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: amount is too large", core.ErrValidation)
	}
	return nil
}

// jsonObject returns nil for an absent or null payload
func jsonObject(field string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: %s must be a JSON object", core.ErrValidation, field)
	}
	return json.RawMessage(trimmed), nil
}

type webhookBody struct {
	Order *struct {
		MerchantReferenceID string `json:"merchantReferenceId"`
		OrderID             string `json:"orderId"`
		Status              string `json:"status"`
		TokenID             string `json:"tokenId"`
	} `json:"order"`
}

// HandleWebhook reconciles one gateway notification. Deliveries for payments
// that are already resolved are acknowledged as duplicates without a write.
func (s *PaymentLifecycleManager) HandleWebhook(ctx context.Context, payload []byte) (*input.WebhookResult, error) {
	delivery := core.WebhookDelivery{
		ID:         uuid.New(),
		Payload:    json.RawMessage(payload),
		ReceivedAt: s.now(),
	}

	result, err := s.reconcile(ctx, payload, &delivery)
	switch {
	case err == nil && result.Duplicate:
		delivery.Outcome = core.WebhookOutcomeDuplicate
	case err == nil:
		delivery.Outcome = core.WebhookOutcomeApplied
	case core.IsWebhookRejection(err):
		delivery.Outcome = core.WebhookOutcomeRejected
		delivery.Error = err.Error()
	default:
		delivery.Outcome = core.WebhookOutcomeFailed
		delivery.Error = err.Error()
	}
	s.record(ctx, delivery)

	if err != nil {
		s.logger.WarnContext(ctx, "webhook not applied",
			"merchant_reference_id", delivery.MerchantReferenceID, "outcome", delivery.Outcome, "err", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "webhook reconciled",
		"payment_id", result.PaymentID, "status", result.Status, "outcome", delivery.Outcome)
	return result, nil
}

func (s *PaymentLifecycleManager) reconcile(ctx context.Context, payload []byte, delivery *core.WebhookDelivery) (*input.WebhookResult, error) {
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidWebhook, err)
	}
	if body.Order == nil {
		return nil, fmt.Errorf("%w: missing order", core.ErrInvalidWebhook)
	}
	ref := strings.TrimSpace(body.Order.MerchantReferenceID)
	if ref == "" {
		return nil, fmt.Errorf("%w: missing merchantReferenceId", core.ErrInvalidWebhook)
	}
	delivery.MerchantReferenceID = ref
	delivery.GatewayOrderID = body.Order.OrderID
	delivery.GatewayStatus = body.Order.Status

	payment, err := s.store.FindByMerchantReference(ctx, ref)
	if errors.Is(err, core.ErrPaymentNotFound) {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownPayment, ref)
	}
	if err != nil {
		return nil, err
	}
	delivery.PaymentID = &payment.ID

	result := &input.WebhookResult{
		PaymentID:           payment.ID,
		MerchantReferenceID: ref,
		Status:              payment.Status,
	}
	if payment.IsTerminal() {
		result.Duplicate = true
		return result, nil
	}

	transition := core.Transition{Status: core.ParseGatewayStatus(body.Order.Status)}
	if transition.Status == core.PaymentStatusSuccess {
		transition.GatewayOrderID = body.Order.OrderID
		transition.CardToken = body.Order.TokenID
	}

	updated, err := s.store.TransitionStatus(ctx, payment.ID, transition)
	if errors.Is(err, core.ErrAlreadyTerminal) {
		// lost the race to a concurrent delivery
		result.Duplicate = true
		if updated != nil {
			result.Status = updated.Status
		}
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Status = updated.Status
	s.cachePayment(ctx, updated)
	return result, nil
}

func (s *PaymentLifecycleManager) record(ctx context.Context, delivery core.WebhookDelivery) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), delivery); err != nil {
		s.logger.ErrorContext(ctx, "failed to journal webhook", "delivery_id", delivery.ID, "err", err)
	}
}

func (s *PaymentLifecycleManager) cachePayment(ctx context.Context, payment *core.Payment) {
	if s.cache == nil || !payment.IsTerminal() {
		return
	}
	if err := s.cache.Set(ctx, payment); err != nil {
		s.logger.WarnContext(ctx, "failed to cache payment", "payment_id", payment.ID, "err", err)
	}
}

// GetStatus returns the caller's payment. Someone else's payment is
// reported exactly like a missing one.
func (s *PaymentLifecycleManager) GetStatus(ctx context.Context, ownerID string, paymentID uuid.UUID) (*input.PaymentView, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner is required", core.ErrValidation)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ownerID, paymentID)
		if err == nil {
			view := input.NewPaymentView(cached)
			return &view, nil
		}
		if !errors.Is(err, output.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "payment cache unavailable", "err", err)
		}
	}

	payment, err := s.store.FindByOwnerAndID(ctx, ownerID, paymentID)
	if err != nil {
		return nil, err
	}
	s.cachePayment(ctx, payment)

	view := input.NewPaymentView(payment)
	return &view, nil
}

// ListPayments returns the caller's most recent payments
func (s *PaymentLifecycleManager) ListPayments(ctx context.Context, ownerID string) ([]input.PaymentView, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner is required", core.ErrValidation)
	}

	payments, err := s.store.ListByOwner(ctx, ownerID, ListLimit)
	if err != nil {
		return nil, err
	}

	views := make([]input.PaymentView, 0, len(payments))
	for i := range payments {
		views = append(views, input.NewPaymentView(&payments[i]))
	}
	return views, nil
}
