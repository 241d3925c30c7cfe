package output

import (
	"context"
	"encoding/json"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=payment_repository.go -destination=mocks/mock_payment_repository.go -package=mocks

// PaymentStore is an output port (secondary port) for payment data access.
// Every state-mutating method is scoped to a single row.
type PaymentStore interface {
	// Insert persists a new PENDING payment with a fresh merchant reference
	Insert(ctx context.Context, ownerID string, amount decimal.Decimal, currency core.Currency) (*core.Payment, error)

	// AttachSession records the gateway session id; it can be set only once
	AttachSession(ctx context.Context, paymentID uuid.UUID, sessionID string) error

	// AttachOptionalPayloads stores the caller's order and shipping JSON verbatim
	AttachOptionalPayloads(ctx context.Context, paymentID uuid.UUID, order, shipping json.RawMessage) error

	// FindByOwnerAndID returns ErrPaymentNotFound when missing or owned by someone else
	FindByOwnerAndID(ctx context.Context, ownerID string, paymentID uuid.UUID) (*core.Payment, error)

	// FindByMerchantReference is used by webhook reconciliation only
	FindByMerchantReference(ctx context.Context, merchantReferenceID string) (*core.Payment, error)

	// ListByOwner returns the owner's payments, newest first
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]core.Payment, error)

	// TransitionStatus atomically moves a PENDING payment to a terminal status.
	// For a payment that is already terminal it returns the stored payment
	// together with ErrAlreadyTerminal.
	TransitionStatus(ctx context.Context, paymentID uuid.UUID, t core.Transition) (*core.Payment, error)
}
