package output

import (
	"context"
	"errors"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/google/uuid"
)

var ErrCacheMiss = errors.New("cache miss")

// PaymentCache holds payments that reached a terminal state. Those never
// change again, so entries need no invalidation.
type PaymentCache interface {
	Get(ctx context.Context, ownerID string, paymentID uuid.UUID) (*core.Payment, error)
	Set(ctx context.Context, payment *core.Payment) error
}
