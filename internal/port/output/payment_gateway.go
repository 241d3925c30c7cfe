package output

import (
	"context"
	"encoding/json"

	"github.com/cashflow/geidea-payments/internal/core"
)

//go:generate mockgen -source=payment_gateway.go -destination=mocks/mock_payment_gateway.go -package=mocks

// PaymentGateway opens a hosted payment session with the gateway.
// Errors are *core.GatewayError values.
type PaymentGateway interface {
	CreateSession(ctx context.Context, payment *core.Payment, language string, order, shippingAddress json.RawMessage) (string, error)
}
