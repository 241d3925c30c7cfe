package http

import (
	"errors"
	"net/http"

	"github.com/cashflow/geidea-payments/internal/core"
)

// mapError picks the status code and client message for a service error
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrPaymentNotFound):
		return http.StatusNotFound, "Payment not found"
	case errors.Is(err, core.ErrGatewayDeclined):
		return http.StatusBadRequest, gatewayDetail(err)
	case errors.Is(err, core.ErrGatewayRejected):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, core.ErrGatewayUnreachable):
		return http.StatusBadGateway, "Payment gateway unreachable"
	case errors.Is(err, core.ErrGatewayProtocol):
		return http.StatusInternalServerError, "Payment gateway returned an invalid response"
	case errors.Is(err, core.ErrSessionAlreadyAttached):
		return http.StatusConflict, "Payment already has a gateway session"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func gatewayDetail(err error) string {
	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) && gwErr.Detail != "" {
		return gwErr.Detail
	}
	return err.Error()
}
