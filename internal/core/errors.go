package core

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrGatewayUnreachable     = errors.New("payment gateway unreachable")
	ErrGatewayRejected        = errors.New("payment gateway rejected the request")
	ErrGatewayDeclined        = errors.New("payment gateway declined the session")
	ErrGatewayProtocol        = errors.New("payment gateway protocol violation")
	ErrPersistence            = errors.New("payment storage failure")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidWebhook         = errors.New("invalid webhook payload")
	ErrUnknownPayment         = errors.New("webhook references unknown payment")
	ErrAlreadyTerminal        = errors.New("payment already in a terminal state")
	ErrSessionAlreadyAttached = errors.New("payment already has a gateway session")
)

// GatewayError describes a failed session-creation call. Kind is one of the
// ErrGateway* sentinels, so callers branch with errors.Is.
type GatewayError struct {
	Kind       error
	StatusCode int
	Detail     string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (http %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsWebhookRejection reports whether err means the webhook can never be
// applied, no matter how often it is redelivered.
func IsWebhookRejection(err error) bool {
	return errors.Is(err, ErrInvalidWebhook) || errors.Is(err, ErrUnknownPayment)
}
