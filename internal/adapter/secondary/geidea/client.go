package geidea

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
)

const (
	// SessionPath is appended to the configured API base URL
	SessionPath    = "/payment-intent/api/v2/direct/session"
	DefaultTimeout = 30 * time.Second

	maxDiagnosticBody = 2048
)

// Config holds the credentials and URLs the client signs requests with
type Config struct {
	PublicKey   string
	APIPassword string
	APIBase     string
	CallbackURL string
	Timeout     time.Duration
}

// SessionURL is the absolute session-creation endpoint
func (c Config) SessionURL() string {
	return strings.TrimRight(c.APIBase, "/") + SessionPath
}

// Client is a secondary adapter that implements the PaymentGateway output port
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

var _ output.PaymentGateway = (*Client)(nil)

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock replaces the clock used for request timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new Geidea session client
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sessionRequest struct {
	Amount              json.Number     `json:"amount"`
	Currency            string          `json:"currency"`
	MerchantReferenceID string          `json:"merchantReferenceId"`
	Timestamp           string          `json:"timestamp"`
	Signature           string          `json:"signature"`
	CallbackURL         string          `json:"callbackUrl"`
	Language            string          `json:"language"`
	Order               json.RawMessage `json:"order,omitempty"`
	ShippingAddress     json.RawMessage `json:"shippingAddress,omitempty"`
}

type sessionResponse struct {
	ResponseCode            string  `json:"responseCode"`
	ResponseMessage         string  `json:"responseMessage"`
	DetailedResponseCode    *string `json:"detailedResponseCode"`
	DetailedResponseMessage string  `json:"detailedResponseMessage"`
	Session                 *struct {
		ID string `json:"id"`
	} `json:"session"`
}

func (r sessionResponse) accepted() bool {
	if r.ResponseCode != "000" {
		return false
	}
	if r.DetailedResponseCode == nil {
		return true
	}
	switch *r.DetailedResponseCode {
	case "000", "00000":
		return true
	}
	return false
}

func (r sessionResponse) message() string {
	if r.DetailedResponseMessage != "" {
		return r.DetailedResponseMessage
	}
	if r.ResponseMessage != "" {
		return r.ResponseMessage
	}
	return "Unknown error"
}

// CreateSession sends one signed session-creation request. There is no
// retry: a second attempt could open a second session for the same payment.
func (c *Client) CreateSession(ctx context.Context, payment *core.Payment, language string, order, shippingAddress json.RawMessage) (string, error) {
	timestamp := FormatTimestamp(c.now())
	body := sessionRequest{
		Amount:              json.Number(FormatAmount(payment.Amount)),
		Currency:            string(payment.Currency),
		MerchantReferenceID: payment.MerchantReferenceID,
		Timestamp:           timestamp,
		Signature: Sign(c.cfg.PublicKey, payment.Amount, string(payment.Currency),
			payment.MerchantReferenceID, c.cfg.APIPassword, timestamp),
		CallbackURL:     c.cfg.CallbackURL,
		Language:        language,
		Order:           order,
		ShippingAddress: shippingAddress,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", &core.GatewayError{Kind: core.ErrGatewayProtocol, Detail: "encode request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SessionURL(), bytes.NewReader(raw))
	if err != nil {
		return "", &core.GatewayError{Kind: core.ErrGatewayProtocol, Detail: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.cfg.PublicKey, c.cfg.APIPassword))

	c.logger.InfoContext(ctx, "geidea create session start",
		"payment_id", payment.ID, "merchant_reference_id", payment.MerchantReferenceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "geidea unreachable", "payment_id", payment.ID, "err", err)
		return "", &core.GatewayError{Kind: core.ErrGatewayUnreachable, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &core.GatewayError{Kind: core.ErrGatewayUnreachable, StatusCode: resp.StatusCode, Detail: "read response", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.WarnContext(ctx, "geidea rejected session request",
			"payment_id", payment.ID, "status", resp.StatusCode)
		return "", &core.GatewayError{Kind: core.ErrGatewayRejected, StatusCode: resp.StatusCode, Detail: truncate(string(respBody), maxDiagnosticBody)}
	}

	var parsed sessionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.ErrorContext(ctx, "geidea response is not valid json", "payment_id", payment.ID, "err", err)
		return "", &core.GatewayError{Kind: core.ErrGatewayProtocol, StatusCode: resp.StatusCode, Detail: "decode response", Err: err}
	}

	if !parsed.accepted() {
		c.logger.WarnContext(ctx, "geidea declined session",
			"payment_id", payment.ID, "response_code", parsed.ResponseCode, "message", parsed.message())
		return "", &core.GatewayError{Kind: core.ErrGatewayDeclined, StatusCode: resp.StatusCode, Detail: parsed.message()}
	}

	if parsed.Session == nil || parsed.Session.ID == "" {
		c.logger.ErrorContext(ctx, "geidea response missing session id", "payment_id", payment.ID)
		return "", &core.GatewayError{Kind: core.ErrGatewayProtocol, StatusCode: resp.StatusCode, Detail: "missing session id"}
	}

	c.logger.InfoContext(ctx, "geidea create session success",
		"payment_id", payment.ID, "session_id", parsed.Session.ID)
	return parsed.Session.ID, nil
}

func basicAuth(key, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", key, secret)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
