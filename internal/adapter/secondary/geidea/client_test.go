package geidea

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPayment() *core.Payment {
	return &core.Payment{
		ID:                  uuid.New(),
		OwnerID:             "user-1",
		Amount:              decimal.RequireFromString("100"),
		Currency:            "AED",
		MerchantReferenceID: "ref-123",
		Status:              core.PaymentStatusPending,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		PublicKey:   "pk_test",
		APIPassword: "secret",
		APIBase:     srv.URL + "/",
		CallbackURL: "https://shop.example/payments/webhook",
	}, testLogger(), WithClock(func() time.Time { return fixedNow }))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_CreateSession_Success(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotAuth, gotContentType, gotPath string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		writeJSON(w, http.StatusOK, `{"responseCode":"000","detailedResponseCode":"000","session":{"id":"sess_1"}}`)
	})

	order := json.RawMessage(`{"items":[{"sku":"A1"}]}`)
	sessionID, err := c.CreateSession(context.Background(), testPayment(), "ar", order, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID != "sess_1" {
		t.Fatalf("expected sess_1, got %s", sessionID)
	}

	if gotPath != SessionPath {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type %s", gotContentType)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("pk_test:secret"))
	if gotAuth != wantAuth {
		t.Fatalf("unexpected auth header %s", gotAuth)
	}

	expectRaw := map[string]string{
		"amount":              `100.00`,
		"currency":            `"AED"`,
		"merchantReferenceId": `"ref-123"`,
		"timestamp":           `"2024/01/02 03:04:05"`,
		"callbackUrl":         `"https://shop.example/payments/webhook"`,
		"language":            `"ar"`,
		"order":               `{"items":[{"sku":"A1"}]}`,
	}
	for field, want := range expectRaw {
		if string(gotBody[field]) != want {
			t.Errorf("body field %s = %s, want %s", field, gotBody[field], want)
		}
	}
	if _, ok := gotBody["shippingAddress"]; ok {
		t.Error("shippingAddress must be omitted when absent")
	}

	wantSig := Sign("pk_test", decimal.RequireFromString("100"), "AED", "ref-123", "secret", "2024/01/02 03:04:05")
	if string(gotBody["signature"]) != `"`+wantSig+`"` {
		t.Errorf("unexpected signature %s", gotBody["signature"])
	}
}

func TestClient_CreateSession_AcceptedDetailCodes(t *testing.T) {
	bodies := map[string]string{
		"absent":  `{"responseCode":"000","session":{"id":"s"}}`,
		"null":    `{"responseCode":"000","detailedResponseCode":null,"session":{"id":"s"}}`,
		"five 0s": `{"responseCode":"000","detailedResponseCode":"00000","session":{"id":"s"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			if _, err := c.CreateSession(context.Background(), testPayment(), "en", nil, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestClient_CreateSession_Declined(t *testing.T) {
	cases := map[string]struct {
		body    string
		message string
	}{
		"bad response code": {
			body:    `{"responseCode":"100","responseMessage":"Invalid amount","session":{"id":"s"}}`,
			message: "Invalid amount",
		},
		"bad detailed code": {
			body:    `{"responseCode":"000","detailedResponseCode":"010","detailedResponseMessage":"Currency not allowed"}`,
			message: "Currency not allowed",
		},
		"no message": {
			body:    `{"responseCode":"999"}`,
			message: "Unknown error",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tc.body)
			})
			_, err := c.CreateSession(context.Background(), testPayment(), "en", nil, nil)
			if !errors.Is(err, core.ErrGatewayDeclined) {
				t.Fatalf("expected ErrGatewayDeclined, got %v", err)
			}
			var gwErr *core.GatewayError
			if !errors.As(err, &gwErr) || gwErr.Detail != tc.message {
				t.Fatalf("expected detail %q, got %v", tc.message, err)
			}
		})
	}
}

func TestClient_CreateSession_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"title":"Unauthorized"}`)
	})
	_, err := c.CreateSession(context.Background(), testPayment(), "en", nil, nil)
	if !errors.Is(err, core.ErrGatewayRejected) {
		t.Fatalf("expected ErrGatewayRejected, got %v", err)
	}
	var gwErr *core.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *core.GatewayError, got %T", err)
	}
	if gwErr.StatusCode != http.StatusUnauthorized || gwErr.Detail != `{"title":"Unauthorized"}` {
		t.Fatalf("unexpected error detail: %+v", gwErr)
	}
}

func TestClient_CreateSession_ProtocolErrors(t *testing.T) {
	bodies := map[string]string{
		"missing session": `{"responseCode":"000","detailedResponseCode":"000"}`,
		"empty session":   `{"responseCode":"000","session":{"id":""}}`,
		"not json":        `<html>ok</html>`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := c.CreateSession(context.Background(), testPayment(), "en", nil, nil)
			if !errors.Is(err, core.ErrGatewayProtocol) {
				t.Fatalf("expected ErrGatewayProtocol, got %v", err)
			}
		})
	}
}

func TestClient_CreateSession_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(Config{PublicKey: "pk", APIPassword: "secret", APIBase: base}, testLogger())
	_, err := c.CreateSession(context.Background(), testPayment(), "en", nil, nil)
	if !errors.Is(err, core.ErrGatewayUnreachable) {
		t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestClient_CreateSession_SingleAttempt(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, http.StatusServiceUnavailable, `busy`)
	})
	_, _ = c.CreateSession(context.Background(), testPayment(), "en", nil, nil)
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestConfig_SessionURL(t *testing.T) {
	cfg := Config{APIBase: "https://api.merchant.geidea.net/"}
	if got := cfg.SessionURL(); got != "https://api.merchant.geidea.net/payment-intent/api/v2/direct/session" {
		t.Fatalf("unexpected session url %s", got)
	}
}
