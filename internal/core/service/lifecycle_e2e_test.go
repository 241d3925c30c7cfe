package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cashflow/geidea-payments/internal/adapter/secondary/database"
	"github.com/cashflow/geidea-payments/internal/adapter/secondary/geidea"
	"github.com/cashflow/geidea-payments/internal/constant/model/db"
	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/core/service"
	"github.com/cashflow/geidea-payments/internal/port/input"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
)

type harness struct {
	svc     *service.PaymentLifecycleManager
	db      *db.DB
	calls   *atomic.Int32
	lastReq map[string]json.RawMessage
}

func newHarness(t *testing.T, gatewayBody string, gatewayStatus int) *harness {
	t.Helper()
	conn, err := db.Open(sqlite.Open(filepath.Join(t.TempDir(), "e2e.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := conn.DB.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	h := &harness{db: conn, calls: &atomic.Int32{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &h.lastReq)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(gatewayStatus)
		_, _ = io.WriteString(w, gatewayBody)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := geidea.NewClient(geidea.Config{
		PublicKey:   "pk_test",
		APIPassword: "secret",
		APIBase:     srv.URL,
		CallbackURL: "https://shop.example/api/v1/payments/webhook",
	}, logger)
	h.svc = service.NewPaymentLifecycleManager(
		database.NewGormPaymentRepository(conn.DB),
		client,
		database.NewGormWebhookJournal(conn.DB),
		nil,
		logger,
	)
	return h
}

func (h *harness) countPayments(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(&db.Payment{}).Count(&n).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}

func TestLifecycle_SessionThenSuccessWebhook(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, `{"responseCode":"000","detailedResponseCode":"000","session":{"id":"sess_1"}}`, http.StatusOK)

	resp, err := h.svc.CreateSession(ctx, input.CreateSessionRequest{
		OwnerID:  "user-1",
		Amount:   decimal.RequireFromString("100.00"),
		Currency: "aed",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if resp.SessionID != "sess_1" {
		t.Fatalf("expected sess_1, got %s", resp.SessionID)
	}
	if string(h.lastReq["currency"]) != `"AED"` || string(h.lastReq["amount"]) != `100.00` {
		t.Fatalf("unexpected gateway request currency=%s amount=%s", h.lastReq["currency"], h.lastReq["amount"])
	}

	view, err := h.svc.GetStatus(ctx, "user-1", resp.PaymentID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if view.Status != core.PaymentStatusPending || view.GatewaySessionID != "sess_1" || view.Currency != "AED" {
		t.Fatalf("unexpected pending view %+v", view)
	}

	payload := []byte(`{"order":{"merchantReferenceId":"` + resp.MerchantReferenceID + `","status":"Success","orderId":"ord_9"}}`)
	res, err := h.svc.HandleWebhook(ctx, payload)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if res.Status != core.PaymentStatusSuccess || res.Duplicate {
		t.Fatalf("unexpected webhook result %+v", res)
	}

	view, _ = h.svc.GetStatus(ctx, "user-1", resp.PaymentID)
	if view.Status != core.PaymentStatusSuccess || view.GatewayOrderID != "ord_9" {
		t.Fatalf("unexpected resolved view %+v", view)
	}

	// a late failure notification must not flip the result
	late := []byte(`{"order":{"merchantReferenceId":"` + resp.MerchantReferenceID + `","status":"Failed"}}`)
	res, err = h.svc.HandleWebhook(ctx, late)
	if err != nil || !res.Duplicate || res.Status != core.PaymentStatusSuccess {
		t.Fatalf("expected duplicate SUCCESS, got %+v, %v", res, err)
	}
	view, _ = h.svc.GetStatus(ctx, "user-1", resp.PaymentID)
	if view.Status != core.PaymentStatusSuccess {
		t.Fatalf("terminal status changed to %s", view.Status)
	}

	var journaled int64
	h.db.Model(&db.PaymentWebhook{}).Count(&journaled)
	if journaled != 2 {
		t.Fatalf("expected 2 journal rows, got %d", journaled)
	}
}

func TestLifecycle_DeclinedSessionLeavesOnePendingPayment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, `{"responseCode":"100","responseMessage":"Invalid merchant"}`, http.StatusOK)

	_, err := h.svc.CreateSession(ctx, input.CreateSessionRequest{
		OwnerID:  "user-1",
		Amount:   decimal.RequireFromString("10"),
		Currency: "SAR",
	})
	if !errors.Is(err, core.ErrGatewayDeclined) {
		t.Fatalf("expected ErrGatewayDeclined, got %v", err)
	}
	if h.calls.Load() != 1 {
		t.Fatalf("expected one gateway call, got %d", h.calls.Load())
	}
	if n := h.countPayments(t); n != 1 {
		t.Fatalf("expected exactly one stored payment, got %d", n)
	}

	views, _ := h.svc.ListPayments(ctx, "user-1")
	if len(views) != 1 || views[0].Status != core.PaymentStatusPending || views[0].GatewaySessionID != "" {
		t.Fatalf("expected one pending payment without session, got %+v", views)
	}
}

func TestLifecycle_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, `{"responseCode":"000","session":{"id":"sess_1"}}`, http.StatusOK)

	resp, err := h.svc.CreateSession(ctx, input.CreateSessionRequest{
		OwnerID:  "user-1",
		Amount:   decimal.RequireFromString("5.25"),
		Currency: "USD",
		Order:    json.RawMessage(`{"items":[{"sku":"A1"}]}`),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := h.svc.GetStatus(ctx, "user-2", resp.PaymentID); !errors.Is(err, core.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound for another owner, got %v", err)
	}
	if views, _ := h.svc.ListPayments(ctx, "user-2"); len(views) != 0 {
		t.Fatalf("another owner must see no payments, got %d", len(views))
	}
}

func TestLifecycle_UnknownReferenceCreatesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, `{}`, http.StatusOK)

	_, err := h.svc.HandleWebhook(ctx, []byte(`{"order":{"merchantReferenceId":"does-not-exist","status":"Success"}}`))
	if !errors.Is(err, core.ErrUnknownPayment) {
		t.Fatalf("expected ErrUnknownPayment, got %v", err)
	}
	if n := h.countPayments(t); n != 0 {
		t.Fatalf("webhook must not create payments, got %d", n)
	}
}
