package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cashflow/geidea-payments/internal/constant/model/db"
	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository is a secondary adapter that implements PaymentStore output port
type GormPaymentRepository struct {
	gormDB *gorm.DB
}

var _ output.PaymentStore = (*GormPaymentRepository)(nil)

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(gormDB *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{gormDB: gormDB}
}

// toCore converts db.Payment to core.Payment
func toCore(p *db.Payment) *core.Payment {
	return &core.Payment{
		ID:                  p.ID,
		OwnerID:             p.OwnerID,
		Amount:              p.Amount,
		Currency:            core.Currency(p.Currency),
		MerchantReferenceID: p.MerchantReferenceID,
		GatewaySessionID:    deref(p.GatewaySessionID),
		GatewayOrderID:      deref(p.GatewayOrderID),
		CardToken:           deref(p.CardToken),
		OrderPayload:        rawJSON(p.OrderPayload),
		ShippingPayload:     rawJSON(p.ShippingPayload),
		Status:              core.PaymentStatus(p.Status),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrPersistence, op, err)
}

// Insert creates a new PENDING payment with a fresh merchant reference
func (r *GormPaymentRepository) Insert(ctx context.Context, ownerID string, amount decimal.Decimal, currency core.Currency) (*core.Payment, error) {
	dbPayment := &db.Payment{
		OwnerID:             ownerID,
		Amount:              amount,
		Currency:            string(currency),
		MerchantReferenceID: uuid.NewString(),
		Status:              db.PaymentStatusPending,
	}
	if err := r.gormDB.WithContext(ctx).Create(dbPayment).Error; err != nil {
		return nil, persistenceErr("create payment", err)
	}
	return toCore(dbPayment), nil
}

// lockPayment loads the row with SELECT ... FOR UPDATE inside tx
func lockPayment(tx *gorm.DB, id uuid.UUID) (*db.Payment, error) {
	var dbPayment db.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrPaymentNotFound
		}
		return nil, persistenceErr("lock payment", err)
	}
	return &dbPayment, nil
}

// AttachSession sets the gateway session id if it is not set yet
func (r *GormPaymentRepository) AttachSession(ctx context.Context, paymentID uuid.UUID, sessionID string) error {
	return r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbPayment, err := lockPayment(tx, paymentID)
		if err != nil {
			return err
		}
		if dbPayment.GatewaySessionID != nil {
			return fmt.Errorf("%w: payment %s has session %s", core.ErrSessionAlreadyAttached, paymentID, *dbPayment.GatewaySessionID)
		}

		if err := tx.Model(dbPayment).Updates(map[string]any{
			"gateway_session_id": sessionID,
			"updated_at":         time.Now(),
		}).Error; err != nil {
			return persistenceErr("attach session", err)
		}
		return nil
	})
}

// AttachOptionalPayloads stores order and shipping JSON verbatim
func (r *GormPaymentRepository) AttachOptionalPayloads(ctx context.Context, paymentID uuid.UUID, order, shipping json.RawMessage) error {
	updates := map[string]any{"updated_at": time.Now()}
	if len(order) > 0 {
		updates["order_payload"] = datatypes.JSON(order)
	}
	if len(shipping) > 0 {
		updates["shipping_payload"] = datatypes.JSON(shipping)
	}

	res := r.gormDB.WithContext(ctx).Model(&db.Payment{}).Where("id = ?", paymentID).Updates(updates)
	if res.Error != nil {
		return persistenceErr("attach payloads", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrPaymentNotFound
	}
	return nil
}

// FindByOwnerAndID retrieves a payment owned by ownerID
func (r *GormPaymentRepository) FindByOwnerAndID(ctx context.Context, ownerID string, paymentID uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", paymentID, ownerID).
		First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrPaymentNotFound
		}
		return nil, persistenceErr("get payment", err)
	}
	return toCore(&dbPayment), nil
}

// FindByMerchantReference retrieves a payment by its merchant reference
func (r *GormPaymentRepository) FindByMerchantReference(ctx context.Context, merchantReferenceID string) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.WithContext(ctx).
		Where("merchant_reference_id = ?", merchantReferenceID).
		First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrPaymentNotFound
		}
		return nil, persistenceErr("get payment by reference", err)
	}
	return toCore(&dbPayment), nil
}

// ListByOwner returns the owner's most recent payments
func (r *GormPaymentRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]core.Payment, error) {
	var rows []db.Payment
	if err := r.gormDB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, persistenceErr("list payments", err)
	}

	payments := make([]core.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, *toCore(&rows[i]))
	}
	return payments, nil
}

// TransitionStatus atomically resolves a payment if it's in PENDING status
// Uses SELECT FOR UPDATE so concurrent webhooks serialise on the row
func (r *GormPaymentRepository) TransitionStatus(ctx context.Context, paymentID uuid.UUID, t core.Transition) (*core.Payment, error) {
	var result *core.Payment
	var terminal bool

	err := r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbPayment, err := lockPayment(tx, paymentID)
		if err != nil {
			return err
		}

		// Only resolve if status is PENDING
		if !dbPayment.IsPending() {
			result = toCore(dbPayment)
			terminal = true
			return nil
		}

		dbPayment.Status = db.PaymentStatus(t.Status)
		dbPayment.UpdatedAt = time.Now()
		if t.Status == core.PaymentStatusSuccess {
			if t.GatewayOrderID != "" {
				dbPayment.GatewayOrderID = &t.GatewayOrderID
			}
			if t.CardToken != "" {
				dbPayment.CardToken = &t.CardToken
			}
		}

		if err := tx.Save(dbPayment).Error; err != nil {
			return persistenceErr("update payment status", err)
		}
		result = toCore(dbPayment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if terminal {
		return result, fmt.Errorf("%w: current status is %s", core.ErrAlreadyTerminal, result.Status)
	}
	return result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rawJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return nil
	}
	return json.RawMessage(j)
}
