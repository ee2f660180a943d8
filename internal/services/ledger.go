package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/models"
	"github.com/diewo77/school-billing/validation"
)

const dateLayout = "2006-01-02"

// PaymentInput records money received.
type PaymentInput struct {
	InvoiceID   string          `json:"invoiceId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"paymentDate"` // YYYY-MM-DD, defaults to today
}

// WaiverInput records a discount on an invoice.
type WaiverInput struct {
	InvoiceID string          `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason" validate:"max=500"`
}

// InvoiceDetail is an invoice view with its own ledger entries.
type InvoiceDetail struct {
	billing.InvoiceView
	Student  *models.Student  `json:"student,omitempty"`
	Payments []models.Payment `json:"payments"`
	Waivers  []models.Waiver  `json:"waivers"`
}

// LedgerService reads ledger snapshots and appends payments and waivers.
type LedgerService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewLedgerService(db *gorm.DB, log *zap.Logger) *LedgerService {
	return &LedgerService{db: db, log: log, now: time.Now}
}

// snapshotOptions asks PostgreSQL for one consistent read view. SQLite
// transactions are serializable already.
func snapshotOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
	}
	return nil
}

// Snapshot loads every collection in one transaction. Anomalies found by
// the audit are logged, never fatal.
func (s *LedgerService) Snapshot(ctx context.Context) (billing.Ledger, error) {
	var l billing.Ledger
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("created_at, id").Find(&l.Students).Error; err != nil {
			return fmt.Errorf("students: %w", err)
		}
		if err := tx.Order("created_at, number").Find(&l.Invoices).Error; err != nil {
			return fmt.Errorf("invoices: %w", err)
		}
		if err := tx.Order("created_at, id").Find(&l.Payments).Error; err != nil {
			return fmt.Errorf("payments: %w", err)
		}
		if err := tx.Order("created_at, id").Find(&l.Waivers).Error; err != nil {
			return fmt.Errorf("waivers: %w", err)
		}
		if err := tx.Order("created_at, id").Find(&l.FeeStructure).Error; err != nil {
			return fmt.Errorf("fee structure: %w", err)
		}
		return nil
	}, snapshotOptions(s.db)...)
	if err != nil {
		return billing.Ledger{}, fmt.Errorf("load ledger: %w", err)
	}
	for _, issue := range l.Audit() {
		s.log.Warn("ledger anomaly",
			zap.String("kind", string(issue.Kind)), zap.String("ref", issue.Ref), zap.String("detail", issue.Detail))
	}
	return l, nil
}

// InvoiceDetail settles a single invoice from its own entries.
func (s *LedgerService) InvoiceDetail(ctx context.Context, id string) (*InvoiceDetail, error) {
	var (
		inv      models.Invoice
		payments []models.Payment
		waivers  []models.Waiver
		student  models.Student
		found    bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Order("created_at, id").Find(&payments).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Order("created_at, id").Find(&waivers).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", inv.StudentID).Limit(1).Find(&student)
		found = res.RowsAffected > 0
		return res.Error
	}, snapshotOptions(s.db)...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice %s: %w", id, err)
	}

	d := &InvoiceDetail{
		InvoiceView: billing.InvoiceView{Invoice: inv, Settlement: billing.Settle(inv, payments, waivers)},
		Payments:    payments,
		Waivers:     waivers,
	}
	if found {
		d.Student = &student
		d.StudentName = student.Name
		d.StudentEmail = student.GuardianEmail
	}
	return d, nil
}

// RecordPayment appends a payment. Overpayment is accepted; the settlement
// clamps the due amount at zero.
func (s *LedgerService) RecordPayment(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	v := validation.Violations{}
	in.InvoiceID = strings.TrimSpace(in.InvoiceID)
	validation.Required("invoiceId", in.InvoiceID, v)
	validation.PositiveAmount("amount", in.Amount, v)
	paidOn := s.today()
	if strings.TrimSpace(in.PaymentDate) != "" {
		d, err := time.Parse(dateLayout, strings.TrimSpace(in.PaymentDate))
		if err != nil {
			v["paymentDate"] = "invalid_date"
		}
		paidOn = d
	}
	if err := s.checkInvoice(ctx, in.InvoiceID, v); err != nil {
		return nil, err
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	p := models.Payment{InvoiceID: in.InvoiceID, Amount: in.Amount, PaymentDate: paidOn}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	s.log.Info("payment recorded",
		zap.String("payment_id", p.ID), zap.String("invoice_id", p.InvoiceID), zap.String("amount", p.Amount.String()))
	return &p, nil
}

// GrantWaiver appends a waiver.
func (s *LedgerService) GrantWaiver(ctx context.Context, in WaiverInput) (*models.Waiver, error) {
	v := validation.Violations{}
	in.InvoiceID = strings.TrimSpace(in.InvoiceID)
	in.Reason = strings.TrimSpace(in.Reason)
	validation.Required("invoiceId", in.InvoiceID, v)
	validation.PositiveAmount("amount", in.Amount, v)
	validation.Required("reason", in.Reason, v)
	validation.Struct(in, v)
	if err := s.checkInvoice(ctx, in.InvoiceID, v); err != nil {
		return nil, err
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	w := models.Waiver{InvoiceID: in.InvoiceID, Amount: in.Amount, Reason: in.Reason}
	if err := s.db.WithContext(ctx).Create(&w).Error; err != nil {
		return nil, fmt.Errorf("grant waiver: %w", err)
	}
	s.log.Info("waiver granted",
		zap.String("waiver_id", w.ID), zap.String("invoice_id", w.InvoiceID), zap.String("amount", w.Amount.String()))
	return &w, nil
}

// checkInvoice flags an invoiceId that does not reference an invoice.
func (s *LedgerService) checkInvoice(ctx context.Context, id string, v validation.Violations) error {
	if _, bad := v["invoiceId"]; bad {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("look up invoice %s: %w", id, err)
	}
	if count == 0 {
		v["invoiceId"] = "unknown_invoice"
	}
	return nil
}

func (s *LedgerService) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
