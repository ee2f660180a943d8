package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/models"
)

// GenerateResult reports one generation run.
type GenerateResult struct {
	Period   billing.Period   `json:"period"`
	Created  int              `json:"created"`
	Skipped  int              `json:"skipped"`
	Invoices []models.Invoice `json:"invoices"`
}

// InvoiceService issues monthly invoices.
type InvoiceService struct {
	db  *gorm.DB
	gen billing.Generator
	log *zap.Logger
	mu  sync.Mutex
}

func NewInvoiceService(db *gorm.DB, gen billing.Generator, log *zap.Logger) *InvoiceService {
	return &InvoiceService{db: db, gen: gen, log: log}
}

// Generate bills every active student not yet invoiced for period. Runs are
// serialised in process, and the unique (student, month, year) index makes
// a concurrent run from another process insert nothing twice.
func (s *InvoiceService) Generate(ctx context.Context, period billing.Period) (*GenerateResult, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := &GenerateResult{Period: period, Invoices: []models.Invoice{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var students []models.Student
		if err := tx.Where("is_active = ?", true).Order("created_at, id").Find(&students).Error; err != nil {
			return fmt.Errorf("load students: %w", err)
		}
		var fees []models.FeeStructureItem
		if err := tx.Order("created_at, id").Find(&fees).Error; err != nil {
			return fmt.Errorf("load fee structure: %w", err)
		}
		var existing []models.Invoice
		if err := tx.Where("month = ? AND year = ?", period.Month, period.Year).Find(&existing).Error; err != nil {
			return fmt.Errorf("load invoices: %w", err)
		}

		created := s.gen.Generate(students, fees, existing, period)
		res.Skipped = len(students) - len(created)
		if len(created) == 0 {
			return nil
		}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "month"}, {Name: "year"}},
			DoNothing: true,
		}).Create(&created)
		if ins.Error != nil {
			return fmt.Errorf("insert invoices: %w", ins.Error)
		}
		if int(ins.RowsAffected) == len(created) {
			res.Invoices = created
			return nil
		}
		// another writer billed some of these students first
		ids := make([]string, len(created))
		for i, inv := range created {
			ids[i] = inv.ID
		}
		if err := tx.Where("id IN ?", ids).Order("number").Find(&res.Invoices).Error; err != nil {
			return fmt.Errorf("reload invoices: %w", err)
		}
		res.Skipped += len(created) - len(res.Invoices)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate invoices for %s: %w", period, err)
	}
	res.Created = len(res.Invoices)
	s.log.Info("invoices generated",
		zap.Stringer("period", period), zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}
