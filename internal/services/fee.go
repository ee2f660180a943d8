package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/models"
	"github.com/diewo77/school-billing/validation"
)

// FeeInput creates or replaces a fee structure item.
type FeeInput struct {
	Description string          `json:"description" validate:"max=255"`
	Amount      decimal.Decimal `json:"amount"`
}

func (in FeeInput) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("description", in.Description, v)
	validation.NonNegativeAmount("amount", in.Amount, v)
	validation.Struct(in, v)
	return v
}

// FeeService edits the fee structure. Issued invoices keep their own copy
// of the items, so nothing here touches them.
type FeeService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFeeService(db *gorm.DB, log *zap.Logger) *FeeService {
	return &FeeService{db: db, log: log}
}

// List returns the current fee structure in creation order.
func (s *FeeService) List(ctx context.Context) ([]models.FeeStructureItem, error) {
	var fees []models.FeeStructureItem
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&fees).Error; err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

func (s *FeeService) Create(ctx context.Context, in FeeInput) (*models.FeeStructureItem, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	fee := models.FeeStructureItem{Description: in.Description, Amount: in.Amount}
	if err := s.db.WithContext(ctx).Create(&fee).Error; err != nil {
		return nil, fmt.Errorf("create fee: %w", err)
	}
	s.log.Info("fee item added", zap.String("fee_id", fee.ID), zap.String("amount", fee.Amount.String()))
	return &fee, nil
}

func (s *FeeService) Update(ctx context.Context, id string, in FeeInput) (*models.FeeStructureItem, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := invalid(in.Validate()); err != nil {
		return nil, err
	}
	var fee models.FeeStructureItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&fee, "id = ?", id).Error; err != nil {
			return err
		}
		fee.Description = in.Description
		fee.Amount = in.Amount
		return tx.Save(&fee).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update fee: %w", err)
	}
	s.log.Info("fee item updated", zap.String("fee_id", fee.ID), zap.String("amount", fee.Amount.String()))
	return &fee, nil
}

func (s *FeeService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.FeeStructureItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete fee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.log.Info("fee item deleted", zap.String("fee_id", id))
	return nil
}
