package db

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/school-billing/internal/models"
)

// defaultFees is the starter fee structure for a fresh install.
var defaultFees = []models.FeeStructureItem{
	{Description: "Tuition Fee", Amount: decimal.NewFromInt(5000)},
	{Description: "Transport Fee", Amount: decimal.NewFromInt(1500)},
	{Description: "Computer Lab Fee", Amount: decimal.NewFromInt(500)},
}

// Seed inserts the default fee items that are missing. Running it again
// changes nothing.
func Seed(db *gorm.DB) error {
	for _, fee := range defaultFees {
		var existing models.FeeStructureItem
		err := db.Unscoped().Where("description = ?", fee.Description).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed lookup %q: %w", fee.Description, err)
		}
		item := fee
		if err := db.Create(&item).Error; err != nil {
			return fmt.Errorf("seed %q: %w", fee.Description, err)
		}
	}
	return nil
}
