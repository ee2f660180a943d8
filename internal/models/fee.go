package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeStructureItem is one line of the school's current monthly fee
// template. Edits apply to invoices generated afterwards only.
type FeeStructureItem struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Description string          `gorm:"size:255;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
}

func (f *FeeStructureItem) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}

// LineItem snapshots the fee item for an invoice.
func (f FeeStructureItem) LineItem() LineItem {
	return LineItem{Description: f.Description, Amount: f.Amount}
}
