package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceStatus is the settlement state of an invoice. It is always derived
// from the payments and waivers on record and never stored.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// Invoice is the monthly bill of one student. It is immutable once issued.
type Invoice struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	// Invoice identification
	Number string `gorm:"size:32;uniqueIndex" json:"number"`

	// One invoice per student and billing period
	StudentID string     `gorm:"size:36;not null;uniqueIndex:idx_invoice_period,priority:1" json:"studentId"`
	Month     time.Month `gorm:"not null;uniqueIndex:idx_invoice_period,priority:2" json:"month"`
	Year      int        `gorm:"not null;uniqueIndex:idx_invoice_period,priority:3" json:"year"`

	IssueDate time.Time `gorm:"not null" json:"issueDate"`
	DueDate   time.Time `gorm:"not null" json:"dueDate"`

	// Items are a copy of the fee structure at issue time.
	Items       datatypes.JSONSlice[LineItem] `json:"items"`
	TotalAmount decimal.Decimal               `gorm:"type:decimal(14,2);not null" json:"totalAmount"`
}

// LineItem is a single charge on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// ItemsTotal sums the line items.
func (i *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// PeriodLabel formats the billing period, e.g. "2025-04".
func (i *Invoice) PeriodLabel() string {
	return fmt.Sprintf("%04d-%02d", i.Year, int(i.Month))
}

// InvoiceNumber formats the number of the seq-th invoice of a period.
// Format: INV-YYYYMM-NNNN (e.g., INV-202504-0001)
func InvoiceNumber(year int, month time.Month, seq int) string {
	return fmt.Sprintf("INV-%04d%02d-%04d", year, int(month), seq)
}
