package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money received against an invoice. Append-only.
type Payment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	InvoiceID   string          `gorm:"size:36;not null;index" json:"invoiceId"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"paymentDate"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Waiver forgives part of an invoice's total. Append-only.
type Waiver struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	InvoiceID string          `gorm:"size:36;not null;index" json:"invoiceId"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Reason    string          `gorm:"size:500;not null" json:"reason"`
}

func (w *Waiver) BeforeCreate(*gorm.DB) error {
	assignID(&w.ID)
	return nil
}
