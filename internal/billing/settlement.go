// Package billing derives invoice settlement, reporting rollups and monthly
// invoice generation from plain ledger collections. Nothing in this package
// touches storage; every result is recomputed from its inputs.
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/diewo77/school-billing/internal/models"
)

// Settlement is the paid, waived and outstanding position of one invoice.
type Settlement struct {
	PaidAmount   decimal.Decimal      `json:"paidAmount"`
	WaiverAmount decimal.Decimal      `json:"waiverAmount"`
	DueAmount    decimal.Decimal      `json:"dueAmount"`
	Status       models.InvoiceStatus `json:"status"`
}

// Settle computes the settlement of inv. payments and waivers may hold
// entries for any invoice; only those referencing inv.ID count.
//
// An overpayment yields a zero due amount and status Paid. The excess is not
// carried anywhere.
func Settle(inv models.Invoice, payments []models.Payment, waivers []models.Waiver) Settlement {
	paid := decimal.Zero
	for _, p := range payments {
		if p.InvoiceID == inv.ID {
			paid = paid.Add(p.Amount)
		}
	}
	waived := decimal.Zero
	for _, w := range waivers {
		if w.InvoiceID == inv.ID {
			waived = waived.Add(w.Amount)
		}
	}
	return settle(inv.TotalAmount, paid, waived)
}

func settle(total, paid, waived decimal.Decimal) Settlement {
	raw := total.Sub(paid).Sub(waived)
	s := Settlement{
		PaidAmount:   paid,
		WaiverAmount: waived,
		DueAmount:    decimal.Max(decimal.Zero, raw),
	}
	switch {
	case !raw.IsPositive():
		s.Status = models.InvoiceStatusPaid
	case paid.IsPositive() || waived.IsPositive():
		s.Status = models.InvoiceStatusPartial
	default:
		s.Status = models.InvoiceStatusUnpaid
	}
	return s
}

// credits holds payment and waiver sums per invoice id so rollups settle
// each invoice without rescanning the ledger.
type credits struct {
	paid   map[string]decimal.Decimal
	waived map[string]decimal.Decimal
}

func indexCredits(payments []models.Payment, waivers []models.Waiver) credits {
	c := credits{
		paid:   make(map[string]decimal.Decimal, len(payments)),
		waived: make(map[string]decimal.Decimal, len(waivers)),
	}
	for _, p := range payments {
		c.paid[p.InvoiceID] = c.paid[p.InvoiceID].Add(p.Amount)
	}
	for _, w := range waivers {
		c.waived[w.InvoiceID] = c.waived[w.InvoiceID].Add(w.Amount)
	}
	return c
}

// settle matches Settle for an invoice. Missing keys read as the zero
// Decimal, which is 0.
func (c credits) settle(inv models.Invoice) Settlement {
	return settle(inv.TotalAmount, c.paid[inv.ID], c.waived[inv.ID])
}
