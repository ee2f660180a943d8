package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePDF(t *testing.T) {
	out, err := InvoicePDF(InvoiceData{
		InvoiceNumber: "INV-202504-0001",
		Period:        "April 2025",
		Date:          "2025-04-01",
		DueDate:       "2025-04-16",
		Status:        "Partial",
		School:        SchoolData{Name: "Sunrise Montessori", Address: "Lalitpur"},
		Student:       StudentData{Name: "Asha", Class: "5", Roll: 3, Email: "parent@example.com"},
		Items: []InvoiceItem{
			{Description: "Tuition Fee", Amount: "Rs. 5,000"},
			{Description: "Transport Fee", Amount: "Rs. 1,500"},
		},
		Total:  "Rs. 6,500",
		Paid:   "Rs. 2,000",
		Waived: "Rs. 0",
		Due:    "Rs. 4,500",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestInvoicePDFWithoutItems(t *testing.T) {
	out, err := InvoicePDF(InvoiceData{InvoiceNumber: "INV-202504-0002"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
