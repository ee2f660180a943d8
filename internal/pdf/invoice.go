// Package pdf renders printable fee invoices.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// InvoiceItem is one printed line.
type InvoiceItem struct {
	Description string
	Amount      string
}

// StudentData is the billed-to block.
type StudentData struct {
	Name     string
	Class    string
	Roll     int
	Guardian string
	Email    string
	Address  string
}

// SchoolData is the letterhead.
type SchoolData struct {
	Name    string
	Address string
}

// InvoiceData holds preformatted values; amounts and dates arrive as the
// reader should see them.
type InvoiceData struct {
	InvoiceNumber string
	Period        string
	Date          string
	DueDate       string
	Status        string
	School        SchoolData
	Student       StudentData
	Items         []InvoiceItem
	Total         string
	Paid          string
	Waived        string
	Due           string
}

// InvoicePDF renders an A4 invoice.
func InvoicePDF(data InvoiceData) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Invoice "+data.InvoiceNumber, true)
	doc.SetMargins(15, 15, 15)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	school := data.School.Name
	if school == "" {
		school = "School"
	}
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(120, 9, tr(school), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 9, "FEE INVOICE", "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	if data.School.Address != "" {
		doc.MultiCell(120, 5, tr(data.School.Address), "", "L", false)
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(95, 6, "Billed to", "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, "Invoice", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	left := []string{
		data.Student.Name,
		fmt.Sprintf("Class %s, Roll %d", data.Student.Class, data.Student.Roll),
		data.Student.Guardian,
		data.Student.Email,
		data.Student.Address,
	}
	right := []string{
		"Number: " + data.InvoiceNumber,
		"Period: " + data.Period,
		"Issued: " + data.Date,
		"Due: " + data.DueDate,
		"Status: " + data.Status,
	}
	for i := range left {
		doc.CellFormat(95, 5.5, tr(left[i]), "", 0, "L", false, 0, "")
		doc.CellFormat(0, 5.5, tr(right[i]), "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFillColor(235, 238, 245)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(130, 8, "Description", "1", 0, "L", true, 0, "")
	doc.CellFormat(0, 8, "Amount", "1", 1, "R", true, 0, "")
	doc.SetFont("Helvetica", "", 10)
	if len(data.Items) == 0 {
		doc.CellFormat(130, 7, "No fee items", "1", 0, "L", false, 0, "")
		doc.CellFormat(0, 7, "", "1", 1, "R", false, 0, "")
	}
	for _, it := range data.Items {
		doc.CellFormat(130, 7, tr(it.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(0, 7, tr(it.Amount), "1", 1, "R", false, 0, "")
	}
	doc.Ln(3)

	totals := []struct {
		label, value string
		bold         bool
	}{
		{"Total", data.Total, false},
		{"Paid", data.Paid, false},
		{"Waived", data.Waived, false},
		{"Amount due", data.Due, true},
	}
	for _, row := range totals {
		style := ""
		if row.bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 10)
		doc.CellFormat(130, 6.5, row.label, "", 0, "R", false, 0, "")
		doc.CellFormat(0, 6.5, tr(row.value), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
