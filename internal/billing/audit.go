package billing

import "fmt"

// IssueKind classifies a ledger anomaly.
type IssueKind string

const (
	IssueDanglingPayment    IssueKind = "dangling_payment"
	IssueDanglingWaiver     IssueKind = "dangling_waiver"
	IssueNonPositivePayment IssueKind = "non_positive_payment"
	IssueNonPositiveWaiver  IssueKind = "non_positive_waiver"
	IssueUnknownStudent     IssueKind = "unknown_student"
	IssueTotalMismatch      IssueKind = "total_mismatch"
)

// Issue is one anomaly found by Audit. Ref is the id of the offending
// record.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Ref    string    `json:"ref"`
	Detail string    `json:"detail"`
}

// Audit lists data the settlement rules tolerate but a clean ledger should
// not contain. Calculations still run over such data; dangling payments and
// waivers simply never count toward any invoice.
func (l Ledger) Audit() []Issue {
	var issues []Issue
	students := l.studentsByID()
	invoices := make(map[string]bool, len(l.Invoices))
	for _, inv := range l.Invoices {
		invoices[inv.ID] = true
		if _, ok := students[inv.StudentID]; !ok {
			issues = append(issues, Issue{
				Kind:   IssueUnknownStudent,
				Ref:    inv.ID,
				Detail: fmt.Sprintf("invoice %s references unknown student %s", inv.Number, inv.StudentID),
			})
		}
		if items := inv.ItemsTotal(); !items.Equal(inv.TotalAmount) {
			issues = append(issues, Issue{
				Kind:   IssueTotalMismatch,
				Ref:    inv.ID,
				Detail: fmt.Sprintf("invoice %s total %s differs from items sum %s", inv.Number, inv.TotalAmount, items),
			})
		}
	}
	for _, p := range l.Payments {
		if !invoices[p.InvoiceID] {
			issues = append(issues, Issue{
				Kind:   IssueDanglingPayment,
				Ref:    p.ID,
				Detail: fmt.Sprintf("payment references unknown invoice %s", p.InvoiceID),
			})
		}
		if !p.Amount.IsPositive() {
			issues = append(issues, Issue{
				Kind:   IssueNonPositivePayment,
				Ref:    p.ID,
				Detail: fmt.Sprintf("payment amount %s is not positive", p.Amount),
			})
		}
	}
	for _, w := range l.Waivers {
		if !invoices[w.InvoiceID] {
			issues = append(issues, Issue{
				Kind:   IssueDanglingWaiver,
				Ref:    w.ID,
				Detail: fmt.Sprintf("waiver references unknown invoice %s", w.InvoiceID),
			})
		}
		if !w.Amount.IsPositive() {
			issues = append(issues, Issue{
				Kind:   IssueNonPositiveWaiver,
				Ref:    w.ID,
				Detail: fmt.Sprintf("waiver amount %s is not positive", w.Amount),
			})
		}
	}
	return issues
}
