package billing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/school-billing/internal/models"
)

// recentLimit bounds the dashboard activity lists.
const recentLimit = 3

// Ledger is a point-in-time copy of every billing collection. Slices keep
// insertion order.
type Ledger struct {
	Students     []models.Student          `json:"students"`
	Invoices     []models.Invoice          `json:"invoices"`
	Payments     []models.Payment          `json:"payments"`
	Waivers      []models.Waiver           `json:"waivers"`
	FeeStructure []models.FeeStructureItem `json:"feeStructure"`
}

func (l Ledger) studentsByID() map[string]models.Student {
	m := make(map[string]models.Student, len(l.Students))
	for _, s := range l.Students {
		m[s.ID] = s
	}
	return m
}

// InvoiceView is an invoice with its owner and current settlement.
type InvoiceView struct {
	models.Invoice
	Settlement
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// InvoiceViews settles every invoice, newest issue date first. Invoices of
// unknown students keep empty name and email.
func (l Ledger) InvoiceViews() []InvoiceView {
	students := l.studentsByID()
	c := indexCredits(l.Payments, l.Waivers)
	views := make([]InvoiceView, 0, len(l.Invoices))
	for _, inv := range l.Invoices {
		s := students[inv.StudentID]
		views = append(views, InvoiceView{
			Invoice:      inv,
			Settlement:   c.settle(inv),
			StudentName:  s.Name,
			StudentEmail: s.GuardianEmail,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].IssueDate.After(views[j].IssueDate)
	})
	return views
}

// ActiveOutstanding sums the due amount of invoices whose student is active.
// Dues of inactive or unknown students are left out.
func (l Ledger) ActiveOutstanding() decimal.Decimal {
	students := l.studentsByID()
	c := indexCredits(l.Payments, l.Waivers)
	total := decimal.Zero
	for _, inv := range l.Invoices {
		if s, ok := students[inv.StudentID]; ok && s.IsActive {
			total = total.Add(c.settle(inv).DueAmount)
		}
	}
	return total
}

// TotalOutstanding sums the due amount of every invoice.
func (l Ledger) TotalOutstanding() decimal.Decimal {
	c := indexCredits(l.Payments, l.Waivers)
	total := decimal.Zero
	for _, inv := range l.Invoices {
		total = total.Add(c.settle(inv).DueAmount)
	}
	return total
}

// TotalCollected sums every payment regardless of student status or
// invoice state.
func TotalCollected(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// StudentDues is one row of the per-student report.
type StudentDues struct {
	StudentID   string          `json:"studentId"`
	StudentName string          `json:"studentName"`
	Class       string          `json:"class"`
	IsActive    bool            `json:"isActive"`
	TotalBilled decimal.Decimal `json:"totalBilled"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	TotalDue    decimal.Decimal `json:"totalDue"`
}

// StudentReport returns one row per student, active or not, in roster order.
func (l Ledger) StudentReport() []StudentDues {
	c := indexCredits(l.Payments, l.Waivers)
	rows := make([]StudentDues, len(l.Students))
	pos := make(map[string]int, len(l.Students))
	for i, s := range l.Students {
		pos[s.ID] = i
		rows[i] = StudentDues{
			StudentID:   s.ID,
			StudentName: s.Name,
			Class:       s.Class,
			IsActive:    s.IsActive,
			TotalBilled: decimal.Zero,
			TotalPaid:   decimal.Zero,
			TotalDue:    decimal.Zero,
		}
	}
	for _, inv := range l.Invoices {
		i, ok := pos[inv.StudentID]
		if !ok {
			continue
		}
		st := c.settle(inv)
		rows[i].TotalBilled = rows[i].TotalBilled.Add(inv.TotalAmount)
		rows[i].TotalPaid = rows[i].TotalPaid.Add(st.PaidAmount)
		rows[i].TotalDue = rows[i].TotalDue.Add(st.DueAmount)
	}
	return rows
}

// PendingInvoice is an invoice with something left to pay, ready for a
// reminder.
type PendingInvoice struct {
	InvoiceID     string               `json:"invoiceId"`
	Number        string               `json:"number"`
	StudentID     string               `json:"studentId"`
	StudentName   string               `json:"studentName"`
	GuardianEmail string               `json:"guardianEmail"`
	Month         time.Month           `json:"month"`
	Year          int                  `json:"year"`
	DueDate       time.Time            `json:"dueDate"`
	DueAmount     decimal.Decimal      `json:"dueAmount"`
	Status        models.InvoiceStatus `json:"status"`
}

// PendingInvoices lists invoices with a positive due amount, newest first.
func (l Ledger) PendingInvoices() []PendingInvoice {
	var out []PendingInvoice
	for _, v := range l.InvoiceViews() {
		if !v.DueAmount.IsPositive() {
			continue
		}
		out = append(out, PendingInvoice{
			InvoiceID:     v.ID,
			Number:        v.Number,
			StudentID:     v.StudentID,
			StudentName:   v.StudentName,
			GuardianEmail: v.StudentEmail,
			Month:         v.Month,
			Year:          v.Year,
			DueDate:       v.DueDate,
			DueAmount:     v.DueAmount,
			Status:        v.Status,
		})
	}
	return out
}

// PaymentActivity is a payment with the name of the student it was for.
type PaymentActivity struct {
	models.Payment
	StudentName string `json:"studentName"`
}

// Dashboard is the landing page rollup.
type Dashboard struct {
	ActiveStudents    int               `json:"activeStudents"`
	TotalCollected    decimal.Decimal   `json:"totalCollected"`
	ActiveOutstanding decimal.Decimal   `json:"outstandingDues"`
	RecentPayments    []PaymentActivity `json:"recentPayments"`
	UnpaidInvoices    []InvoiceView     `json:"unpaidInvoices"`
}

// Dashboard builds the landing page rollup. Recent lists hold the last
// three entries in ledger order, newest first.
func (l Ledger) Dashboard() Dashboard {
	d := Dashboard{
		TotalCollected:    TotalCollected(l.Payments),
		ActiveOutstanding: l.ActiveOutstanding(),
		RecentPayments:    []PaymentActivity{},
		UnpaidInvoices:    []InvoiceView{},
	}
	for _, s := range l.Students {
		if s.IsActive {
			d.ActiveStudents++
		}
	}

	students := l.studentsByID()
	invoiceOwner := make(map[string]string, len(l.Invoices))
	for _, inv := range l.Invoices {
		invoiceOwner[inv.ID] = inv.StudentID
	}
	for i := len(l.Payments) - 1; i >= 0 && len(d.RecentPayments) < recentLimit; i-- {
		p := l.Payments[i]
		d.RecentPayments = append(d.RecentPayments, PaymentActivity{
			Payment:     p,
			StudentName: students[invoiceOwner[p.InvoiceID]].Name,
		})
	}

	c := indexCredits(l.Payments, l.Waivers)
	for i := len(l.Invoices) - 1; i >= 0 && len(d.UnpaidInvoices) < recentLimit; i-- {
		inv := l.Invoices[i]
		st := c.settle(inv)
		if st.Status == models.InvoiceStatusPaid {
			continue
		}
		s := students[inv.StudentID]
		d.UnpaidInvoices = append(d.UnpaidInvoices, InvoiceView{
			Invoice:      inv,
			Settlement:   st,
			StudentName:  s.Name,
			StudentEmail: s.GuardianEmail,
		})
	}
	return d
}

// Figures are the headline numbers of the reports page.
type Figures struct {
	TotalStudents   int             `json:"totalStudents"`
	TotalCollected  decimal.Decimal `json:"totalCollected"`
	TotalDue        decimal.Decimal `json:"totalDue"`
	PendingInvoices int             `json:"pendingInvoices"`
}

// Figures counts all students and all invoices, active or not.
func (l Ledger) Figures() Figures {
	c := indexCredits(l.Payments, l.Waivers)
	f := Figures{
		TotalStudents:  len(l.Students),
		TotalCollected: TotalCollected(l.Payments),
		TotalDue:       decimal.Zero,
	}
	for _, inv := range l.Invoices {
		st := c.settle(inv)
		f.TotalDue = f.TotalDue.Add(st.DueAmount)
		if st.Status != models.InvoiceStatusPaid {
			f.PendingInvoices++
		}
	}
	return f
}

// InvoiceFilter narrows InvoiceViews. Zero fields match everything.
type InvoiceFilter struct {
	Status    models.InvoiceStatus
	StudentID string
}

// Filter keeps the views matching f, preserving order.
func (f InvoiceFilter) Filter(views []InvoiceView) []InvoiceView {
	out := make([]InvoiceView, 0, len(views))
	for _, v := range views {
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.StudentID != "" && v.StudentID != f.StudentID {
			continue
		}
		out = append(out, v)
	}
	return out
}
