package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/diewo77/school-billing/internal/models"
)

// Period is a billing month.
type Period struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
}

var ErrInvalidPeriod = errors.New("invalid_period")

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// ParsePeriod reads a "YYYY-MM" period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return PeriodOf(t), nil
}

// Validate checks the month range and that a year is set.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Contains reports whether inv bills this period.
func (p Period) Contains(inv models.Invoice) bool {
	return inv.Month == p.Month && inv.Year == p.Year
}

// DueMode selects how an invoice's due date follows from its issue date.
type DueMode string

const (
	// DueAfterDays puts the due date a fixed number of days after issue.
	DueAfterDays DueMode = "days"
	// DueDayOfNextMonth puts the due date on a fixed day of the following
	// month, clamped to that month's last day.
	DueDayOfNextMonth DueMode = "next_month_day"
)

// DuePolicy computes due dates.
type DuePolicy struct {
	Mode DueMode
	Days int // DueAfterDays
	Day  int // DueDayOfNextMonth
}

// DefaultDuePolicy gives fifteen days to pay.
var DefaultDuePolicy = DuePolicy{Mode: DueAfterDays, Days: 15}

// NewDuePolicy validates a policy from configuration values. n is the day
// count or the day of month depending on mode.
func NewDuePolicy(mode string, n int) (DuePolicy, error) {
	switch DueMode(mode) {
	case DueAfterDays:
		if n < 0 {
			return DuePolicy{}, fmt.Errorf("due days must not be negative, got %d", n)
		}
		return DuePolicy{Mode: DueAfterDays, Days: n}, nil
	case DueDayOfNextMonth:
		if n < 1 || n > 31 {
			return DuePolicy{}, fmt.Errorf("due day must be within 1..31, got %d", n)
		}
		return DuePolicy{Mode: DueDayOfNextMonth, Day: n}, nil
	}
	return DuePolicy{}, fmt.Errorf("unknown due mode %q", mode)
}

// DueDate returns the due date for an invoice issued at issued.
func (p DuePolicy) DueDate(issued time.Time) time.Time {
	if p.Mode == DueDayOfNextMonth {
		y, m, _ := issued.Date()
		first := time.Date(y, m+1, 1, 0, 0, 0, 0, issued.Location())
		last := first.AddDate(0, 1, -1).Day()
		return first.AddDate(0, 0, min(p.Day, last)-1)
	}
	return issued.AddDate(0, 0, p.Days)
}

// Generator issues monthly invoices.
type Generator struct {
	Due DuePolicy
	// SkipEmptyFeeStructure suppresses zero-total invoices when no fee
	// items exist. By default they are issued and settle as Paid at once.
	SkipEmptyFeeStructure bool
	// Now stamps issue dates. Defaults to time.Now.
	Now func() time.Time
}

// Generate returns the invoices to issue for period: one per active student
// that has no invoice for it yet among existing. Feeding the result back in
// as existing yields nothing, so repeated runs never double-bill.
//
// Items are copied out of fees, so later fee edits leave the invoices
// untouched. Numbers continue after the invoices already issued in period.
func (g Generator) Generate(students []models.Student, fees []models.FeeStructureItem, existing []models.Invoice, period Period) []models.Invoice {
	if len(fees) == 0 && g.SkipEmptyFeeStructure {
		return nil
	}

	billed := make(map[string]bool)
	seq := 0
	for _, inv := range existing {
		if period.Contains(inv) {
			billed[inv.StudentID] = true
			seq++
		}
	}

	items := make([]models.LineItem, len(fees))
	total := decimal.Zero
	for i, f := range fees {
		items[i] = f.LineItem()
		total = total.Add(f.Amount)
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	issued := now()
	due := g.Due.DueDate(issued)

	var out []models.Invoice
	for _, s := range students {
		if !s.IsActive || billed[s.ID] {
			continue
		}
		billed[s.ID] = true
		seq++
		out = append(out, models.Invoice{
			Number:      models.InvoiceNumber(period.Year, period.Month, seq),
			StudentID:   s.ID,
			Month:       period.Month,
			Year:        period.Year,
			IssueDate:   issued,
			DueDate:     due,
			Items:       datatypes.NewJSONSlice(append([]models.LineItem(nil), items...)),
			TotalAmount: total,
		})
	}
	return out
}
