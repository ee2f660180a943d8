// Package display formats amounts and dates for people.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/diewo77/school-billing/internal/bsdate"
)

// Calendar selects how dates are written.
type Calendar string

const (
	AD Calendar = "ad"
	BS Calendar = "bs"
)

// ParseCalendar maps user input to a Calendar, defaulting to AD.
func ParseCalendar(s string) Calendar {
	if strings.EqualFold(strings.TrimSpace(s), string(BS)) {
		return BS
	}
	return AD
}

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Amount writes an amount in Indian digit grouping after the currency
// symbol, e.g. "Rs. 12,500" or "Rs. 12,50,000.50".
func Amount(symbol string, d decimal.Decimal) string {
	rounded := d.Round(2)
	r := rounded.Abs()
	num := printer.Sprintf("%d", r.Truncate(0).IntPart())
	if !r.Equal(r.Truncate(0)) {
		_, frac, _ := strings.Cut(r.StringFixed(2), ".")
		num += "." + frac
	}
	if rounded.IsNegative() {
		num = "-" + num
	}
	if symbol == "" {
		return num
	}
	return symbol + " " + num
}

// Date writes t as YYYY-MM-DD, or as a BS date.
func Date(t time.Time, cal Calendar) string {
	if cal == BS {
		return bsdate.Format(t)
	}
	return t.Format("2006-01-02")
}

// Period writes a billing month such as "April 2025".
func Period(month time.Month, year int) string {
	return fmt.Sprintf("%s %d", month.String(), year)
}
