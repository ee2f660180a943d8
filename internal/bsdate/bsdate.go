// Package bsdate renders Gregorian dates in the Bikram Sambat calendar.
//
// The conversion is approximate: month lengths are only tabulated for
// 2079-2082 BS and every other year borrows the 2081 table. Use it for
// display, never for date arithmetic.
package bsdate

import (
	"fmt"
	"time"
)

var months = [12]string{
	"Baisakh", "Jestha", "Ashadh", "Shrawan", "Bhadra", "Ashwin",
	"Kartik", "Mangsir", "Poush", "Magh", "Falgun", "Chaitra",
}

var monthDays = map[int][12]int{
	2079: {31, 31, 32, 32, 31, 31, 30, 29, 30, 29, 30, 30},
	2080: {31, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 31},
	2081: {31, 31, 32, 32, 31, 30, 30, 29, 30, 29, 30, 30},
	2082: {31, 32, 31, 32, 31, 30, 30, 30, 29, 30, 29, 31},
}

const fallbackYear = 2081

// 1923-04-13 AD is Baisakh 1, 1980 BS.
var (
	refAD   = time.Date(1923, time.April, 13, 0, 0, 0, 0, time.UTC)
	refYear = 1980
)

// Date is a BS calendar date. Month is 1-based.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return months[d.Month-1]
}

// String formats the date as "Baisakh 1, 1980".
func (d Date) String() string {
	return fmt.Sprintf("%s %d, %d", d.MonthName(), d.Day, d.Year)
}

func daysOf(year int) [12]int {
	if days, ok := monthDays[year]; ok {
		return days
	}
	return monthDays[fallbackYear]
}

func yearLength(year int) int {
	n := 0
	for _, d := range daysOf(year) {
		n += d
	}
	return n
}

// FromAD converts the UTC calendar day of t. ok is false for dates before
// the reference date.
func FromAD(t time.Time) (d Date, ok bool) {
	y, m, day := t.UTC().Date()
	elapsed := int(time.Date(y, m, day, 0, 0, 0, 0, time.UTC).Sub(refAD).Hours() / 24)
	if elapsed < 0 {
		return Date{}, false
	}

	year := refYear
	for n := yearLength(year); elapsed >= n; n = yearLength(year) {
		elapsed -= n
		year++
	}
	for i, md := range daysOf(year) {
		if elapsed < md {
			return Date{Year: year, Month: i + 1, Day: elapsed + 1}, true
		}
		elapsed -= md
	}
	// unreachable: elapsed is below the year length
	return Date{}, false
}

// Format renders t as a BS date, or "Invalid Date" before the reference.
func Format(t time.Time) string {
	d, ok := FromAD(t)
	if !ok {
		return "Invalid Date"
	}
	return d.String()
}
