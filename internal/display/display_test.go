package display

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Rs. 0"},
		{"500", "Rs. 500"},
		{"12500", "Rs. 12,500"},
		{"1234567", "Rs. 12,34,567"},
		{"1250000", "Rs. 12,50,000"},
		{"1250000.5", "Rs. 12,50,000.50"},
		{"1250.5", "Rs. 1,250.50"},
		{"1250.00", "Rs. 1,250"},
		{"-4000", "Rs. -4,000"},
		{"0.999", "Rs. 1"},
		{"-0.001", "Rs. 0"},
		{"-0.004", "Rs. 0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Amount("Rs.", decimal.RequireFromString(tt.in)))
		})
	}
	assert.Equal(t, "7,000", Amount("", decimal.NewFromInt(7000)))
}

func TestDate(t *testing.T) {
	d := time.Date(1923, time.April, 13, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "1923-04-13", Date(d, AD))
	assert.Equal(t, "Baisakh 1, 1980", Date(d, BS))
}

func TestParseCalendar(t *testing.T) {
	assert.Equal(t, BS, ParseCalendar(" BS "))
	assert.Equal(t, AD, ParseCalendar("ad"))
	assert.Equal(t, AD, ParseCalendar("julian"))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "April 2025", Period(time.April, 2025))
}
