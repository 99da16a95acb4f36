package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateDueAmount computes the outstanding balance for a member.
// Formula: principal * (1 + rate/100) - collected
// Always recompute from the three inputs; the stored due amount is a cache of
// this function and must never be patched by subtraction alone, so repeated
// payments cannot accumulate rounding drift.
func CalculateDueAmount(principal, rate, collected decimal.Decimal) decimal.Decimal {
	interest := principal.Mul(rate).Div(hundred)
	return principal.Add(interest).Sub(collected).Round(2)
}

// TotalWithInterest returns the full repayable amount for a principal and rate.
func TotalWithInterest(principal, rate decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(rate).Div(hundred)).Round(2)
}

// Midnight truncates a time to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// InRange reports whether t falls in the half-open window [start, end).
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// TodayWindow returns the [start, end) window covering the calendar day of now.
func TodayWindow(now time.Time) (time.Time, time.Time) {
	start := Midnight(now)
	return start, start.AddDate(0, 0, 1)
}

// WeekWindow returns the [start, end) window covering the last 7 calendar days
// inclusive of today.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	end := Midnight(now).AddDate(0, 0, 1)
	return end.AddDate(0, 0, -7), end
}

// MonthWindow returns the [start, end) window covering the last calendar month
// inclusive of today.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	end := Midnight(now).AddDate(0, 0, 1)
	return end.AddDate(0, -1, 0), end
}

// FormatCurrency renders an amount for display, e.g. "Rp 1.100,00".
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac := s[:len(s)-3], s[len(s)-2:]

	// Thousands separators, right to left.
	var out []byte
	for i, c := range []byte(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}

	prefix := "Rp "
	if neg {
		prefix = "-Rp "
	}
	return prefix + string(out) + "," + frac
}
