// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals. Comparisons that decide whether a payment
// covers a line item go through Covers, which applies a fixed tolerance of one
// cent so that rates like 33.33/h do not strand an item for a rounding crumb.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance used for every "does the balance cover this cost" check.
var Epsilon = decimal.New(1, -2)

// ParseAmount converts a user supplied decimal string into a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two decimals. Zero, negative and malformed values are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = Round2(d)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Round2 rounds half-up to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Covers reports whether balance is enough to pay cost, within Epsilon.
func Covers(balance, cost decimal.Decimal) bool {
	return balance.GreaterThanOrEqual(cost.Sub(Epsilon))
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Euros returns the value as a float64 for display purposes only.
func Euros(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
