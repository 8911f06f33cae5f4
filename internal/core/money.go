// Package core provides money parsing and handling utilities.
//
// This file contains the amount coercion used by ingestion. Amounts are
// signed decimals; nothing here rounds.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw cell into a signed decimal amount.
//
// It accepts both dot (12.34) and a lone decimal comma (12,34). Leading
// plus/minus signs are kept. Empty cells, NaN markers and anything else
// that is not a plain number return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("1,2.3")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot when it is the only separator
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.Contains(s, ",") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
