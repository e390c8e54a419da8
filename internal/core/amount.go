// Package core holds the typed records the engine and storage layers share,
// plus amount parsing and numeric coercion helpers.
//
// Amounts are stored as integer cents and handed to the calculation engine
// as float64 dollars. Parsing accepts both dot and comma decimal separators
// with half-up rounding on the third decimal place.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToCents converts a decimal string to cents.
//
// Unlike purchase costs, account balances and budget adjustments may be
// entered as negative, so a leading minus sign is accepted when allowNegative
// is set. Zero is a valid amount.
//
// Examples:
//
//	ParseAmountToCents("12.34", false)  -> 1234, nil
//	ParseAmountToCents("12,345", false) -> 1235, nil (half-up on 3rd decimal)
//	ParseAmountToCents("-50", true)     -> -5000, nil
func ParseAmountToCents(s string, allowNegative bool) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNegativeAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		if !allowNegative {
			return 0, ErrNegativeAmount
		}
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrNegativeAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrNegativeAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrNegativeAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrNegativeAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrNegativeAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// CentsToDollars converts stored cents to the float64 dollars the engine
// operates on.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100.0
}

// DollarsToCents converts engine output back to storable cents, half-up.
func DollarsToCents(d float64) int64 {
	return int64(math.Round(Sanitize(d) * 100))
}

// Sanitize maps NaN and infinities to zero. Partially-loaded rows surface
// as zeroes instead of poisoning every aggregate downstream.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
