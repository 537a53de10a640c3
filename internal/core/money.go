// Package core implements the derived-financial-state pipeline: pure
// transformations from a flat transaction list plus a household
// configuration into period summaries, per-person splits, credit-card
// settlement balances, running bank balances, and budget recommendations.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. All split arithmetic happens on cents with
// half-up rounding so that a shared amount always partitions exactly into
// the two members' shares.
type Money struct {
	Cents int64
}

// Rand returns the rand value as a float64 for display purposes. Use cents
// for calculations to avoid floating-point drift.
func (m Money) Rand() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other. Negative results are legal for derived values
// (net income, recommended adjustments); transaction amounts stay
// non-negative via Validate.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Percent returns p percent of m, rounded half-up on cents.
func (m Money) Percent(p float64) Money {
	return Money{Cents: roundHalfUp(float64(m.Cents) * p / 100)}
}

// Scale returns m multiplied by factor, rounded half-up on cents.
func (m Money) Scale(factor float64) Money {
	return Money{Cents: roundHalfUp(float64(m.Cents) * factor)}
}

// FromRand converts a rand value to Money with half-up rounding.
func FromRand(v float64) Money {
	return Money{Cents: roundHalfUp(v * 100)}
}

func roundHalfUp(v float64) int64 {
	if v < 0 {
		return -int64(math.Floor(-v + 0.5))
	}
	return int64(math.Floor(v + 0.5))
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot and comma
// separators and a leading sign; the sign is preserved so callers can apply
// the feed's sign convention (negative raw value means income).
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
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
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
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
