// Package money holds the exact decimal arithmetic used for every balance and amount.
// Amounts are shopspring decimals; float64 never enters the ledger.
package money

import (
	"strings"

	"finance_tracker/internal/apperr"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for display and storage
const Scale = 2

// Zero is the additive identity
var Zero = decimal.Zero

// Add returns a + b
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Sub returns a - b
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b
func Cmp(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

// Equal reports whether a and b represent the same amount, ignoring trailing zeros
func Equal(a, b decimal.Decimal) bool {
	return a.Equal(b)
}

// IsPositive reports whether a > 0
func IsPositive(a decimal.Decimal) bool {
	return a.IsPositive()
}

// IsNegative reports whether a < 0
func IsNegative(a decimal.Decimal) bool {
	return a.IsNegative()
}

// FloorZero returns max(0, a)
func FloorZero(a decimal.Decimal) decimal.Decimal {
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}

// Sum adds all amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// RequireScale rejects amounts with more than Scale significant fractional digits.
// Amount and balance columns are stored with exactly Scale digits.
func RequireScale(a decimal.Decimal) error {
	if !a.Equal(a.Truncate(Scale)) {
		return apperr.Invalid("invalid_amount", "amount has more than 2 decimal places")
	}
	return nil
}

// RequirePositive rejects zero, negative and sub-cent amounts with a validation error
func RequirePositive(a decimal.Decimal) error {
	if !a.IsPositive() {
		return apperr.ErrInvalidAmount
	}
	return RequireScale(a)
}

// Parse reads a decimal amount, accepting "12.34" and "12,34".
// Signs, sub-cent precision and malformed input are rejected; zero is accepted here and rejected by RequirePositive.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, apperr.ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.Wrap(apperr.ErrInvalidAmount, err)
	}
	if err := RequireScale(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Round rounds half away from zero to Scale digits
func Round(a decimal.Decimal) decimal.Decimal {
	return a.Round(Scale)
}

// String formats a with exactly Scale fractional digits
func String(a decimal.Decimal) string {
	return a.StringFixed(Scale)
}
