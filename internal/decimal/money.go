package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Hundred is used for percentage arithmetic
var Hundred = decimal.NewFromInt(100)

// Tolerance is the absolute tolerance for total reconciliation (0.01)
var Tolerance = decimal.New(1, -2)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from float with monetary rounding
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// RoundAmount rounds to 2 fractional digits, half away from zero.
// For the non-negative amounts handled here this equals round-half-up,
// the mode EN 16931 mandates for monetary values. Rounding is applied
// per line before aggregation, never on aggregated sums.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Mul multiplies two decimals and applies monetary rounding
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(2)
}

// CalculateVAT computes the VAT amount for a taxable amount and a
// percentage rate, rounded to 2 decimals
func CalculateVAT(amount, ratePercent decimal.Decimal) decimal.Decimal {
	if ratePercent.IsZero() {
		return Zero
	}
	return amount.Mul(ratePercent).Div(Hundred).Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// WithinTolerance reports whether |a-b| <= Tolerance
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// FormatAmount renders an amount with exactly 2 fractional digits,
// decimal point, no thousands separators
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatRate renders a VAT rate with 2 fractional digits (20 -> "20.00",
// 5.5 -> "5.50") so equal rates always serialize identically
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
