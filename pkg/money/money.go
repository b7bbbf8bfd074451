// Package money holds the decimal helpers shared by the tab and settlement code.
// Amounts are shopspring decimals; comparisons against a tolerance never use exact equality.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	// Tolerance bounds the difference between a payment plan and the tab total.
	// A difference of a full cent or more is rejected.
	Tolerance = decimal.RequireFromString("0.01")
	// Epsilon is the remaining amount below which a payment counts as exhausted.
	Epsilon = decimal.RequireFromString("0.001")
)

// QuantityPlaces is the precision of pro-rated purchase quantities.
const QuantityPlaces = 4

// WithinTolerance reports whether a and b differ by less than Tolerance
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}

// Exhausted reports whether an amount is at or below Epsilon
func Exhausted(d decimal.Decimal) bool {
	return d.LessThanOrEqual(Epsilon)
}
