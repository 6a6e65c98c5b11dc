package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tolerance is the smallest currency magnitude treated as non-zero.
// Anything below it is rounding noise.
const Tolerance = 0.01

// isSettled reports whether v is within Tolerance of zero.
func isSettled(v float64) bool {
	return math.Abs(v) < Tolerance
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// toCents converts a currency amount to whole cents, rounding half away from zero.
func toCents(v float64) int64 {
	return decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
}

// fromCents converts whole cents back to a currency amount.
func fromCents(c int64) float64 {
	return decimal.New(c, -2).InexactFloat64()
}
