package contracts

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount to cents, half away from zero.
// Rounding happens on the shortest decimal form of v, so 1.005 becomes 1.01.
// NaN and ±Inf are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
