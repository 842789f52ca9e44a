package domain

import "math"

// Round2 rounds to 2 decimals. Totals are accumulated at full precision;
// rounding happens only at presentation and posting boundaries.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
