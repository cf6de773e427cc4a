package record

import "math"

// Round2 rounds x to two decimals, halves rounding up.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
