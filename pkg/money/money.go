// Package money holds the two-decimal arithmetic every monetary value in the
// service goes through. All amounts are in Ghana cedis.
package money

import (
	"fmt"
	"math"
)

// Round2 rounds to exactly two decimal places, half away from zero. Every
// stored or displayed amount passes through this so principal plus interest
// always equals total due in decimal form.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Format renders an amount the way prompts display it, e.g. "GHS 110.00".
func Format(v float64) string {
	return fmt.Sprintf("GHS %.2f", Round2(v))
}
