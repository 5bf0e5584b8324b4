// Package precision rounds monetary values and weights the same way everywhere.
//
// Rounding goes through shopspring/decimal so that values whose shortest
// decimal representation sits exactly on a half (1.005, 2.675) round away
// from zero instead of being pulled down by binary float error.
package precision

import "github.com/shopspring/decimal"

const (
	// MoneyPlaces is the number of decimals kept for amounts and totals.
	MoneyPlaces = 2
	// WeightPlaces is the number of decimals kept for asset weights.
	WeightPlaces = 4
)

// Round rounds value to the given number of decimal places, half away from zero.
//
// Example:
//
//	Round(1.005, 2)    // 1.01
//	Round(-1.005, 2)   // -1.01
//	Round(0.33335, 4)  // 0.3334
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Money rounds to two decimal places.
func Money(value float64) float64 {
	return Round(value, MoneyPlaces)
}

// Weight rounds to four decimal places.
func Weight(value float64) float64 {
	return Round(value, WeightPlaces)
}
