package common

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to 2 decimal places for display.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Round2Ptr returns a pointer to the rounded value.
func Round2Ptr(v float64) *float64 {
	r := Round2(v)
	return &r
}
