package models

import "fmt"

// ValuationParameters are the discount and perpetual growth rates for the DCF model.
type ValuationParameters struct {
	DiscountRate float64 `json:"discount_rate"`
	GrowthRate   float64 `json:"growth_rate"`
}

// InvalidParameterError reports a discount rate that is not strictly above the
// growth rate, which leaves the terminal value undefined.
type InvalidParameterError struct {
	DiscountRate float64
	GrowthRate   float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("discount rate %.4f must be greater than growth rate %.4f", e.DiscountRate, e.GrowthRate)
}

// Validate checks r > g.
func (p ValuationParameters) Validate() error {
	if p.DiscountRate <= p.GrowthRate {
		return &InvalidParameterError{DiscountRate: p.DiscountRate, GrowthRate: p.GrowthRate}
	}
	return nil
}
