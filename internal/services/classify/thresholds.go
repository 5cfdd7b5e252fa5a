// Package classify maps metric values onto verdicts and assembles ticker reports.
package classify

import "github.com/ternarybob/intrinsic/internal/models"

// Expected-range text shown beside each classified metric.
const (
	RangeIntrinsic   = "> Current Price"
	RangeROE         = "> 15%"
	RangeDebtEquity  = "< 0.5"
	RangeNetMargin   = "> 10%"
	RangeGrossMargin = "> 40%"
	RangeGrowth      = "> 5%"
	RangeInsider     = "> 10%"
	RangePE          = "15 - 25"
	RangeNone        = "-"
)

// Intrinsic compares intrinsic value with the current price. Equal is overvalued.
func Intrinsic(intrinsic, price float64) models.Verdict {
	if intrinsic > price {
		return models.VerdictUndervalued
	}
	return models.VerdictOvervalued
}

// ROE is strong above 15%.
func ROE(v float64) models.Verdict {
	if v > 15 {
		return models.VerdictStrong
	}
	return models.VerdictBelowIdeal
}

// DebtToEquity is low under 0.5, moderate from 0.5 to 1.0 inclusive, high above.
func DebtToEquity(v float64) models.Verdict {
	switch {
	case v < 0.5:
		return models.VerdictLow
	case v <= 1.0:
		return models.VerdictModerate
	default:
		return models.VerdictHigh
	}
}

// NetMargin is strong above 10%.
func NetMargin(v float64) models.Verdict {
	if v > 10 {
		return models.VerdictStrong
	}
	return models.VerdictWeak
}

// GrossMargin is strong above 40%.
func GrossMargin(v float64) models.Verdict {
	if v > 40 {
		return models.VerdictStrong
	}
	return models.VerdictWeak
}

// RevenueGrowth is growing above 5%.
func RevenueGrowth(v float64) models.Verdict {
	if v > 5 {
		return models.VerdictGrowing
	}
	return models.VerdictSlow
}

// InsiderOwnership takes a fraction: high above 0.10, low under 0.05,
// moderate in between (both bounds inclusive).
func InsiderOwnership(fraction float64) models.Verdict {
	switch {
	case fraction > 0.10:
		return models.VerdictHigh
	case fraction < 0.05:
		return models.VerdictLow
	default:
		return models.VerdictModerate
	}
}

// PE is undervalued under 15, fairly valued from 15 to 25 inclusive, overvalued above.
func PE(v float64) models.Verdict {
	switch {
	case v < 15:
		return models.VerdictUndervalued
	case v <= 25:
		return models.VerdictFairlyValued
	default:
		return models.VerdictOvervalued
	}
}
