// Package metrics computes valuation and fundamental-health metrics from normalized statements.
// Every function is pure: same inputs, same outputs, no I/O.
package metrics

import (
	"math"

	"github.com/ternarybob/intrinsic/internal/models"
)

// FCFSource records which inputs produced the valuation cash flow series.
type FCFSource string

const (
	FCFSourceOperating FCFSource = "operating_cash_flow"
	FCFSourceProvider  FCFSource = "provider_free_cash_flow"
)

// FCFSeries is the derived free cash flow used for valuation.
type FCFSeries struct {
	Source FCFSource
	Values models.YearSeries
}

// IntrinsicValue is the DCF result for one company.
type IntrinsicValue struct {
	PerShare          float64 // unrounded
	Total             float64
	TerminalValue     float64
	TerminalValuePV   float64
	CashFlowsPV       float64
	Periods           int
	LatestCashFlow    float64
	SharesOutstanding int64
	Source            FCFSource
}

// DeriveFCF builds the valuation cash flow series. Operating cash flow minus capex
// is used when it yields at least one period; otherwise provider free cash flow
// minus capex. Periods missing either input are dropped.
func DeriveFCF(fs *models.FinancialStatements) (FCFSeries, error) {
	capex, ok := fs.Line(models.LineCapitalExpenditure)
	if !ok {
		return FCFSeries{}, &MissingLineItemError{Items: []models.LineItem{models.LineCapitalExpenditure}}
	}

	ocf, hasOCF := fs.Line(models.LineOperatingCashFlow)
	fcf, hasFCF := fs.Line(models.LineFreeCashFlow)
	if !hasOCF && !hasFCF {
		return FCFSeries{}, &MissingLineItemError{
			Items: []models.LineItem{models.LineOperatingCashFlow, models.LineFreeCashFlow},
		}
	}

	var primary FCFSeries
	if hasOCF {
		primary = FCFSeries{Source: FCFSourceOperating, Values: lessCapex(ocf, capex)}
		if len(primary.Values) > 0 || !hasFCF {
			return primary, nil
		}
	}
	return FCFSeries{Source: FCFSourceProvider, Values: lessCapex(fcf, capex)}, nil
}

func lessCapex(base, capex models.YearSeries) models.YearSeries {
	values := make(models.YearSeries, len(base))
	for period, v := range base {
		c, ok := capex.Get(period)
		if !ok {
			continue
		}
		values[period] = v - c
	}
	return values
}

// TerminalValue returns the Gordon growth terminal value latest*(1+g)/(r-g).
func TerminalValue(latest float64, params models.ValuationParameters) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	return latest * (1 + params.GrowthRate) / (params.DiscountRate - params.GrowthRate), nil
}

// Discount returns v/(1+r)^periods.
func Discount(v, r float64, periods int) float64 {
	return v / math.Pow(1+r, float64(periods))
}

// CalculateIntrinsicValue runs the discounted cash flow model and divides by shares outstanding.
// Checks run in order: parameters, shares, line items, data.
func CalculateIntrinsicValue(fs *models.FinancialStatements, snap models.CompanySnapshot, params models.ValuationParameters) (IntrinsicValue, error) {
	if err := params.Validate(); err != nil {
		return IntrinsicValue{}, err
	}
	if snap.SharesOutstanding <= 0 {
		return IntrinsicValue{}, &MissingSharesError{Ticker: snap.Ticker, Shares: snap.SharesOutstanding}
	}

	fcf, err := DeriveFCF(fs)
	if err != nil {
		return IntrinsicValue{}, err
	}
	periods := fcf.Values.Periods()
	if len(periods) == 0 {
		return IntrinsicValue{}, &InsufficientDataError{Metric: "intrinsic value", Reason: "no free cash flow periods"}
	}

	n := len(periods)
	latest := fcf.Values[periods[n-1]]

	tv, err := TerminalValue(latest, params)
	if err != nil {
		return IntrinsicValue{}, err
	}
	tvPV := Discount(tv, params.DiscountRate, n)

	var cashFlowsPV float64
	for i, period := range periods {
		cashFlowsPV += Discount(fcf.Values[period], params.DiscountRate, i+1)
	}

	total := tvPV + cashFlowsPV
	return IntrinsicValue{
		PerShare:          total / float64(snap.SharesOutstanding),
		Total:             total,
		TerminalValue:     tv,
		TerminalValuePV:   tvPV,
		CashFlowsPV:       cashFlowsPV,
		Periods:           n,
		LatestCashFlow:    latest,
		SharesOutstanding: snap.SharesOutstanding,
		Source:            fcf.Source,
	}, nil
}
