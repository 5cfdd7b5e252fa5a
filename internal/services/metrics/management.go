package metrics

import "github.com/ternarybob/intrinsic/internal/models"

// FreeCashFlowTrend returns operating cash flow minus capex for every period
// present in both. Negative values are kept.
func FreeCashFlowTrend(fs *models.FinancialStatements) (models.YearSeries, error) {
	lines, err := requireLines(fs, models.LineOperatingCashFlow, models.LineCapitalExpenditure)
	if err != nil {
		return nil, err
	}
	ocf, capex := lines[0], lines[1]

	out := make(models.YearSeries)
	for period, v := range ocf {
		if c, ok := capex.Get(period); ok {
			out[period] = v - c
		}
	}
	return out, nil
}

// PERatios is the trailing and forward price-to-earnings pair.
type PERatios struct {
	Trailing models.PE
	Forward  models.PE
}
