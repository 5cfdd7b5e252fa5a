package metrics

import "github.com/ternarybob/intrinsic/internal/models"

// ratio divides num by den for every period present in both, skipping zero
// denominators, and multiplies by scale.
func ratio(num, den models.YearSeries, scale float64) models.YearSeries {
	out := make(models.YearSeries)
	for period, n := range num {
		d, ok := den.Get(period)
		if !ok || d == 0 {
			continue
		}
		out[period] = n / d * scale
	}
	return out
}

// ReturnOnEquity returns net income / stockholders equity * 100 per period.
func ReturnOnEquity(fs *models.FinancialStatements) (models.YearSeries, error) {
	lines, err := requireLines(fs, models.LineNetIncome, models.LineStockholdersEquity)
	if err != nil {
		return nil, err
	}
	return ratio(lines[0], lines[1], 100), nil
}

// DebtToEquity returns total debt / stockholders equity per period.
func DebtToEquity(fs *models.FinancialStatements) (models.YearSeries, error) {
	lines, err := requireLines(fs, models.LineTotalDebt, models.LineStockholdersEquity)
	if err != nil {
		return nil, err
	}
	return ratio(lines[0], lines[1], 1), nil
}

// NetProfitMargin returns net income / total revenue * 100 per period.
func NetProfitMargin(fs *models.FinancialStatements) (models.YearSeries, error) {
	lines, err := requireLines(fs, models.LineNetIncome, models.LineTotalRevenue)
	if err != nil {
		return nil, err
	}
	return ratio(lines[0], lines[1], 100), nil
}
