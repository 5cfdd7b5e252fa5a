package metrics

import "github.com/ternarybob/intrinsic/internal/models"

// Moat groups the economic moat indicators.
type Moat struct {
	GrossMargin   models.YearSeries
	RevenueGrowth models.YearSeries
	RDToRevenue   models.YearSeries
}

// AnalyzeMoat requires revenue, gross profit and R&D. If any of them is absent the
// whole category fails with MissingLineItemError.
func AnalyzeMoat(fs *models.FinancialStatements) (Moat, error) {
	lines, err := requireLines(fs, models.LineTotalRevenue, models.LineGrossProfit, models.LineResearchDevelopment)
	if err != nil {
		return Moat{}, err
	}
	revenue, gross, rd := lines[0], lines[1], lines[2]

	return Moat{
		GrossMargin:   ratio(gross, revenue, 100),
		RevenueGrowth: RevenueGrowth(revenue),
		RDToRevenue:   ratio(rd, revenue, 100),
	}, nil
}

// RevenueGrowth compares each period with the next older one:
// (rev[y] - rev[older]) / rev[older] * 100. The oldest period has no growth
// value and an older revenue of zero is skipped.
func RevenueGrowth(revenue models.YearSeries) models.YearSeries {
	out := make(models.YearSeries)
	periods := revenue.PeriodsDesc()
	for i := 0; i+1 < len(periods); i++ {
		older := revenue[periods[i+1]]
		if older == 0 {
			continue
		}
		out[periods[i]] = (revenue[periods[i]] - older) / older * 100
	}
	return out
}
