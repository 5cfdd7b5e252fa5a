package fundamentals

import (
	"math"
	"sort"

	"github.com/ternarybob/intrinsic/internal/eodhd"
	"github.com/ternarybob/intrinsic/internal/models"
)

type statementKind int

const (
	incomeStatement statementKind = iota
	balanceSheet
	cashFlow
)

// lineSource maps a line item onto EODHD statement keys, in priority order.
type lineSource struct {
	item      models.LineItem
	statement statementKind
	keys      []string
}

var lineSources = []lineSource{
	{models.LineNetIncome, incomeStatement, []string{"netIncome", "netIncomeApplicableToCommonShares"}},
	{models.LineTotalRevenue, incomeStatement, []string{"totalRevenue"}},
	{models.LineGrossProfit, incomeStatement, []string{"grossProfit"}},
	{models.LineResearchDevelopment, incomeStatement, []string{"researchDevelopment"}},
	{models.LineStockholdersEquity, balanceSheet, []string{"totalStockholderEquity"}},
	{models.LineOperatingCashFlow, cashFlow, []string{"totalCashFromOperatingActivities"}},
	{models.LineCapitalExpenditure, cashFlow, []string{"capitalExpenditures"}},
	{models.LineFreeCashFlow, cashFlow, []string{"freeCashFlow"}},
}

// NormalizeStatements converts EODHD yearly statements into line item series.
// Cells that are missing, null or non-numeric are left out. historyYears > 0
// keeps only the most recent fiscal years across all statements.
func NormalizeStatements(fin *eodhd.Financials, historyYears int) *models.FinancialStatements {
	fs := models.NewFinancialStatements()
	if fin == nil {
		return fs
	}

	yearly := map[statementKind]map[string]map[string]interface{}{
		incomeStatement: yearlyOf(fin.IncomeStatement),
		balanceSheet:    yearlyOf(fin.BalanceSheet),
		cashFlow:        yearlyOf(fin.CashFlow),
	}
	keep := recentPeriods(yearly, historyYears)

	for _, src := range lineSources {
		for period, cells := range yearly[src.statement] {
			if !keep[period] {
				continue
			}
			if v, ok := firstNumber(cells, src.keys...); ok {
				if src.item == models.LineCapitalExpenditure {
					// Stored as a positive outflow so OCF - capex is free cash flow.
					v = math.Abs(v)
				}
				fs.Set(src.item, period, v)
			}
		}
	}

	for period, cells := range yearly[balanceSheet] {
		if !keep[period] {
			continue
		}
		if v, ok := totalDebt(cells); ok {
			fs.Set(models.LineTotalDebt, period, v)
		}
	}

	return fs
}

func yearlyOf(s *eodhd.FinancialStatement) map[string]map[string]interface{} {
	if s == nil {
		return nil
	}
	return s.Yearly
}

// recentPeriods returns the set of period keys to keep. historyYears <= 0 keeps all.
func recentPeriods(yearly map[statementKind]map[string]map[string]interface{}, historyYears int) map[string]bool {
	all := make(map[string]bool)
	for _, statement := range yearly {
		for period := range statement {
			all[period] = true
		}
	}
	if historyYears <= 0 || len(all) <= historyYears {
		return all
	}

	periods := make([]string, 0, len(all))
	for period := range all {
		periods = append(periods, period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	keep := make(map[string]bool, historyYears)
	for _, period := range periods[:historyYears] {
		keep[period] = true
	}
	return keep
}

func firstNumber(cells map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if raw, ok := cells[key]; ok {
			if v, ok := eodhd.StatementValue(raw); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// totalDebt prefers the reported total, falling back to short plus long term debt.
func totalDebt(cells map[string]interface{}) (float64, bool) {
	if v, ok := firstNumber(cells, "shortLongTermDebtTotal"); ok {
		return v, true
	}
	short, hasShort := firstNumber(cells, "shortTermDebt")
	long, hasLong := firstNumber(cells, "longTermDebt")
	if !hasShort && !hasLong {
		return 0, false
	}
	return short + long, true
}
