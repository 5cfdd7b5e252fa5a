// Package models provides the domain types shared by the provider, metrics and report layers.
package models

import "sort"

// LineItem names a financial statement line used by the metrics engine.
type LineItem string

const (
	LineNetIncome           LineItem = "Net Income"
	LineStockholdersEquity  LineItem = "Stockholders Equity"
	LineTotalDebt           LineItem = "Total Debt"
	LineTotalRevenue        LineItem = "Total Revenue"
	LineGrossProfit         LineItem = "Gross Profit"
	LineResearchDevelopment LineItem = "Research And Development"
	LineOperatingCashFlow   LineItem = "Operating Cash Flow"
	LineCapitalExpenditure  LineItem = "Capital Expenditure"
	LineFreeCashFlow        LineItem = "Free Cash Flow"
)

// YearSeries maps a fiscal period key (e.g. "2023-09-30") to a value.
// A period with no usable value is absent from the map, never zero.
type YearSeries map[string]float64

// Periods returns the period keys in ascending order.
func (s YearSeries) Periods() []string {
	periods := make([]string, 0, len(s))
	for period := range s {
		periods = append(periods, period)
	}
	sort.Strings(periods)
	return periods
}

// PeriodsDesc returns the period keys most recent first.
func (s YearSeries) PeriodsDesc() []string {
	periods := s.Periods()
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods
}

// Get returns the value for a period and whether it exists.
func (s YearSeries) Get(period string) (float64, bool) {
	v, ok := s[period]
	return v, ok
}

// FinancialStatements holds every normalized line item series for one company.
type FinancialStatements struct {
	Lines map[LineItem]YearSeries
}

// NewFinancialStatements returns an empty statement set.
func NewFinancialStatements() *FinancialStatements {
	return &FinancialStatements{Lines: make(map[LineItem]YearSeries)}
}

// Set records a value for a line item and period.
func (f *FinancialStatements) Set(item LineItem, period string, value float64) {
	if f.Lines == nil {
		f.Lines = make(map[LineItem]YearSeries)
	}
	series, ok := f.Lines[item]
	if !ok {
		series = make(YearSeries)
		f.Lines[item] = series
	}
	series[period] = value
}

// Line returns the series for a line item. ok is false when the line is
// missing entirely or has no usable periods.
func (f *FinancialStatements) Line(item LineItem) (YearSeries, bool) {
	if f == nil {
		return nil, false
	}
	series, ok := f.Lines[item]
	if !ok || len(series) == 0 {
		return nil, false
	}
	return series, true
}

// CompanyData is everything a provider returns for one ticker.
type CompanyData struct {
	Snapshot   CompanySnapshot
	Statements *FinancialStatements
}
