package classify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/intrinsic/internal/models"
	"github.com/ternarybob/intrinsic/internal/services/metrics"
)

func TestThresholds(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) models.Verdict
		in   float64
		want models.Verdict
	}{
		{"roe above", ROE, 15.01, models.VerdictStrong},
		{"roe boundary", ROE, 15, models.VerdictBelowIdeal},
		{"de low", DebtToEquity, 0.49, models.VerdictLow},
		{"de lower bound", DebtToEquity, 0.5, models.VerdictModerate},
		{"de upper bound", DebtToEquity, 1.0, models.VerdictModerate},
		{"de high", DebtToEquity, 1.01, models.VerdictHigh},
		{"net margin strong", NetMargin, 10.5, models.VerdictStrong},
		{"net margin boundary", NetMargin, 10, models.VerdictWeak},
		{"gross margin strong", GrossMargin, 41, models.VerdictStrong},
		{"gross margin boundary", GrossMargin, 40, models.VerdictWeak},
		{"growth", RevenueGrowth, 5.1, models.VerdictGrowing},
		{"growth boundary", RevenueGrowth, 5, models.VerdictSlow},
		{"insider high", InsiderOwnership, 0.11, models.VerdictHigh},
		{"insider upper bound", InsiderOwnership, 0.10, models.VerdictModerate},
		{"insider lower bound", InsiderOwnership, 0.05, models.VerdictModerate},
		{"insider low", InsiderOwnership, 0.049, models.VerdictLow},
		{"pe cheap", PE, 14.99, models.VerdictUndervalued},
		{"pe lower bound", PE, 15, models.VerdictFairlyValued},
		{"pe upper bound", PE, 25, models.VerdictFairlyValued},
		{"pe expensive", PE, 25.01, models.VerdictOvervalued},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestIntrinsic(t *testing.T) {
	assert.Equal(t, models.VerdictUndervalued, Intrinsic(101, 100))
	assert.Equal(t, models.VerdictOvervalued, Intrinsic(100, 100))
	assert.Equal(t, models.VerdictOvervalued, Intrinsic(99, 100))
}

func headers(rows []models.ReportRow) []string {
	var out []string
	for _, r := range rows {
		if r.Kind == models.RowHeader {
			out = append(out, r.Label)
		}
	}
	return out
}

func rowsUnder(rows []models.ReportRow, header string) []models.ReportRow {
	var out []models.ReportRow
	in := false
	for _, r := range rows {
		if r.Kind == models.RowHeader {
			in = r.Label == header
			continue
		}
		if in {
			out = append(out, r)
		}
	}
	return out
}

func TestAssemble_FullReport(t *testing.T) {
	insider := 0.07
	snap := models.CompanySnapshot{Ticker: "ACME.US", Name: "Acme Corp", Currency: "USD", CurrentPrice: 50}
	a := metrics.Analysis{
		CurrentPrice: 50,
		Intrinsic:    metrics.Result[metrics.IntrinsicValue]{Value: metrics.IntrinsicValue{PerShare: 61.23456}},
		ROE:          metrics.Result[models.YearSeries]{Value: models.YearSeries{"2022": 12.345, "2023": 18}},
		DebtToEquity: metrics.Result[models.YearSeries]{Value: models.YearSeries{"2023": 0.5}},
		NetProfitMargin: metrics.Result[models.YearSeries]{
			Value: models.YearSeries{"2023": 11},
		},
		Moat: metrics.Result[metrics.Moat]{Value: metrics.Moat{
			GrossMargin:   models.YearSeries{"2023": 45},
			RevenueGrowth: models.YearSeries{"2023": 10},
			RDToRevenue:   models.YearSeries{"2023": 7.777},
		}},
		FreeCashFlow:     metrics.Result[models.YearSeries]{Value: models.YearSeries{"2023": -1000}},
		InsiderOwnership: &insider,
		PE:               metrics.PERatios{Trailing: models.KnownPE(20), Forward: models.UnavailablePE()},
	}
	generated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	report := Assemble(snap, a, generated)

	assert.Equal(t, "ACME.US", report.Ticker)
	assert.Equal(t, "Acme Corp", report.CompanyName)
	assert.Equal(t, generated, report.GeneratedAt)
	assert.Equal(t, Categories, headers(report.Rows))

	intrinsic := rowsUnder(report.Rows, CategoryIntrinsic)
	require.Len(t, intrinsic, 2)
	assert.Equal(t, 50.0, *intrinsic[0].Value)
	assert.Equal(t, 61.23, *intrinsic[1].Value)
	assert.Equal(t, string(models.VerdictUndervalued), intrinsic[1].Verdict)

	roe := rowsUnder(report.Rows, CategoryROE)
	require.Len(t, roe, 2)
	assert.Equal(t, "Return on Equity (ROE) 2023", roe[0].Label, "most recent period first")
	assert.Equal(t, string(models.VerdictStrong), roe[0].Verdict)
	assert.Equal(t, 12.35, *roe[1].Value)
	assert.Equal(t, string(models.VerdictBelowIdeal), roe[1].Verdict)

	de := rowsUnder(report.Rows, CategoryDebtEquity)
	require.Len(t, de, 1)
	assert.Equal(t, string(models.VerdictModerate), de[0].Verdict)

	rd := rowsUnder(report.Rows, CategoryRD)
	require.Len(t, rd, 1)
	assert.Equal(t, 7.78, *rd[0].Value)
	assert.Equal(t, "-", rd[0].Range)
	assert.Equal(t, "-", rd[0].Verdict)

	fcf := rowsUnder(report.Rows, CategoryFCF)
	require.Len(t, fcf, 1)
	assert.Equal(t, -1000.0, *fcf[0].Value)
	assert.Equal(t, "-", fcf[0].Verdict)

	ins := rowsUnder(report.Rows, CategoryInsider)
	require.Len(t, ins, 1)
	assert.Equal(t, 7.0, *ins[0].Value)
	assert.Equal(t, string(models.VerdictModerate), ins[0].Verdict)

	pe := rowsUnder(report.Rows, CategoryPE)
	require.Len(t, pe, 2)
	assert.Equal(t, string(models.VerdictFairlyValued), pe[0].Verdict)
	assert.Nil(t, pe[1].Value)
	assert.Equal(t, "-", pe[1].Verdict)
}

func TestAssemble_FailedCategories(t *testing.T) {
	paramErr := &metrics.InvalidParameterError{DiscountRate: 0.05, GrowthRate: 0.05}
	lineErr := &metrics.MissingLineItemError{Items: []models.LineItem{models.LineResearchDevelopment}}

	a := metrics.Analysis{
		Intrinsic:       metrics.Result[metrics.IntrinsicValue]{Err: paramErr},
		ROE:             metrics.Result[models.YearSeries]{Value: models.YearSeries{"2023": 20}},
		DebtToEquity:    metrics.Result[models.YearSeries]{Err: errors.New("boom")},
		NetProfitMargin: metrics.Result[models.YearSeries]{Value: models.YearSeries{}},
		Moat:            metrics.Result[metrics.Moat]{Err: lineErr},
		FreeCashFlow:    metrics.Result[models.YearSeries]{Value: models.YearSeries{}},
	}

	report := Assemble(models.CompanySnapshot{Ticker: "X.US"}, a, time.Now())

	assert.Equal(t, Categories, headers(report.Rows))

	intrinsic := rowsUnder(report.Rows, CategoryIntrinsic)
	require.Len(t, intrinsic, 1, "no intrinsic value row when parameters are invalid")
	assert.Equal(t, models.RowNotice, intrinsic[0].Kind)
	assert.Equal(t, InsufficientDataLabel, intrinsic[0].Label)
	assert.Equal(t, paramErr.Error(), intrinsic[0].Verdict)

	assert.Len(t, rowsUnder(report.Rows, CategoryROE), 1)

	for _, category := range []string{CategoryGrossMargin, CategoryGrowth, CategoryRD} {
		rows := rowsUnder(report.Rows, category)
		require.Len(t, rows, 1, category)
		assert.Equal(t, models.RowNotice, rows[0].Kind)
		assert.Contains(t, rows[0].Verdict, "Research And Development")
	}

	ins := rowsUnder(report.Rows, CategoryInsider)
	require.Len(t, ins, 1)
	assert.Nil(t, ins[0].Value)

	pe := rowsUnder(report.Rows, CategoryPE)
	require.Len(t, pe, 2)
	assert.Nil(t, pe[0].Value)
	assert.Nil(t, pe[1].Value)
}
