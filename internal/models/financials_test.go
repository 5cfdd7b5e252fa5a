package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearSeries_Periods(t *testing.T) {
	s := YearSeries{"2023-12-31": 3, "2021-12-31": 1, "2022-12-31": 2}

	assert.Equal(t, []string{"2021-12-31", "2022-12-31", "2023-12-31"}, s.Periods())
	assert.Equal(t, []string{"2023-12-31", "2022-12-31", "2021-12-31"}, s.PeriodsDesc())

	v, ok := s.Get("2022-12-31")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = s.Get("2020-12-31")
	assert.False(t, ok)
}

func TestFinancialStatements_Line(t *testing.T) {
	fs := NewFinancialStatements()
	fs.Set(LineNetIncome, "2023", 10)
	fs.Set(LineNetIncome, "2022", 8)
	fs.Lines[LineTotalDebt] = YearSeries{}

	ni, ok := fs.Line(LineNetIncome)
	require.True(t, ok)
	assert.Len(t, ni, 2)

	_, ok = fs.Line(LineTotalDebt)
	assert.False(t, ok, "line with no periods counts as absent")

	_, ok = fs.Line(LineGrossProfit)
	assert.False(t, ok)

	var nilStatements *FinancialStatements
	_, ok = nilStatements.Line(LineNetIncome)
	assert.False(t, ok)
}

func TestPE(t *testing.T) {
	zero := KnownPE(0)
	v, ok := zero.Value()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, "0.00", zero.String())

	na := UnavailablePE()
	_, ok = na.Value()
	assert.False(t, ok)
	assert.Equal(t, "N/A", na.String())

	pe := 21.456
	v, ok = PEFromPointer(&pe).Value()
	assert.True(t, ok)
	assert.Equal(t, 21.456, v)

	_, ok = PEFromPointer(nil).Value()
	assert.False(t, ok)
}

func TestValuationParameters_Validate(t *testing.T) {
	assert.NoError(t, ValuationParameters{DiscountRate: 0.10, GrowthRate: 0.05}.Validate())

	for _, p := range []ValuationParameters{
		{DiscountRate: 0.05, GrowthRate: 0.05},
		{DiscountRate: 0.04, GrowthRate: 0.05},
	} {
		err := p.Validate()
		var paramErr *InvalidParameterError
		require.ErrorAs(t, err, &paramErr)
		assert.Equal(t, p.DiscountRate, paramErr.DiscountRate)
	}
}

func TestCacheConfig_IsFresh(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		config   CacheConfig
		storedAt time.Time
		want     bool
	}{
		{"disabled", CacheConfig{Type: CacheTypeRollingTime, Hours: 24, Enabled: false}, now.Add(-time.Minute), false},
		{"none", CacheConfig{Type: CacheTypeNone, Hours: 24, Enabled: true}, now.Add(-time.Minute), false},
		{"zero time", DefaultCacheConfig(), time.Time{}, false},
		{"rolling inside window", CacheConfig{Type: CacheTypeRollingTime, Hours: 6, Enabled: true}, now.Add(-5 * time.Hour), true},
		{"rolling outside window", CacheConfig{Type: CacheTypeRollingTime, Hours: 6, Enabled: true}, now.Add(-7 * time.Hour), false},
		{"hard time today", CacheConfig{Type: CacheTypeHardTime, Enabled: true}, now.Add(-11 * time.Hour), true},
		{"hard time yesterday", CacheConfig{Type: CacheTypeHardTime, Enabled: true}, now.Add(-13 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.IsFresh(tt.storedAt, now))
		})
	}
}

func TestParseCacheType(t *testing.T) {
	assert.Equal(t, CacheTypeNone, ParseCacheType("NONE"))
	assert.Equal(t, CacheTypeHardTime, ParseCacheType(" hard_time "))
	assert.Equal(t, CacheTypeRollingTime, ParseCacheType("rolling_time"))
	assert.Equal(t, CacheTypeRollingTime, ParseCacheType("bogus"))
}

func TestReport_ToTable(t *testing.T) {
	v := 12.34
	r := &Report{
		Ticker:      "AAPL.US",
		CompanyName: "Apple Inc",
		Rows: []ReportRow{
			{Kind: RowHeader, Label: "Return on Equity (ROE)"},
			{Kind: RowMetric, Label: "ROE 2023-09-30", Value: &v, Range: "> 15%", Verdict: string(VerdictBelowIdeal)},
			{Kind: RowMetric, Label: "ROE 2022-09-30", Range: "> 15%", Verdict: "-"},
			{Kind: RowNotice, Label: "Insufficient data", Verdict: "missing line item"},
		},
	}

	table := r.ToTable()

	assert.Equal(t, "Apple Inc (AAPL.US)", table.Title)
	assert.Equal(t, ReportHeader, table.Header)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []any{"Return on Equity (ROE)", "", "", ""}, table.Rows[0])
	assert.Equal(t, []any{"ROE 2023-09-30", 12.34, "> 15%", "Below Ideal"}, table.Rows[1])
	assert.Equal(t, "N/A", table.Rows[2][1])
	assert.Equal(t, []any{"Insufficient data", "N/A", "-", "missing line item"}, table.Rows[3])
}
