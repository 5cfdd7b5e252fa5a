package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/intrinsic/internal/models"
)

var defaultParams = models.ValuationParameters{DiscountRate: 0.10, GrowthRate: 0.05}

func statements(lines map[models.LineItem]models.YearSeries) *models.FinancialStatements {
	fs := models.NewFinancialStatements()
	for item, series := range lines {
		for period, v := range series {
			fs.Set(item, period, v)
		}
	}
	return fs
}

func TestTerminalValue(t *testing.T) {
	tv, err := TerminalValue(100, defaultParams)
	require.NoError(t, err)
	assert.InDelta(t, 2100.0, tv, 1e-9)

	pv := Discount(tv, defaultParams.DiscountRate, 1)
	assert.Equal(t, 1909.09, math.Round(pv*100)/100)
}

func TestTerminalValue_InvalidParameters(t *testing.T) {
	_, err := TerminalValue(100, models.ValuationParameters{DiscountRate: 0.05, GrowthRate: 0.05})

	var paramErr *InvalidParameterError
	assert.ErrorAs(t, err, &paramErr)
}

func TestCalculateIntrinsicValue_SinglePeriod(t *testing.T) {
	fs := statements(map[models.LineItem]models.YearSeries{
		models.LineOperatingCashFlow:  {"2023-12-31": 150},
		models.LineCapitalExpenditure: {"2023-12-31": 50},
	})
	snap := models.CompanySnapshot{Ticker: "TEST.US", SharesOutstanding: 10}

	iv, err := CalculateIntrinsicValue(fs, snap, defaultParams)
	require.NoError(t, err)

	// TV = 100*1.05/0.05 = 2100, TV_PV = 2100/1.1, PV_FCFs = 100/1.1
	assert.Equal(t, 1, iv.Periods)
	assert.InDelta(t, 2100.0, iv.TerminalValue, 1e-9)
	assert.InDelta(t, 2100.0/1.1, iv.TerminalValuePV, 1e-9)
	assert.InDelta(t, 100.0/1.1, iv.CashFlowsPV, 1e-9)
	assert.InDelta(t, (2100.0+100.0)/1.1/10, iv.PerShare, 1e-9)
	assert.Equal(t, FCFSourceOperating, iv.Source)
}

func TestCalculateIntrinsicValue_MultiPeriod(t *testing.T) {
	fs := statements(map[models.LineItem]models.YearSeries{
		models.LineOperatingCashFlow:  {"2023": 130, "2021": 110, "2022": 120},
		models.LineCapitalExpenditure: {"2021": 10, "2022": 20, "2023": 30},
	})
	snap := models.CompanySnapshot{SharesOutstanding: 4}

	iv, err := CalculateIntrinsicValue(fs, snap, defaultParams)
	require.NoError(t, err)

	// Series ascending: 100, 100, 100
	wantTV := 100 * 1.05 / 0.05
	wantTVPV := wantTV / math.Pow(1.1, 3)
	wantPV := 100/1.1 + 100/math.Pow(1.1, 2) + 100/math.Pow(1.1, 3)

	assert.Equal(t, 3, iv.Periods)
	assert.InDelta(t, 100.0, iv.LatestCashFlow, 1e-9)
	assert.InDelta(t, wantTVPV, iv.TerminalValuePV, 1e-9)
	assert.InDelta(t, wantPV, iv.CashFlowsPV, 1e-9)
	assert.InDelta(t, (wantTVPV+wantPV)/4, iv.PerShare, 1e-9)

	again, err := CalculateIntrinsicValue(fs, snap, defaultParams)
	require.NoError(t, err)
	assert.Equal(t, iv, again, "same inputs give the same result")
}

func TestCalculateIntrinsicValue_Errors(t *testing.T) {
	complete := map[models.LineItem]models.YearSeries{
		models.LineOperatingCashFlow:  {"2023": 150},
		models.LineCapitalExpenditure: {"2023": 50},
	}

	tests := []struct {
		name   string
		lines  map[models.LineItem]models.YearSeries
		shares int64
		params models.ValuationParameters
		check  func(t *testing.T, err error)
	}{
		{
			name:   "r equals g",
			lines:  complete,
			shares: 10,
			params: models.ValuationParameters{DiscountRate: 0.05, GrowthRate: 0.05},
			check: func(t *testing.T, err error) {
				var target *InvalidParameterError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "parameters checked before shares",
			lines:  complete,
			shares: 0,
			params: models.ValuationParameters{DiscountRate: 0.03, GrowthRate: 0.05},
			check: func(t *testing.T, err error) {
				var target *InvalidParameterError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "shares absent",
			lines:  complete,
			shares: 0,
			params: defaultParams,
			check: func(t *testing.T, err error) {
				var target *MissingSharesError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "shares negative",
			lines:  complete,
			shares: -5,
			params: defaultParams,
			check: func(t *testing.T, err error) {
				var target *MissingSharesError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name:   "capex missing",
			lines:  map[models.LineItem]models.YearSeries{models.LineOperatingCashFlow: {"2023": 1}},
			shares: 10,
			params: defaultParams,
			check: func(t *testing.T, err error) {
				var target *MissingLineItemError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, []models.LineItem{models.LineCapitalExpenditure}, target.Items)
			},
		},
		{
			name:   "no cash flow line",
			lines:  map[models.LineItem]models.YearSeries{models.LineCapitalExpenditure: {"2023": 1}},
			shares: 10,
			params: defaultParams,
			check: func(t *testing.T, err error) {
				var target *MissingLineItemError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "no overlapping periods",
			lines: map[models.LineItem]models.YearSeries{
				models.LineOperatingCashFlow:  {"2023": 150},
				models.LineCapitalExpenditure: {"2022": 50},
			},
			shares: 10,
			params: defaultParams,
			check: func(t *testing.T, err error) {
				var target *InsufficientDataError
				assert.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateIntrinsicValue(statements(tt.lines), models.CompanySnapshot{SharesOutstanding: tt.shares}, tt.params)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDeriveFCF(t *testing.T) {
	t.Run("operating cash flow preferred", func(t *testing.T) {
		fs := statements(map[models.LineItem]models.YearSeries{
			models.LineOperatingCashFlow:  {"2022": 100, "2023": 120},
			models.LineFreeCashFlow:       {"2022": 999, "2023": 999},
			models.LineCapitalExpenditure: {"2022": 30, "2023": 40},
		})

		got, err := DeriveFCF(fs)
		require.NoError(t, err)
		assert.Equal(t, FCFSourceOperating, got.Source)
		assert.Equal(t, models.YearSeries{"2022": 70, "2023": 80}, got.Values)
	})

	t.Run("provider free cash flow fallback", func(t *testing.T) {
		fs := statements(map[models.LineItem]models.YearSeries{
			models.LineFreeCashFlow:       {"2022": 100, "2023": 120},
			models.LineCapitalExpenditure: {"2023": 20},
		})

		got, err := DeriveFCF(fs)
		require.NoError(t, err)
		assert.Equal(t, FCFSourceProvider, got.Source)
		assert.Equal(t, models.YearSeries{"2023": 100}, got.Values)
	})

	t.Run("operating cash flow without capex overlap falls back", func(t *testing.T) {
		fs := statements(map[models.LineItem]models.YearSeries{
			models.LineOperatingCashFlow:  {"2020": 100},
			models.LineFreeCashFlow:       {"2023": 150},
			models.LineCapitalExpenditure: {"2023": 50},
		})

		got, err := DeriveFCF(fs)
		require.NoError(t, err)
		assert.Equal(t, FCFSourceProvider, got.Source)
		assert.Equal(t, models.YearSeries{"2023": 100}, got.Values)

		iv, err := CalculateIntrinsicValue(fs, models.CompanySnapshot{SharesOutstanding: 10}, defaultParams)
		require.NoError(t, err)
		assert.Equal(t, FCFSourceProvider, iv.Source)
		assert.Equal(t, 1, iv.Periods)
	})
}
