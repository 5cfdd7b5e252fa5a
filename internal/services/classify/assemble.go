package classify

import (
	"fmt"
	"time"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/models"
	"github.com/ternarybob/intrinsic/internal/services/metrics"
)

// Category headers, in report order.
const (
	CategoryIntrinsic   = "Intrinsic Value"
	CategoryROE         = "Return on Equity (ROE)"
	CategoryDebtEquity  = "Debt-to-Equity"
	CategoryNetMargin   = "Profit Margin"
	CategoryGrossMargin = "Gross Margin"
	CategoryGrowth      = "Revenue Growth"
	CategoryRD          = "R&D Spending as % of Revenue"
	CategoryFCF         = "Free Cash Flow"
	CategoryInsider     = "Insider Ownership"
	CategoryPE          = "P/E Ratio"
)

// InsufficientDataLabel labels the notice row of a failed category.
const InsufficientDataLabel = "Insufficient data"

// Categories lists the report sections in output order.
var Categories = []string{
	CategoryIntrinsic,
	CategoryROE,
	CategoryDebtEquity,
	CategoryNetMargin,
	CategoryGrossMargin,
	CategoryGrowth,
	CategoryRD,
	CategoryFCF,
	CategoryInsider,
	CategoryPE,
}

type rowBuilder struct {
	rows []models.ReportRow
}

func (b *rowBuilder) header(label string) {
	b.rows = append(b.rows, models.ReportRow{Kind: models.RowHeader, Label: label, Range: RangeNone, Verdict: string(models.VerdictNone)})
}

func (b *rowBuilder) notice(err error) {
	b.rows = append(b.rows, models.ReportRow{Kind: models.RowNotice, Label: InsufficientDataLabel, Range: RangeNone, Verdict: err.Error()})
}

func (b *rowBuilder) metric(label string, value *float64, rng string, verdict models.Verdict) {
	b.rows = append(b.rows, models.ReportRow{Kind: models.RowMetric, Label: label, Value: value, Range: rng, Verdict: string(verdict)})
}

// series emits one row per period, most recent first. classify may be nil for unclassified metrics.
func (b *rowBuilder) series(category, prefix string, s models.YearSeries, rng string, classify func(float64) models.Verdict) {
	b.header(category)
	for _, period := range s.PeriodsDesc() {
		v := s[period]
		verdict := models.VerdictNone
		if classify != nil {
			verdict = classify(v)
		}
		b.metric(fmt.Sprintf("%s %s", prefix, period), common.Round2Ptr(v), rng, verdict)
	}
}

func (b *rowBuilder) seriesResult(category, prefix string, r metrics.Result[models.YearSeries], rng string, classify func(float64) models.Verdict) {
	if r.Err != nil {
		b.header(category)
		b.notice(r.Err)
		return
	}
	b.series(category, prefix, r.Value, rng, classify)
}

// Assemble builds the ordered report for one ticker. Comparisons use unrounded
// values; only displayed values are rounded.
func Assemble(snap models.CompanySnapshot, a metrics.Analysis, generatedAt time.Time) *models.Report {
	b := &rowBuilder{}

	b.header(CategoryIntrinsic)
	if a.Intrinsic.Err != nil {
		b.notice(a.Intrinsic.Err)
	} else {
		iv := a.Intrinsic.Value
		b.metric("Current Price", common.Round2Ptr(a.CurrentPrice), RangeNone, models.VerdictNone)
		b.metric("Intrinsic Value per Share", common.Round2Ptr(iv.PerShare), RangeIntrinsic, Intrinsic(iv.PerShare, a.CurrentPrice))
	}

	b.seriesResult(CategoryROE, CategoryROE, a.ROE, RangeROE, ROE)
	b.seriesResult(CategoryDebtEquity, CategoryDebtEquity, a.DebtToEquity, RangeDebtEquity, DebtToEquity)
	b.seriesResult(CategoryNetMargin, CategoryNetMargin, a.NetProfitMargin, RangeNetMargin, NetMargin)

	if a.Moat.Err != nil {
		for _, category := range []string{CategoryGrossMargin, CategoryGrowth, CategoryRD} {
			b.header(category)
			b.notice(a.Moat.Err)
		}
	} else {
		moat := a.Moat.Value
		b.series(CategoryGrossMargin, CategoryGrossMargin, moat.GrossMargin, RangeGrossMargin, GrossMargin)
		b.series(CategoryGrowth, CategoryGrowth, moat.RevenueGrowth, RangeGrowth, RevenueGrowth)
		b.series(CategoryRD, CategoryRD, moat.RDToRevenue, RangeNone, nil)
	}

	b.seriesResult(CategoryFCF, CategoryFCF, a.FreeCashFlow, RangeNone, nil)

	b.header(CategoryInsider)
	if a.InsiderOwnership == nil {
		b.metric(CategoryInsider, nil, RangeInsider, models.VerdictNone)
	} else {
		fraction := *a.InsiderOwnership
		b.metric(CategoryInsider, common.Round2Ptr(fraction*100), RangeInsider, InsiderOwnership(fraction))
	}

	b.header(CategoryPE)
	b.pe("Trailing P/E", a.PE.Trailing)
	b.pe("Forward P/E", a.PE.Forward)

	return &models.Report{
		Ticker:      snap.Ticker,
		CompanyName: snap.Name,
		Currency:    snap.Currency,
		GeneratedAt: generatedAt,
		Rows:        b.rows,
	}
}

func (b *rowBuilder) pe(label string, pe models.PE) {
	v, ok := pe.Value()
	if !ok {
		b.metric(label, nil, RangePE, models.VerdictNone)
		return
	}
	b.metric(label, common.Round2Ptr(v), RangePE, PE(v))
}
