package metrics

import "github.com/ternarybob/intrinsic/internal/models"

// Result carries one category's value or the error that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the category produced a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

func resultOf[T any](v T, err error) Result[T] {
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Err: err}
	}
	return Result[T]{Value: v}
}

// Analysis holds every metric category for one company.
type Analysis struct {
	CurrentPrice     float64
	Intrinsic        Result[IntrinsicValue]
	ROE              Result[models.YearSeries]
	DebtToEquity     Result[models.YearSeries]
	NetProfitMargin  Result[models.YearSeries]
	Moat             Result[Moat]
	FreeCashFlow     Result[models.YearSeries]
	InsiderOwnership *float64
	PE               PERatios
}

// Analyze runs every category independently so one failure never hides another.
func Analyze(data *models.CompanyData, params models.ValuationParameters) Analysis {
	fs := data.Statements
	snap := data.Snapshot

	return Analysis{
		CurrentPrice:     snap.CurrentPrice,
		Intrinsic:        resultOf(CalculateIntrinsicValue(fs, snap, params)),
		ROE:              resultOf(ReturnOnEquity(fs)),
		DebtToEquity:     resultOf(DebtToEquity(fs)),
		NetProfitMargin:  resultOf(NetProfitMargin(fs)),
		Moat:             resultOf(AnalyzeMoat(fs)),
		FreeCashFlow:     resultOf(FreeCashFlowTrend(fs)),
		InsiderOwnership: snap.InsiderOwnership,
		PE:               PERatios{Trailing: snap.TrailingPE, Forward: snap.ForwardPE},
	}
}
