// Package batch runs the per-ticker fetch, analyze, classify and write pipeline.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
	"github.com/ternarybob/intrinsic/internal/services/classify"
	"github.com/ternarybob/intrinsic/internal/services/metrics"
)

// DefaultTickerTimeout bounds one ticker's provider work when none is configured.
const DefaultTickerTimeout = 30 * time.Second

// ErrNoSinkWrote is recorded when every configured sink failed for a ticker.
var ErrNoSinkWrote = errors.New("no report sink succeeded")

// PanicError is a recovered panic from one ticker's processing.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TickerResult is the outcome for one ticker.
type TickerResult struct {
	Ticker     string
	Report     *models.Report
	Locations  []string
	SinkErrors map[string]error
	Err        error
}

// OK reports whether a report was produced.
func (r TickerResult) OK() bool { return r.Err == nil }

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Started   time.Time
	Elapsed   time.Duration
	Results   []TickerResult
	Succeeded int
	Failed    int
}

// OK reports whether every ticker produced a report.
func (s Summary) OK() bool { return s.Failed == 0 }

// Runner processes tickers one after another.
type Runner struct {
	provider interfaces.FinancialDataProvider
	sinks    []interfaces.ReportSink
	params   models.ValuationParameters
	timeout  time.Duration
	logger   arbor.ILogger
	now      func() time.Time
}

// NewRunner creates a runner. timeout <= 0 uses DefaultTickerTimeout.
func NewRunner(
	provider interfaces.FinancialDataProvider,
	sinks []interfaces.ReportSink,
	params models.ValuationParameters,
	timeout time.Duration,
	logger arbor.ILogger,
) *Runner {
	if timeout <= 0 {
		timeout = DefaultTickerTimeout
	}
	return &Runner{
		provider: provider,
		sinks:    sinks,
		params:   params,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes every ticker. A failing ticker is recorded and the run moves
// on; cancelling ctx stops the run between tickers. unresolved holds arguments
// that never became tickers; they are counted as failures.
func (r *Runner) Run(ctx context.Context, tickers []common.Ticker, unresolved ...TickerResult) Summary {
	summary := Summary{
		RunID:   uuid.New().String(),
		Started: r.now(),
		Results: make([]TickerResult, 0, len(unresolved)+len(tickers)),
	}
	logger := r.logger.WithCorrelationId(summary.RunID)

	for _, res := range unresolved {
		if res.Err == nil {
			res.Err = errors.New("unresolved argument")
		}
		summary.Failed++
		summary.Results = append(summary.Results, res)
	}

	logger.Info().
		Int("tickers", len(tickers)).
		Int("unresolved", len(unresolved)).
		Float64("discount_rate", r.params.DiscountRate).
		Float64("growth_rate", r.params.GrowthRate).
		Msg("Starting valuation run")

	for i, ticker := range tickers {
		var result TickerResult
		if err := ctx.Err(); err != nil {
			result = TickerResult{Ticker: ticker.String(), Err: fmt.Errorf("run cancelled: %w", err)}
		} else {
			result = r.processTicker(ctx, logger, ticker)
		}

		if result.OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
			logger.Error().
				Err(result.Err).
				Str("ticker", result.Ticker).
				Int("index", i+1).
				Msg("Ticker failed")
		}
		summary.Results = append(summary.Results, result)
	}

	summary.Elapsed = r.now().Sub(summary.Started)
	r.logSummary(logger, summary)
	return summary
}

// processTicker never panics; a panic becomes the ticker's error.
func (r *Runner) processTicker(ctx context.Context, logger arbor.ILogger, ticker common.Ticker) (result TickerResult) {
	result.Ticker = ticker.String()

	defer func() {
		if p := recover(); p != nil {
			stack := string(debug.Stack())
			logger.Error().
				Str("ticker", result.Ticker).
				Str("panic", fmt.Sprintf("%v", p)).
				Str("stack", stack).
				Msg("Recovered from panic while processing ticker")
			result.Err = &PanicError{Value: p, Stack: stack}
		}
	}()

	start := r.now()
	data, err := r.fetch(ctx, ticker)
	if err != nil {
		result.Err = err
		return result
	}
	result.Ticker = data.Snapshot.Ticker

	analysis := metrics.Analyze(data, r.params)
	r.logCategoryFailures(logger, result.Ticker, analysis)

	report := classify.Assemble(data.Snapshot, analysis, r.now())
	result.Report = report

	table := report.ToTable()
	result.SinkErrors = make(map[string]error)
	for _, sink := range r.sinks {
		if err := ctx.Err(); err != nil {
			result.SinkErrors[sink.Name()] = err
			continue
		}
		location, err := sink.Write(ctx, table)
		if err != nil {
			result.SinkErrors[sink.Name()] = err
			logger.Warn().
				Err(err).
				Str("ticker", result.Ticker).
				Str("sink", sink.Name()).
				Msg("Report sink failed")
			continue
		}
		result.Locations = append(result.Locations, location)
	}

	if len(r.sinks) > 0 && len(result.Locations) == 0 {
		result.Err = ErrNoSinkWrote
		return result
	}

	logger.Info().
		Str("ticker", result.Ticker).
		Int("rows", len(report.Rows)).
		Strs("written", result.Locations).
		Dur("elapsed", r.now().Sub(start)).
		Msg("Report complete")
	return result
}

func (r *Runner) fetch(ctx context.Context, ticker common.Ticker) (*models.CompanyData, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.provider.Fetch(fetchCtx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ticker, err)
	}
	if data == nil {
		return nil, fmt.Errorf("fetching %s: provider returned no data", ticker)
	}
	return data, nil
}

func (r *Runner) logCategoryFailures(logger arbor.ILogger, ticker string, a metrics.Analysis) {
	failures := []struct {
		category string
		err      error
	}{
		{classify.CategoryIntrinsic, a.Intrinsic.Err},
		{classify.CategoryROE, a.ROE.Err},
		{classify.CategoryDebtEquity, a.DebtToEquity.Err},
		{classify.CategoryNetMargin, a.NetProfitMargin.Err},
		{"Moat", a.Moat.Err},
		{classify.CategoryFCF, a.FreeCashFlow.Err},
	}
	for _, f := range failures {
		if f.err != nil {
			logger.Warn().
				Err(f.err).
				Str("ticker", ticker).
				Str("category", f.category).
				Msg("Category has insufficient data")
		}
	}
}

func (r *Runner) logSummary(logger arbor.ILogger, s Summary) {
	var succeeded, failed, written []string
	for _, res := range s.Results {
		if res.OK() {
			succeeded = append(succeeded, res.Ticker)
		} else {
			failed = append(failed, res.Ticker)
		}
		written = append(written, res.Locations...)
	}

	event := logger.Info()
	if s.Failed > 0 {
		event = logger.Warn()
	}
	event.
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Strs("succeeded_tickers", succeeded).
		Strs("failed_tickers", failed).
		Strs("written", written).
		Dur("elapsed", s.Elapsed).
		Msg("Valuation run complete")
}
