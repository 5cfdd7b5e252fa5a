// Package app wires configuration, provider, cache, sinks and the batch runner.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/eodhd"
	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
	"github.com/ternarybob/intrinsic/internal/services/batch"
	"github.com/ternarybob/intrinsic/internal/services/fundamentals"
	"github.com/ternarybob/intrinsic/internal/services/report"
	"github.com/ternarybob/intrinsic/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Cache    interfaces.FundamentalsCache
	Provider interfaces.FinancialDataProvider
	Sinks    []interfaces.ReportSink
	Runner   *batch.Runner

	timeout time.Duration
}

// New initializes the application. out receives console reports.
func New(cfg *common.Config, logger arbor.ILogger, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.CheckValuationParameters(); err != nil {
		logger.Warn().Err(err).Msg("Intrinsic value will be reported as unavailable for every ticker")
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.initCache(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	if err := a.initServices(out); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info().
		Float64("discount_rate", cfg.Valuation.DiscountRate).
		Float64("growth_rate", cfg.Valuation.GrowthRate).
		Int("history_years", cfg.Valuation.HistoryYears).
		Strs("formats", cfg.Report.Formats).
		Bool("cache_enabled", a.Cache != nil).
		Msg("Application initialization complete")

	return a, nil
}

// initCache opens the badger fundamentals cache when enabled.
func (a *App) initCache() error {
	policy := a.Config.Cache.Policy()
	if !policy.Enabled {
		a.Logger.Debug().Msg("Fundamentals cache disabled")
		return nil
	}

	db, err := badger.NewBadgerDB(a.Logger, a.Config.Cache.Path)
	if err != nil {
		return err
	}
	cache := badger.NewFundamentalsCache(db, a.Logger)

	// Entries past the freshness window are never served again.
	if policy.Type == models.CacheTypeRollingTime && policy.Hours > 0 {
		cutoff := time.Now().Add(-time.Duration(policy.Hours) * time.Hour)
		if _, err := cache.Purge(context.Background(), cutoff); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to purge stale cache entries")
		}
	}

	a.Cache = cache
	a.Logger.Debug().
		Str("path", a.Config.Cache.Path).
		Str("type", string(policy.Type)).
		Int("hours", policy.Hours).
		Msg("Fundamentals cache initialized")
	return nil
}

func (a *App) initServices(out io.Writer) error {
	timeout, err := a.Config.EODHD.TimeoutDuration()
	if err != nil {
		return err
	}

	opts := []eodhd.ClientOption{
		eodhd.WithBaseURL(a.Config.EODHD.BaseURL),
		eodhd.WithTimeout(timeout),
		eodhd.WithLogger(a.Logger),
	}
	if a.Config.EODHD.RateLimit > 0 {
		opts = append(opts, eodhd.WithRateLimit(a.Config.EODHD.RateLimit))
	}
	client := eodhd.NewClient(a.Config.EODHD.APIKey, opts...)
	a.timeout = timeout

	providerOpts := []fundamentals.Option{fundamentals.WithHistoryYears(a.Config.Valuation.HistoryYears)}
	if a.Cache != nil {
		providerOpts = append(providerOpts, fundamentals.WithCache(a.Cache, a.Config.Cache.Policy()))
	}
	a.Provider = fundamentals.NewService(client, a.Logger, providerOpts...)

	a.Sinks, err = report.NewSinks(a.Config.Report, out, a.Logger)
	if err != nil {
		return err
	}

	a.Runner = batch.NewRunner(a.Provider, a.Sinks, a.Config.ValuationParameters(), timeout, a.Logger)
	return nil
}

// ResolveTickers parses command-line symbols, expanding "@CODE" index arguments
// into their constituents. Duplicates keep their first position. An argument
// that cannot be resolved is logged and returned as a failed result while the
// rest are still resolved; an error is returned only when nothing resolves.
func (a *App) ResolveTickers(ctx context.Context, args []string) ([]common.Ticker, []batch.TickerResult, error) {
	var (
		tickers    []common.Ticker
		unresolved []batch.TickerResult
		errs       []error
	)
	seen := make(map[string]bool)
	add := func(t common.Ticker) {
		key := t.EODHDSymbol()
		if !seen[key] {
			seen[key] = true
			tickers = append(tickers, t)
		}
	}
	fail := func(arg string, err error) {
		a.Logger.Error().Err(err).Str("argument", arg).Msg("Failed to resolve argument")
		unresolved = append(unresolved, batch.TickerResult{Ticker: arg, Err: err})
		errs = append(errs, fmt.Errorf("%s: %w", arg, err))
	}

	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if common.IsIndexArg(arg) {
			members, err := a.expandIndex(ctx, common.IndexCode(arg))
			if err != nil {
				fail(arg, err)
				continue
			}
			for _, t := range members {
				add(t)
			}
			continue
		}
		parsed, err := common.ParseTickers([]string{arg}, a.Config.EODHD.DefaultExchange)
		if err != nil {
			fail(arg, err)
			continue
		}
		for _, t := range parsed {
			add(t)
		}
	}

	if len(tickers) == 0 {
		if len(errs) == 0 {
			return nil, nil, fmt.Errorf("no tickers given")
		}
		return nil, unresolved, fmt.Errorf("no tickers resolved: %w", errors.Join(errs...))
	}
	return tickers, unresolved, nil
}

// expandIndex bounds one index lookup by the provider timeout.
func (a *App) expandIndex(ctx context.Context, code string) ([]common.Ticker, error) {
	timeout := a.timeout
	if timeout <= 0 {
		timeout = batch.DefaultTickerTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Provider.ExpandIndex(ctx, code)
}

// Run resolves args and processes every ticker. Unresolved arguments are
// counted as failures in the summary.
func (a *App) Run(ctx context.Context, args []string) (batch.Summary, error) {
	tickers, unresolved, err := a.ResolveTickers(ctx, args)
	if err != nil {
		return batch.Summary{}, err
	}
	return a.Runner.Run(ctx, tickers, unresolved...), nil
}

// Close releases the cache database.
func (a *App) Close() error {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			return fmt.Errorf("failed to close cache: %w", err)
		}
		a.Logger.Debug().Msg("Fundamentals cache closed")
		a.Cache = nil
	}
	return nil
}
