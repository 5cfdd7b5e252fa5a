// Package fundamentals implements the financial data provider over EODHD.
package fundamentals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/eodhd"
	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// ErrNoFundamentals is returned when EODHD has no company data for a symbol.
var ErrNoFundamentals = errors.New("no fundamentals available")

// ErrNoPrice is returned when neither a quote nor a recent close is available.
var ErrNoPrice = errors.New("no current price available")

// API is the subset of the EODHD client the provider uses.
type API interface {
	GetFundamentalsRaw(ctx context.Context, symbol string) (json.RawMessage, error)
	GetRealTimeQuote(ctx context.Context, symbol string) (*eodhd.RealTimeQuote, error)
	GetEOD(ctx context.Context, symbol string, opts ...eodhd.QueryOption) (eodhd.EODResponse, error)
	GetIndexComponents(ctx context.Context, code string) ([]eodhd.IndexComponent, error)
}

// Service implements interfaces.FinancialDataProvider.
type Service struct {
	api          API
	cache        interfaces.FundamentalsCache
	policy       models.CacheConfig
	historyYears int
	logger       arbor.ILogger
	now          func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithCache enables the fundamentals payload cache.
func WithCache(cache interfaces.FundamentalsCache, policy models.CacheConfig) Option {
	return func(s *Service) {
		s.cache = cache
		s.policy = policy
	}
}

// WithHistoryYears limits statements to the most recent years.
func WithHistoryYears(years int) Option {
	return func(s *Service) {
		s.historyYears = years
	}
}

// NewService creates the provider.
func NewService(api API, logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ interfaces.FinancialDataProvider = (*Service)(nil)

// Fetch returns normalized statements and the company snapshot for one ticker.
func (s *Service) Fetch(ctx context.Context, ticker common.Ticker) (*models.CompanyData, error) {
	symbol := ticker.EODHDSymbol()
	if symbol == "" {
		return nil, fmt.Errorf("empty ticker")
	}

	body, err := s.loadFundamentals(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching fundamentals for %s: %w", symbol, err)
	}

	resp, err := eodhd.DecodeFundamentals(body)
	if err != nil {
		return nil, fmt.Errorf("decoding fundamentals for %s: %w", symbol, err)
	}
	if resp.General == nil && resp.Financials == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoFundamentals)
	}

	price, err := s.currentPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	statements := NormalizeStatements(resp.Financials, s.historyYears)
	snapshot := buildSnapshot(symbol, resp, price, s.now())

	s.logger.Debug().
		Str("symbol", symbol).
		Int("lines", len(statements.Lines)).
		Int64("shares", snapshot.SharesOutstanding).
		Float64("price", price).
		Msg("Fetched company data")

	return &models.CompanyData{Snapshot: snapshot, Statements: statements}, nil
}

// loadFundamentals serves a fresh cached payload when possible and refreshes it otherwise.
func (s *Service) loadFundamentals(ctx context.Context, symbol string) ([]byte, error) {
	if s.cache != nil && s.policy.Enabled {
		entry, err := s.cache.Get(ctx, symbol)
		switch {
		case err == nil && s.policy.IsFresh(entry.StoredAt, s.now()):
			s.logger.Debug().
				Str("symbol", symbol).
				Str("stored_at", entry.StoredAt.Format(time.RFC3339)).
				Msg("Using cached fundamentals")
			return entry.Body, nil
		case err != nil && !errors.Is(err, interfaces.ErrCacheMiss):
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Fundamentals cache read failed")
		}
	}

	body, err := s.api.GetFundamentalsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.policy.Enabled {
		if err := s.cache.Put(ctx, symbol, body); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Fundamentals cache write failed")
		}
	}
	return body, nil
}

// currentPrice uses the real-time quote, falling back to the latest end-of-day close.
func (s *Service) currentPrice(ctx context.Context, symbol string) (float64, error) {
	quote, err := s.api.GetRealTimeQuote(ctx, symbol)
	if err == nil && quote.Close.Valid && quote.Close.Value > 0 {
		return quote.Close.Value, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("Real-time quote unavailable, using last close")
	}

	to := s.now()
	bars, err := s.api.GetEOD(ctx, symbol, eodhd.WithDateRange(to.AddDate(0, 0, -14), to), eodhd.WithOrder("d"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPrice, err)
	}
	for _, bar := range bars {
		if bar.Close > 0 {
			return bar.Close, nil
		}
	}
	return 0, ErrNoPrice
}

func buildSnapshot(symbol string, resp *eodhd.FundamentalsResponse, price float64, now time.Time) models.CompanySnapshot {
	snap := models.CompanySnapshot{
		Ticker:       symbol,
		CurrentPrice: price,
		TrailingPE:   models.UnavailablePE(),
		ForwardPE:    models.UnavailablePE(),
		FetchedAt:    now,
	}

	if g := resp.General; g != nil {
		snap.Name = g.Name
		snap.Currency = g.CurrencyCode
	}

	if v := resp.Valuation; v != nil {
		snap.TrailingPE = models.PEFromPointer(v.TrailingPE.Ptr())
		snap.ForwardPE = models.PEFromPointer(v.ForwardPE.Ptr())
	}
	if _, ok := snap.TrailingPE.Value(); !ok && resp.Highlights != nil {
		snap.TrailingPE = models.PEFromPointer(resp.Highlights.PERatio.Ptr())
	}

	if st := resp.SharesStats; st != nil {
		if st.SharesOutstanding.Valid && st.SharesOutstanding.Value > 0 {
			snap.SharesOutstanding = int64(st.SharesOutstanding.Value)
		}
		if st.PercentInsiders.Valid {
			fraction := st.PercentInsiders.Value / 100
			snap.InsiderOwnership = &fraction
		}
	}

	return snap
}

// ExpandIndex returns the constituents of an index as tickers.
func (s *Service) ExpandIndex(ctx context.Context, code string) ([]common.Ticker, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	components, err := s.api.GetIndexComponents(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("expanding index %s: %w", code, err)
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("index %s has no components", code)
	}

	tickers := make([]common.Ticker, 0, len(components))
	for _, comp := range components {
		exchange := strings.ToUpper(comp.Exchange)
		if exchange == "" {
			exchange = common.DefaultExchange
		}
		tickers = append(tickers, common.Ticker{
			Exchange: exchange,
			Code:     strings.ToUpper(comp.Code),
			Raw:      comp.Code,
		})
	}

	s.logger.Info().Str("index", code).Int("components", len(tickers)).Msg("Expanded index")
	return tickers, nil
}
