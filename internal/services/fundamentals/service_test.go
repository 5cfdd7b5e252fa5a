package fundamentals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/eodhd"
	"github.com/ternarybob/intrinsic/internal/models"
	"github.com/ternarybob/intrinsic/internal/storage/badger"
)

const fundamentalsBody = `{
  "General": {"Code": "AAPL", "Name": "Apple Inc", "CurrencyCode": "USD"},
  "Highlights": {"PERatio": "29.5"},
  "Valuation": {"TrailingPE": null, "ForwardPE": 27.1},
  "SharesStats": {"SharesOutstanding": 15000000000, "PercentInsiders": 0.07},
  "Financials": {
    "Income_Statement": {"yearly": {
      "2023-09-30": {"netIncome": "96995000000", "totalRevenue": "383285000000", "grossProfit": "169148000000", "researchDevelopment": "29915000000"},
      "2022-09-30": {"netIncome": "99803000000", "totalRevenue": "394328000000", "grossProfit": "170782000000", "researchDevelopment": null}
    }},
    "Balance_Sheet": {"yearly": {
      "2023-09-30": {"totalStockholderEquity": "62146000000", "shortLongTermDebtTotal": "111088000000"},
      "2022-09-30": {"totalStockholderEquity": "50672000000", "shortTermDebt": "21110000000", "longTermDebt": "98959000000"}
    }},
    "Cash_Flow": {"yearly": {
      "2023-09-30": {"totalCashFromOperatingActivities": "110543000000", "capitalExpenditures": "-10959000000", "freeCashFlow": "99584000000"},
      "2022-09-30": {"totalCashFromOperatingActivities": "122151000000", "capitalExpenditures": "10708000000", "freeCashFlow": "None"}
    }}
  }
}`

type fakeEODHD struct {
	fundamentals string
	quote        string
	eod          string
	calls        atomic.Int32
}

func (f *fakeEODHD) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/fundamentals/"):
			f.calls.Add(1)
			_, _ = w.Write([]byte(f.fundamentals))
		case strings.HasPrefix(r.URL.Path, "/real-time/"):
			if f.quote == "" {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(f.quote))
		case strings.HasPrefix(r.URL.Path, "/eod/"):
			if f.eod == "" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(f.eod))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T, f *fakeEODHD, opts ...Option) *Service {
	t.Helper()
	srv := f.server(t)
	client := eodhd.NewClient("test-key", eodhd.WithBaseURL(srv.URL), eodhd.WithRateLimit(100))
	return NewService(client, arbor.NewLogger(), opts...)
}

func TestService_Fetch(t *testing.T) {
	f := &fakeEODHD{fundamentals: fundamentalsBody, quote: `{"code":"AAPL.US","close":189.25}`}
	svc := newTestService(t, f)

	data, err := svc.Fetch(context.Background(), common.ParseTicker("AAPL", common.DefaultExchange))
	require.NoError(t, err)

	snap := data.Snapshot
	assert.Equal(t, "AAPL.US", snap.Ticker)
	assert.Equal(t, "Apple Inc", snap.Name)
	assert.Equal(t, "USD", snap.Currency)
	assert.Equal(t, int64(15000000000), snap.SharesOutstanding)
	assert.Equal(t, 189.25, snap.CurrentPrice)
	require.NotNil(t, snap.InsiderOwnership)
	assert.InDelta(t, 0.0007, *snap.InsiderOwnership, 1e-12)

	trailing, ok := snap.TrailingPE.Value()
	require.True(t, ok, "falls back to Highlights.PERatio")
	assert.Equal(t, 29.5, trailing)
	forward, ok := snap.ForwardPE.Value()
	require.True(t, ok)
	assert.Equal(t, 27.1, forward)

	fs := data.Statements
	capex, ok := fs.Line(models.LineCapitalExpenditure)
	require.True(t, ok)
	assert.Equal(t, 10959000000.0, capex["2023-09-30"], "capex stored as a positive outflow")
	assert.Equal(t, 10708000000.0, capex["2022-09-30"])

	debt, ok := fs.Line(models.LineTotalDebt)
	require.True(t, ok)
	assert.Equal(t, 111088000000.0, debt["2023-09-30"])
	assert.Equal(t, 120069000000.0, debt["2022-09-30"], "short plus long term debt")

	rd, ok := fs.Line(models.LineResearchDevelopment)
	require.True(t, ok)
	assert.Len(t, rd, 1, "null cells are dropped")

	provided, ok := fs.Line(models.LineFreeCashFlow)
	require.True(t, ok)
	assert.Equal(t, []string{"2023-09-30"}, provided.Periods())
}

func TestService_Fetch_PriceFallsBackToLastClose(t *testing.T) {
	f := &fakeEODHD{
		fundamentals: fundamentalsBody,
		eod:          `[{"date":"2024-05-03","close":183.38},{"date":"2024-05-02","close":173.03}]`,
	}
	svc := newTestService(t, f)

	data, err := svc.Fetch(context.Background(), common.ParseTicker("AAPL", common.DefaultExchange))
	require.NoError(t, err)
	assert.Equal(t, 183.38, data.Snapshot.CurrentPrice)
}

func TestService_Fetch_NoPrice(t *testing.T) {
	f := &fakeEODHD{fundamentals: fundamentalsBody}
	svc := newTestService(t, f)

	_, err := svc.Fetch(context.Background(), common.ParseTicker("AAPL", common.DefaultExchange))
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestService_Fetch_NoFundamentals(t *testing.T) {
	f := &fakeEODHD{fundamentals: `[]`, quote: `{"close":1}`}
	svc := newTestService(t, f)

	_, err := svc.Fetch(context.Background(), common.ParseTicker("ZZZZ", common.DefaultExchange))
	assert.ErrorIs(t, err, ErrNoFundamentals)
}

func TestService_Fetch_UsesCache(t *testing.T) {
	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, t.TempDir())
	require.NoError(t, err)
	cache := badger.NewFundamentalsCache(db, logger)
	t.Cleanup(func() { _ = cache.Close() })

	f := &fakeEODHD{fundamentals: fundamentalsBody, quote: `{"close":190}`}
	svc := newTestService(t, f, WithCache(cache, models.CacheConfig{Type: models.CacheTypeRollingTime, Hours: 24, Enabled: true}))

	ticker := common.ParseTicker("AAPL", common.DefaultExchange)
	_, err = svc.Fetch(context.Background(), ticker)
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), ticker)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load(), "second fetch served from cache")

	// A stale entry is refreshed.
	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = svc.Fetch(context.Background(), ticker)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

type componentsAPI struct {
	API
	components []eodhd.IndexComponent
}

func (c componentsAPI) GetIndexComponents(ctx context.Context, code string) ([]eodhd.IndexComponent, error) {
	return c.components, nil
}

func TestService_ExpandIndex(t *testing.T) {
	api := componentsAPI{components: []eodhd.IndexComponent{
		{Code: "AAPL", Exchange: "US"},
		{Code: "bhp", Exchange: "au"},
		{Code: "MSFT"},
	}}
	svc := NewService(api, arbor.NewLogger())

	tickers, err := svc.ExpandIndex(context.Background(), " gspc ")
	require.NoError(t, err)
	require.Len(t, tickers, 3)
	assert.Equal(t, "AAPL.US", tickers[0].EODHDSymbol())
	assert.Equal(t, "BHP.AU", tickers[1].EODHDSymbol())
	assert.Equal(t, "MSFT.US", tickers[2].EODHDSymbol())

	_, err = NewService(componentsAPI{}, arbor.NewLogger()).ExpandIndex(context.Background(), "EMPTY")
	assert.Error(t, err)
}
