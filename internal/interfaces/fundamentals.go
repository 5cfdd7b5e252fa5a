package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/models"
)

// ErrCacheMiss is returned when no payload is stored for a symbol.
var ErrCacheMiss = errors.New("cache miss")

// FinancialDataProvider fetches normalized company data.
type FinancialDataProvider interface {
	// Fetch returns statements and snapshot for one ticker.
	Fetch(ctx context.Context, ticker common.Ticker) (*models.CompanyData, error)

	// ExpandIndex returns the constituents of an index code such as "GSPC".
	ExpandIndex(ctx context.Context, code string) ([]common.Ticker, error)
}

// FundamentalsCache stores raw provider payloads keyed by provider symbol.
type FundamentalsCache interface {
	Get(ctx context.Context, symbol string) (*models.CachedFundamentals, error)
	Put(ctx context.Context, symbol string, body []byte) error
	Delete(ctx context.Context, symbol string) error
	// Purge removes payloads stored before cutoff and returns how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}
