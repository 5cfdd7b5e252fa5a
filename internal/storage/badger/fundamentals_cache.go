package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// FundamentalsCache implements interfaces.FundamentalsCache on Badger.
type FundamentalsCache struct {
	db     *BadgerDB
	logger arbor.ILogger
	now    func() time.Time
}

// NewFundamentalsCache creates a cache over an open database.
func NewFundamentalsCache(db *BadgerDB, logger arbor.ILogger) *FundamentalsCache {
	return &FundamentalsCache{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Get returns the stored payload or interfaces.ErrCacheMiss.
func (c *FundamentalsCache) Get(ctx context.Context, symbol string) (*models.CachedFundamentals, error) {
	var entry models.CachedFundamentals
	err := c.db.Store().Get(normalizeSymbol(symbol), &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached fundamentals for %s: %w", symbol, err)
	}
	return &entry, nil
}

// Put stores or replaces the payload for symbol.
func (c *FundamentalsCache) Put(ctx context.Context, symbol string, body []byte) error {
	key := normalizeSymbol(symbol)
	entry := models.CachedFundamentals{
		Symbol:   key,
		Body:     body,
		StoredAt: c.now(),
	}
	if err := c.db.Store().Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to cache fundamentals for %s: %w", symbol, err)
	}

	c.logger.Debug().
		Str("symbol", key).
		Int("bytes", len(body)).
		Msg("Cached fundamentals payload")
	return nil
}

// Delete removes the payload for symbol. Missing entries are not an error.
func (c *FundamentalsCache) Delete(ctx context.Context, symbol string) error {
	err := c.db.Store().Delete(normalizeSymbol(symbol), &models.CachedFundamentals{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete cached fundamentals for %s: %w", symbol, err)
	}
	return nil
}

// Purge removes every payload stored before cutoff.
func (c *FundamentalsCache) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []models.CachedFundamentals
	if err := c.db.Store().Find(&stale, badgerhold.Where("StoredAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to query stale fundamentals: %w", err)
	}

	removed := 0
	for _, entry := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := c.Delete(ctx, entry.Symbol); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info().Int("removed", removed).Msg("Purged stale fundamentals cache entries")
	}
	return removed, nil
}

// Close closes the underlying database.
func (c *FundamentalsCache) Close() error {
	return c.db.Close()
}
