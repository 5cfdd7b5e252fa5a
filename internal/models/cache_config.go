package models

import (
	"strings"
	"time"
)

// CacheType represents the provider response caching strategy
type CacheType string

const (
	// CacheTypeNone disables caching
	CacheTypeNone CacheType = "none"

	// CacheTypeRollingTime considers payloads fresh if stored within N hours from now
	CacheTypeRollingTime CacheType = "rolling_time"

	// CacheTypeHardTime considers payloads fresh if stored within the current day (00:00 UTC boundary)
	CacheTypeHardTime CacheType = "hard_time"
)

// CacheConfig holds the freshness policy for cached fundamentals payloads
type CacheConfig struct {
	Type    CacheType
	Hours   int
	Enabled bool
}

// DefaultCacheConfig returns the default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:    CacheTypeRollingTime,
		Hours:   24,
		Enabled: true,
	}
}

// ParseCacheType maps a config string onto a CacheType. Unknown values fall back to rolling_time.
func ParseCacheType(s string) CacheType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return CacheTypeNone
	case "hard_time":
		return CacheTypeHardTime
	default:
		return CacheTypeRollingTime
	}
}

// IsFresh reports whether a payload stored at storedAt can be reused at now.
func (c CacheConfig) IsFresh(storedAt, now time.Time) bool {
	if !c.Enabled || c.Type == CacheTypeNone || storedAt.IsZero() {
		return false
	}

	switch c.Type {
	case CacheTypeRollingTime:
		hours := c.Hours
		if hours <= 0 {
			hours = 24
		}
		return now.Sub(storedAt) < time.Duration(hours)*time.Hour
	case CacheTypeHardTime:
		utc := now.UTC()
		todayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
		return !storedAt.Before(todayStart)
	default:
		return false
	}
}

// CachedFundamentals is a raw provider payload stored for reuse across runs.
// Only the provider body is kept, never derived series.
type CachedFundamentals struct {
	Symbol   string `badgerhold:"key"`
	Body     []byte
	StoredAt time.Time
}
