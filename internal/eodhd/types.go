// Package eodhd provides a client for the EODHD (End of Day Historical Data) API.
// Only the endpoints the valuation report needs are covered: fundamentals,
// real-time quotes and end-of-day prices.
package eodhd

import (
	"fmt"
	"time"
)

// QueryOption represents an optional parameter for price queries.
type QueryOption func(*queryParams)

type queryParams struct {
	From   time.Time
	To     time.Time
	Period string // d, w, m
	Order  string // a (asc), d (desc)
}

// WithDateRange sets the date range for the query.
func WithDateRange(from, to time.Time) QueryOption {
	return func(p *queryParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period (d=daily, w=weekly, m=monthly).
func WithPeriod(period string) QueryOption {
	return func(p *queryParams) {
		p.Period = period
	}
}

// WithOrder sets the order (a=ascending, d=descending).
func WithOrder(order string) QueryOption {
	return func(p *queryParams) {
		p.Order = order
	}
}

// APIError represents a non-200 response from the EODHD API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// NotFound reports whether the API rejected the symbol.
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404
}

// RateLimitError is returned when the client-side limiter cannot grant a slot
// before the context expires, or the API answers 429.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("EODHD rate limit exceeded, retry after %v", e.RetryAfter)
}
