package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the EODHD API.
	DefaultBaseURL = "https://eodhd.com/api"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10
)

// Client is an EODHD API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit. Values <= 0 keep the default.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new EODHD API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs a GET request to the API and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("waiting for rate limiter: %w", ctx.Err())
		}
		return &RateLimitError{RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debug().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("EODHD API request")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"))}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func retryAfter(header string) time.Duration {
	if secs, ok := ParseNumber(header); ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Minute
}

// GetFundamentals retrieves fundamental data for a symbol.
// Symbol format: TICKER.EXCHANGE (e.g., "AAPL.US", "GNP.AU")
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResponse, error) {
	raw, err := c.GetFundamentalsRaw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return DecodeFundamentals(raw)
}

// GetFundamentalsRaw returns the undecoded fundamentals body, for caching.
func (c *Client) GetFundamentalsRaw(ctx context.Context, symbol string) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.get(ctx, "/fundamentals/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeFundamentals parses a fundamentals body. EODHD answers unknown
// symbols with an empty array, which decodes to an empty response.
func DecodeFundamentals(raw []byte) (*FundamentalsResponse, error) {
	var result FundamentalsResponse
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "[]" || trimmed == "" {
		return &result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode fundamentals: %w", err)
	}
	return &result, nil
}

// GetIndexComponents retrieves the constituents of an index code such as "GSPC".
func (c *Client) GetIndexComponents(ctx context.Context, code string) ([]IndexComponent, error) {
	var raw map[string]IndexComponent
	if err := c.get(ctx, "/fundamentals/"+code+".INDX", url.Values{"filter": {"Components"}}, &raw); err != nil {
		return nil, err
	}

	components := make([]IndexComponent, 0, len(raw))
	for _, comp := range raw {
		if comp.Code == "" {
			continue
		}
		components = append(components, comp)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].Code < components[j].Code
	})
	return components, nil
}

// GetEOD retrieves end-of-day price data for a symbol.
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) (EODResponse, error) {
	params := &queryParams{
		Period: "d",
		Order:  "a",
	}
	for _, opt := range opts {
		opt(params)
	}

	queryParams := url.Values{}
	if !params.From.IsZero() {
		queryParams.Set("from", params.From.Format("2006-01-02"))
	}
	if !params.To.IsZero() {
		queryParams.Set("to", params.To.Format("2006-01-02"))
	}
	if params.Period != "" {
		queryParams.Set("period", params.Period)
	}
	if params.Order != "" {
		queryParams.Set("order", params.Order)
	}

	var result EODResponse
	if err := c.get(ctx, "/eod/"+symbol, queryParams, &result); err != nil {
		return nil, err
	}

	for i := range result {
		if t, err := time.Parse("2006-01-02", result[i].DateStr); err == nil {
			result[i].Date = t
		}
	}

	return result, nil
}

// GetRealTimeQuote retrieves the delayed real-time quote for a symbol.
func (c *Client) GetRealTimeQuote(ctx context.Context, symbol string) (*RealTimeQuote, error) {
	var result RealTimeQuote
	if err := c.get(ctx, "/real-time/"+symbol, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
