// Package common provides configuration, logging and small shared helpers.
package common

import (
	"fmt"
	"strings"
)

// DefaultExchange is used when a symbol carries no exchange.
const DefaultExchange = "US"

// IndexPrefix marks a command-line argument as an index to expand, e.g. "@GSPC".
const IndexPrefix = "@"

// Ticker is a parsed exchange-qualified symbol.
type Ticker struct {
	Exchange string // e.g. "NASDAQ", "ASX", "US"
	Code     string // e.g. "AAPL"
	Raw      string
}

// ExchangeToSuffix maps exchange codes to EODHD symbol suffixes.
var ExchangeToSuffix = map[string]string{
	"US":     ".US",
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"AMEX":   ".US",
	"BATS":   ".US",
	"ASX":    ".AU",
	"AU":     ".AU",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"TO":     ".TO",
	"XETRA":  ".XETRA",
	"PA":     ".PA",
	"HK":     ".HK",
	"INDX":   ".INDX",
}

// eodhdSuffixes are the exchange parts accepted in CODE.SUFFIX form.
var eodhdSuffixes = map[string]bool{
	"US": true, "AU": true, "LSE": true, "TO": true, "XETRA": true, "PA": true, "HK": true, "INDX": true,
}

// ParseTicker parses one symbol. Accepted forms:
//   - "AAPL"          -> defaultExchange:AAPL
//   - "NASDAQ:AAPL"   -> NASDAQ:AAPL
//   - "ASX.BHP"       -> ASX:BHP (known exchange before the dot)
//   - "AAPL.US"       -> US:AAPL (known EODHD suffix after the last dot)
//
// Codes are upper-cased. An empty defaultExchange falls back to DefaultExchange.
func ParseTicker(symbol, defaultExchange string) Ticker {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Ticker{}
	}
	if defaultExchange == "" {
		defaultExchange = DefaultExchange
	}
	upper := strings.ToUpper(symbol)

	if idx := strings.Index(upper, ":"); idx > 0 {
		return Ticker{Exchange: upper[:idx], Code: upper[idx+1:], Raw: symbol}
	}

	if idx := strings.Index(upper, "."); idx > 0 {
		if _, ok := ExchangeToSuffix[upper[:idx]]; ok {
			return Ticker{Exchange: upper[:idx], Code: upper[idx+1:], Raw: symbol}
		}
	}

	if idx := strings.LastIndex(upper, "."); idx > 0 && idx < len(upper)-1 {
		if eodhdSuffixes[upper[idx+1:]] {
			return Ticker{Exchange: upper[idx+1:], Code: upper[:idx], Raw: symbol}
		}
	}

	return Ticker{Exchange: strings.ToUpper(defaultExchange), Code: upper, Raw: symbol}
}

// String returns EXCHANGE:CODE.
func (t Ticker) String() string {
	if t.Exchange == "" || t.Code == "" {
		return t.Code
	}
	return t.Exchange + ":" + t.Code
}

// EODHDSymbol returns the provider symbol, e.g. "ASX:BHP" -> "BHP.AU".
// Exchanges without a mapping are passed through as the suffix.
func (t Ticker) EODHDSymbol() string {
	if t.Code == "" {
		return ""
	}
	if suffix, ok := ExchangeToSuffix[t.Exchange]; ok {
		return t.Code + suffix
	}
	return t.Code + "." + t.Exchange
}

// IsIndexArg reports whether a command-line argument names an index to expand.
func IsIndexArg(arg string) bool {
	arg = strings.TrimSpace(arg)
	return strings.HasPrefix(arg, IndexPrefix) && len(arg) > len(IndexPrefix)
}

// IndexCode strips the index prefix and upper-cases the code.
func IndexCode(arg string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(arg), IndexPrefix))
}

// ParseTickers parses symbols, skipping blanks. Index arguments are rejected;
// expand them through the provider first.
func ParseTickers(symbols []string, defaultExchange string) ([]Ticker, error) {
	result := make([]Ticker, 0, len(symbols))
	for _, s := range symbols {
		if IsIndexArg(s) {
			return nil, fmt.Errorf("index argument %q must be expanded before parsing", s)
		}
		if parsed := ParseTicker(s, defaultExchange); parsed.Code != "" {
			result = append(result, parsed)
		}
	}
	return result, nil
}
