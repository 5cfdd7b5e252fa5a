package eodhd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NullFloat is a numeric field EODHD may send as a number, a numeric string,
// "NA", "None" or null.
type NullFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON accepts every shape EODHD uses for numbers. Unusable values
// leave the field invalid rather than failing the whole document.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	*n = NullFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to unmarshal numeric string: %w", err)
		}
		if v, ok := ParseNumber(s); ok {
			n.Value, n.Valid = v, true
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	n.Value, n.Valid = v, true
	return nil
}

// MarshalJSON writes null for invalid values.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns nil for invalid values.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// ParseNumber parses a provider value, rejecting placeholders such as "None" or "NA".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "na", "n/a", "null", "-":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StatementValue extracts a number from a decoded financial statement cell.
func StatementValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return ParseNumber(v)
	default:
		return 0, false
	}
}

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// RealTimeQuote is the /real-time response. Outside trading hours EODHD
// reports "NA" for most fields.
type RealTimeQuote struct {
	Code          string    `json:"code"`
	Timestamp     int64     `json:"timestamp"`
	Close         NullFloat `json:"close"`
	PreviousClose NullFloat `json:"previousClose"`
}

// FundamentalsResponse is the subset of /fundamentals used for valuation.
type FundamentalsResponse struct {
	General     *GeneralInfo              `json:"General"`
	Highlights  *Highlights               `json:"Highlights"`
	Valuation   *Valuation                `json:"Valuation"`
	SharesStats *SharesStats              `json:"SharesStats"`
	Financials  *Financials               `json:"Financials"`
	Components  map[string]IndexComponent `json:"Components"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code          string `json:"Code"`
	Type          string `json:"Type"`
	Name          string `json:"Name"`
	Exchange      string `json:"Exchange"`
	CurrencyCode  string `json:"CurrencyCode"`
	FiscalYearEnd string `json:"FiscalYearEnd"`
	Sector        string `json:"Sector"`
	Industry      string `json:"Industry"`
}

// Highlights contains the headline ratios.
type Highlights struct {
	MarketCapitalization NullFloat `json:"MarketCapitalization"`
	PERatio              NullFloat `json:"PERatio"`
	EarningsShare        NullFloat `json:"EarningsShare"`
}

// Valuation contains valuation multiples.
type Valuation struct {
	TrailingPE NullFloat `json:"TrailingPE"`
	ForwardPE  NullFloat `json:"ForwardPE"`
}

// SharesStats contains share counts and ownership. PercentInsiders is a percentage (0-100).
type SharesStats struct {
	SharesOutstanding NullFloat `json:"SharesOutstanding"`
	SharesFloat       NullFloat `json:"SharesFloat"`
	PercentInsiders   NullFloat `json:"PercentInsiders"`
}

// IndexComponent is one constituent of an index (e.g. GSPC.INDX).
type IndexComponent struct {
	Code     string `json:"Code"`
	Exchange string `json:"Exchange"`
	Name     string `json:"Name"`
	Sector   string `json:"Sector"`
	Industry string `json:"Industry"`
}

// Financials contains financial statements.
type Financials struct {
	BalanceSheet    *FinancialStatement `json:"Balance_Sheet"`
	CashFlow        *FinancialStatement `json:"Cash_Flow"`
	IncomeStatement *FinancialStatement `json:"Income_Statement"`
}

// FinancialStatement represents a financial statement with quarterly and yearly data.
// Cells keep their raw JSON type; use StatementValue to read them.
type FinancialStatement struct {
	Currency  string                            `json:"currency_symbol"`
	Quarterly map[string]map[string]interface{} `json:"quarterly"`
	Yearly    map[string]map[string]interface{} `json:"yearly"`
}
