package metrics

import (
	"fmt"
	"strings"

	"github.com/ternarybob/intrinsic/internal/models"
)

// InvalidParameterError is returned when the discount rate does not exceed the growth rate.
type InvalidParameterError = models.InvalidParameterError

// MissingSharesError is returned when the outstanding share count is absent or non-positive.
type MissingSharesError struct {
	Ticker string
	Shares int64
}

func (e *MissingSharesError) Error() string {
	if e.Ticker == "" {
		return fmt.Sprintf("shares outstanding unavailable (got %d)", e.Shares)
	}
	return fmt.Sprintf("shares outstanding unavailable for %s (got %d)", e.Ticker, e.Shares)
}

// MissingLineItemError is returned when a required statement line is absent.
type MissingLineItemError struct {
	Items []models.LineItem
}

func (e *MissingLineItemError) Error() string {
	names := make([]string, len(e.Items))
	for i, item := range e.Items {
		names[i] = string(item)
	}
	return fmt.Sprintf("missing line item: %s", strings.Join(names, ", "))
}

// InsufficientDataError is returned when a series has no usable periods.
type InsufficientDataError struct {
	Metric string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %s", e.Metric, e.Reason)
}

// requireLines returns the requested series or a MissingLineItemError naming every absent line.
func requireLines(fs *models.FinancialStatements, items ...models.LineItem) ([]models.YearSeries, error) {
	out := make([]models.YearSeries, len(items))
	var missing []models.LineItem
	for i, item := range items {
		series, ok := fs.Line(item)
		if !ok {
			missing = append(missing, item)
			continue
		}
		out[i] = series
	}
	if len(missing) > 0 {
		return nil, &MissingLineItemError{Items: missing}
	}
	return out, nil
}
