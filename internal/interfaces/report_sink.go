package interfaces

import (
	"context"

	"github.com/ternarybob/intrinsic/internal/models"
)

// ReportSink writes one ticker's report table somewhere.
type ReportSink interface {
	// Name identifies the sink in logs ("console", "xlsx", ...).
	Name() string

	// Write emits the table and returns where it went (a file path, or "stdout").
	Write(ctx context.Context, table models.Table) (string, error)
}
