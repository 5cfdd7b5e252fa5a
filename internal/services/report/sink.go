// Package report renders report tables to the console and to files.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/common"
	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// Format names accepted in [report] formats.
const (
	FormatConsole  = "console"
	FormatXLSX     = "xlsx"
	FormatPDF      = "pdf"
	FormatMarkdown = "markdown"
)

// FileName returns "{ticker}_{DD_MM_YYYY}.{ext}".
func FileName(ticker string, at time.Time, ext string) string {
	safe := strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(ticker)
	return fmt.Sprintf("%s_%s.%s", safe, at.Format("02_01_2006"), ext)
}

// outputPath creates dir if needed and returns the report file path.
func outputPath(dir string, table models.Table, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory %s: %w", dir, err)
	}
	at := table.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	return filepath.Join(dir, FileName(table.Ticker, at, ext)), nil
}

// cellText renders a table cell for text outputs.
func cellText(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.2f", c)
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// isSectionRow reports whether a row is a category header (label only).
func isSectionRow(row []any) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row[1:] {
		if cellText(cell) != "" {
			return false
		}
	}
	return true
}

// NewSinks builds the sinks enabled in cfg, in configured order. Console
// output goes to out.
func NewSinks(cfg common.ReportConfig, out io.Writer, logger arbor.ILogger) ([]interfaces.ReportSink, error) {
	sinks := make([]interfaces.ReportSink, 0, len(cfg.Formats))
	seen := make(map[string]bool)

	for _, format := range cfg.Formats {
		format = strings.ToLower(strings.TrimSpace(format))
		if seen[format] {
			continue
		}
		seen[format] = true

		switch format {
		case FormatConsole:
			sinks = append(sinks, NewConsoleSink(out))
		case FormatXLSX:
			sinks = append(sinks, NewXLSXSink(cfg.Dir, logger))
		case FormatPDF:
			sinks = append(sinks, NewPDFSink(cfg.Dir, logger))
		case FormatMarkdown:
			sinks = append(sinks, NewMarkdownSink(cfg.Dir, logger))
		default:
			return nil, fmt.Errorf("unknown report format %q", format)
		}
	}

	return sinks, nil
}
