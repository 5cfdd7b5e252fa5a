package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// ConsoleSink prints aligned report tables.
type ConsoleSink struct {
	out io.Writer
}

var _ interfaces.ReportSink = (*ConsoleSink)(nil)

// NewConsoleSink returns a sink printing to out.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

// Name returns "console".
func (s *ConsoleSink) Name() string { return FormatConsole }

// Write prints the title and an aligned table with category rows in brackets.
// The location is always "stdout".
func (s *ConsoleSink) Write(ctx context.Context, table models.Table) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", table.Title)
	if !table.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s\n", table.GeneratedAt.Format("02/01/2006 15:04"))
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Header, "\t"))
	fmt.Fprintln(tw, strings.Join(underline(table.Header), "\t"))
	for _, row := range table.Rows {
		if isSectionRow(row) {
			fmt.Fprintf(tw, "[%s]\t\t\t\n", cellText(row[0]))
			continue
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellText(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return "", fmt.Errorf("failed to format report: %w", err)
	}

	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return "", fmt.Errorf("failed to print report: %w", err)
	}
	return "stdout", nil
}

func underline(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.Repeat("-", len(h))
	}
	return out
}
