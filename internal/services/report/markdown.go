package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// RenderMarkdown renders a table as a markdown document. Category rows are bold.
func RenderMarkdown(table models.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", table.Title)
	if !table.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s\n\n", table.GeneratedAt.Format("02/01/2006 15:04"))
	}

	b.WriteString("| " + strings.Join(table.Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(table.Header)) + "\n")

	for _, row := range table.Rows {
		cells := make([]string, len(table.Header))
		for i := range cells {
			if i < len(row) {
				cells[i] = escapeCell(cellText(row[i]))
			}
		}
		if isSectionRow(row) {
			cells[0] = "**" + cells[0] + "**"
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// MarkdownSink writes reports as .md files.
type MarkdownSink struct {
	dir    string
	logger arbor.ILogger
}

var _ interfaces.ReportSink = (*MarkdownSink)(nil)

// NewMarkdownSink returns a sink writing into dir, created on first write.
func NewMarkdownSink(dir string, logger arbor.ILogger) *MarkdownSink {
	return &MarkdownSink{dir: dir, logger: logger}
}

// Name returns "markdown".
func (s *MarkdownSink) Name() string { return FormatMarkdown }

// Write saves RenderMarkdown output and returns the file path.
func (s *MarkdownSink) Write(ctx context.Context, table models.Table) (string, error) {
	path, err := outputPath(s.dir, table, "md")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(RenderMarkdown(table)), 0644); err != nil {
		return "", fmt.Errorf("failed to write markdown report: %w", err)
	}
	s.logger.Debug().Str("path", path).Msg("Markdown report written")
	return path, nil
}
