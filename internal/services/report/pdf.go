package report

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// PDFSink renders the markdown form of a report to PDF.
type PDFSink struct {
	dir    string
	logger arbor.ILogger
}

var _ interfaces.ReportSink = (*PDFSink)(nil)

// NewPDFSink returns a sink writing into dir, created on first write.
func NewPDFSink(dir string, logger arbor.ILogger) *PDFSink {
	return &PDFSink{dir: dir, logger: logger}
}

// Name returns "pdf".
func (s *PDFSink) Name() string { return FormatPDF }

// Write renders the table and saves it as {ticker}_{DD_MM_YYYY}.pdf.
func (s *PDFSink) Write(ctx context.Context, table models.Table) (string, error) {
	data, err := s.Render(table)
	if err != nil {
		return "", err
	}

	path, err := outputPath(s.dir, table, "pdf")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write pdf report: %w", err)
	}

	s.logger.Debug().Str("path", path).Int("pdf_size", len(data)).Msg("PDF report written")
	return path, nil
}

// Render converts a table to PDF bytes.
func (s *PDFSink) Render(table models.Table) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(table.Title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	source := []byte(RenderMarkdown(table))
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:       pdf,
		source:    source,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		font:      "Arial",
		size:      9,
	}
	if err := renderer.render(doc); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
