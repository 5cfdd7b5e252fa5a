package report

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"github.com/ternarybob/intrinsic/internal/interfaces"
	"github.com/ternarybob/intrinsic/internal/models"
)

// SheetName is the worksheet holding the report.
const SheetName = "Analysis"

// XLSXSink writes one workbook per report. Values are written as numbers.
type XLSXSink struct {
	dir    string
	logger arbor.ILogger
}

var _ interfaces.ReportSink = (*XLSXSink)(nil)

// NewXLSXSink returns a sink writing workbooks into dir, created on first write.
func NewXLSXSink(dir string, logger arbor.ILogger) *XLSXSink {
	return &XLSXSink{dir: dir, logger: logger}
}

// Name returns "xlsx".
func (s *XLSXSink) Name() string { return FormatXLSX }

// Write saves the table to the Analysis sheet, header in row 1, and returns
// the workbook path.
func (s *XLSXSink) Write(ctx context.Context, table models.Table) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: table.Title, Creator: "intrinsic"}); err != nil {
		return "", fmt.Errorf("failed to set workbook properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return "", fmt.Errorf("failed to create style: %w", err)
	}

	for col, label := range table.Header {
		if err := s.setCell(f, col+1, 1, label, bold); err != nil {
			return "", err
		}
	}

	for i, row := range table.Rows {
		rowNum := i + 2
		section := isSectionRow(row)
		for col, value := range row {
			if section && col > 0 {
				break
			}
			style := 0
			switch {
			case section:
				style = bold
			case col == 1:
				if _, ok := value.(float64); ok {
					style = number
				}
			}
			if err := s.setCell(f, col+1, rowNum, value, style); err != nil {
				return "", err
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return "", fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "D", 18); err != nil {
		return "", fmt.Errorf("failed to size columns: %w", err)
	}

	path, err := outputPath(s.dir, table, "xlsx")
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Int("rows", len(table.Rows)).Msg("XLSX report written")
	return path, nil
}

func (s *XLSXSink) setCell(f *excelize.File, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", cell, err)
	}
	if style != 0 {
		if err := f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style %s: %w", cell, err)
		}
	}
	return nil
}
