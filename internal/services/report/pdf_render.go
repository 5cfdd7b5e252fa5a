package report

import (
	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	pageWidth   = 190.0 // A4 less 10mm margins
	pageBottom  = 297.0 - 15.0
	tableFont   = 8.0
	tableLineHt = 4.5
)

// pdfRenderer walks a goldmark document and draws it with fpdf. It handles
// the subset RenderMarkdown produces: headings, paragraphs, emphasis, tables.
type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	font      string
	size      float64
	bold      bool
	italic    bool
}

func (r *pdfRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		return r.handleHeading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			r.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			r.pdf.Write(5, r.translate(string(n.(*ast.Text).Segment.Value(r.source))))
		}
	case ast.KindEmphasis:
		if n.(*ast.Emphasis).Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case extast.KindTable:
		if entering {
			r.renderTable(r.collectRows(n.(*extast.Table)))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) handleHeading(n *ast.Heading, entering bool) (ast.WalkStatus, error) {
	if entering {
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		}
		r.pdf.SetFont(r.font, "B", size)
	} else {
		r.pdf.Ln(8)
		r.updateFont()
	}
	return ast.WalkContinue, nil
}

// tableRow is one parsed table row; section rows are category headers.
type tableRow struct {
	cells   []string
	header  bool
	section bool
}

func (r *pdfRenderer) collectRows(n *extast.Table) []tableRow {
	var rows []tableRow
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			rows = append(rows, tableRow{cells: r.rowCells(row), header: true})
		case *extast.TableRow:
			cells := r.rowCells(row)
			section := len(cells) > 0
			for _, c := range cells[min(1, len(cells)):] {
				if c != "" {
					section = false
					break
				}
			}
			rows = append(rows, tableRow{cells: cells, section: section})
		}
	}
	return rows
}

func (r *pdfRenderer) rowCells(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, r.translate(string(cell.Text(r.source))))
		}
	}
	return cells
}

func (r *pdfRenderer) renderTable(rows []tableRow) {
	if len(rows) == 0 || len(rows[0].cells) == 0 {
		return
	}
	numCols := len(rows[0].cells)
	widths := r.columnWidths(rows, numCols)
	rowHeight := tableLineHt + 2

	r.pdf.Ln(2)
	for _, row := range rows {
		x, y := r.pdf.GetX(), r.pdf.GetY()
		if y+rowHeight > pageBottom {
			r.pdf.AddPage()
			x, y = r.pdf.GetX(), r.pdf.GetY()
		}

		switch {
		case row.header:
			r.pdf.SetFont(r.font, "B", tableFont)
			r.pdf.SetFillColor(220, 220, 220)
		case row.section:
			r.pdf.SetFont(r.font, "B", tableFont)
			r.pdf.SetFillColor(242, 242, 242)
		default:
			r.pdf.SetFont(r.font, "", tableFont)
			r.pdf.SetFillColor(255, 255, 255)
		}

		if row.section {
			r.pdf.SetXY(x, y)
			r.pdf.CellFormat(pageWidth, rowHeight, row.cells[0], "1", 0, "L", true, 0, "")
		} else {
			cx := x
			for j := 0; j < numCols; j++ {
				text := ""
				if j < len(row.cells) {
					text = r.fit(row.cells[j], widths[j]-2)
				}
				align := "L"
				if j == 1 && !row.header {
					align = "R"
				}
				r.pdf.SetXY(cx, y)
				r.pdf.CellFormat(widths[j], rowHeight, text, "1", 0, align, row.header, 0, "")
				cx += widths[j]
			}
		}
		r.pdf.SetXY(x, y+rowHeight)
	}

	r.pdf.Ln(3)
	r.updateFont()
}

// columnWidths sizes columns to their widest cell and scales to the page.
func (r *pdfRenderer) columnWidths(rows []tableRow, numCols int) []float64 {
	widths := make([]float64, numCols)
	for _, row := range rows {
		if row.section {
			continue
		}
		style := ""
		if row.header {
			style = "B"
		}
		r.pdf.SetFont(r.font, style, tableFont)
		for j, cell := range row.cells {
			if j < numCols {
				widths[j] = max(widths[j], r.pdf.GetStringWidth(cell)+4)
			}
		}
	}

	total := 0.0
	for j := range widths {
		widths[j] = max(widths[j], 15)
		total += widths[j]
	}
	scale := pageWidth / total
	for j := range widths {
		widths[j] *= scale
	}
	return widths
}

// fit truncates text with an ellipsis so it fits width.
func (r *pdfRenderer) fit(text string, width float64) string {
	if r.pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && r.pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
