package models

import (
	"fmt"
	"time"
)

// Verdict is the qualitative label a classifier attaches to a metric value.
type Verdict string

const (
	VerdictNone         Verdict = "-"
	VerdictUndervalued  Verdict = "Undervalued"
	VerdictOvervalued   Verdict = "Overvalued"
	VerdictFairlyValued Verdict = "Fairly Valued"
	VerdictStrong       Verdict = "Strong"
	VerdictBelowIdeal   Verdict = "Below Ideal"
	VerdictWeak         Verdict = "Weak"
	VerdictLow          Verdict = "Low"
	VerdictModerate     Verdict = "Moderate"
	VerdictHigh         Verdict = "High"
	VerdictGrowing      Verdict = "Growing"
	VerdictSlow         Verdict = "Slow"
)

// RowKind distinguishes section headers, metric rows and notices.
type RowKind int

const (
	RowHeader RowKind = iota
	RowMetric
	RowNotice
)

func (k RowKind) String() string {
	switch k {
	case RowHeader:
		return "header"
	case RowMetric:
		return "metric"
	case RowNotice:
		return "notice"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// ReportRow is one line of a ticker report.
type ReportRow struct {
	Kind    RowKind
	Label   string
	Value   *float64 // rounded to 2 decimals, nil renders "N/A"
	Range   string
	Verdict string
}

// Report is the classified output for one ticker.
type Report struct {
	Ticker      string
	CompanyName string
	Currency    string
	GeneratedAt time.Time
	Rows        []ReportRow
}

// ReportHeader is the column layout every sink receives.
var ReportHeader = []string{"Method", "Current Value", "Range", "Analysis"}

// Table is the sink-facing shape of a report.
type Table struct {
	Title       string
	Ticker      string
	GeneratedAt time.Time
	Header      []string
	Rows        [][]any
}

// ToTable flattens the report into header and cell rows. Header rows carry
// only their label; metric values are float64 or the string "N/A".
func (r *Report) ToTable() Table {
	title := r.Ticker
	if r.CompanyName != "" {
		title = fmt.Sprintf("%s (%s)", r.CompanyName, r.Ticker)
	}

	rows := make([][]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		switch row.Kind {
		case RowHeader:
			rows = append(rows, []any{row.Label, "", "", ""})
		case RowNotice:
			rows = append(rows, []any{row.Label, "N/A", "-", row.Verdict})
		default:
			var value any = "N/A"
			if row.Value != nil {
				value = *row.Value
			}
			rows = append(rows, []any{row.Label, value, row.Range, row.Verdict})
		}
	}

	header := make([]string, len(ReportHeader))
	copy(header, ReportHeader)

	return Table{
		Title:       title,
		Ticker:      r.Ticker,
		GeneratedAt: r.GeneratedAt,
		Header:      header,
		Rows:        rows,
	}
}
