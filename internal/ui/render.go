package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sprintreport/sprintreport/internal/report"
)

// StaleCacheNotice is printed after a report that was served from the cache.
const StaleCacheNotice = "NB! output was printed from cache - making sure it's fresh enough is the user's responsibility. (Check/clear `cache` subfolder.)"

// RenderRows draws rows as a box table with a rule between rows. It returns
// "" for an empty group.
func RenderRows(rows []report.Row) string {
	if len(rows) == 0 {
		return ""
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Cells()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		BorderRow(true).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 && row >= 0 && row < len(rows) && rows[row].Flagged {
				return FlaggedCellStyle
			}
			return CellStyle
		})
	return t.String()
}

// RenderReport lays out every table of r: the header line, the table and a
// blank line per group, plus two blank lines after each component.
func RenderReport(r *report.Report) string {
	var b strings.Builder
	for i, t := range r.Tables {
		b.WriteString(RenderHeader(t.Header))
		b.WriteString("\n")
		if rendered := RenderRows(t.Rows); rendered != "" {
			b.WriteString(rendered)
			b.WriteString("\n")
		}
		b.WriteString("\n")

		last := i == len(r.Tables)-1
		if last || r.Tables[i+1].Component != t.Component {
			b.WriteString("\n\n")
		}
	}
	if r.FromCache {
		b.WriteString(RenderWarn(StaleCacheNotice))
		b.WriteString("\n")
	}
	return b.String()
}
