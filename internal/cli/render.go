package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// Theme colors
var (
	ColorBorder = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorRed    = lipgloss.Color("#D14D41")
	ColorMuted  = lipgloss.Color("#6F6E69")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	labelStyle = cellStyle.
			Foreground(ColorMuted)

	overStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	underStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)

// RenderTitle renders the plan name in a rounded box.
func RenderTitle(title string) string {
	return titleStyle.Render(title)
}

// RenderBreakdown renders one row per step with the percentage of every
// category and the breakdown total.
func RenderBreakdown(results []StepResult) string {
	headers := []string{"step"}
	for _, key := range entity.CategoryKeys {
		headers = append(headers, string(key))
	}
	headers = append(headers, "sum")

	rows := make([][]string, 0, len(results))
	for _, result := range results {
		row := []string{result.Label}
		for _, key := range entity.CategoryKeys {
			row = append(row, FormatPercent(result.Summary.Breakdown[key]))
		}
		row = append(row, FormatPercent(result.Summary.Breakdown.Total()))
		rows = append(rows, row)
	}

	return newTable(headers, rows).String()
}

// RenderTotals renders the line items and totals of the final summary.
func RenderTotals(summary entity.Summary) string {
	rows := make([][]string, 0, len(summary.LineItems)+4)
	for _, item := range summary.LineItems {
		rows = append(rows, []string{item.Name, string(item.Category), FormatAmount(item.Amount)})
	}
	rows = append(rows,
		[]string{"Total budget", "", FormatAmount(summary.TotalBudget)},
		[]string{"Allocated", "", FormatAmount(summary.TotalAllocated)},
		[]string{"Remaining", "", FormatAmount(summary.RemainingBudget)},
	)

	var b strings.Builder
	b.WriteString(newTable([]string{"item", "category", "amount"}, rows).String())
	b.WriteString("\n")
	if summary.IsOverBudget {
		b.WriteString(overStyle.Render("Over budget by " + FormatAmount(-summary.RemainingBudget)))
	} else {
		b.WriteString(underStyle.Render("Within budget"))
	}
	b.WriteString("\n")
	return b.String()
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle.Align(lipgloss.Right)
			}
		})
}
