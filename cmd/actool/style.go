package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// field is one labelled line of a report.
type field struct {
	label string
	value any
}

// report renders a titled box of labelled values.
func report(title string, fields ...field) string {
	lines := make([]string, 0, len(fields)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, f := range fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(f.label),
			fmt.Sprint(f.value),
		))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// table renders rows under a header with aligned columns.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		b.WriteString(style.Render(strings.TrimRight(strings.Join(parts, "  "), " ")))
		b.WriteByte('\n')
	}
	writeRow(header, titleStyle)
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return b.String()
}
