package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// table renders rows under headers with columns sized to their widest cell.
type table struct {
	title   string
	headers []string
	rows    [][]string
	footer  []string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) add(row ...string) { t.rows = append(t.rows, row) }

func (t *table) String() string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	writeRow := func(style lipgloss.Style, cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(mutedStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headerStyle, t.headers)
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range t.rows {
		writeRow(cellStyle, row)
	}
	for _, line := range t.footer {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
