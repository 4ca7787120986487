package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableStyle provides consistent styling for tables across the CLI.
type TableStyle struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Border lipgloss.Style
}

// DefaultTableStyle returns the default table styling.
func DefaultTableStyle() TableStyle {
	return TableStyle{
		Header: HeaderStyle().Padding(0, 1),
		Cell:   lipgloss.NewStyle().Foreground(ColorPrimary).Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// RenderTable renders a bordered, non-interactive table. An empty header
// row yields the empty string.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	style := DefaultTableStyle()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(style.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return style.Header
			}
			return style.Cell
		})

	return t.String()
}
