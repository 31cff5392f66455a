// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	accentColor  = lipgloss.Color("#FF8C42")
	borderColor  = lipgloss.Color("#333")
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	errorColor   = lipgloss.Color("#FF6B6B")
	infoColor    = lipgloss.Color("#95E1D3")
	subtleColor  = lipgloss.Color("#666666")
)

var (
	// Status styles used by the Format and Style helpers.
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(infoColor)

	// SubtleStyle dims identifiers printed next to names.
	SubtleStyle = lipgloss.NewStyle().Foreground(subtleColor)

	// BoxStyle frames run summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	boxTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)

	// TableHeaderStyle underlines the header row of RenderTable.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(borderColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	// PromptStyle is used for yes/no confirmations.
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a bold title inside a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitleStyle.Render(title), content))
}

// RenderTable lays out rows under headers with each column padded to its
// widest cell.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}
	lines := []string{TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...))}

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range headers {
			var v string
			if i < len(row) {
				v = row[i]
			}
			cells[i] = TableCellStyle.Width(widths[i] + 2).Render(v)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// StyleSuccess colors text without an icon.
func StyleSuccess(text string) string {
	return SuccessStyle.Render(text)
}

// StyleError colors text without an icon.
func StyleError(text string) string {
	return ErrorStyle.Render(text)
}
