package themes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette of the bulk monitor.
type Theme struct {
	Title          lipgloss.Style
	Subtitle       lipgloss.Style
	Normal         lipgloss.Style
	Bold           lipgloss.Style
	Highlighted    lipgloss.Style
	Box            lipgloss.Style
	RoundedBox     lipgloss.Style
	StatusPending  lipgloss.Style
	StatusInfo     lipgloss.Style
	StatusSuccess  lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusError    lipgloss.Style
	DisciplineIcon lipgloss.Style
	// ProgressFull and ProgressEmpty color the run progress bar.
	ProgressFull  lipgloss.Color
	ProgressEmpty lipgloss.Color
}

// palette holds the colors a theme is built from.
type palette struct {
	fg, dim, accent, border, muted   lipgloss.Color
	info, success, warning, errColor lipgloss.Color
}

func newTheme(p palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return Theme{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.fg).MarginBottom(1),
		Subtitle:    lipgloss.NewStyle().Foreground(p.dim).MarginBottom(1),
		Normal:      lipgloss.NewStyle().Foreground(p.fg),
		Bold:        lipgloss.NewStyle().Bold(true).Foreground(p.fg),
		Highlighted: lipgloss.NewStyle().Background(p.border).Foreground(p.fg),
		Box:         lipgloss.NewStyle().Padding(1, 2),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		StatusPending:  lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		StatusInfo:     status(p.info),
		StatusSuccess:  status(p.success),
		StatusWarning:  status(p.warning),
		StatusError:    status(p.errColor),
		DisciplineIcon: lipgloss.NewStyle().Width(3).Align(lipgloss.Center),
		ProgressFull:   p.accent,
		ProgressEmpty:  p.border,
	}
}

// Default is the default theme.
var Default = newTheme(palette{
	fg:       "#fafafa",
	dim:      "#a3a3a3",
	accent:   "#ea580c",
	border:   "#404040",
	muted:    "#737373",
	info:     "#3b82f6",
	success:  "#10b981",
	warning:  "#f59e0b",
	errColor: "#ef4444",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	fg:       "#cdd6f4",
	dim:      "#a6adc8",
	accent:   "#cba6f7",
	border:   "#45475a",
	muted:    "#6c7086",
	info:     "#89dceb",
	success:  "#a6e3a1",
	warning:  "#f9e2af",
	errColor: "#f38ba8",
})

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// DisciplineIcons maps discipline id prefixes to icons.
var DisciplineIcons = map[string]string{
	"AR":   "🏛️",
	"KR":   "🧱",
	"VK":   "🚰",
	"OV":   "🌬️",
	"AUPT": "🧯",
	"EOM":  "⚡",
	"SS":   "📡",
}

// GetDisciplineIcon returns an icon for a discipline id such as "KR_WALLS".
func GetDisciplineIcon(id string) string {
	prefix, _, _ := strings.Cut(id, "_")
	if icon, ok := DisciplineIcons[prefix]; ok {
		return icon
	}
	return "📦"
}
