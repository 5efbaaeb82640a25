package waybilltui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme names.
const (
	ThemeDefault      = "default"
	ThemeHighContrast = "high-contrast"
)

type palette struct {
	Foreground string
	Muted      string
	Accent     string
	Border     string
	Warning    string
	Success    string
}

var palettes = map[string]palette{
	ThemeDefault: {
		Foreground: "252",
		Muted:      "244",
		Accent:     "39",
		Border:     "238",
		Warning:    "214",
		Success:    "42",
	},
	ThemeHighContrast: {
		Foreground: "15",
		Muted:      "250",
		Accent:     "51",
		Border:     "15",
		Warning:    "226",
		Success:    "46",
	},
}

type styles struct {
	tab          lipgloss.Style
	activeTab    lipgloss.Style
	filter       lipgloss.Style
	activeFilter lipgloss.Style
	card         lipgloss.Style
	activeCard   lipgloss.Style
	cardTitle    lipgloss.Style
	status       lipgloss.Style
	muted        lipgloss.Style
	cancel       lipgloss.Style
	popup        lipgloss.Style
	popupTitle   lipgloss.Style
	toast        lipgloss.Style
	tabBar       lipgloss.Style
	loadingMask  lipgloss.Style
}

func newStyles(theme string) (styles, error) {
	p, ok := palettes[theme]
	if !ok {
		return styles{}, fmt.Errorf("invalid theme %q", theme)
	}
	fg := lipgloss.Color(p.Foreground)
	muted := lipgloss.Color(p.Muted)
	accent := lipgloss.Color(p.Accent)
	border := lipgloss.Color(p.Border)

	return styles{
		tab:         lipgloss.NewStyle().Foreground(muted).Padding(0, 2),
		activeTab:   lipgloss.NewStyle().Foreground(accent).Bold(true).Underline(true).Padding(0, 2),
		filter:      lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		activeFilter:  lipgloss.NewStyle().Foreground(fg).Background(border).Padding(0, 1),
		card:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1),
		activeCard:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		cardTitle:   lipgloss.NewStyle().Foreground(fg).Bold(true),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		muted:       lipgloss.NewStyle().Foreground(muted),
		cancel:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),
		popup:       lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(accent).Padding(1, 2),
		popupTitle:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		toast:       lipgloss.NewStyle().Foreground(fg).Background(border).Padding(0, 2),
		tabBar:      lipgloss.NewStyle().Foreground(muted).BorderTop(true).BorderStyle(lipgloss.NormalBorder()).BorderForeground(border),
		loadingMask: lipgloss.NewStyle().Foreground(accent).Bold(true),
	}, nil
}
