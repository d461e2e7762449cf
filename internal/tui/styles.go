package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent  = lipgloss.AdaptiveColor{Light: "#2f5fb3", Dark: "#8ab4f8"}
	muted   = lipgloss.AdaptiveColor{Light: "#5b6475", Dark: "#9aa3b2"}
	warning = lipgloss.Color("#FFC107")
	danger  = lipgloss.Color("#e53935")
)

// Styles groups the lipgloss styles used by both pages.
type Styles struct {
	Title    lipgloss.Style
	Section  lipgloss.Style
	Subtitle lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Banner   lipgloss.Style
	Card     lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the standard palette.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Section:  lipgloss.NewStyle().Bold(true).Underline(true),
		Subtitle: lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Muted:    lipgloss.NewStyle().Foreground(muted).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(danger).Bold(true),
		Banner:   lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(warning).Padding(0, 1),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Help:     lipgloss.NewStyle().Foreground(muted).MarginTop(1),
	}
}
