package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Brand     lipgloss.Style
	TabActive lipgloss.Style
	Tab       lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Info      lipgloss.Style
	Error     lipgloss.Style
	Frame     lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.AdaptiveColor{Light: "#0C4B33", Dark: "#44B78B"}
	muted := lipgloss.AdaptiveColor{Light: "#6B6B66", Dark: "#A0A09A"}
	errColor := lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#F2B8B5"}

	return styles{
		Brand:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		TabActive: lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1),
		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		Title:     lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Label:     lipgloss.NewStyle().Bold(true),
		Value:     lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Info:      lipgloss.NewStyle().Foreground(accent),
		Error:     lipgloss.NewStyle().Foreground(errColor),
		Frame:     lipgloss.NewStyle().Padding(1, 2),
	}
}
