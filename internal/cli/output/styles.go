package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the renderer.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Link    lipgloss.Style

	Success lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
}

// Colors
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#F57F17", Dark: "#FFD54F"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#0C4B33", Dark: "#44B78B"}
)

// DefaultStyles returns the colored style set for terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Header2: lipgloss.NewStyle().Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(colorGray),
		Link:    lipgloss.NewStyle().Underline(true).Foreground(colorBlue),

		Success: lipgloss.NewStyle().Foreground(colorGreen),
		Info:    lipgloss.NewStyle().Foreground(colorBlue),
		Warning: lipgloss.NewStyle().Foreground(colorYellow),
		Error:   lipgloss.NewStyle().Foreground(colorRed),

		StatusSuccess: lipgloss.NewStyle().Foreground(colorGreen).SetString("✓"),
		StatusFailed:  lipgloss.NewStyle().Foreground(colorRed).SetString("✗"),
		StatusSkipped: lipgloss.NewStyle().Foreground(colorGray).SetString("-"),
	}
}

// PlainStyles returns a style set without colors for pipes and files.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1: plain,
		Header2: plain,
		Bold:    plain,
		Muted:   plain,
		Link:    plain,

		Success: plain,
		Info:    plain,
		Warning: plain,
		Error:   plain,

		StatusSuccess: plain.SetString("[ok]"),
		StatusFailed:  plain.SetString("[failed]"),
		StatusSkipped: plain.SetString("[-]"),
	}
}
