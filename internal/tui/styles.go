package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Modal        lipgloss.Style
	Alert        lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemRead     lipgloss.Style
	URL          lipgloss.Style
	Description  lipgloss.Style
	Tag          lipgloss.Style
	TagActive    lipgloss.Style
	TagLarge     lipgloss.Style
	TagMedium    lipgloss.Style
	TagSmall     lipgloss.Style
	Date         lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style
	HintDesc     lipgloss.Style
	StatusOK     lipgloss.Style // remote store connected
	StatusLocal  lipgloss.Style // local fallback
	Message      lipgloss.Style
	Error        lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}
	danger := lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}
	warn := lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}
	ok := lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		Alert: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(danger).
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemRead: lipgloss.NewStyle().
			Foreground(subtle).
			PaddingLeft(1),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Description: lipgloss.NewStyle().
			Foreground(primary).
			Italic(true),

		Tag: lipgloss.NewStyle().
			Foreground(subtle),

		TagActive: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")).
			Bold(true),

		TagLarge: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		TagMedium: lipgloss.NewStyle().
			Foreground(primary),

		TagSmall: lipgloss.NewStyle().
			Foreground(subtle),

		Date: lipgloss.NewStyle().
			Foreground(subtle),

		Help: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		StatusOK: lipgloss.NewStyle().
			Foreground(ok).
			Bold(true),

		StatusLocal: lipgloss.NewStyle().
			Foreground(warn).
			Bold(true),

		Message: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(danger).
			Bold(true),
	}
}
