// Package layout computes sizes for the TUI and trims text to fit them.
package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig sizes the bookmark list and the tag cloud.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// app padding (1) + header (1) + pane borders (2) + help bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// TagPaneWidthPercent is the tag cloud's share of the terminal width.
	TagPaneWidthPercent int

	// MinTagPaneWidth and MaxTagPaneWidth clamp the tag cloud width.
	MinTagPaneWidth int
	MaxTagPaneWidth int

	// SplitOffset accounts for app padding and both panes' borders.
	SplitOffset int

	// ContentPadding is subtracted from pane width for item rendering.
	ContentPadding int

	// LinesPerBookmark is how many rows one bookmark takes in the list.
	LinesPerBookmark int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// LargeWidthPercent is used by the add form.
	LargeWidthPercent int

	MinWidth int
	MaxWidth int

	// HelpColumnWidth is the width of each help overlay column.
	HelpColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit       int
	URLCharLimit         int
	DescriptionCharLimit int
	TagsCharLimit        int
	FilterCharLimit      int

	StandardWidth int
	FilterWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:     7,
			MinHeight:           5,
			TagPaneWidthPercent: 25,
			MinTagPaneWidth:     18,
			MaxTagPaneWidth:     36,
			SplitOffset:         8,
			ContentPadding:      4,
			LinesPerBookmark:    3,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			LargeWidthPercent:   60,
			MinWidth:            50,
			MaxWidth:            90,
			HelpColumnWidth:     24,
		},
		Input: InputConfig{
			TitleCharLimit:       200,
			URLCharLimit:         2000,
			DescriptionCharLimit: 1000,
			TagsCharLimit:        200,
			FilterCharLimit:      100,
			StandardWidth:        50,
			FilterWidth:          30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
