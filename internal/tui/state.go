package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/search"
	"github.com/nikbrunner/pile/internal/tui/layout"
)

// Mode is what the keyboard currently drives.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeConfirmDelete
	ModeFilter
	ModeHelp
)

// Add form field indexes.
const (
	FieldURL = iota
	FieldTitle
	FieldDescription
	FieldTags
	fieldCount
)

// AddFormState holds the inputs of the add bookmark form.
type AddFormState struct {
	Inputs     [fieldCount]textinput.Model
	Focus      int
	Error      string
	Suggesting bool
	seq        int // drops suggestions for a form that was closed meanwhile
}

// NewAddFormState creates the form with its inputs configured.
func NewAddFormState(cfg layout.LayoutConfig) AddFormState {
	var f AddFormState

	placeholders := [fieldCount]string{"https://...", "Title", "Optional description", "space separated tags"}
	limits := [fieldCount]int{
		cfg.Input.URLCharLimit,
		cfg.Input.TitleCharLimit,
		cfg.Input.DescriptionCharLimit,
		cfg.Input.TagsCharLimit,
	}
	for i := range f.Inputs {
		input := textinput.New()
		input.Placeholder = placeholders[i]
		input.CharLimit = limits[i]
		input.Width = cfg.Input.StandardWidth
		f.Inputs[i] = input
	}
	return f
}

// Reset clears the form and focuses the URL field.
func (f *AddFormState) Reset() {
	for i := range f.Inputs {
		f.Inputs[i].Reset()
		f.Inputs[i].Blur()
	}
	f.Focus = FieldURL
	f.Inputs[FieldURL].Focus()
	f.Error = ""
	f.Suggesting = false
	f.seq++
}

// Move shifts focus by delta, wrapping around.
func (f *AddFormState) Move(delta int) {
	f.Inputs[f.Focus].Blur()
	f.Focus = (f.Focus + delta + fieldCount) % fieldCount
	f.Inputs[f.Focus].Focus()
}

// Value returns the trimmed value of field i.
func (f AddFormState) Value(i int) string {
	return strings.TrimSpace(f.Inputs[i].Value())
}

// Params turns the form into bookmark parameters.
func (f AddFormState) Params() model.NewBookmarkParams {
	return model.NewBookmarkParams{
		URL:         f.Value(FieldURL),
		Title:       f.Value(FieldTitle),
		Description: f.Value(FieldDescription),
		Tags:        model.ParseTags(f.Inputs[FieldTags].Value()),
	}
}

// FilterState holds the fuzzy filter over the visible bookmarks.
type FilterState struct {
	Input   textinput.Model
	Results []search.Result
}

// NewFilterState creates a FilterState with initialized input.
func NewFilterState(cfg layout.LayoutConfig) FilterState {
	input := textinput.New()
	input.Placeholder = "filter, or #tag"
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.FilterWidth
	return FilterState{Input: input}
}

// Active reports whether a query is narrowing the list.
func (s FilterState) Active() bool {
	return strings.TrimSpace(s.Input.Value()) != ""
}

// Reset clears the query.
func (s *FilterState) Reset() {
	s.Input.Reset()
	s.Input.Blur()
	s.Results = nil
}
