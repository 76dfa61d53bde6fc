// Package tui is the interactive bookmark browser. It renders the session
// collection and feeds every store call back through the bubbletea loop,
// so the controller is only ever touched from Update.
package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/search"
	"github.com/nikbrunner/pile/internal/session"
	"github.com/nikbrunner/pile/internal/suggest"
	"github.com/nikbrunner/pile/internal/tui/layout"
)

// MessageType distinguishes the one-line messages under the panes.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageError
)

// App is the main bubbletea model for the bookmark browser.
type App struct {
	ctx          context.Context
	ctrl         *session.Controller
	notices      *Notices
	suggester    *suggest.Service
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	copyText     func(string) error
	openURL      func(string) error

	mode      Mode
	items     []model.Bookmark
	cursor    int
	activeTag string
	deleteID  string

	form   AddFormState
	filter FilterState

	// Failures waiting to be acknowledged, oldest first.
	alerts []string

	messageText string
	messageType MessageType

	// For gg command
	lastKeyWasG bool

	// Quit requested while writes were outstanding.
	quitting bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Controller *session.Controller
	// Notices must be the notifier the controller was built with.
	Notices *Notices
	// Suggest is optional; nil disables AI suggestions in the add form.
	Suggest *suggest.Service

	Context      context.Context
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil

	// Clipboard and OpenURL default to the system clipboard and browser.
	Clipboard func(string) error
	OpenURL   func(string) error
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	notices := params.Notices
	if notices == nil {
		notices = NewNotices()
	}

	copyText := params.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	openURL := params.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}

	app := App{
		ctx:          ctx,
		ctrl:         params.Controller,
		notices:      notices,
		suggester:    params.Suggest,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutCfg,
		copyText:     copyText,
		openURL:      openURL,
		mode:         ModeNormal,
		form:         NewAddFormState(layoutCfg),
		filter:       NewFilterState(layoutCfg),
		width:        80,
		height:       24,
	}

	app.refreshItems()
	return app
}

// refreshItems rebuilds the list from the controller, the active tag and
// the filter query, keeping the cursor in range.
func (a *App) refreshItems() {
	visible := a.ctrl.Visible(a.activeTag)

	if a.filter.Active() {
		a.filter.Results = search.Bookmarks(visible, a.filter.Input.Value())
		a.items = make([]model.Bookmark, len(a.filter.Results))
		for i, r := range a.filter.Results {
			a.items[i] = r.Bookmark
		}
	} else {
		a.filter.Results = nil
		a.items = visible
	}

	if a.cursor >= len(a.items) {
		a.cursor = len(a.items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// selected returns the bookmark under the cursor, or nil.
func (a App) selected() *model.Bookmark {
	if a.cursor < 0 || a.cursor >= len(a.items) {
		return nil
	}
	b := a.items[a.cursor]
	return &b
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns what the keyboard currently drives.
func (a App) Mode() Mode {
	return a.mode
}

// ActiveTag returns the tag the list is filtered by, or "".
func (a App) ActiveTag() string {
	return a.activeTag
}

// Items returns the bookmarks currently listed.
func (a App) Items() []model.Bookmark {
	return a.items
}

// Alerts returns the failure messages not yet dismissed.
func (a App) Alerts() []string {
	return a.alerts
}

// WithDimensions returns a copy sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case outcomeMsg:
		return a.handleOutcome(msg.outcome)

	case suggestMsg:
		return a.handleSuggestion(msg)

	case statusMsg:
		if msg.err != nil {
			a.setMessage(MessageError, msg.err.Error())
		} else {
			a.setMessage(MessageSuccess, msg.text)
		}
		return a, nil

	case tea.KeyMsg:
		// An alert blocks everything until acknowledged.
		if len(a.alerts) > 0 {
			a.alerts = a.alerts[1:]
			return a, a.quitIfSettled()
		}
		if a.quitting {
			// A second quit gives up on outstanding writes.
			if key.Matches(msg, a.keys.Quit) {
				return a, tea.Quit
			}
			return a, nil
		}

		switch a.mode {
		case ModeAdd:
			return a.handleAddKey(msg)
		case ModeConfirmDelete:
			return a.handleConfirmDeleteKey(msg)
		case ModeFilter:
			return a.handleFilterKey(msg)
		case ModeHelp:
			if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Cancel) || key.Matches(msg, a.keys.Quit) {
				a.mode = ModeNormal
			}
			return a, nil
		default:
			return a.handleNormalKey(msg)
		}
	}

	// Cursor blink and friends go to whichever input has focus.
	var cmd tea.Cmd
	switch a.mode {
	case ModeAdd:
		a.form.Inputs[a.form.Focus], cmd = a.form.Inputs[a.form.Focus].Update(msg)
	case ModeFilter:
		a.filter.Input, cmd = a.filter.Input.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

// handleOutcome reconciles a finished store call and starts the reload
// the controller asks for, if any.
func (a App) handleOutcome(o session.Outcome) (tea.Model, tea.Cmd) {
	next := a.ctrl.Resolve(o)
	for _, n := range a.notices.Drain() {
		a.alerts = append(a.alerts, n.Message)
	}
	a.refreshItems()
	if next != nil {
		return a, a.run(*next)
	}
	return a, a.quitIfSettled()
}

// quitIfSettled quits a pending shutdown once every write has resolved
// and every failure has been seen.
func (a App) quitIfSettled() tea.Cmd {
	if a.quitting && !a.ctrl.Busy() && len(a.alerts) == 0 {
		return tea.Quit
	}
	return nil
}

// Quitting reports whether the app waits for writes before exiting.
func (a App) Quitting() bool {
	return a.quitting
}

func (a App) handleSuggestion(msg suggestMsg) (tea.Model, tea.Cmd) {
	if a.mode != ModeAdd || msg.seq != a.form.seq {
		return a, nil
	}
	a.form.Suggesting = false

	if len(msg.result.Tags) == 0 && msg.result.SuggestedDescription == "" {
		a.form.Error = "No suggestions"
		return a, nil
	}

	tagsValue, description := suggest.Merge(
		a.form.Inputs[FieldTags].Value(),
		a.form.Inputs[FieldDescription].Value(),
		msg.result,
	)
	a.form.Inputs[FieldTags].SetValue(tagsValue)
	a.form.Inputs[FieldDescription].SetValue(description)
	a.form.Error = ""
	return a, nil
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false
	a.messageText = ""

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.ctrl.Busy() {
			a.quitting = true
			a.setMessage(MessageInfo, "Saving changes...")
			return a, nil
		}
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.items)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}

	case key.Matches(msg, a.keys.Open):
		if b := a.selected(); b != nil {
			return a, a.openCmd(b.URL)
		}

	case key.Matches(msg, a.keys.YankURL):
		if b := a.selected(); b != nil {
			return a, a.yankCmd(b.URL)
		}

	case key.Matches(msg, a.keys.ToggleRead):
		if b := a.selected(); b != nil {
			p, ok := a.ctrl.ToggleRead(b.ID)
			if ok {
				a.refreshItems()
				return a, a.run(p)
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if b := a.selected(); b != nil {
			a.deleteID = b.ID
			a.mode = ModeConfirmDelete
		}

	case key.Matches(msg, a.keys.Add):
		a.form.Reset()
		a.mode = ModeAdd
		return a, textinput.Blink

	case key.Matches(msg, a.keys.TagOfItem):
		if b := a.selected(); b != nil && len(b.Tags) > 0 {
			a.setActiveTag(b.Tags[0])
		}

	case key.Matches(msg, a.keys.CycleTag):
		a.cycleTag()

	case key.Matches(msg, a.keys.ClearTag):
		if a.filter.Active() {
			a.filter.Reset()
			a.cursor = 0
			a.refreshItems()
		} else if a.activeTag != "" {
			a.setActiveTag("")
		}

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filter.Input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Reload):
		return a, a.run(a.ctrl.Reload())

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	return a, nil
}

func (a *App) setActiveTag(tag string) {
	a.activeTag = tag
	a.cursor = 0
	a.refreshItems()
}

// cycleTag steps the active tag through the tag cloud in display order.
func (a *App) cycleTag() {
	counts := a.ctrl.TagCounts()
	if len(counts) == 0 {
		return
	}
	next := 0
	for i, tc := range counts {
		if tc.Tag == a.activeTag {
			next = i + 1
			break
		}
	}
	if next >= len(counts) {
		a.setActiveTag("")
		return
	}
	a.setActiveTag(counts[next].Tag)
}

func (a App) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.deleteID
	a.deleteID = ""
	a.mode = ModeNormal

	if !key.Matches(msg, a.keys.Confirm) {
		return a, nil
	}
	p := a.ctrl.Delete(id)
	a.refreshItems()
	return a, a.run(p)
}

func (a App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.filter.Reset()
		a.mode = ModeNormal
		a.cursor = 0
		a.refreshItems()
		return a, nil
	case tea.KeyEnter:
		a.filter.Input.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)
	a.cursor = 0
	a.refreshItems()
	return a, cmd
}

func (a App) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.form.seq++
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		a.form.Move(1)
		return a, nil

	case key.Matches(msg, a.keys.PrevField):
		a.form.Move(-1)
		return a, nil

	case key.Matches(msg, a.keys.Suggest):
		return a.startSuggestion()

	case key.Matches(msg, a.keys.Save):
		params := a.form.Params()
		if params.URL == "" || params.Title == "" {
			a.form.Error = "URL and title are required"
			return a, nil
		}
		a.form.seq++
		a.mode = ModeNormal

		p := a.ctrl.Add(params)
		a.refreshItems()
		if i := model.Collection(a.items).IndexOf(p.ID()); i >= 0 {
			a.cursor = i
		}
		return a, a.run(p)
	}

	var cmd tea.Cmd
	a.form.Inputs[a.form.Focus], cmd = a.form.Inputs[a.form.Focus].Update(msg)
	return a, cmd
}

func (a App) startSuggestion() (tea.Model, tea.Cmd) {
	if a.suggester == nil || !a.suggester.Enabled() {
		a.form.Error = "AI suggestions are not configured"
		return a, nil
	}
	if a.form.Suggesting {
		return a, nil
	}

	req := suggest.Request{
		URL:          a.form.Value(FieldURL),
		Title:        a.form.Value(FieldTitle),
		Description:  a.form.Value(FieldDescription),
		ExistingTags: suggest.ExistingTags(a.ctrl.Bookmarks()),
	}
	if req.URL == "" && req.Title == "" {
		a.form.Error = "Enter a URL or title first"
		return a, nil
	}

	a.form.Suggesting = true
	a.form.Error = ""
	return a, a.suggestCmd(a.form.seq, req)
}

// Keys returns the key bindings in use.
func (a App) Keys() KeyMap {
	return a.keys
}
