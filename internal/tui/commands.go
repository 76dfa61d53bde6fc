package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/pile/internal/session"
	"github.com/nikbrunner/pile/internal/suggest"
)

// outcomeMsg carries a finished store call back to Update.
type outcomeMsg struct {
	outcome session.Outcome
}

// suggestMsg carries an AI suggestion for the add form opened as seq.
type suggestMsg struct {
	seq    int
	result suggest.Result
}

// statusMsg reports the result of a side effect outside the store.
type statusMsg struct {
	text string
	err  error
}

// run executes p off the event loop.
func (a App) run(p session.Pending) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return outcomeMsg{outcome: p.Run(ctx)}
	}
}

func (a App) suggestCmd(seq int, req suggest.Request) tea.Cmd {
	ctx, svc := a.ctx, a.suggester
	return func() tea.Msg {
		return suggestMsg{seq: seq, result: svc.Suggest(ctx, req)}
	}
}

func (a App) openCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return statusMsg{err: fmt.Errorf("open %s: %w", url, err)}
		}
		return statusMsg{text: "Opened " + url}
	}
}

func (a App) yankCmd(url string) tea.Cmd {
	copyText := a.copyText
	return func() tea.Msg {
		if err := copyText(url); err != nil {
			return statusMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return statusMsg{text: "Yanked URL"}
	}
}
