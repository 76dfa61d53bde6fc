package tui

import "github.com/nikbrunner/pile/internal/session"

// Notices queues controller failures until the app shows them. Pass the
// same value to session.New and AppParams.
type Notices struct {
	queue []session.Notice
}

// NewNotices creates an empty queue.
func NewNotices() *Notices {
	return &Notices{}
}

// Notify implements session.Notifier.
func (n *Notices) Notify(notice session.Notice) {
	n.queue = append(n.queue, notice)
}

// Drain returns and clears the queued notices.
func (n *Notices) Drain() []session.Notice {
	out := n.queue
	n.queue = nil
	return out
}
