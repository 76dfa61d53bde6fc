// Package session owns the collection shown to the user and applies
// mutations optimistically: the change is visible at once and the store
// write follows.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/storage"
	"github.com/nikbrunner/pile/internal/tags"
)

// Op names the action a Pending performs.
type Op int

const (
	OpAdd Op = iota
	OpSetRead
	OpDelete
	OpReload
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSetRead:
		return "set-read"
	case OpDelete:
		return "delete"
	case OpReload:
		return "reload"
	default:
		return "unknown"
	}
}

// User-facing failure messages.
const (
	MsgAddFailed    = "Failed to save bookmark to database."
	MsgUpdateFailed = "Failed to update bookmark status."
	MsgDeleteFailed = "Failed to delete bookmark from database."
)

// Repository is what the controller needs from the bookmark repository.
type Repository interface {
	GetAll(ctx context.Context) model.Collection
	Add(ctx context.Context, b model.Bookmark) (model.Bookmark, error)
	SetReadStatus(ctx context.Context, id string, isRead bool) error
	Remove(ctx context.Context, id string) error
	Kind() storage.Kind
	Connected() bool
}

// Notice is a failure the user must be told about.
type Notice struct {
	Op      Op
	ID      string
	Message string
	Err     error
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Controller holds the current collection for one session.
// It is not safe for concurrent use: every method is called from the
// owning event loop. Only Pending.Run may execute elsewhere.
type Controller struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger

	bookmarks model.Collection
	version   uint64 // bumped by every locally applied action
	inflight  int    // actions issued but not yet resolved
	settled   uint64 // bumped by every resolved write
	reloads   int    // reloads issued but not yet resolved
	dirty     bool   // a stale failure left the view ahead of the store
}

// New creates a Controller. notifier may be nil.
func New(repo Repository, notifier Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Controller{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		bookmarks: model.Collection{},
	}
}

// Load replaces the collection with a fresh read from the repository.
func (c *Controller) Load(ctx context.Context) {
	c.bookmarks = c.repo.GetAll(ctx)
	c.dirty = false
}

// Bookmarks returns the current collection. Callers must not modify it.
func (c *Controller) Bookmarks() model.Collection {
	return c.bookmarks
}

// Visible returns the bookmarks carrying tag, or all when tag is empty.
func (c *Controller) Visible(tag string) []model.Bookmark {
	return tags.Filter(c.bookmarks, tag)
}

// TagCounts returns the tag cloud for the current collection.
func (c *Controller) TagCounts() []model.TagCount {
	return tags.Aggregate(c.bookmarks)
}

// Kind reports which store variant backs the session.
func (c *Controller) Kind() storage.Kind {
	return c.repo.Kind()
}

// Status is the store indicator shown to the user.
func (c *Controller) Status() string {
	if c.repo.Connected() {
		return "Database Connected"
	}
	return "Local Storage"
}

// Busy reports whether any write or reload is outstanding.
func (c *Controller) Busy() bool {
	return c.inflight > 0 || c.reloads > 0
}

// Add creates a bookmark, puts it at the front and returns the write.
func (c *Controller) Add(params model.NewBookmarkParams) Pending {
	b := model.NewBookmark(params)
	previous := c.bookmarks
	c.bookmarks = previous.Prepend(b)
	return c.issue(Pending{op: OpAdd, id: b.ID, bookmark: b, previous: previous})
}

// SetRead sets the read flag of id and returns the write.
func (c *Controller) SetRead(id string, isRead bool) Pending {
	previous := c.bookmarks
	c.bookmarks = previous.WithReadStatus(id, isRead)
	return c.issue(Pending{op: OpSetRead, id: id, isRead: isRead, previous: previous})
}

// ToggleRead flips the read flag of id. ok is false when id is unknown.
func (c *Controller) ToggleRead(id string) (p Pending, ok bool) {
	b := c.bookmarks.GetByID(id)
	if b == nil {
		return Pending{}, false
	}
	return c.SetRead(id, !b.IsRead), true
}

// Delete removes id from the collection and returns the write.
func (c *Controller) Delete(id string) Pending {
	previous := c.bookmarks
	c.bookmarks = previous.Without(id)
	return c.issue(Pending{op: OpDelete, id: id, previous: previous})
}

// Reload returns a read that replaces the collection when it resolves,
// unless the user has acted or a write has settled in the meantime.
func (c *Controller) Reload() Pending {
	c.reloads++
	return Pending{op: OpReload, version: c.version, settled: c.settled, repo: c.repo}
}

func (c *Controller) issue(p Pending) Pending {
	c.version++
	c.inflight++
	p.version = c.version
	p.repo = c.repo
	return p
}

// Resolve reconciles a finished Pending with the current state.
// It returns a follow-up reload when the collection needs refreshing.
func (c *Controller) Resolve(o Outcome) *Pending {
	if o.Op == OpReload {
		return c.resolveReload(o)
	}

	c.inflight--
	c.settled++

	if o.Err == nil {
		if o.Op == OpAdd && o.Saved.ID != "" && o.Saved.ID != o.ID {
			c.logger.Warn("store id differs from local id", zap.String("local", o.ID), zap.String("store", o.Saved.ID))
		}
		return c.maybeReload()
	}

	c.notifier.Notify(Notice{Op: o.Op, ID: o.ID, Message: failureMessage(o.Op), Err: o.Err})

	if o.Version != c.version {
		// Newer actions were applied on top of this one; the snapshot
		// would discard them.
		c.logger.Info("stale failure, refreshing from store",
			zap.Stringer("op", o.Op), zap.String("id", o.ID),
			zap.Uint64("version", o.Version), zap.Uint64("current", c.version))
		c.dirty = true
		return c.maybeReload()
	}

	if o.Op == OpAdd {
		// The reload may predate older writes still in flight.
		c.bookmarks = o.Reloaded
		c.dirty = c.inflight > 0
	} else {
		c.bookmarks = o.previous
	}
	return c.maybeReload()
}

func (c *Controller) resolveReload(o Outcome) *Pending {
	c.reloads--
	// The read may have reached the store before a write that has since
	// settled, so only a reload that saw no writes land is adopted.
	if o.Version == c.version && o.settled == c.settled && c.inflight == 0 {
		c.bookmarks = o.Reloaded
		c.dirty = false
		return nil
	}
	c.logger.Debug("discarding reload overtaken by newer actions",
		zap.Uint64("version", o.Version), zap.Uint64("current", c.version),
		zap.Int("inflight", c.inflight))
	c.dirty = true
	return c.maybeReload()
}

// maybeReload issues a reload once nothing else is outstanding.
func (c *Controller) maybeReload() *Pending {
	if !c.dirty || c.inflight > 0 || c.reloads > 0 {
		return nil
	}
	p := c.Reload()
	return &p
}

// Settle runs p and every follow-up it triggers on the calling
// goroutine. Used by tests and by commands without an event loop.
func (c *Controller) Settle(ctx context.Context, p Pending) {
	next := &p
	for next != nil {
		next = c.Resolve(next.Run(ctx))
	}
}

func failureMessage(op Op) string {
	switch op {
	case OpAdd:
		return MsgAddFailed
	case OpSetRead:
		return MsgUpdateFailed
	case OpDelete:
		return MsgDeleteFailed
	default:
		return ""
	}
}
