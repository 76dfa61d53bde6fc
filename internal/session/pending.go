package session

import (
	"context"

	"github.com/nikbrunner/pile/internal/model"
)

// Pending is an issued store call. Run touches only the repository and
// immutable snapshots, so it may run on any goroutine.
type Pending struct {
	op       Op
	version  uint64
	settled  uint64
	id       string
	bookmark model.Bookmark
	isRead   bool
	previous model.Collection
	repo     Repository
}

// Op reports which action p performs.
func (p Pending) Op() Op { return p.op }

// ID is the bookmark the action targets; empty for reloads.
func (p Pending) ID() string { return p.id }

// Outcome is the result of Pending.Run, handed back to Controller.Resolve.
type Outcome struct {
	Op       Op
	Version  uint64
	ID       string
	Err      error
	Saved    model.Bookmark   // add: what the store returned
	Reloaded model.Collection // add failure and reload: fresh collection

	previous model.Collection
	settled  uint64
}

// Run performs the store call. No retries.
func (p Pending) Run(ctx context.Context) Outcome {
	o := Outcome{Op: p.op, Version: p.version, ID: p.id, previous: p.previous, settled: p.settled}

	switch p.op {
	case OpAdd:
		o.Saved, o.Err = p.repo.Add(ctx, p.bookmark)
		if o.Err != nil {
			o.Reloaded = p.repo.GetAll(ctx)
		}
	case OpSetRead:
		o.Err = p.repo.SetReadStatus(ctx, p.id, p.isRead)
	case OpDelete:
		o.Err = p.repo.Remove(ctx, p.id)
	case OpReload:
		o.Reloaded = p.repo.GetAll(ctx)
	}
	return o
}
