// Package repository turns store records into the domain collection and
// classifies store failures.
package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/storage"
)

// Repository is the domain-facing side of a storage.Adapter.
type Repository struct {
	adapter storage.Adapter
	logger  *zap.Logger
	now     func() time.Time
}

// New creates a Repository over adapter.
func New(adapter storage.Adapter, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{adapter: adapter, logger: logger, now: time.Now}
}

// Kind reports which store variant is active.
func (r *Repository) Kind() storage.Kind {
	return r.adapter.Kind()
}

// Connected reports whether the remote store is in use.
func (r *Repository) Connected() bool {
	return r.adapter.Kind() == storage.KindRemote
}

// GetAll returns the collection, most recent first. A store failure is
// logged and yields an empty collection.
func (r *Repository) GetAll(ctx context.Context) model.Collection {
	c, err := r.Fetch(ctx)
	if err != nil {
		r.logger.Error("fetch bookmarks failed, showing empty collection", zap.Error(err))
		return model.Collection{}
	}
	return c
}

// Fetch is GetAll without the fallback.
func (r *Repository) Fetch(ctx context.Context) (model.Collection, error) {
	records, err := r.adapter.GetAll(ctx)
	if err != nil {
		return nil, &FetchError{Op: string(r.adapter.Kind()), Err: err}
	}

	now := r.now()
	c := make(model.Collection, 0, len(records))
	for _, rec := range records {
		c = append(c, r.toBookmark(rec, now))
	}
	return c, nil
}

// Add persists b as given; the caller owns the id.
func (r *Repository) Add(ctx context.Context, b model.Bookmark) (model.Bookmark, error) {
	b.Tags = model.NormalizeTags(b.Tags)
	stored, err := r.adapter.Insert(ctx, storage.RecordFromBookmark(b))
	if err != nil {
		r.logger.Error("add bookmark failed", zap.String("id", b.ID), zap.Error(err))
		return model.Bookmark{}, &WriteError{Op: "add", ID: b.ID, Err: err}
	}

	saved := r.toBookmark(stored, r.now())
	if saved.ID != b.ID {
		r.logger.Warn("store returned a different id, keeping local id",
			zap.String("local", b.ID), zap.String("store", saved.ID))
		saved.ID = b.ID
	}
	return saved, nil
}

// SetReadStatus sets the read flag of id. Repeating it has no further effect.
func (r *Repository) SetReadStatus(ctx context.Context, id string, isRead bool) error {
	if err := r.adapter.UpdateReadStatus(ctx, id, isRead); err != nil {
		r.logger.Error("update read status failed", zap.String("id", id), zap.Bool("isRead", isRead), zap.Error(err))
		return &WriteError{Op: "update", ID: id, Err: err}
	}
	return nil
}

// Remove deletes id.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if err := r.adapter.Delete(ctx, id); err != nil {
		r.logger.Error("delete bookmark failed", zap.String("id", id), zap.Error(err))
		return &WriteError{Op: "delete", ID: id, Err: err}
	}
	return nil
}

func (r *Repository) toBookmark(rec storage.Record, now time.Time) model.Bookmark {
	isRead := false
	if rec.IsRead != nil {
		isRead = *rec.IsRead
	}
	return model.Bookmark{
		ID:          rec.ID,
		URL:         rec.URL,
		Title:       rec.Title,
		Description: rec.Description,
		Tags:        model.NormalizeTags(rec.Tags),
		CreatedAt:   NormalizeTimestamp(rec.CreatedAt, now),
		IsRead:      isRead,
	}
}
