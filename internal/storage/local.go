package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/model"
)

// LocalStorage keeps the whole collection as one JSON document in a
// BlobStore. Every write rewrites the document.
type LocalStorage struct {
	blob   BlobStore
	key    string
	logger *zap.Logger

	mu sync.Mutex
}

// NewLocalStorage creates a LocalStorage over blob using LocalKey.
func NewLocalStorage(blob BlobStore, logger *zap.Logger) *LocalStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStorage{blob: blob, key: LocalKey, logger: logger}
}

// Kind implements Adapter.
func (s *LocalStorage) Kind() Kind { return KindLocal }

// GetAll reads the stored document.
// Returns the seed collection if nothing has been stored yet.
func (s *LocalStorage) GetAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Insert puts rec in front of the stored records.
func (s *LocalStorage) Insert(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}
	if rec.IsRead == nil {
		rec.IsRead = boolPtr(false)
	}

	updated := make([]Record, 0, len(current)+1)
	updated = append(updated, rec)
	updated = append(updated, current...)
	if err := s.save(ctx, updated); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpdateReadStatus implements Adapter.
func (s *LocalStorage) UpdateReadStatus(ctx context.Context, id string, isRead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range current {
		if current[i].ID == id {
			current[i].IsRead = boolPtr(isRead)
		}
	}
	return s.save(ctx, current)
}

// Delete implements Adapter.
func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	updated := current[:0]
	for _, rec := range current {
		if rec.ID != id {
			updated = append(updated, rec)
		}
	}
	return s.save(ctx, updated)
}

func (s *LocalStorage) load(ctx context.Context) ([]Record, error) {
	data, err := s.blob.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			s.logger.Debug("no stored collection, serving seed")
			return seedRecords(), nil
		}
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *LocalStorage) save(ctx context.Context, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := s.blob.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// RecordFromBookmark converts a domain bookmark to its stored form.
func RecordFromBookmark(b model.Bookmark) Record {
	tags := make([]string, len(b.Tags))
	copy(tags, b.Tags)
	return Record{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		Tags:        tags,
		CreatedAt:   b.CreatedAt,
		IsRead:      boolPtr(b.IsRead),
	}
}

func seedRecords() []Record {
	seed := model.SeedBookmarks()
	records := make([]Record, len(seed))
	for i, b := range seed {
		records[i] = RecordFromBookmark(b)
	}
	return records
}
