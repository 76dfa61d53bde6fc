package storage

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Adapter. Used by tests and by the
// --memory flag for throwaway sessions.
type MemoryStorage struct {
	mu      sync.Mutex
	records []Record

	// Fail* make the matching operation return the error when non-nil.
	FailGetAll error
	FailInsert error
	FailUpdate error
	FailDelete error

	// AssignID, when set, replaces the id of inserted records.
	AssignID func(rec Record) string
}

// NewMemoryStorage creates a MemoryStorage holding records.
func NewMemoryStorage(records ...Record) *MemoryStorage {
	s := &MemoryStorage{}
	s.records = append(s.records, records...)
	return s
}

// Kind implements Adapter.
func (s *MemoryStorage) Kind() Kind { return KindMemory }

// GetAll implements Adapter.
func (s *MemoryStorage) GetAll(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGetAll != nil {
		return nil, s.FailGetAll
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Insert implements Adapter.
func (s *MemoryStorage) Insert(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil {
		return Record{}, s.FailInsert
	}
	if s.AssignID != nil {
		rec.ID = s.AssignID(rec)
	}
	if rec.IsRead == nil {
		rec.IsRead = boolPtr(false)
	}
	s.records = append([]Record{rec}, s.records...)
	return rec, nil
}

// UpdateReadStatus implements Adapter.
func (s *MemoryStorage) UpdateReadStatus(_ context.Context, id string, isRead bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate != nil {
		return s.FailUpdate
	}
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].IsRead = boolPtr(isRead)
		}
	}
	return nil
}

// Delete implements Adapter.
func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete != nil {
		return s.FailDelete
	}
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	return nil
}

// SetFailures sets all failure fields at once under the lock.
func (s *MemoryStorage) SetFailures(getAll, insert, update, del error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailGetAll, s.FailInsert, s.FailUpdate, s.FailDelete = getAll, insert, update, del
}
