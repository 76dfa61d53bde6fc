package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/config"
)

// Kind identifies which variant an Adapter is.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
	KindMemory Kind = "memory"
)

// Record is a bookmark as it crosses the store boundary.
// Fields are kept loose: CreatedAt may be a number, a string or a
// time.Time depending on the backend, Tags is nil when the row has none
// and IsRead is nil when the flag is missing.
type Record struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CreatedAt   any      `json:"createdAt"`
	IsRead      *bool    `json:"isRead,omitempty"`
}

// Adapter defines the interface for persisting bookmarks.
type Adapter interface {
	// GetAll returns every record, most recent first.
	GetAll(ctx context.Context) ([]Record, error)
	// Insert stores rec and returns what the store holds afterwards.
	Insert(ctx context.Context, rec Record) (Record, error)
	// UpdateReadStatus sets the flag. A missing id is a no-op.
	UpdateReadStatus(ctx context.Context, id string, isRead bool) error
	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	Kind() Kind
}

// Closer is implemented by adapters that hold connections.
type Closer interface {
	Close() error
}

// Open opens the appropriate storage backend.
// The remote store is used iff both remote values are configured,
// otherwise the local blob store.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Adapter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.RemoteEnabled() {
		s, err := OpenRemote(ctx, cfg.Remote, logger.Named("remote"))
		if err != nil {
			return nil, fmt.Errorf("open remote store: %w", err)
		}
		logger.Info("using remote store", zap.String("table", cfg.Remote.Table))
		return s, nil
	}

	blob, err := openBlob(ctx, cfg.Local)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	logger.Info("using local store", zap.String("blob", blob.String()))
	return NewLocalStorage(blob, logger.Named("local")), nil
}

func openBlob(ctx context.Context, cfg config.LocalConfig) (BlobStore, error) {
	if cfg.S3 != nil && cfg.S3.Bucket != "" {
		return NewS3Blob(ctx, *cfg.S3)
	}
	return NewFileBlob(cfg.Dir), nil
}

func boolPtr(b bool) *bool {
	return &b
}
