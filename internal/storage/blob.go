package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LocalKey is the fixed key the local collection is stored under.
const LocalKey = "link.pile.bookmarks"

// ErrBlobNotFound is returned by a BlobStore when the key holds nothing.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a string-keyed store of whole documents.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	String() string
}

// FileBlob stores each key as a JSON file inside a directory.
type FileBlob struct {
	dir string
}

// NewFileBlob creates a FileBlob rooted at dir.
func NewFileBlob(dir string) *FileBlob {
	return &FileBlob{dir: dir}
}

// Path returns the file path for key.
func (b *FileBlob) Path(key string) string {
	name := strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(key)
	return filepath.Join(b.dir, name+".json")
}

// Get reads the file for key.
// Returns ErrBlobNotFound if the file doesn't exist.
func (b *FileBlob) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put writes data for key.
// Writes to a temp file first so a crash never leaves half a document.
func (b *FileBlob) Put(_ context.Context, key string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return err
	}

	path := b.Path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (b *FileBlob) String() string {
	return "file:" + b.dir
}
