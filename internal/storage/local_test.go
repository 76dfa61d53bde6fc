package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/storage"
)

func newLocal(t *testing.T) (*storage.LocalStorage, *storage.FileBlob) {
	t.Helper()
	blob := storage.NewFileBlob(t.TempDir())
	return storage.NewLocalStorage(blob, zap.NewNop()), blob
}

func TestLocalStorage_SeedWhenEmpty(t *testing.T) {
	s, blob := newLocal(t)

	records, err := s.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, len(model.SeedBookmarks()))
	require.Equal(t, "1", records[0].ID)

	_, statErr := os.Stat(blob.Path(storage.LocalKey))
	require.True(t, os.IsNotExist(statErr), "reading must not write the seed")
}

func TestLocalStorage_InsertPrependsAndPersists(t *testing.T) {
	s, blob := newLocal(t)
	ctx := context.Background()

	rec := storage.Record{ID: "new", URL: "https://go.dev", Tags: []string{"go"}, CreatedAt: int64(1)}
	stored, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	require.Equal(t, "new", stored.ID)
	require.NotNil(t, stored.IsRead)
	require.False(t, *stored.IsRead)

	// A fresh adapter over the same blob sees the write.
	again := storage.NewLocalStorage(blob, nil)
	records, err := again.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, "new", records[0].ID)
	require.Equal(t, "1", records[1].ID)
}

func TestLocalStorage_UpdateReadStatus(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateReadStatus(ctx, "1", true))
	require.NoError(t, s.UpdateReadStatus(ctx, "missing", true))

	records, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.True(t, *records[0].IsRead)
}

func TestLocalStorage_DeleteMissingIsNoop(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "missing"))
	records, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NoError(t, s.Delete(ctx, "2"))
	records, err = s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		require.NotEqual(t, "2", r.ID)
	}
}

func TestLocalStorage_CorruptDocument(t *testing.T) {
	s, blob := newLocal(t)
	ctx := context.Background()
	require.NoError(t, blob.Put(ctx, storage.LocalKey, []byte("{not json")))

	_, err := s.GetAll(ctx)
	require.ErrorContains(t, err, "decode")

	_, err = s.Insert(ctx, storage.Record{ID: "x"})
	require.Error(t, err)
}

func TestLocalStorage_EmptyArray(t *testing.T) {
	s, blob := newLocal(t)
	ctx := context.Background()
	require.NoError(t, blob.Put(ctx, storage.LocalKey, []byte("[]")))

	records, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestFileBlob_MissingKey(t *testing.T) {
	blob := storage.NewFileBlob(t.TempDir())
	_, err := blob.Get(context.Background(), "nope")
	require.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestMemoryStorage_Failures(t *testing.T) {
	s := storage.NewMemoryStorage(storage.Record{ID: "a"})
	ctx := context.Background()
	boom := os.ErrPermission

	s.SetFailures(boom, boom, boom, boom)
	_, err := s.GetAll(ctx)
	require.ErrorIs(t, err, boom)
	_, err = s.Insert(ctx, storage.Record{ID: "b"})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, s.UpdateReadStatus(ctx, "a", true), boom)
	require.ErrorIs(t, s.Delete(ctx, "a"), boom)

	s.SetFailures(nil, nil, nil, nil)
	records, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}
