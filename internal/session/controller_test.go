package session_test

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/repository"
	"github.com/nikbrunner/pile/internal/session"
	"github.com/nikbrunner/pile/internal/storage"
)

var errOffline = errors.New("offline")

// flakyRepo fails writes that target ids in fail.
type flakyRepo struct {
	*repository.Repository
	fail map[string]bool
}

func (r *flakyRepo) SetReadStatus(ctx context.Context, id string, isRead bool) error {
	if r.fail[id] {
		return &repository.WriteError{Op: "update", ID: id, Err: errOffline}
	}
	return r.Repository.SetReadStatus(ctx, id, isRead)
}

func (r *flakyRepo) Remove(ctx context.Context, id string) error {
	if r.fail[id] {
		return &repository.WriteError{Op: "delete", ID: id, Err: errOffline}
	}
	return r.Repository.Remove(ctx, id)
}

type recorder struct {
	notices []session.Notice
}

func (r *recorder) Notify(n session.Notice) {
	r.notices = append(r.notices, n)
}

func seededStore() *storage.MemoryStorage {
	var records []storage.Record
	for _, b := range model.SeedBookmarks() {
		records = append(records, storage.RecordFromBookmark(b))
	}
	return storage.NewMemoryStorage(records...)
}

func newController(t *testing.T) (*session.Controller, *storage.MemoryStorage, *repository.Repository, *recorder) {
	t.Helper()
	store := seededStore()
	repo := repository.New(store, nil)
	rec := &recorder{}
	c := session.New(repo, rec, nil)
	c.Load(context.Background())
	return c, store, repo, rec
}

func TestLoad(t *testing.T) {
	c, _, _, _ := newController(t)
	assert.Equal(t, len(c.Bookmarks()), 3)
	assert.Equal(t, c.Bookmarks()[0].ID, "1")
	assert.Equal(t, c.Status(), "Local Storage")
	assert.Assert(t, !c.Busy())
}

func TestAdd_AppliesImmediatelyAtFront(t *testing.T) {
	c, _, repo, rec := newController(t)
	ctx := context.Background()

	p := c.Add(model.NewBookmarkParams{URL: "https://go.dev", Title: "Go", Tags: []string{"Go", "lang"}})
	assert.Equal(t, p.Op(), session.OpAdd)
	assert.Equal(t, len(c.Bookmarks()), 4)
	assert.Equal(t, c.Bookmarks()[0].URL, "https://go.dev")
	assert.DeepEqual(t, c.Bookmarks()[0].Tags, []string{"go", "lang"})
	assert.Assert(t, c.Busy())

	c.Settle(ctx, p)

	assert.Assert(t, !c.Busy())
	assert.Equal(t, len(rec.notices), 0)
	assert.Equal(t, c.Bookmarks()[0].ID, p.ID(), "local id stands after confirmation")
	assert.Equal(t, repo.GetAll(ctx)[0].ID, p.ID())
}

func TestAdd_FailureMatchesFreshFetch(t *testing.T) {
	c, store, repo, rec := newController(t)
	ctx := context.Background()
	store.FailInsert = errOffline

	p := c.Add(model.NewBookmarkParams{URL: "https://lost.example"})
	assert.Equal(t, len(c.Bookmarks()), 4)

	c.Settle(ctx, p)

	assert.DeepEqual(t, c.Bookmarks(), repo.GetAll(ctx))
	assert.Assert(t, c.Bookmarks().GetByID(p.ID()) == nil)
	assert.Equal(t, len(rec.notices), 1)
	assert.Equal(t, rec.notices[0].Message, session.MsgAddFailed)
	assert.Assert(t, repository.IsWriteError(rec.notices[0].Err))
}

func TestSetRead_FailureReverts(t *testing.T) {
	c, store, _, rec := newController(t)
	store.FailUpdate = errOffline
	before := c.Bookmarks()

	p := c.SetRead("1", true)
	assert.Assert(t, c.Bookmarks().GetByID("1").IsRead)

	c.Settle(context.Background(), p)

	assert.DeepEqual(t, c.Bookmarks(), before)
	assert.Equal(t, len(rec.notices), 1)
	assert.Equal(t, rec.notices[0].Message, session.MsgUpdateFailed)
	assert.Equal(t, rec.notices[0].ID, "1")
}

func TestToggleRead(t *testing.T) {
	c, _, repo, _ := newController(t)
	ctx := context.Background()

	p, ok := c.ToggleRead("2")
	assert.Assert(t, ok)
	c.Settle(ctx, p)
	assert.Assert(t, !c.Bookmarks().GetByID("2").IsRead)
	assert.Assert(t, !repo.GetAll(ctx).GetByID("2").IsRead)

	_, ok = c.ToggleRead("missing")
	assert.Assert(t, !ok)
}

func TestSetRead_Idempotent(t *testing.T) {
	c, _, _, _ := newController(t)
	ctx := context.Background()

	c.Settle(ctx, c.SetRead("1", true))
	once := c.Bookmarks()
	c.Settle(ctx, c.SetRead("1", true))

	assert.DeepEqual(t, c.Bookmarks(), once)
}

func TestDelete_FailureReverts(t *testing.T) {
	c, store, _, rec := newController(t)
	store.FailDelete = errOffline
	before := c.Bookmarks()

	p := c.Delete("2")
	assert.Equal(t, len(c.Bookmarks()), 2)

	c.Settle(context.Background(), p)

	assert.DeepEqual(t, c.Bookmarks(), before)
	assert.Check(t, is.Len(rec.notices, 1))
	assert.Equal(t, rec.notices[0].Message, session.MsgDeleteFailed)
}

func TestDelete_Success(t *testing.T) {
	c, _, repo, rec := newController(t)
	ctx := context.Background()

	c.Settle(ctx, c.Delete("2"))

	assert.Equal(t, len(c.Bookmarks()), 2)
	assert.Equal(t, len(repo.GetAll(ctx)), 2)
	assert.Equal(t, len(rec.notices), 0)
}

func TestStaleFailure_RefreshesInsteadOfReverting(t *testing.T) {
	store := seededStore()
	repo := &flakyRepo{Repository: repository.New(store, nil), fail: map[string]bool{"1": true}}
	rec := &recorder{}
	c := session.New(repo, rec, nil)
	ctx := context.Background()
	c.Load(ctx)

	first := c.SetRead("1", true)  // fails
	second := c.SetRead("3", true) // succeeds

	firstOut := first.Run(ctx)
	secondOut := second.Run(ctx)

	// The older failure must not roll back the newer change.
	next := c.Resolve(firstOut)
	assert.Assert(t, next == nil, "reload waits for outstanding writes")
	assert.Assert(t, c.Bookmarks().GetByID("3").IsRead)
	assert.Equal(t, len(rec.notices), 1)

	next = c.Resolve(secondOut)
	assert.Assert(t, next != nil, "reload issued once writes settle")
	assert.Equal(t, next.Op(), session.OpReload)

	assert.Assert(t, c.Resolve(next.Run(ctx)) == nil)
	assert.Assert(t, !c.Bookmarks().GetByID("1").IsRead)
	assert.Assert(t, c.Bookmarks().GetByID("3").IsRead)
	assert.DeepEqual(t, c.Bookmarks(), repo.GetAll(ctx))
	assert.Assert(t, !c.Busy())
}

func TestLatestFailure_RevertsWithOlderSuccess(t *testing.T) {
	store := seededStore()
	repo := &flakyRepo{Repository: repository.New(store, nil), fail: map[string]bool{"1": true}}
	c := session.New(repo, nil, nil)
	ctx := context.Background()
	c.Load(ctx)

	older := c.SetRead("3", true)  // succeeds
	latest := c.SetRead("1", true) // fails

	assert.Assert(t, c.Resolve(latest.Run(ctx)) == nil)
	// Snapshot of the latest action still carries the older change.
	assert.Assert(t, !c.Bookmarks().GetByID("1").IsRead)
	assert.Assert(t, c.Bookmarks().GetByID("3").IsRead)

	assert.Assert(t, c.Resolve(older.Run(ctx)) == nil)
	assert.DeepEqual(t, c.Bookmarks(), repo.GetAll(ctx))
}

func TestReload_OvertakenByAction(t *testing.T) {
	c, _, repo, _ := newController(t)
	ctx := context.Background()

	reload := c.Reload()
	reloadOut := reload.Run(ctx)

	write := c.Delete("3")
	assert.Assert(t, c.Resolve(reloadOut) == nil, "stale reload is dropped while a write is outstanding")
	assert.Assert(t, c.Bookmarks().GetByID("3") == nil, "optimistic delete still visible")

	next := c.Resolve(write.Run(ctx))
	assert.Assert(t, next != nil)
	c.Settle(ctx, *next)

	assert.DeepEqual(t, c.Bookmarks(), repo.GetAll(ctx))
	assert.Assert(t, !c.Busy())
}

func TestReload_ReadBeforeSettledWrite(t *testing.T) {
	c, store, repo, _ := newController(t)
	ctx := context.Background()

	write := c.SetRead("1", true)
	reload := c.Reload()

	// The read reaches the store before the write lands.
	reloadOut := reload.Run(ctx)
	assert.Assert(t, c.Resolve(write.Run(ctx)) == nil, "reload still outstanding")
	assert.Assert(t, storedRead(t, store, "1"))

	next := c.Resolve(reloadOut)
	assert.Assert(t, c.Bookmarks().GetByID("1").IsRead, "settled write stays visible")
	assert.Assert(t, next != nil, "fresh reload replaces the stale one")
	assert.Equal(t, next.Op(), session.OpReload)

	c.Settle(ctx, *next)
	assert.Assert(t, c.Bookmarks().GetByID("1").IsRead)
	assert.DeepEqual(t, c.Bookmarks(), repo.GetAll(ctx))
	assert.Assert(t, !c.Busy())
}

func storedRead(t *testing.T, store *storage.MemoryStorage, id string) bool {
	t.Helper()
	records, err := store.GetAll(context.Background())
	assert.NilError(t, err)
	for _, r := range records {
		if r.ID == id {
			return r.IsRead != nil && *r.IsRead
		}
	}
	t.Fatalf("record %s not stored", id)
	return false
}

func TestReload_Adopted(t *testing.T) {
	c, store, _, _ := newController(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, storage.Record{ID: "elsewhere", URL: "https://x", CreatedAt: int64(1)})
	assert.NilError(t, err)

	c.Settle(ctx, c.Reload())
	assert.Equal(t, c.Bookmarks()[0].ID, "elsewhere")
}

func TestViews(t *testing.T) {
	c, _, _, _ := newController(t)

	visible := c.Visible("css")
	assert.Equal(t, len(visible), 1)
	assert.Equal(t, visible[0].ID, "2")
	assert.Equal(t, len(c.Visible("")), 3)

	counts := c.TagCounts()
	assert.Assert(t, len(counts) > 0)
	assert.Equal(t, counts[0].Count, 1)
	assert.Equal(t, counts[0].Tag, "ai")
}

func TestStatus_Remote(t *testing.T) {
	c := session.New(remoteKindRepo{}, nil, nil)
	assert.Equal(t, c.Status(), "Database Connected")
}

type remoteKindRepo struct {
	session.Repository
}

func (remoteKindRepo) Kind() storage.Kind { return storage.KindRemote }

func (remoteKindRepo) Connected() bool { return true }
