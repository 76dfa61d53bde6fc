package model_test

import (
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/pile/internal/model"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercases and dedupes", input: "Foo BAR foo", want: []string{"foo", "bar"}},
		{name: "collapses whitespace", input: "  go \t rust\n\ngo ", want: []string{"go", "rust"}},
		{name: "empty input", input: "", want: []string{}},
		{name: "only spaces", input: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.DeepEqual(t, model.ParseTags(tt.input), tt.want)
		})
	}
}

func TestNormalizeTags_NeverNil(t *testing.T) {
	got := model.NormalizeTags(nil)
	assert.Assert(t, got != nil)
	assert.Equal(t, len(got), 0)
}

func TestNormalizeTags_DropsEmpties(t *testing.T) {
	got := model.NormalizeTags([]string{"", " CSS ", "css", "design"})
	assert.DeepEqual(t, got, []string{"css", "design"})
}

func TestNewBookmark(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		URL:   "https://go.dev",
		Title: "Go",
		Tags:  []string{"Go", "go", "lang"},
	})

	assert.Assert(t, b.ID != "")
	assert.Assert(t, b.CreatedAt > 0)
	assert.Assert(t, !b.IsRead)
	assert.DeepEqual(t, b.Tags, []string{"go", "lang"})

	other := model.NewBookmark(model.NewBookmarkParams{URL: "https://go.dev"})
	assert.Assert(t, b.ID != other.ID, "ids must be unique")
	assert.Assert(t, other.Tags != nil)
}

func TestBookmark_JSONFieldNames(t *testing.T) {
	b := model.Bookmark{
		ID:        "b1",
		URL:       "https://example.com",
		Title:     "Example",
		Tags:      []string{"a"},
		CreatedAt: 1715421200000,
		IsRead:    true,
	}

	data, err := json.Marshal(b)
	assert.NilError(t, err)

	s := string(data)
	assert.Check(t, is.Contains(s, `"createdAt":1715421200000`))
	assert.Check(t, is.Contains(s, `"isRead":true`))
	assert.Check(t, is.Contains(s, `"description":""`))
}

func TestCollection_Prepend(t *testing.T) {
	c := model.Collection{
		{ID: "old", CreatedAt: 100},
	}
	// An older timestamp still goes to the front.
	updated := c.Prepend(model.Bookmark{ID: "new", CreatedAt: 1})

	assert.Equal(t, len(updated), 2)
	assert.Equal(t, updated[0].ID, "new")
	assert.Equal(t, len(c), 1, "receiver must not change")
}

func TestCollection_WithReadStatus(t *testing.T) {
	c := model.Collection{
		{ID: "a", IsRead: false},
		{ID: "b", IsRead: false},
	}

	once := c.WithReadStatus("a", true)
	twice := once.WithReadStatus("a", true)

	assert.DeepEqual(t, once, twice)
	assert.Assert(t, once[0].IsRead)
	assert.Assert(t, !once[1].IsRead)
	assert.Assert(t, !c[0].IsRead, "receiver must not change")

	unchanged := c.WithReadStatus("missing", true)
	assert.DeepEqual(t, unchanged, c)
}

func TestCollection_Without(t *testing.T) {
	c := model.Collection{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := c.Without("b")
	assert.Equal(t, len(got), 2)
	assert.Equal(t, got[0].ID, "a")
	assert.Equal(t, got[1].ID, "c")

	assert.DeepEqual(t, c.Without("missing"), c)
}

func TestCollection_GetByID(t *testing.T) {
	c := model.Collection{{ID: "a", Title: "A"}}

	found := c.GetByID("a")
	assert.Assert(t, found != nil)
	assert.Equal(t, found.Title, "A")

	assert.Assert(t, c.GetByID("nope") == nil)
	assert.Equal(t, c.IndexOf("nope"), -1)
}

func TestCollection_SortByCreatedDesc(t *testing.T) {
	c := model.Collection{
		{ID: "old", CreatedAt: 1},
		{ID: "new", CreatedAt: 3},
		{ID: "mid", CreatedAt: 2},
	}

	sorted := c.SortByCreatedDesc()
	assert.Equal(t, sorted[0].ID, "new")
	assert.Equal(t, sorted[1].ID, "mid")
	assert.Equal(t, sorted[2].ID, "old")
}

func TestCollection_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       model.Collection
		wantErr string
	}{
		{name: "valid", c: model.SeedBookmarks()},
		{name: "duplicate id", c: model.Collection{{ID: "a"}, {ID: "a"}}, wantErr: "duplicate bookmark id"},
		{name: "empty id", c: model.Collection{{URL: "https://x"}}, wantErr: "empty id"},
		{name: "duplicate tag", c: model.Collection{{ID: "a", Tags: []string{"x", "x"}}}, wantErr: "duplicate tag"},
		{name: "empty tag", c: model.Collection{{ID: "a", Tags: []string{""}}}, wantErr: "empty tag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr == "" {
				assert.NilError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSeedBookmarks_MostRecentFirst(t *testing.T) {
	seed := model.SeedBookmarks()
	assert.Equal(t, len(seed), 3)
	for i := 1; i < len(seed); i++ {
		assert.Assert(t, seed[i-1].CreatedAt >= seed[i].CreatedAt)
	}
}
