package search

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/pile/internal/model"
)

func sample() []model.Bookmark {
	return []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", Tags: []string{"code"}},
		{ID: "b2", Title: "GitLab", URL: "https://gitlab.com", Tags: []string{"code", "ci"}},
		{ID: "b3", Title: "TanStack Router", URL: "https://tanstack.com/router", Tags: []string{"react"}},
		{ID: "b4", Title: "Café Notes", URL: "https://example.com/cafe"},
	}
}

func TestBookmarks_EmptyQuery(t *testing.T) {
	assert.Equal(t, len(Bookmarks(sample(), "")), 0)
	assert.Equal(t, len(Bookmarks(sample(), "   ")), 0)
}

func TestBookmarks_ExactMatch(t *testing.T) {
	results := Bookmarks(sample(), "GitHub")
	assert.Assert(t, len(results) >= 1)
	assert.Equal(t, results[0].Bookmark.ID, "b1")
	assert.DeepEqual(t, results[0].MatchedIndexes, []int{0, 1, 2, 3, 4, 5})
}

func TestBookmarks_FuzzyMatch(t *testing.T) {
	results := Bookmarks(sample(), "tsr")
	assert.Assert(t, len(results) >= 1)
	assert.Equal(t, results[0].Bookmark.ID, "b3")
}

func TestBookmarks_MatchesTags(t *testing.T) {
	results := Bookmarks(sample(), "react")
	assert.Equal(t, len(results), 1)
	assert.Equal(t, results[0].Bookmark.ID, "b3")
}

func TestBookmarks_NoMatch(t *testing.T) {
	assert.Equal(t, len(Bookmarks(sample(), "zzzzz")), 0)
}

func TestBookmarks_TagQuery(t *testing.T) {
	results := Bookmarks(sample(), "#CODE")
	assert.Equal(t, len(results), 2)
	assert.Equal(t, results[0].Bookmark.ID, "b1")
	assert.Equal(t, results[1].Bookmark.ID, "b2")
	assert.Assert(t, results[0].MatchedIndexes == nil)
}

func TestTitleIndexes_Runes(t *testing.T) {
	title := "Café Notes"
	str := title + " " + "https://example.com/cafe"
	// "N" sits after the two-byte "é".
	n := len("Café ")
	got := titleIndexes(title, str, []int{0, n, len(title) + 2})
	assert.DeepEqual(t, got, []int{0, 5})
}
