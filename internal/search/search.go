// Package search finds bookmarks by fuzzy matching.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/tags"
)

// Result represents a fuzzy search match.
type Result struct {
	Bookmark model.Bookmark
	// MatchedIndexes are rune offsets into Bookmark.Title. Matches that
	// landed in the tags or URL are not listed.
	MatchedIndexes []int
	Score          int
}

// haystack implements fuzzy.Source: title, then tags, then URL.
type haystack []model.Bookmark

func (h haystack) String(i int) string {
	b := h[i]
	return b.Title + " " + strings.Join(b.Tags, " ") + " " + b.URL
}

func (h haystack) Len() int {
	return len(h)
}

// Bookmarks searches title, tags and URL using fuzzy matching.
// Results are sorted by match score, best first. A query of the form
// "#tag" lists the bookmarks carrying tag in collection order.
func Bookmarks(bookmarks []model.Bookmark, query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if strings.HasPrefix(query, "#") {
		tagged := tags.Filter(bookmarks, strings.ToLower(strings.TrimPrefix(query, "#")))
		results := make([]Result, len(tagged))
		for i, b := range tagged {
			results[i] = Result{Bookmark: b}
		}
		return results
	}

	source := haystack(bookmarks)
	matches := fuzzy.FindFrom(query, source)

	results := make([]Result, len(matches))
	for i, m := range matches {
		b := source[m.Index]
		results[i] = Result{
			Bookmark:       b,
			MatchedIndexes: titleIndexes(b.Title, m.Str, m.MatchedIndexes),
			Score:          m.Score,
		}
	}
	return results
}

// titleIndexes converts byte offsets in str to rune offsets within title.
func titleIndexes(title, str string, byteIndexes []int) []int {
	limit := len(title)
	var result []int
	for _, idx := range byteIndexes {
		if idx >= limit {
			break
		}
		result = append(result, utf8.RuneCountInString(str[:idx]))
	}
	return result
}
