// Package tags derives the tag cloud from a collection.
package tags

import (
	"sort"

	"github.com/nikbrunner/pile/internal/model"
)

// Size is the display weight of a tag in the cloud.
type Size int

const (
	Small Size = iota
	Medium
	Large
)

func (s Size) String() string {
	switch s {
	case Large:
		return "large"
	case Medium:
		return "medium"
	default:
		return "small"
	}
}

// Aggregate counts each tag across bookmarks.
// Sorted by count descending, then tag ascending.
func Aggregate(bookmarks []model.Bookmark) []model.TagCount {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		for _, tag := range b.Tags {
			counts[tag]++
		}
	}

	result := make([]model.TagCount, 0, len(counts))
	for tag, n := range counts {
		result = append(result, model.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	return result
}

// Filter returns the bookmarks carrying tag, in order.
// An empty tag returns bookmarks unchanged.
func Filter(bookmarks []model.Bookmark, tag string) []model.Bookmark {
	if tag == "" {
		return bookmarks
	}
	result := make([]model.Bookmark, 0)
	for _, b := range bookmarks {
		if b.HasTag(tag) {
			result = append(result, b)
		}
	}
	return result
}

// SizeOf maps a tag count to its cloud size.
func SizeOf(count int) Size {
	switch {
	case count > 3:
		return Large
	case count > 1:
		return Medium
	default:
		return Small
	}
}
