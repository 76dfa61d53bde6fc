package model

import "strings"

// TagCount is the number of bookmarks carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ParseTags splits free-form tag input on whitespace.
// "Foo BAR foo" becomes ["foo", "bar"].
func ParseTags(input string) []string {
	return NormalizeTags(strings.Fields(input))
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates.
// First occurrence order is preserved. Never returns nil.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

// FormatTags joins tags back into the space separated input form.
func FormatTags(tags []string) string {
	return strings.Join(tags, " ")
}
