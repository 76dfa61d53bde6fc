package model

import "time"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CreatedAt   int64    `json:"createdAt"` // epoch milliseconds
	IsRead      bool     `json:"isRead"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}

// NewBookmark creates an unread Bookmark with a generated UUID and the
// current time as its creation instant.
func NewBookmark(params NewBookmarkParams) Bookmark {
	return Bookmark{
		ID:          GenerateUUID(),
		URL:         params.URL,
		Title:       params.Title,
		Description: params.Description,
		Tags:        NormalizeTags(params.Tags),
		CreatedAt:   time.Now().UnixMilli(),
		IsRead:      false,
	}
}

// Created returns CreatedAt as a time.Time.
func (b Bookmark) Created() time.Time {
	return time.UnixMilli(b.CreatedAt)
}

// HasTag reports whether the bookmark carries tag.
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
