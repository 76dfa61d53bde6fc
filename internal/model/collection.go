package model

import (
	"fmt"
	"sort"
)

// Collection is an ordered list of bookmarks, most recent first.
//
// Every method returns a new Collection; the receiver is never modified, so
// a Collection can be kept as a snapshot.
type Collection []Bookmark

// GetByID finds a bookmark by ID, returns nil if not found.
func (c Collection) GetByID(id string) *Bookmark {
	for i := range c {
		if c[i].ID == id {
			b := c[i]
			return &b
		}
	}
	return nil
}

// IndexOf returns the position of the bookmark with id, or -1.
func (c Collection) IndexOf(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Prepend inserts b at the front regardless of its CreatedAt.
func (c Collection) Prepend(b Bookmark) Collection {
	result := make(Collection, 0, len(c)+1)
	result = append(result, b)
	return append(result, c...)
}

// WithReadStatus returns the collection with the read flag of id replaced.
// Unknown ids leave the collection unchanged.
func (c Collection) WithReadStatus(id string, isRead bool) Collection {
	result := make(Collection, len(c))
	copy(result, c)
	for i := range result {
		if result[i].ID == id {
			result[i].IsRead = isRead
		}
	}
	return result
}

// Without returns the collection minus the bookmark with id.
func (c Collection) Without(id string) Collection {
	result := make(Collection, 0, len(c))
	for _, b := range c {
		if b.ID != id {
			result = append(result, b)
		}
	}
	return result
}

// SortByCreatedDesc orders by CreatedAt descending. Ties keep their order.
func (c Collection) SortByCreatedDesc() Collection {
	result := make(Collection, len(c))
	copy(result, c)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})
	return result
}

// Validate checks that ids are unique and non-empty and that every tag list
// is normalized.
func (c Collection) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, b := range c {
		if b.ID == "" {
			return fmt.Errorf("bookmark %q has an empty id", b.URL)
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate bookmark id %q", b.ID)
		}
		seen[b.ID] = true

		tagSeen := make(map[string]bool, len(b.Tags))
		for _, tag := range b.Tags {
			if tag == "" {
				return fmt.Errorf("bookmark %q has an empty tag", b.ID)
			}
			if tagSeen[tag] {
				return fmt.Errorf("bookmark %q has duplicate tag %q", b.ID, tag)
			}
			tagSeen[tag] = true
		}
	}
	return nil
}
