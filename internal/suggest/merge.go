package suggest

import "strings"

// Merge folds r into the form values: suggested tags are appended to the
// typed ones without duplicates, and the description is only filled in
// when it is still empty.
func Merge(tagsInput, description string, r Result) (string, string) {
	if len(r.Tags) > 0 {
		seen := make(map[string]bool)
		var merged []string
		for _, tag := range append(strings.Fields(tagsInput), r.Tags...) {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			merged = append(merged, tag)
		}
		tagsInput = strings.Join(merged, " ")
	}

	if r.SuggestedDescription != "" && strings.TrimSpace(description) == "" {
		description = r.SuggestedDescription
	}
	return tagsInput, description
}
