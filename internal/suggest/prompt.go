package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/dedent"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/scrape"
)

const (
	notAvailable       = "N/A"
	contentUnavailable = "CONTENT_UNAVAILABLE"
	maxExistingTags    = 50
)

var promptTemplate = dedent.Dedent(`
	You are a bookmarking assistant. Categorize a webpage strictly by its ACTUAL content.

	INPUT DATA:
	- User URL: %s
	- User Title: %s
	- User Description: %s
	- Scraped Title: %s
	- Scraped Meta Description: %s
	- Scraped Body Content (Truncated):
	"""
	%s
	"""
	%s
	INSTRUCTIONS:
	1. TAGS: Generate 5-7 lowercase, single-word tags.
	   - Prefer technical specificity (e.g. 'postgres' rather than 'database').
	   - If content is available, extract keywords from it.
	   - Reuse an existing tag when it fits.

	2. DESCRIPTION:
	   - If the scraped meta description is available and good, use it (or a slightly shortened version).
	   - Otherwise, if body content is available, summarize it in one sentence.
	   - If the content is CONTENT_UNAVAILABLE, do not guess what the page is about. Return an empty string for the description.

	OUTPUT FORMAT: JSON {"tags": [...], "suggestedDescription": "..."}
`)

// BuildPrompt renders the instructions for req. page may be nil when the
// content could not be fetched.
func BuildPrompt(req Request, page *scrape.Page) string {
	scrapedTitle, scrapedDesc, content := notAvailable, notAvailable, contentUnavailable
	if page != nil {
		scrapedTitle = orDefault(page.Title, notAvailable)
		scrapedDesc = orDefault(page.MetaDescription, notAvailable)
		content = orDefault(page.Content, contentUnavailable)
	}

	return strings.TrimSpace(fmt.Sprintf(promptTemplate,
		req.URL,
		orDefault(req.Title, notAvailable),
		orDefault(req.Description, notAvailable),
		scrapedTitle,
		scrapedDesc,
		content,
		existingTagsLine(req.ExistingTags),
	))
}

func existingTagsLine(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	if len(tags) > maxExistingTags {
		tags = tags[:maxExistingTags]
	}
	return "\nExisting tags: " + strings.Join(tags, ", ") + "\n"
}

// ExistingTags returns the distinct tags of a collection, most used first.
func ExistingTags(c model.Collection) []string {
	counts := make(map[string]int)
	for _, b := range c {
		for _, tag := range b.Tags {
			counts[tag]++
		}
	}

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
