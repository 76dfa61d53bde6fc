// Package importer reads Netscape bookmark files as exported by browsers,
// Pinboard and Delicious.
package importer

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/pile/internal/model"
)

// Options controls how the file maps onto flat, tagged bookmarks.
type Options struct {
	// FolderTags adds the names of enclosing folders as tags.
	FolderTags bool
	// Now stamps bookmarks without ADD_DATE. Defaults to time.Now.
	Now func() time.Time
}

// ParseHTMLBookmarks parses Netscape bookmark HTML.
// Bookmarks are returned most recent first. TAGS attributes (comma
// separated) and DD descriptions are kept; folders become tags when
// opts.FolderTags is set.
func ParseHTMLBookmarks(r io.Reader, opts Options) ([]model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var bookmarks []model.Bookmark

	var folderStack []string // tag form of each open folder
	pendingFolder := ""      // folder waiting to be pushed on next DL
	last := -1               // bookmark a following DD describes

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pendingFolder = folderTag(getTextContent(n))
				last = -1
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				createdAt := opts.Now().UnixMilli()
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						createdAt = time.Unix(ts, 0).UnixMilli()
					}
				}

				var tags []string
				if opts.FolderTags {
					tags = append(tags, folderStack...)
				}
				tags = append(tags, strings.Split(getAttr(n, "tags"), ",")...)

				bookmarks = append(bookmarks, model.Bookmark{
					ID:        model.GenerateUUID(),
					URL:       href,
					Title:     title,
					Tags:      model.NormalizeTags(splitTags(tags)),
					CreatedAt: createdAt,
					IsRead:    getAttr(n, "toread") == "0",
				})
				last = len(bookmarks) - 1
				return

			case "dd":
				// A DD may wrap the DL of a folder, so only direct text counts.
				if last >= 0 && bookmarks[last].Description == "" {
					bookmarks[last].Description = ownText(n)
				}
				last = -1

			case "dl":
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}
				last = -1

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				last = -1
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	result := model.Collection(bookmarks).SortByCreatedDesc()
	return result, nil
}

// Merge returns the bookmarks in imported whose URL is not already in
// existing (or earlier in imported), and how many were skipped.
func Merge(existing, imported []model.Bookmark) ([]model.Bookmark, int) {
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.URL] = true
	}

	var added []model.Bookmark
	skipped := 0
	for _, b := range imported {
		if seen[b.URL] {
			skipped++
			continue
		}
		seen[b.URL] = true
		added = append(added, b)
	}
	return added, skipped
}

// OldestFirst returns bookmarks sorted by CreatedAt ascending, the order in
// which to add them so the newest ends up in front.
func OldestFirst(bookmarks []model.Bookmark) []model.Bookmark {
	result := append([]model.Bookmark{}, bookmarks...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})
	return result
}

// folderTag turns "Web Dev" into "web-dev".
func folderTag(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// splitTags splits each entry on whitespace; tags are single tokens.
func splitTags(raw []string) []string {
	var result []string
	for _, t := range raw {
		result = append(result, strings.Fields(t)...)
	}
	return result
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// ownText is the text of n without nested lists.
func ownText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, "dl") {
			continue
		}
		if t := getTextContent(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
