// Package exporter writes bookmarks as a Netscape bookmark file that
// browsers and Pinboard can import.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/pile/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/pile-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("pile-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders bookmarks in the order given. Tags go to the TAGS
// attribute, unread bookmarks carry TOREAD="1" and descriptions follow in
// a DD element.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, bm := range bookmarks {
		writeBookmark(&b, bm)
	}

	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmark(b *strings.Builder, bm model.Bookmark) {
	const prefix = "    "

	toRead := "0"
	if !bm.IsRead {
		toRead = "1"
	}

	fmt.Fprintf(b,
		"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" TAGS=\"%s\" TOREAD=\"%s\">%s</A>\n",
		prefix,
		html.EscapeString(bm.URL),
		bm.CreatedAt/1000,
		html.EscapeString(strings.Join(bm.Tags, ",")),
		toRead,
		html.EscapeString(bm.Title),
	)
	if bm.Description != "" {
		fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(bm.Description))
	}
}
