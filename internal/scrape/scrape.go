// Package scrape fetches a web page and reduces it to the text an AI
// suggestion needs.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxChars = 15000

	maxBodyBytes = 5 << 20
	userAgent    = "Mozilla/5.0 (compatible; pile/1.0; +https://github.com/nikbrunner/pile)"
)

// Elements that never carry the page's real content.
var junkSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "footer", "header", "aside",
	".nav", ".footer", ".menu", ".sidebar", "#sidebar", ".ad", ".advertisement",
}

var (
	ErrNotHTTP    = errors.New("url is not http(s)")
	ErrBadStatus  = errors.New("unexpected status")
	ErrEmptyPage  = errors.New("empty page")
	stripPolicy   = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
)

// Page is the useful part of a fetched document.
type Page struct {
	Title           string
	MetaDescription string
	Content         string
}

// Fetcher downloads pages with a fixed upper bound on time.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxChars int
}

// NewFetcher creates a Fetcher. Zero values select the defaults.
func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Fetcher{
		client:   &http.Client{},
		timeout:  timeout,
		maxChars: maxChars,
	}
}

// Fetch downloads rawURL and parses it. Exceeding the timeout aborts the
// request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrNotHTTP
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return Parse(body, u, f.maxChars)
}

// Parse extracts title, meta description and body text from an HTML
// document. Content is whitespace-collapsed and cut to maxChars runes.
func Parse(body []byte, pageURL *url.URL, maxChars int) (*Page, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyPage
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := doc.Find("title").First().Text()
	if strings.TrimSpace(title) == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	desc := metaContent(doc, `meta[name="description"]`)
	if desc == "" {
		desc = metaContent(doc, `meta[property="og:description"]`)
	}

	page := &Page{
		Title:           cleanText(title),
		MetaDescription: cleanText(desc),
		Content:         truncate(collapse(mainText(body, pageURL, doc)), maxChars),
	}
	return page, nil
}

// mainText prefers the readability article and falls back to the body
// with junk removed.
func mainText(body []byte, pageURL *url.URL, doc *goquery.Document) string {
	if pageURL != nil {
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err == nil && strings.TrimSpace(article.TextContent) != "" {
			return article.TextContent
		}
	}

	doc.Find(strings.Join(junkSelectors, ", ")).Remove()
	return doc.Find("body").Text()
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// cleanText strips any markup that made it into a metadata value.
func cleanText(s string) string {
	return collapse(html.UnescapeString(stripPolicy.Sanitize(s)))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
