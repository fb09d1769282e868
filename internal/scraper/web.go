package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultFetchTimeout bounds a single page download.
const DefaultFetchTimeout = 15 * time.Second

const userAgent = "historia-bot/1.0 (+https://github.com/historia-ai/historia)"

// WebFetcher downloads a page over HTTP and extracts its title and visible
// text.
type WebFetcher struct {
	client *http.Client
}

// NewWebFetcher creates a web fetcher with a bounded request timeout.
// A timeout of 0 uses DefaultFetchTimeout.
func NewWebFetcher(timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &WebFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *WebFetcher) Fetch(ctx context.Context, source string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	return &Page{
		Title: extractTitle(root),
		Text:  extractText(root),
	}, nil
}

// extractTitle returns the content of the first <title> element, or "".
func extractTitle(root *html.Node) string {
	var title string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			title = strings.TrimSpace(sb.String())
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(root)
	return title
}

// extractText flattens the document's text nodes into a single
// whitespace-normalized string, skipping non-content elements.
func extractText(root *html.Node) string {
	skip := map[string]bool{
		"script":   true,
		"style":    true,
		"noscript": true,
		"title":    true,
		"head":     true,
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(sb.String()), " ")
}
