// Package scraper acquires raw documents from external sources and turns
// them into corpus records.
package scraper

import (
	"context"
	"strings"
)

// Page is the extracted form of a fetched source: a display title and the
// plain-text body, before truncation.
type Page struct {
	Title string // empty when the source had no recognizable title
	Text  string
}

// Fetcher retrieves one source and extracts its page content.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*Page, error)
}

// GitHubScheme prefixes sources fetched from a GitHub repository instead of
// the open web, e.g. "github://owner/repo/notes/kenya.md".
const GitHubScheme = "github://"

// MultiFetcher dispatches between the web fetcher and the GitHub fetcher
// based on the source scheme.
type MultiFetcher struct {
	web    Fetcher
	github Fetcher
}

// NewMultiFetcher composes the two source backends. github may be nil, in
// which case github:// sources fail with an explanatory error.
func NewMultiFetcher(web, github Fetcher) *MultiFetcher {
	return &MultiFetcher{web: web, github: github}
}

func (m *MultiFetcher) Fetch(ctx context.Context, source string) (*Page, error) {
	if strings.HasPrefix(source, GitHubScheme) {
		if m.github == nil {
			return nil, errGitHubDisabled
		}
		return m.github.Fetch(ctx, source)
	}
	return m.web.Fetch(ctx, source)
}
