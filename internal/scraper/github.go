package scraper

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

var errGitHubDisabled = errors.New("github sources are not configured")

// GitHubFetcher ingests markdown documents kept in a GitHub repository,
// addressed as "github://owner/repo/path/to/file.md".
type GitHubFetcher struct {
	client *github.Client
}

// NewGitHubFetcher creates a GitHub-backed fetcher with rate limiting.
// If the GITHUB_TOKEN environment variable is set, the client is
// authenticated for higher rate limits. Secondary rate limits (abuse
// detection) are handled with automatic retry.
func NewGitHubFetcher(ctx context.Context) (*GitHubFetcher, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, err
	}

	ghClient := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &GitHubFetcher{client: ghClient}, nil
}

func (f *GitHubFetcher) Fetch(ctx context.Context, source string) (*Page, error) {
	owner, repo, path, err := parseGitHubSource(source)
	if err != nil {
		return nil, err
	}

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get content of %s: %w", source, err)
	}
	if fileContent == nil {
		return nil, fmt.Errorf("no file content returned for %s", source)
	}

	raw, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content of %s: %w", source, err)
	}

	title, text, err := extractMarkdown(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", source, err)
	}

	return &Page{Title: title, Text: text}, nil
}

// parseGitHubSource splits "github://owner/repo/path/to/file.md" into its
// parts.
func parseGitHubSource(source string) (owner, repo, path string, err error) {
	rest := strings.TrimPrefix(source, GitHubScheme)
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("malformed github source %q, want github://owner/repo/path", source)
	}
	return parts[0], parts[1], parts[2], nil
}
