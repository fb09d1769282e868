package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkdown(t *testing.T) {
	source := []byte(`# History of Kenya

Kenya gained independence in **1963**.

## Colonial era

The Mau Mau uprising began in 1952.

` + "```go\nfunc notProse() {}\n```" + `
`)

	title, body, err := extractMarkdown(source)
	require.NoError(t, err)

	assert.Equal(t, "History of Kenya", title)
	assert.Contains(t, body, "Kenya gained independence in 1963")
	assert.Contains(t, body, "The Mau Mau uprising began in 1952.")
	assert.NotContains(t, body, "notProse", "code blocks are not prose")
}

func TestExtractMarkdownNoHeading(t *testing.T) {
	title, body, err := extractMarkdown([]byte("just a paragraph of text"))
	require.NoError(t, err)

	assert.Empty(t, title)
	assert.Equal(t, "just a paragraph of text", body)
}

func TestParseGitHubSource(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		owner   string
		repo    string
		path    string
		wantErr bool
	}{
		{"nested path", "github://historia-ai/notes/docs/kenya.md", "historia-ai", "notes", "docs/kenya.md", false},
		{"top-level file", "github://owner/repo/README.md", "owner", "repo", "README.md", false},
		{"missing path", "github://owner/repo", "", "", "", true},
		{"empty owner", "github:///repo/file.md", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, path, err := parseGitHubSource(tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.path, path)
		})
	}
}
