package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebFetcherExtractsTitleAndText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>
<head>
  <title>  History of Kenya  </title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <h1>History of Kenya</h1>
  <p>Kenya gained
     independence in 1963.</p>
</body>
</html>`))
	}))
	defer ts.Close()

	fetcher := NewWebFetcher(0)
	page, err := fetcher.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "History of Kenya", page.Title)
	assert.Contains(t, page.Text, "Kenya gained independence in 1963.")
	assert.NotContains(t, page.Text, "color: red", "style content must be skipped")
	assert.NotContains(t, page.Text, "tracking", "script content must be skipped")
}

func TestWebFetcherMissingTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>untitled page</p></body></html>`))
	}))
	defer ts.Close()

	fetcher := NewWebFetcher(0)
	page, err := fetcher.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Empty(t, page.Title)
	assert.Contains(t, page.Text, "untitled page")
}

func TestWebFetcherHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	fetcher := NewWebFetcher(0)
	_, err := fetcher.Fetch(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestWebFetcherUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // Shut down before fetching.

	fetcher := NewWebFetcher(0)
	_, err := fetcher.Fetch(context.Background(), ts.URL)
	assert.Error(t, err)
}
