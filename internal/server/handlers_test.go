package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/historia-ai/historia/internal/chat"
	"github.com/historia-ai/historia/internal/scraper"
	"github.com/historia-ai/historia/internal/storage"
)

type stubSearcher struct {
	results []storage.DocumentView
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, k int) ([]storage.DocumentView, error) {
	return s.results, s.err
}

type stubIngester struct {
	report *scraper.Report
}

func (s *stubIngester) Ingest(ctx context.Context, sources []string) *scraper.Report {
	return s.report
}

type stubBackfiller struct {
	updated int
	err     error
}

func (s *stubBackfiller) Run(ctx context.Context) (int, error) {
	return s.updated, s.err
}

type stubResponder struct {
	answer  string
	err     error
	enabled bool
}

func (s *stubResponder) Enabled() bool { return s.enabled }

func (s *stubResponder) Respond(ctx context.Context, message, language string) (string, error) {
	return s.answer, s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSearchHandlerSuccess(t *testing.T) {
	searcher := &stubSearcher{results: []storage.DocumentView{
		{Title: "Independence", Content: "Kenya gained independence in 1963.", Source: "https://example.org"},
	}}
	handler := NewSearchHandler(searcher, slog.Default())

	rec := postJSON(t, handler, `{"query": "Kenya independence", "language": "en"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Independence", resp.Results[0].Title)
}

func TestSearchHandlerEmptyResultsIsNotAnError(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{}, slog.Default())

	rec := postJSON(t, handler, `{"query": "unmatched"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results": []}`, rec.Body.String())
}

func TestSearchHandlerFailureIsServerError(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("nearest lookup: store unreachable")}
	handler := NewSearchHandler(searcher, slog.Default())

	rec := postJSON(t, handler, `{"query": "Kenya"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "store unreachable")
}

func TestSearchHandlerRejectsBadBody(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{}, slog.Default())

	rec := postJSON(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerMethodNotAllowed(t *testing.T) {
	handler := NewSearchHandler(&stubSearcher{}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestHandler(t *testing.T) {
	ingester := &stubIngester{report: &scraper.Report{Total: 2, Succeeded: 2}}
	backfiller := &stubBackfiller{updated: 3}
	handler := NewIngestHandler(ingester, backfiller, []string{"a", "b"}, slog.Default())

	rec := postJSON(t, handler, ``)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "2/2")
	assert.Contains(t, resp.Message, "3")
}

func TestIngestHandlerBackfillFailure(t *testing.T) {
	ingester := &stubIngester{report: &scraper.Report{Total: 1, Succeeded: 1}}
	backfiller := &stubBackfiller{err: errors.New("scan failed")}
	handler := NewIngestHandler(ingester, backfiller, []string{"a"}, slog.Default())

	rec := postJSON(t, handler, ``)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChatHandlerSuccess(t *testing.T) {
	responder := &stubResponder{answer: "Kenya became independent in 1963.", enabled: true}
	handler := NewChatHandler(responder, slog.Default())

	rec := postJSON(t, handler, `{"message": "When did Kenya become independent?", "language": "en"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Kenya became independent in 1963.", resp.Response)
}

func TestChatHandlerDisabled(t *testing.T) {
	responder := &stubResponder{err: chat.ErrDisabled}
	handler := NewChatHandler(responder, slog.Default())

	rec := postJSON(t, handler, `{"message": "hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubHealth struct{ err error }

func (s stubHealth) Health(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(stubHealth{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Store)
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	handler := NewHealthHandler(stubHealth{err: errors.New("unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
}
