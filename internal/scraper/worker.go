package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/historia-ai/historia/internal/embedding"
	"github.com/historia-ai/historia/internal/storage"
)

var errEmptyContent = errors.New("no text content extracted")

// FallbackTitle is stored when extraction finds no title on a page.
const FallbackTitle = "Unknown"

// DefaultLanguage tags scraped content; the corpus sources are English.
const DefaultLanguage = "en"

// DefaultSourceDelay is the courtesy pause between consecutive sources.
const DefaultSourceDelay = time.Second

// DefaultSources is the built-in corpus source list, overridable through
// configuration.
var DefaultSources = []string{
	"https://www.britannica.com/place/Kenya",
	"https://en.wikipedia.org/wiki/History_of_Kenya",
}

// Report summarizes one ingestion batch. Ingest never fails as a whole; a
// bad source lands in Failed and the batch continues.
type Report struct {
	Total     int
	Succeeded int
	Failed    []FailedSource
	Duration  time.Duration
}

// FailedSource records why a single source could not be ingested.
type FailedSource struct {
	Source string
	Reason string
}

// Worker pulls raw pages from external sources, extracts and truncates their
// text, embeds them, and persists one document per source.
type Worker struct {
	fetcher  Fetcher
	embedder embedding.Embedder
	store    storage.Store
	delay    time.Duration
	logger   *slog.Logger
}

// NewWorker creates an ingestion worker. A negative delay disables the
// courtesy pause (used by tests); zero means DefaultSourceDelay.
func NewWorker(fetcher Fetcher, embedder embedding.Embedder, store storage.Store, delay time.Duration, logger *slog.Logger) *Worker {
	if delay == 0 {
		delay = DefaultSourceDelay
	}
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		fetcher:  fetcher,
		embedder: embedder,
		store:    store,
		delay:    delay,
		logger:   logger,
	}
}

// Ingest processes each source independently and returns a per-source
// report. A fetch, parse, or store failure for one source never aborts the
// batch. Re-ingesting a source updates its existing document.
func (w *Worker) Ingest(ctx context.Context, sources []string) *Report {
	start := time.Now()
	report := &Report{Total: len(sources)}

	w.logger.Info("starting ingestion", "sources", len(sources))

	for i, source := range sources {
		if err := w.ingestOne(ctx, source); err != nil {
			w.logger.Warn("failed to ingest source", "source", source, "error", err)
			report.Failed = append(report.Failed, FailedSource{
				Source: source,
				Reason: err.Error(),
			})
		} else {
			report.Succeeded++
		}

		if i == len(sources)-1 || w.delay == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			for _, rest := range sources[i+1:] {
				report.Failed = append(report.Failed, FailedSource{
					Source: rest,
					Reason: ctx.Err().Error(),
				})
			}
			report.Duration = time.Since(start)
			return report
		case <-time.After(w.delay):
		}
	}

	report.Duration = time.Since(start)
	w.logger.Info("ingestion complete",
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"duration", report.Duration,
	)
	return report
}

// ingestOne handles the full pipeline for a single source.
func (w *Worker) ingestOne(ctx context.Context, source string) error {
	page, err := w.fetcher.Fetch(ctx, source)
	if err != nil {
		return err
	}

	content := truncate(page.Text, storage.MaxContentLength)
	if content == "" {
		return errEmptyContent
	}

	title := page.Title
	if title == "" {
		title = FallbackTitle
	}

	doc := &storage.Document{
		Title:    title,
		Content:  content,
		Source:   source,
		Language: DefaultLanguage,
	}

	// Embed at creation when possible; on failure the document is still
	// persisted and the backfill worker picks it up on its next run.
	vector, err := w.embedder.Embed(ctx, content)
	if err != nil {
		w.logger.Warn("embedding failed, deferring to backfill", "source", source, "error", err)
	} else {
		doc.Embedding = vector
	}

	if _, err := w.store.UpsertBySource(ctx, doc); err != nil {
		return err
	}

	w.logger.Info("ingested source", "source", source, "title", title, "embedded", doc.Embedding != nil)
	return nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
