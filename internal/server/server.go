package server

import (
	"log/slog"
	"net/http"
)

// Config holds the handler dependencies.
type Config struct {
	Searcher   Searcher
	Ingester   Ingester
	Backfiller Backfiller
	Responder  Responder
	Health     HealthChecker
	Sources    []string
	Logger     *slog.Logger
}

// NewMux assembles the API surface on a standard ServeMux.
func NewMux(cfg *Config) *http.ServeMux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", NewSearchHandler(cfg.Searcher, logger))
	mux.HandleFunc("/ingest", NewIngestHandler(cfg.Ingester, cfg.Backfiller, cfg.Sources, logger))
	mux.HandleFunc("/chat", NewChatHandler(cfg.Responder, logger))
	mux.HandleFunc("/health", NewHealthHandler(cfg.Health))
	return mux
}
