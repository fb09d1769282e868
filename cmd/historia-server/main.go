// Package main provides the Historia API server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/historia-ai/historia/internal/backfill"
	"github.com/historia-ai/historia/internal/chat"
	"github.com/historia-ai/historia/internal/embedding"
	"github.com/historia-ai/historia/internal/retrieval"
	"github.com/historia-ai/historia/internal/scraper"
	"github.com/historia-ai/historia/internal/server"
	"github.com/historia-ai/historia/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger := slog.Default()

	// Embedder and chat collaborator. A missing API key degrades to the
	// local embedder and a disabled /chat, it never blocks startup.
	var embedder embedding.Embedder
	responder := chat.NewResponder(nil)
	if os.Getenv("OPENAI_API_KEY") != "" {
		client, err := embedding.NewClient()
		if err != nil {
			log.Fatalf("failed to create embedding client: %v", err)
		}
		embedder = embedding.NewOpenAIEmbedder(client)
		responder = chat.NewResponder(client.Client())
	} else {
		log.Println("Warning: OPENAI_API_KEY not set. Chat functionality will not work.")
		embedder = embedding.NewLocalEmbedder()
	}

	// Content store
	store, err := newStore(embedder.Dimension())
	if err != nil {
		log.Fatalf("failed to initialize content store: %v", err)
	}
	defer store.Close()

	// Source fetchers
	webFetcher := scraper.NewWebFetcher(0)
	githubFetcher, err := scraper.NewGitHubFetcher(ctx)
	if err != nil {
		log.Fatalf("failed to create github fetcher: %v", err)
	}
	fetcher := scraper.NewMultiFetcher(webFetcher, githubFetcher)

	sources := sourceList()

	// Pipeline components
	ingester := scraper.NewWorker(fetcher, embedder, store, 0, logger)
	backfiller := backfill.NewWorker(store, embedder, logger)
	searcher := retrieval.NewService(store, embedder, logger)

	// Initial ingestion and backfill pass before serving traffic.
	report := ingester.Ingest(ctx, sources)
	logger.Info("startup ingestion finished", "succeeded", report.Succeeded, "failed", len(report.Failed))
	if updated, err := backfiller.Run(ctx); err != nil {
		logger.Error("startup backfill failed", "error", err)
	} else {
		logger.Info("startup backfill finished", "updated", updated)
	}

	// Recurring daily backfill in the background.
	interval := getEnvDuration("BACKFILL_INTERVAL", backfill.DefaultInterval)
	scheduler := backfill.NewScheduler(backfiller, interval, logger)
	go scheduler.Run(ctx)

	mux := server.NewMux(&server.Config{
		Searcher:   searcher,
		Ingester:   ingester,
		Backfiller: backfiller,
		Responder:  responder,
		Health:     store,
		Sources:    sources,
		Logger:     logger,
	})

	addr := "0.0.0.0:" + getEnv("PORT", "8000")
	httpServer := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting HTTP server on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// newStore builds the configured store backend. STORE=memory runs without a
// Qdrant instance, useful for local development.
func newStore(dimension int) (storage.Store, error) {
	if getEnv("STORE", "qdrant") == "memory" {
		return storage.NewMemoryStore(dimension), nil
	}

	store, err := storage.NewQdrantStore(
		getEnv("QDRANT_HOST", "localhost"),
		getEnvInt("QDRANT_PORT", 6334),
		dimension,
	)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureCollection(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// sourceList returns the configured corpus sources, comma separated in
// HISTORIA_SOURCES, falling back to the built-in list.
func sourceList() []string {
	raw := os.Getenv("HISTORIA_SOURCES")
	if raw == "" {
		return scraper.DefaultSources
	}
	var sources []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
