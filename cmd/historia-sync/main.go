// Package main provides the operational CLI for the Historia corpus.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/historia-ai/historia/internal/backfill"
	"github.com/historia-ai/historia/internal/embedding"
	"github.com/historia-ai/historia/internal/scraper"
	"github.com/historia-ai/historia/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "historia-sync",
	Short: "Historia corpus maintenance tool",
	Long:  "CLI tool for ingesting sources and backfilling embeddings in the Historia content store",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest all configured sources and backfill embeddings",
	Long: `Fetches every configured source, upserts one document per source,
then embeds any document still missing a vector.

Environment variables:
  QDRANT_HOST      Qdrant hostname (default: localhost)
  QDRANT_PORT      Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY   OpenAI API key for embeddings (optional; local embedder otherwise)
  HISTORIA_SOURCES Comma-separated source list (optional)
  GITHUB_TOKEN     GitHub token for github:// sources (optional)`,
	RunE: runSync,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed documents that are missing a vector",
	RunE:  runBackfill,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(backfillCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	store, embedder, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	webFetcher := scraper.NewWebFetcher(0)
	githubFetcher, err := scraper.NewGitHubFetcher(ctx)
	if err != nil {
		return fmt.Errorf("failed to create github fetcher: %w", err)
	}
	fetcher := scraper.NewMultiFetcher(webFetcher, githubFetcher)

	worker := scraper.NewWorker(fetcher, embedder, store, 0, slog.Default())

	sources := sourceList()
	fmt.Printf("Ingesting %d sources...\n", len(sources))

	report := worker.Ingest(ctx, sources)

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Sources: %d/%d\n", report.Succeeded, report.Total)
	fmt.Printf("  Duration: %s\n", report.Duration.Round(time.Second))

	if len(report.Failed) > 0 {
		fmt.Println()
		fmt.Println("Failed sources:")
		for _, failed := range report.Failed {
			fmt.Printf("  - %s: %s\n", failed.Source, failed.Reason)
		}
	}

	fmt.Println()
	if err := doBackfill(ctx, store, embedder); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, embedder, err := setup(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return doBackfill(ctx, store, embedder)
}

func doBackfill(ctx context.Context, store storage.Store, embedder embedding.Embedder) error {
	worker := backfill.NewWorker(store, embedder, slog.Default())

	updated, err := worker.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Printf("Backfilled %d documents\n", updated)
	return nil
}

// setup connects to Qdrant and picks the embedder, remote when a key is
// configured, local otherwise.
func setup(ctx context.Context) (storage.Store, embedding.Embedder, error) {
	var embedder embedding.Embedder
	if os.Getenv("OPENAI_API_KEY") != "" {
		client, err := embedding.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
		}
		embedder = embedding.NewOpenAIEmbedder(client)
	} else {
		fmt.Println("OPENAI_API_KEY not set, using local embedder")
		embedder = embedding.NewLocalEmbedder()
	}

	host := getEnv("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)

	fmt.Printf("Connecting to Qdrant at %s:%d...\n", host, port)
	store, err := storage.NewQdrantStore(host, port, embedder.Dimension())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	if err := store.EnsureCollection(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return store, embedder, nil
}

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
