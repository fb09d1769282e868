package backfill

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/historia-ai/historia/internal/storage"
)

func TestSchedulerRunsWorkerOnInterval(t *testing.T) {
	store := storage.NewMemoryStore(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := store.Insert(ctx, &storage.Document{Content: "pending", Source: "a"})
	require.NoError(t, err)

	worker := NewWorker(store, &countingEmbedder{}, slog.Default())
	scheduler := NewScheduler(worker, 10*time.Millisecond, slog.Default())

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	// Wait for at least one tick to backfill the pending document.
	assert.Eventually(t, func() bool {
		pending, err := store.ScanMissingEmbeddings(context.Background())
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}

func TestSchedulerStopsImmediatelyOnCancel(t *testing.T) {
	worker := NewWorker(storage.NewMemoryStore(4), &countingEmbedder{}, slog.Default())
	scheduler := NewScheduler(worker, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe cancelled context")
	}
}
