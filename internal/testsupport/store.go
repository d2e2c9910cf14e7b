package testsupport

import (
	"context"
	"testing"
	"time"

	"transcribr/internal/config"
	"transcribr/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job record for tests using the provided store.
func NewJob(t testing.TB, store *jobs.Store, videoPath, audioPath string) *jobs.Job {
	t.Helper()

	now := time.Now().UTC()
	job := &jobs.Job{
		ID:            jobs.NewID(),
		Status:        jobs.StatusQueued,
		CreatedAt:     now,
		UpdatedAt:     now,
		VideoFilename: "video.mp4",
		AudioFilename: "audio.wav",
		VideoPath:     videoPath,
		AudioPath:     audioPath,
	}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
