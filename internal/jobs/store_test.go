package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"transcribr/internal/jobs"
	"transcribr/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := &jobs.Job{
		VideoFilename: "lecture.mp4",
		AudioFilename: "lecture.wav",
		VideoPath:     "/tmp/lecture.mp4",
		AudioPath:     "/tmp/lecture.wav",
	}
	if err := store.Create(ctx, job); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if job.Status != jobs.StatusQueued {
		t.Fatalf("expected queued default, got %s", job.Status)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected a job record")
	}
	if fetched.VideoFilename != "lecture.mp4" || fetched.Status != jobs.StatusQueued {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestGetByIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job, err := store.GetByID(context.Background(), "nothere1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %#v", job)
	}
}

func TestUpdatePersistsArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "/tmp/v.mp4", "/tmp/a.wav")
	job.Status = jobs.StatusProcessing
	job.TranscriptPath = "/jobs/x/transcription.txt"
	job.Screenshots = []jobs.Screenshot{
		{Filename: "screenshot_001_00m00s.jpg", Seconds: 0},
		{Filename: "screenshot_002_00m30s.jpg", Seconds: 30},
	}
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != jobs.StatusProcessing {
		t.Errorf("status = %s, want processing", fetched.Status)
	}
	if len(fetched.Screenshots) != 2 || fetched.Screenshots[1].Seconds != 30 {
		t.Errorf("screenshots did not round-trip: %#v", fetched.Screenshots)
	}
	if fetched.TranscriptPath != "/jobs/x/transcription.txt" {
		t.Errorf("transcript path = %q", fetched.TranscriptPath)
	}
}

func TestUpdateRejectsStatusRegression(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "", "")
	job.Status = jobs.StatusComplete
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update to complete failed: %v", err)
	}

	job.Status = jobs.StatusProcessing
	err := store.Update(ctx, job)
	if !errors.Is(err, jobs.ErrStatusRegression) {
		t.Fatalf("expected ErrStatusRegression, got %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != jobs.StatusComplete {
		t.Errorf("terminal status was overwritten: %s", fetched.Status)
	}
}

func TestClaimNextTakesOldestQueued(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	older := &jobs.Job{CreatedAt: time.Now().UTC().Add(-time.Minute)}
	if err := store.Create(ctx, older); err != nil {
		t.Fatalf("Create older failed: %v", err)
	}
	newer := &jobs.Job{}
	if err := store.Create(ctx, newer); err != nil {
		t.Fatalf("Create newer failed: %v", err)
	}

	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if claimed == nil || claimed.ID != older.ID {
		t.Fatalf("expected oldest job claimed, got %#v", claimed)
	}
	if claimed.Status != jobs.StatusProcessing {
		t.Errorf("claimed status = %s, want processing", claimed.Status)
	}

	second, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("second ClaimNext failed: %v", err)
	}
	if second == nil || second.ID != newer.ID {
		t.Fatalf("expected the remaining job, got %#v", second)
	}

	empty, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("third ClaimNext failed: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected empty queue, got %#v", empty)
	}
}

func TestListAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewJob(t, store, "", "")
	done := testsupport.NewJob(t, store, "", "")
	done.Status = jobs.StatusComplete
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[jobs.StatusQueued] != 1 || stats[jobs.StatusComplete] != 1 {
		t.Errorf("unexpected stats: %#v", stats)
	}
}
