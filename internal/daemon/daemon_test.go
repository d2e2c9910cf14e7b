package daemon_test

import (
	"context"
	"testing"

	"transcribr/internal/daemon"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
	"transcribr/internal/services/ffmpeg"
	"transcribr/internal/services/whisper"
	"transcribr/internal/testsupport"
	"transcribr/internal/workflow"
)

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	newDaemon := func() *daemon.Daemon {
		broadcaster := progress.NewBroadcaster()
		manager := workflow.NewManager(cfg, store, logging.NewNop(), broadcaster,
			whisper.NewService(whisper.Config{}), ffmpeg.NewSampler(""))
		d, err := daemon.New(cfg, store, logging.NewNop(), manager, broadcaster)
		if err != nil {
			t.Fatalf("daemon.New failed: %v", err)
		}
		return d
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := newDaemon()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer first.Stop()

	second := newDaemon()
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail the lock")
	}

	first.Stop()

	// Once the lock is released another instance may start.
	third := newDaemon()
	if err := third.Start(ctx); err != nil {
		t.Fatalf("restart after release failed: %v", err)
	}
	third.Stop()
}
