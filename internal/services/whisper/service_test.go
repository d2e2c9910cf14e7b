package whisper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"transcribr/internal/services"
	"transcribr/internal/services/whisper"
)

func TestTranscribeParsesEngineOutput(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "lecture.wav")
	if err := os.WriteFile(audio, []byte("x"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	outputDir := filepath.Join(dir, "out")

	svc := whisper.NewService(whisper.Config{Binary: "whisper", Model: "small", Language: "en"})

	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != "whisper" {
			t.Errorf("binary = %q", name)
		}
		gotArgs = args
		payload := `{"segments":[{"start":0,"end":4.2,"text":" Hello there."},{"start":65.5,"end":70,"text":"Second line"}]}`
		return os.WriteFile(filepath.Join(outputDir, "lecture.json"), []byte(payload), 0o644)
	})

	segments, err := svc.Transcribe(context.Background(), audio, outputDir)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text != " Hello there." || segments[1].Start != 65.5 {
		t.Errorf("unexpected segments: %#v", segments)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{audio, "--model small", "--output_format json", "--output_dir " + outputDir, "--language en"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestTranscribeOmitsLanguageWhenUnset(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(audio, []byte("x"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		for _, arg := range args {
			if arg == "--language" {
				t.Error("language flag passed when unset")
			}
		}
		return os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"segments":[]}`), 0o644)
	})

	segments, err := svc.Transcribe(context.Background(), audio, dir)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments, got %d", len(segments))
	}
}

func TestTranscribeEngineFailure(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})

	_, err := svc.Transcribe(context.Background(), "/tmp/audio.wav", t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestTranscribeRequiresAudioPath(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	if _, err := svc.Transcribe(context.Background(), "", t.TempDir()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTranscribeHonorsTimeout(t *testing.T) {
	svc := whisper.NewService(whisper.Config{Timeout: 10 * time.Millisecond})
	svc.WithCommandRunner(func(ctx context.Context, _ string, _ ...string) error {
		<-ctx.Done()
		return ctx.Err()
	})

	_, err := svc.Transcribe(context.Background(), "/tmp/audio.wav", t.TempDir())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	if svc.Model() != whisper.DefaultModel {
		t.Errorf("model = %q, want %q", svc.Model(), whisper.DefaultModel)
	}
}
