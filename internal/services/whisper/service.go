// Package whisper shells out to a Whisper-compatible CLI for speech-to-text
// transcription and parses its segment JSON output.
package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"transcribr/internal/services"
	"transcribr/internal/transcript"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "medium"

// Config captures the engine invocation settings.
type Config struct {
	Binary   string
	Model    string
	Language string
	// Timeout bounds one engine run. Zero means no limit.
	Timeout time.Duration
}

// Service provides transcription via an external Whisper CLI.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = "whisper"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Transcribe runs the engine against an audio file and returns its ordered
// segments. outputDir is where the engine writes its JSON sidecar.
func (s *Service) Transcribe(ctx context.Context, audio, outputDir string) ([]transcript.Segment, error) {
	if audio == "" {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "run engine", "audio path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audio)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	args := s.buildArgs(audio, outputDir)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "transcribe", "run engine", "", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "run engine", "", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	segments, err := loadSegments(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "transcribe", "parse output", "", err)
	}
	return segments, nil
}

func (s *Service) buildArgs(audio, outputDir string) []string {
	args := []string{
		audio,
		"--model", s.cfg.Model,
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

type segmentJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type resultJSON struct {
	Segments []segmentJSON `json:"segments"`
}

func loadSegments(path string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine output: %w", err)
	}
	var result resultJSON
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse engine output %s: %w", path, err)
	}

	segments := make([]transcript.Segment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return segments, nil
}
