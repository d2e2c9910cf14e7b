// Package ffmpeg samples video frames at a fixed interval by shelling out
// to the ffmpeg binary.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"transcribr/internal/frames"
	"transcribr/internal/services"
)

// DefaultBinary is the ffmpeg executable name used when none is configured.
const DefaultBinary = "ffmpeg"

// Sampler extracts one frame every IntervalSeconds from a video file.
type Sampler struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewSampler creates a frame sampler backed by the given ffmpeg binary.
func NewSampler(binary string) *Sampler {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Sampler{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Sampler) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// SampleFrames decodes video into JPEG frames under workDir, one every
// intervalSeconds, and returns them ordered by timestamp ascending.
// Timestamps are derived from the sample position, so they increase by
// exactly intervalSeconds per frame.
func (s *Sampler) SampleFrames(ctx context.Context, video, workDir string, intervalSeconds int) ([]*frames.Frame, error) {
	if video == "" {
		return nil, services.Wrap(services.ErrValidation, "extract", "sample frames", "video path required", nil)
	}
	if intervalSeconds <= 0 {
		intervalSeconds = 1
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure frame dir: %w", err)
	}

	pattern := filepath.Join(workDir, "frame_%05d.jpg")
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-vf", fmt.Sprintf("fps=1/%d", intervalSeconds),
		"-start_number", "0",
		"-y",
		pattern,
	}
	if err := s.run(ctx, s.binary, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", "sample frames", "", err)
	}

	return collectFrames(workDir, intervalSeconds)
}

func (s *Sampler) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func collectFrames(workDir string, intervalSeconds int) ([]*frames.Frame, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".jpg") {
			names = append(names, name)
		}
	}
	// Zero-padded names sort in sample order.
	sort.Strings(names)

	sampled := make([]*frames.Frame, 0, len(names))
	for i, name := range names {
		sampled = append(sampled, &frames.Frame{
			Index:     i,
			Timestamp: float64(i * intervalSeconds),
			Path:      filepath.Join(workDir, name),
		})
	}
	return sampled, nil
}
