package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"transcribr/internal/config"
	"transcribr/internal/frames"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
	"transcribr/internal/transcript"
)

// Transcriber is the speech-to-text engine contract. Segments are returned
// ordered and non-overlapping; the manager does not validate that further.
type Transcriber interface {
	Transcribe(ctx context.Context, audio, outputDir string) ([]transcript.Segment, error)
}

// FrameSampler is the video decoder contract: frames ordered by timestamp
// ascending, one every intervalSeconds.
type FrameSampler interface {
	SampleFrames(ctx context.Context, video, workDir string, intervalSeconds int) ([]*frames.Frame, error)
}

// Manager drives jobs through their stages using a bounded worker pool.
// Workers claim the oldest queued job from the store; parallelism exists
// only across jobs, never within one job's stages.
type Manager struct {
	cfg         *config.Config
	store       *jobs.Store
	logger      *slog.Logger
	broadcaster *progress.Broadcaster
	transcriber Transcriber
	sampler     FrameSampler
	hasher      frames.Hasher

	pollInterval time.Duration
	retryDelay   time.Duration
	workers      int
	wake         chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a workflow manager.
func NewManager(
	cfg *config.Config,
	store *jobs.Store,
	logger *slog.Logger,
	broadcaster *progress.Broadcaster,
	transcriber Transcriber,
	sampler FrameSampler,
) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workflow.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow-manager"),
		broadcaster:  broadcaster,
		transcriber:  transcriber,
		sampler:      sampler,
		hasher:       frames.PerceptionHasher{},
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		workers:      workers,
		wake:         make(chan struct{}, 1),
	}
}

// WithHasher overrides the perceptual hasher (used in tests).
func (m *Manager) WithHasher(hasher frames.Hasher) {
	m.hasher = hasher
}
