package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"transcribr/internal/config"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
	"transcribr/internal/workflow"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg         *config.Config
	store       *jobs.Store
	logger      *slog.Logger
	workflow    *workflow.Manager
	broadcaster *progress.Broadcaster
	api         *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
}

// New constructs a daemon around an opened store and workflow manager.
func New(cfg *config.Config, store *jobs.Store, logger *slog.Logger, wf *workflow.Manager, broadcaster *progress.Broadcaster) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil || broadcaster == nil {
		return nil, errors.New("daemon requires config, store, workflow, and broadcaster")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "transcribrd.lock")
	d := &Daemon{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		workflow:    wf,
		broadcaster: broadcaster,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the workflow manager and the
// HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another transcribrd instance holds %s", d.lockPath)
	}

	if err := d.workflow.Start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}
	if d.api != nil {
		if err := d.api.start(ctx); err != nil {
			d.workflow.Stop()
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock_file", d.lockPath),
		logging.String("jobs_db", d.store.Path()),
	)
	return nil
}

// Stop shuts down processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.api != nil {
		d.api.stop()
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}
