package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"transcribr/internal/jobs"
	"transcribr/internal/logging"
)

// Start begins background processing with the configured worker count.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		go m.runWorker(runCtx, m.logger.With(logging.Int("worker", i)))
	}
	return nil
}

// Stop terminates background processing and waits for workers to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Notify wakes an idle worker after a new job has been persisted. The
// creating request returns immediately; it never joins the processing unit.
func (m *Manager) Notify() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) runWorker(ctx context.Context, logger *slog.Logger) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("failed to claim next job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "claim_failed"),
				logging.String(logging.FieldErrorHint, "check job database access"),
			)
			m.waitForJobOrShutdown(ctx, m.retryDelay)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx, m.pollInterval)
			continue
		}

		m.process(ctx, logger, job)
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context, delay time.Duration) {
	select {
	case <-ctx.Done():
	case <-m.wake:
	case <-time.After(delay):
	}
}

// jobLogger attaches the standard per-job fields.
func (m *Manager) jobLogger(logger *slog.Logger, job *jobs.Job) *slog.Logger {
	return logger.With(logging.String(logging.FieldJobID, job.ID))
}
