package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"transcribr/internal/archive"
	"transcribr/internal/fileutil"
	"transcribr/internal/frames"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/transcript"
)

// process runs one claimed job to a terminal state. The claim already
// persisted the processing status, so this worker is the job's only writer
// from here on.
func (m *Manager) process(ctx context.Context, workerLogger *slog.Logger, job *jobs.Job) {
	logger := m.jobLogger(workerLogger, job)

	// Source uploads are transient; remove them exactly once on every
	// terminal path, success or failure.
	defer m.cleanupSources(logger, job)

	start := time.Now()
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("video", job.VideoFilename),
		logging.String("audio", job.AudioFilename),
	)

	if err := m.runStages(ctx, logger, job); err != nil {
		m.handleFailure(ctx, logger, job, err)
		return
	}

	job.Status = jobs.StatusComplete
	job.ErrorMessage = ""
	if err := m.store.Update(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("failed to persist completion", logging.Error(err))
		return
	}
	m.publish(logger, job.ID, "Done!")
	m.broadcaster.Release(job.ID)
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Int("screenshots", len(job.Screenshots)),
		logging.Duration("job_duration", time.Since(start)),
	)
}

func (m *Manager) runStages(ctx context.Context, logger *slog.Logger, job *jobs.Job) error {
	jobDir := m.cfg.JobDir(job.ID)
	screenshotsDir := filepath.Join(jobDir, "screenshots")
	for _, dir := range []string{jobDir, screenshotsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure job directory: %w", err)
		}
	}

	// Stage 1: transcription. Runs to completion before extraction begins
	// so the external engines never compete for the same resources.
	transcriptPath := filepath.Join(jobDir, "transcription.txt")
	if err := m.transcribeStage(ctx, logger, job, jobDir, transcriptPath); err != nil {
		return err
	}
	job.TranscriptPath = transcriptPath

	// Stage 2: frame extraction and dedup.
	kept, err := m.extractStage(ctx, logger, job, jobDir, screenshotsDir)
	if err != nil {
		return err
	}
	job.Screenshots = kept

	// Package the bundle before the record is marked complete.
	m.publish(logger, job.ID, "Creating zip archive...")
	archivePath := filepath.Join(jobDir, fmt.Sprintf("transcribr_%s.zip", job.ID))
	paths := make([]string, 0, len(kept))
	for _, shot := range kept {
		paths = append(paths, filepath.Join(screenshotsDir, shot.Filename))
	}
	if err := archive.Build(archivePath, transcriptPath, paths); err != nil {
		return fmt.Errorf("package archive: %w", err)
	}
	job.ArchivePath = archivePath
	return nil
}

func (m *Manager) transcribeStage(ctx context.Context, logger *slog.Logger, job *jobs.Job, jobDir, transcriptPath string) error {
	m.publish(logger, job.ID, "Starting transcription...")
	stageStart := time.Now()
	logger.Info("stage started", logging.String(logging.FieldStage, "transcribe"))

	workDir := filepath.Join(jobDir, "whisper.tmp")
	defer os.RemoveAll(workDir)

	segments, err := m.transcriber.Transcribe(ctx, job.AudioPath, workDir)
	if err != nil {
		return err
	}
	if err := transcript.Write(transcriptPath, segments); err != nil {
		return err
	}

	logger.Info("stage completed",
		logging.String(logging.FieldStage, "transcribe"),
		logging.Int("segments", len(segments)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.publish(logger, job.ID, "Transcription complete.")
	return nil
}

func (m *Manager) extractStage(ctx context.Context, logger *slog.Logger, job *jobs.Job, jobDir, screenshotsDir string) ([]jobs.Screenshot, error) {
	m.publish(logger, job.ID, "Starting screenshot extraction...")
	stageStart := time.Now()
	logger.Info("stage started", logging.String(logging.FieldStage, "extract"))

	framesDir := filepath.Join(jobDir, "frames.tmp")
	defer os.RemoveAll(framesDir)

	sampled, err := m.sampler.SampleFrames(ctx, job.VideoPath, framesDir, m.cfg.Frames.IntervalSeconds)
	if err != nil {
		return nil, err
	}

	kept, err := frames.Dedupe(sampled, m.hasher, m.cfg.Frames.DedupeThreshold)
	if err != nil {
		return nil, err
	}

	shots := make([]jobs.Screenshot, 0, len(kept))
	for i, frame := range kept {
		name := screenshotName(i+1, frame.Timestamp)
		if err := fileutil.CopyFile(frame.Path, filepath.Join(screenshotsDir, name)); err != nil {
			return nil, fmt.Errorf("promote screenshot %s: %w", name, err)
		}
		shots = append(shots, jobs.Screenshot{Filename: name, Seconds: frame.Timestamp})
	}

	logger.Info("stage completed",
		logging.String(logging.FieldStage, "extract"),
		logging.Int("sampled", len(sampled)),
		logging.Int("kept", len(shots)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.publish(logger, job.ID, fmt.Sprintf("Screenshot extraction complete: kept %d of %d frames.", len(shots), len(sampled)))
	return shots, nil
}

func (m *Manager) handleFailure(ctx context.Context, logger *slog.Logger, job *jobs.Job, stageErr error) {
	job.SetFailed(stageErr.Error())

	logger.Error("job failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "job_failure"),
		logging.String("error_message", job.ErrorMessage),
	)

	if err := m.store.Update(context.WithoutCancel(ctx), job); err != nil {
		logger.Error("failed to persist job failure", logging.Error(err))
	}
	m.publish(logger, job.ID, fmt.Sprintf("Error: %s", stageErr))
	m.broadcaster.Release(job.ID)
}

func (m *Manager) publish(logger *slog.Logger, jobID, message string) {
	evt := m.broadcaster.Publish(jobID, message)
	logger.Debug("progress published",
		logging.Uint64("seq", evt.Sequence),
		logging.String("message", message),
	)
}

func (m *Manager) cleanupSources(logger *slog.Logger, job *jobs.Job) {
	for _, path := range []string{job.VideoPath, job.AudioPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove uploaded source",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
}

// screenshotName encodes a one-based kept index and a minutes/seconds-coded
// timestamp so files sort naturally and correlate with the transcript:
// the third kept frame at 90 seconds becomes screenshot_003_01m30s.jpg.
func screenshotName(index int, seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("screenshot_%03d_%02dm%02ds.jpg", index, total/60, total%60)
}
