package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"transcribr/internal/config"
)

// ErrStatusRegression indicates an update attempted to move a job backwards
// through its lifecycle.
var ErrStatusRegression = errors.New("job status regression")

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new job record. When the job carries no ID or timestamps,
// they are assigned. Status defaults to queued.
func (s *Store) Create(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	if job.ID == "" {
		job.ID = NewID()
	}
	if job.Status == "" {
		job.Status = StatusQueued
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	screenshots, err := marshalScreenshots(job.Screenshots)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
            id, status, created_at, updated_at, video_filename, audio_filename,
            video_path, audio_path, error_message, screenshots_json,
            transcript_path, archive_path
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Status,
		job.CreatedAt.Format(time.RFC3339Nano),
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(job.VideoFilename),
		nullableString(job.AudioFilename),
		nullableString(job.VideoPath),
		nullableString(job.AudioPath),
		nullableString(job.ErrorMessage),
		screenshots,
		nullableString(job.TranscriptPath),
		nullableString(job.ArchivePath),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID fetches a job by identifier. A missing job yields (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Update persists changes to an existing job as a full overwrite. The write
// runs in a transaction that verifies the status change is monotonic
// forward, so a concurrent reader never observes a reverted status.
func (s *Store) Update(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()

	screenshots, err := marshalScreenshots(job.Screenshots)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, job.ID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update job %s: not found", job.ID)
		}
		return fmt.Errorf("read current status: %w", err)
	}
	if !CanTransition(Status(current), job.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, current, job.Status)
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE jobs
         SET status = ?, updated_at = ?, video_filename = ?, audio_filename = ?,
             video_path = ?, audio_path = ?, error_message = ?, screenshots_json = ?,
             transcript_path = ?, archive_path = ?
         WHERE id = ?`,
		job.Status,
		job.UpdatedAt.Format(time.RFC3339Nano),
		nullableString(job.VideoFilename),
		nullableString(job.AudioFilename),
		nullableString(job.VideoPath),
		nullableString(job.AudioPath),
		nullableString(job.ErrorMessage),
		screenshots,
		nullableString(job.TranscriptPath),
		nullableString(job.ArchivePath),
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// List returns all jobs. No ordering is guaranteed; callers sort for display.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimNext atomically transitions the oldest queued job to processing and
// returns it. The single-statement claim means concurrent workers never
// obtain the same job. Returns (nil, nil) when the queue is empty.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	row := s.db.QueryRowContext(
		ctx,
		`UPDATE jobs SET status = ?, updated_at = ?
         WHERE id = (SELECT id FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1)
         RETURNING `+jobColumns,
		StatusProcessing,
		now,
		StatusQueued,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return job, nil
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const jobColumns = "id, status, created_at, updated_at, video_filename, audio_filename, video_path, audio_path, error_message, screenshots_json, transcript_path, archive_path"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id             string
		statusStr      string
		createdRaw     string
		updatedRaw     string
		videoFilename  sql.NullString
		audioFilename  sql.NullString
		videoPath      sql.NullString
		audioPath      sql.NullString
		errorMessage   sql.NullString
		screenshotsRaw sql.NullString
		transcriptPath sql.NullString
		archivePath    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&statusStr,
		&createdRaw,
		&updatedRaw,
		&videoFilename,
		&audioFilename,
		&videoPath,
		&audioPath,
		&errorMessage,
		&screenshotsRaw,
		&transcriptPath,
		&archivePath,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:             id,
		Status:         Status(statusStr),
		VideoFilename:  videoFilename.String,
		AudioFilename:  audioFilename.String,
		VideoPath:      videoPath.String,
		AudioPath:      audioPath.String,
		ErrorMessage:   errorMessage.String,
		TranscriptPath: transcriptPath.String,
		ArchivePath:    archivePath.String,
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		job.UpdatedAt = updated
	}
	if screenshotsRaw.Valid && screenshotsRaw.String != "" {
		if err := json.Unmarshal([]byte(screenshotsRaw.String), &job.Screenshots); err != nil {
			return nil, fmt.Errorf("parse screenshots for job %s: %w", id, err)
		}
	}
	return job, nil
}

func marshalScreenshots(screenshots []Screenshot) (any, error) {
	if len(screenshots) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(screenshots)
	if err != nil {
		return nil, fmt.Errorf("marshal screenshots: %w", err)
	}
	return string(data), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
