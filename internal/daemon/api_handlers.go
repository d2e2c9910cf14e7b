package daemon

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transcribr/internal/api"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
)

// createJob accepts a multipart upload with "video" and "audio" file parts,
// persists both sources, and enqueues a new job. Malformed requests are
// rejected before any job record exists.
func (s *apiServer) createJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	video, videoHeader, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer video.Close()

	audio, audioHeader, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer audio.Close()

	id := jobs.NewID()
	videoPath, err := s.saveUpload(video, id, "video", videoHeader.Filename)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	audioPath, err := s.saveUpload(audio, id, "audio", audioHeader.Filename)
	if err != nil {
		_ = os.Remove(videoPath)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := time.Now().UTC()
	job := &jobs.Job{
		ID:            id,
		Status:        jobs.StatusQueued,
		CreatedAt:     now,
		UpdatedAt:     now,
		VideoFilename: filepath.Base(videoHeader.Filename),
		AudioFilename: filepath.Base(audioHeader.Filename),
		VideoPath:     videoPath,
		AudioPath:     audioPath,
	}
	if err := s.daemon.store.Create(r.Context(), job); err != nil {
		_ = os.Remove(videoPath)
		_ = os.Remove(audioPath)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.daemon.workflow.Notify()
	s.log().Info("job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("video", job.VideoFilename),
		logging.String("audio", job.AudioFilename),
	)
	s.writeJSON(w, http.StatusCreated, api.FromJob(job))
}

// saveUpload streams one multipart part into the upload directory under a
// job-scoped name, preserving the original extension.
func (s *apiServer) saveUpload(src multipart.File, jobID, kind, originalName string) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	dest := filepath.Join(s.daemon.cfg.Paths.UploadDir, fmt.Sprintf("%s_%s%s", jobID, kind, ext))

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("save %s upload: %w", kind, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("save %s upload: %w", kind, err)
	}
	return dest, nil
}

// streamEvents serves a job's live progress as server-sent events. The first
// event always reports the persisted status, so late subscribers of a
// finished job see its terminal state instead of hanging.
func (s *apiServer) streamEvents(w http.ResponseWriter, r *http.Request, job *jobs.Job) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before the status snapshot so no live event slips between
	// the two.
	sub := s.daemon.broadcaster.Subscribe(job.ID)
	defer s.daemon.broadcaster.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, fmt.Sprintf(`{"job_id":%q,"message":"Status: %s"}`, job.ID, job.Status)); err != nil {
		return
	}
	flusher.Flush()
	if job.Status.IsTerminal() {
		return
	}

	// The broadcaster never closes subscriber channels on job completion,
	// so re-check the persisted status periodically to end the stream.
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			payload, err := encodeEvent(event)
			if err != nil {
				s.log().Error("encode progress event", logging.Error(err))
				continue
			}
			if err := writeSSE(w, payload); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			current, err := s.daemon.store.GetByID(r.Context(), job.ID)
			if err != nil || current == nil {
				return
			}
			if current.Status.IsTerminal() && len(sub.C) == 0 {
				return
			}
		}
	}
}

// serveArchive streams the completed job's zip bundle.
func (s *apiServer) serveArchive(w http.ResponseWriter, r *http.Request, job *jobs.Job) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if job.ArchivePath == "" {
		s.writeError(w, http.StatusNotFound, "archive not available")
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(job.ArchivePath)))
	http.ServeFile(w, r, job.ArchivePath)
}

// serveScreenshot streams one kept frame by filename. Only filenames the job
// record owns are served, which also rules out path traversal.
func (s *apiServer) serveScreenshot(w http.ResponseWriter, r *http.Request, job *jobs.Job, name string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	for _, shot := range job.Screenshots {
		if shot.Filename == name {
			path := filepath.Join(s.daemon.cfg.JobDir(job.ID), "screenshots", shot.Filename)
			http.ServeFile(w, r, path)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "screenshot not found")
}

func encodeEvent(event progress.Event) (string, error) {
	data, err := json.Marshal(event)
	return string(data), err
}

func writeSSE(w io.Writer, payload string) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

func readTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
