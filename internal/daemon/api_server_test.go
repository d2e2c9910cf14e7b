package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"transcribr/internal/api"
	"transcribr/internal/jobs"
	"transcribr/internal/logging"
	"transcribr/internal/progress"
	"transcribr/internal/services/ffmpeg"
	"transcribr/internal/services/whisper"
	"transcribr/internal/testsupport"
	"transcribr/internal/workflow"
)

func newTestServer(t *testing.T) (*Daemon, *httptest.Server) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	broadcaster := progress.NewBroadcaster()
	manager := workflow.NewManager(cfg, store, logging.NewNop(), broadcaster,
		whisper.NewService(whisper.Config{}), ffmpeg.NewSampler(""))

	d, err := New(cfg, store, logging.NewNop(), manager, broadcaster)
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}

	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return d, server
}

func multipartUpload(t *testing.T, fields map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, content := range fields {
		part, err := writer.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestCreateJobPersistsUploads(t *testing.T) {
	d, server := newTestServer(t)

	body, contentType := multipartUpload(t, map[string][]byte{
		"video": []byte("video-bytes"),
		"audio": []byte("audio-bytes"),
	})
	resp, err := http.Post(server.URL+"/api/jobs", contentType, body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body %s", resp.StatusCode, payload)
	}

	var created api.Job
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Status != string(jobs.StatusQueued) {
		t.Fatalf("unexpected created job: %+v", created)
	}

	record, err := d.store.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if record == nil {
		t.Fatal("job was not persisted")
	}
	for kind, path := range map[string]string{"video": record.VideoPath, "audio": record.AudioPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s upload: %v", kind, err)
		}
		if string(data) != kind+"-bytes" {
			t.Errorf("%s upload contents = %q", kind, data)
		}
		if !strings.HasPrefix(filepath.Base(path), record.ID+"_"+kind) {
			t.Errorf("%s upload name = %q", kind, filepath.Base(path))
		}
	}
}

func TestCreateJobRejectsMissingParts(t *testing.T) {
	d, server := newTestServer(t)

	body, contentType := multipartUpload(t, map[string][]byte{"video": []byte("v")})
	resp, err := http.Post(server.URL+"/api/jobs", contentType, body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// A rejected request must leave no job record behind.
	records, err := d.store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no jobs, got %d", len(records))
	}
}

func TestListJobsNewestFirst(t *testing.T) {
	d, server := newTestServer(t)

	first := &jobs.Job{CreatedAt: time.Now().UTC().Add(-time.Minute)}
	if err := d.store.Create(context.Background(), first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second := &jobs.Job{}
	if err := d.store.Create(context.Background(), second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/jobs")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var list api.JobListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list.Jobs))
	}
	if list.Jobs[0].ID != second.ID || list.Jobs[1].ID != first.ID {
		t.Errorf("jobs not newest first: %s then %s", list.Jobs[0].ID, list.Jobs[1].ID)
	}
}

func TestShowJobIncludesTranscript(t *testing.T) {
	d, server := newTestServer(t)

	transcriptPath := filepath.Join(d.cfg.Paths.JobsDir, "transcription.txt")
	if err := os.WriteFile(transcriptPath, []byte("[00:00:00] hi\n"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	job := testsupport.NewJob(t, d.store, "", "")
	job.Status = jobs.StatusComplete
	job.TranscriptPath = transcriptPath
	if err := d.store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/jobs/" + job.ID)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var detail api.JobDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ID != job.ID || !detail.HasTranscript {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if detail.Transcript != "[00:00:00] hi" {
		t.Errorf("transcript = %q", detail.Transcript)
	}
}

func TestShowJobNotFound(t *testing.T) {
	_, server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/jobs/missing1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStreamEventsTerminalJobClosesImmediately(t *testing.T) {
	d, server := newTestServer(t)

	job := testsupport.NewJob(t, d.store, "", "")
	job.Status = jobs.StatusComplete
	if err := d.store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	resp, err := http.Get(server.URL + "/api/jobs/" + job.ID + "/events")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}

	// The stream carries the terminal status snapshot and then ends.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if !strings.Contains(string(data), "Status: complete") {
		t.Errorf("stream = %q", data)
	}
}

func TestStreamEventsDeliversLiveMessages(t *testing.T) {
	d, server := newTestServer(t)

	job := testsupport.NewJob(t, d.store, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/jobs/"+job.ID+"/events", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	// First event is the status snapshot.
	if snapshot := readEvent(); !strings.Contains(snapshot, "Status: queued") {
		t.Errorf("snapshot = %q", snapshot)
	}

	d.broadcaster.Publish(job.ID, "Starting transcription...")

	var evt progress.Event
	if err := json.Unmarshal([]byte(readEvent()), &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.Message != "Starting transcription..." || evt.JobID != job.ID {
		t.Errorf("unexpected event: %+v", evt)
	}
}

func TestServeScreenshotRejectsUnknownNames(t *testing.T) {
	d, server := newTestServer(t)

	job := testsupport.NewJob(t, d.store, "", "")
	job.Status = jobs.StatusProcessing
	job.Screenshots = []jobs.Screenshot{{Filename: "screenshot_001_00m00s.jpg", Seconds: 0}}
	if err := d.store.Update(context.Background(), job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	shotDir := filepath.Join(d.cfg.JobDir(job.ID), "screenshots")
	testsupport.WriteFile(t, filepath.Join(shotDir, "screenshot_001_00m00s.jpg"), 4)

	resp, err := http.Get(server.URL + "/api/jobs/" + job.ID + "/screenshots/screenshot_001_00m00s.jpg")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("known screenshot status = %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/jobs/" + job.ID + "/screenshots/..%2F..%2Fsecret.txt")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown screenshot status = %d, want 404", resp.StatusCode)
	}
}

func TestServeArchiveNotReady(t *testing.T) {
	d, server := newTestServer(t)

	job := testsupport.NewJob(t, d.store, "", "")
	resp, err := http.Get(server.URL + "/api/jobs/" + job.ID + "/archive")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
