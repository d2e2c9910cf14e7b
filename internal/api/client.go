package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transcribr/internal/progress"
)

// ErrNotFound indicates the daemon has no job with the requested identifier.
var ErrNotFound = errors.New("job not found")

// Client talks to the daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds an API client for the given bind address or URL.
func NewClient(address string) *Client {
	base := strings.TrimSpace(address)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit uploads a video/audio pair and returns the created job.
func (c *Client) Submit(ctx context.Context, videoPath, audioPath string) (Job, error) {
	var dto Job

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, path := range map[string]string{"video": videoPath, "audio": audioPath} {
		if err := attachFile(writer, field, path); err != nil {
			return dto, err
		}
	}
	if err := writer.Close(); err != nil {
		return dto, fmt.Errorf("finalize upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/jobs", &body)
	if err != nil {
		return dto, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := c.do(req, &dto); err != nil {
		return dto, err
	}
	return dto, nil
}

// List fetches all jobs known to the daemon.
func (c *Client) List(ctx context.Context) ([]Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs", nil)
	if err != nil {
		return nil, err
	}
	var resp JobListResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// Get fetches one job with its transcript text when available.
func (c *Client) Get(ctx context.Context, id string) (JobDetail, error) {
	var detail JobDetail
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+id, nil)
	if err != nil {
		return detail, err
	}
	if err := c.do(req, &detail); err != nil {
		return detail, err
	}
	return detail, nil
}

// Watch streams progress events for a job until the stream ends or the
// context is cancelled. Each received event is passed to onEvent.
func (c *Client) Watch(ctx context.Context, id string, onEvent func(progress.Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+id+"/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Event streams are long-lived; bypass the default request timeout.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch job: unexpected status %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var evt progress.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt); err != nil {
			continue
		}
		if onEvent != nil {
			onEvent(evt)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

// DownloadArchive streams the job bundle to dest.
func (c *Client) DownloadArchive(ctx context.Context, id, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/jobs/"+id+"/archive", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download archive: unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return out.Close()
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func attachFile(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s file: %w", field, err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("attach %s file: %w", field, err)
	}
	return nil
}
