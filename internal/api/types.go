// Package api defines the transport representation of jobs shared between
// the daemon's HTTP surface and the CLI client.
package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Screenshot describes one kept frame in a transport-friendly format.
type Screenshot struct {
	Filename string  `json:"filename"`
	Seconds  float64 `json:"seconds"`
}

// Job describes a job record in a transport-friendly format.
type Job struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	CreatedAt     string       `json:"createdAt,omitempty"`
	UpdatedAt     string       `json:"updatedAt,omitempty"`
	VideoFilename string       `json:"videoFilename,omitempty"`
	AudioFilename string       `json:"audioFilename,omitempty"`
	ErrorMessage  string       `json:"errorMessage,omitempty"`
	Screenshots   []Screenshot `json:"screenshots,omitempty"`
	HasTranscript bool         `json:"hasTranscript"`
	HasArchive    bool         `json:"hasArchive"`
}

// JobDetail extends Job with the transcript text when available.
type JobDetail struct {
	Job
	Transcript string `json:"transcript,omitempty"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// ErrorResponse carries an error message payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
