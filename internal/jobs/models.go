package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusComplete,
	StatusError,
}

var statusRank = map[Status]int{
	StatusQueued:     0,
	StatusProcessing: 1,
	StatusComplete:   2,
	StatusError:      2,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusRank[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// CanTransition reports whether a status change honors the monotonic-forward
// lifecycle: statuses never revert, and terminal states are final.
func CanTransition(from, to Status) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	return toRank > fromRank
}

// Screenshot describes one kept frame owned by a job record.
type Screenshot struct {
	Filename string  `json:"filename"`
	Seconds  float64 `json:"seconds"`
}

// Job represents a processing job persisted in SQLite.
type Job struct {
	ID            string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
	VideoFilename string
	AudioFilename string

	// VideoPath and AudioPath locate the transient uploaded sources; they
	// are deleted when the job reaches a terminal state.
	VideoPath string
	AudioPath string

	ErrorMessage   string
	Screenshots    []Screenshot
	TranscriptPath string
	ArchivePath    string
}

// HasTranscript reports whether a transcript artifact has been produced.
func (j *Job) HasTranscript() bool {
	return strings.TrimSpace(j.TranscriptPath) != ""
}

// SetFailed marks the job as errored, capturing the failure message verbatim.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.ErrorMessage = message
}

// NewID generates a short opaque job identifier. Eight hex characters of a
// random UUID are collision-resistant enough at this scale and short enough
// to share by hand.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
