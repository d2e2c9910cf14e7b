package jobs_test

import (
	"testing"

	"transcribr/internal/jobs"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to jobs.Status
		want     bool
	}{
		{jobs.StatusQueued, jobs.StatusProcessing, true},
		{jobs.StatusQueued, jobs.StatusComplete, true},
		{jobs.StatusQueued, jobs.StatusError, true},
		{jobs.StatusProcessing, jobs.StatusComplete, true},
		{jobs.StatusProcessing, jobs.StatusError, true},
		{jobs.StatusProcessing, jobs.StatusQueued, false},
		{jobs.StatusComplete, jobs.StatusProcessing, false},
		{jobs.StatusComplete, jobs.StatusError, false},
		{jobs.StatusError, jobs.StatusComplete, false},
		{jobs.StatusError, jobs.StatusQueued, false},
		{jobs.StatusQueued, jobs.StatusQueued, true},
		{jobs.StatusProcessing, jobs.StatusProcessing, true},
		{jobs.StatusComplete, jobs.StatusComplete, true},
		{jobs.Status("bogus"), jobs.StatusQueued, false},
		{jobs.StatusQueued, jobs.Status("bogus"), false},
	}
	for _, tc := range cases {
		if got := jobs.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if jobs.StatusQueued.IsTerminal() || jobs.StatusProcessing.IsTerminal() {
		t.Error("queued and processing must not be terminal")
	}
	if !jobs.StatusComplete.IsTerminal() || !jobs.StatusError.IsTerminal() {
		t.Error("complete and error must be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := jobs.ParseStatus("  Processing "); !ok || status != jobs.StatusProcessing {
		t.Errorf("ParseStatus normalization failed: %q %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("unknown"); ok {
		t.Error("ParseStatus accepted an unknown status")
	}
	if _, ok := jobs.ParseStatus(""); ok {
		t.Error("ParseStatus accepted an empty status")
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := jobs.NewID()
		if len(id) != 8 {
			t.Fatalf("expected 8-character id, got %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSetFailed(t *testing.T) {
	job := &jobs.Job{Status: jobs.StatusProcessing}
	job.SetFailed("engine exploded")
	if job.Status != jobs.StatusError {
		t.Errorf("status = %s, want error", job.Status)
	}
	if job.ErrorMessage != "engine exploded" {
		t.Errorf("error message = %q", job.ErrorMessage)
	}
}
