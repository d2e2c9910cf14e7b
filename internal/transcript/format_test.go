package transcript_test

import (
	"os"
	"path/filepath"
	"testing"

	"transcribr/internal/transcript"
)

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.999, "00:00:59"},
		{65.5, "00:01:05"},
		{3599, "00:59:59"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{360000, "100:00:00"},
	}
	for _, tc := range cases {
		if got := transcript.FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatSegments(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 4.2, Text: " Hello there. "},
		{Start: 65.5, End: 70, Text: "Second line"},
	}
	got := transcript.Format(segments)
	want := "[00:00:00] Hello there.\n[00:01:05] Second line\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := transcript.Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcription.txt")
	segments := []transcript.Segment{
		{Start: 0, Text: "one"},
		{Start: 10, Text: "two"},
	}
	if err := transcript.Write(path, segments); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	want := "[00:00:00] one\n[00:00:10] two\n"
	if string(data) != want {
		t.Errorf("transcript contents = %q, want %q", string(data), want)
	}
}
