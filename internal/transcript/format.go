// Package transcript renders timestamped speech segments as line-oriented text.
package transcript

import (
	"fmt"
	"os"
	"strings"
)

// Segment is one timestamped span of recognized speech. End is carried for
// completeness but does not participate in formatting.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// FormatTimestamp converts seconds to HH:MM:SS, truncating sub-second
// precision. Hours are not wrapped at 24; inputs beyond 99 hours simply
// widen the field.
func FormatTimestamp(seconds float64) string {
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Format renders segments as one "[HH:MM:SS] text" line each, in input
// order. Segment text is trimmed; segments are never reordered, filtered,
// or merged.
func Format(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString("[")
		b.WriteString(FormatTimestamp(seg.Start))
		b.WriteString("] ")
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders segments and writes the transcript artifact to path.
func Write(path string, segments []Segment) error {
	if err := os.WriteFile(path, []byte(Format(segments)), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
