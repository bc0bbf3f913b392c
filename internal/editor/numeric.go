// Package editor provides the draft/commit state machines that sit between
// interactive edits and the transactional service: per-cell matrix drafts,
// organization form drafts, and the numeric input filter.
package editor

import "strings"

// SanitizeNumeric reduces raw input to digits and at most one decimal
// separator. Everything else is dropped; digits after a second dot collapse
// onto the first fraction.
func SanitizeNumeric(raw string) string {
	var b strings.Builder
	seenDot := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
