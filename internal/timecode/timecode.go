// Package timecode converts between the human-readable timestamps used in
// transcripts and AI responses and the integer seconds the pipeline computes
// with.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// ToSeconds converts "HH:MM:SS" or "MM:SS" into total seconds. A fractional
// suffix after '.' is discarded. Malformed input yields 0 rather than an
// error; callers must treat 0 as "unparseable" unless the span genuinely sits
// at the very start of the video.
func ToSeconds(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FromSeconds formats seconds as zero-padded HH:MM:SS. The hour field is
// always emitted, even when zero, to match the clip renderer's argument
// format.
func FromSeconds(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h := sec / 3600
	m := sec % 3600 / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
