// Package transcript turns timestamped transcript text into ordered segments
// and sentence-bounded passages.
package transcript

import (
	"regexp"
	"strings"

	"clipperai/internal/timecode"
	"clipperai/models"
)

var segmentLine = regexp.MustCompile(`^\[(.*?)\]\s*(.*)`)

// lastSegmentTailSeconds is the assumed length of the final segment, whose
// end has no following segment to borrow from.
const lastSegmentTailSeconds = 10

// ParseSegments parses transcript text where each spoken segment is prefixed
// by a bracketed timestamp, e.g. "[00:12] spoken text". Lines without a
// recognizable prefix (language declarations, blanks) are dropped. Each
// segment's end is the next segment's start; the final segment ends at
// start+10 capped at the video duration.
func ParseSegments(text string, videoDuration int) []models.Segment {
	var segs []models.Segment
	for _, line := range strings.Split(text, "\n") {
		m := segmentLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		segs = append(segs, models.Segment{
			StartSeconds: timecode.ToSeconds(m[1]),
			Text:         strings.TrimSpace(m[2]),
		})
	}
	for i := 0; i < len(segs)-1; i++ {
		segs[i].EndSeconds = segs[i+1].StartSeconds
	}
	if n := len(segs); n > 0 {
		end := segs[n-1].StartSeconds + lastSegmentTailSeconds
		if videoDuration > 0 && end > videoDuration {
			end = videoDuration
		}
		segs[n-1].EndSeconds = end
	}
	return segs
}

// BuildPassages groups consecutive segments into passages, closing a passage
// when a segment's text ends in sentence-final punctuation. Every closed
// passage is returned; duration filtering is the caller's concern. Segments
// after the last sentence boundary are discarded.
func BuildPassages(segs []models.Segment) []models.Passage {
	var passages []models.Passage
	var current []models.Segment
	for _, seg := range segs {
		current = append(current, seg)
		if !endsSentence(seg.Text) {
			continue
		}
		texts := make([]string, 0, len(current))
		for _, s := range current {
			texts = append(texts, s.Text)
		}
		passages = append(passages, models.Passage{
			Text:         strings.Join(texts, " "),
			StartSeconds: current[0].StartSeconds,
			EndSeconds:   current[len(current)-1].EndSeconds,
		})
		current = nil
	}
	return passages
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

const (
	fallbackSliceCount   = 5
	fallbackSliceSeconds = 30
	fallbackSliceOffset  = 5
)

// TimeSlices produces synthetic passages for degenerate transcripts with no
// usable sentence boundaries: five 30-second windows evenly spaced across the
// video, each starting 5 seconds into its slot. Slices that would run past
// the end of the video are discarded.
func TimeSlices(videoDuration int) []models.Passage {
	if videoDuration <= 0 {
		return nil
	}
	slot := videoDuration / fallbackSliceCount
	var out []models.Passage
	for i := 0; i < fallbackSliceCount; i++ {
		start := i*slot + fallbackSliceOffset
		end := start + fallbackSliceSeconds
		if end > videoDuration {
			continue
		}
		out = append(out, models.Passage{StartSeconds: start, EndSeconds: end})
	}
	return out
}
