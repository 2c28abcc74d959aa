package highlights

import (
	"sort"

	"clipperai/internal/timecode"
	"clipperai/internal/transcript"
	"clipperai/models"
)

// Bounds is the configured clip duration window in seconds, inclusive.
type Bounds struct {
	MinSeconds int
	MaxSeconds int
}

func (b Bounds) Contains(d int) bool {
	return d >= b.MinSeconds && d <= b.MaxSeconds
}

const fallbackReason = "Intelligent fallback: a coherent passage was selected from the transcript."
const relaxedReason = "Relaxed selection: passage outside the preferred duration bounds."

// SelectClips derives up to numClips non-overlapping clip candidates directly
// from the transcript. Passages within the duration bounds are scored and
// accepted greedily, highest score first. If that yields too few, a second
// relaxed pass over the unfiltered passage list ignores the duration bound so
// even pathological transcripts make forward progress.
func SelectClips(segs []models.Segment, videoDuration, numClips int, b Bounds) []models.ClipCandidate {
	if numClips <= 0 {
		return nil
	}

	all := transcript.BuildPassages(segs)
	kept := make([]models.Passage, 0, len(all))
	for _, p := range all {
		if b.Contains(p.DurationSeconds()) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		// No sentence-bounded passage survived the bounds; fall back to
		// synthetic time slices.
		kept = transcript.TimeSlices(videoDuration)
		all = append(all, kept...)
	}

	byScore := func(ps []models.Passage) []models.Passage {
		sorted := append([]models.Passage(nil), ps...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return Score(sorted[i]) > Score(sorted[j])
		})
		return sorted
	}

	var accepted []models.Passage
	var out []models.ClipCandidate
	for _, p := range byScore(kept) {
		if len(out) >= numClips {
			break
		}
		if overlapsAny(p, accepted) {
			continue
		}
		accepted = append(accepted, p)
		out = append(out, candidate(p, Score(p), models.ScoreOriginFallback, fallbackReason))
	}

	if len(out) < numClips {
		for _, p := range byScore(all) {
			if len(out) >= numClips {
				break
			}
			if p.DurationSeconds() <= 0 || overlapsAny(p, accepted) {
				continue
			}
			accepted = append(accepted, p)
			out = append(out, candidate(p, relaxedScore, models.ScoreOriginRelaxed, relaxedReason))
		}
	}

	return out
}

func overlapsAny(p models.Passage, accepted []models.Passage) bool {
	for _, a := range accepted {
		if p.Overlaps(a) {
			return true
		}
	}
	return false
}

func candidate(p models.Passage, score int, origin models.ScoreOrigin, reason string) models.ClipCandidate {
	return models.ClipCandidate{
		StartTime: timecode.FromSeconds(p.StartSeconds),
		EndTime:   timecode.FromSeconds(p.EndSeconds),
		Score:     models.ClipScore{Value: score, Origin: origin},
		Reason:    reason,
	}
}
