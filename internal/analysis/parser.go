// Package analysis extracts structured clip proposals from the free-form AI
// analysis response and assembles the final clip batch.
package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"clipperai/internal/highlights"
	"clipperai/internal/timecode"
	"clipperai/models"
)

// maxAIClips is how many CLIPi_* blocks the response grammar carries.
const maxAIClips = 3

type clipPattern struct {
	start  *regexp.Regexp
	end    *regexp.Regexp
	score  *regexp.Regexp
	reason *regexp.Regexp
}

var clipPatterns = func() [maxAIClips]clipPattern {
	var ps [maxAIClips]clipPattern
	for i := range ps {
		n := i + 1
		ps[i] = clipPattern{
			start: regexp.MustCompile(fmt.Sprintf(`CLIP%d_START:\s*\[(.*?)\]`, n)),
			end:   regexp.MustCompile(fmt.Sprintf(`CLIP%d_END:\s*\[(.*?)\]`, n)),
			score: regexp.MustCompile(fmt.Sprintf(`CLIP%d_SCORE:\s*\[(\d+)\]`, n)),
			// Reason runs until the next CLIP marker or end of text.
			reason: regexp.MustCompile(fmt.Sprintf(`(?s)CLIP%d_REASON:\s*(.*?)(?:\nCLIP|\z)`, n)),
		}
	}
	return ps
}()

// ParseClipResponse extracts up to three validated clip candidates from the
// model's response text. Fields are matched independently per index; a
// missing or invalid field drops only that candidate. The second return value
// reports what was missing or rejected, for logging — the parse itself is
// best-effort and never fails as a whole.
func ParseClipResponse(text string, b highlights.Bounds) ([]models.ClipCandidate, []string) {
	var clips []models.ClipCandidate
	var report []string

	for i, p := range clipPatterns {
		n := i + 1
		startM := p.start.FindStringSubmatch(text)
		endM := p.end.FindStringSubmatch(text)
		scoreM := p.score.FindStringSubmatch(text)
		if startM == nil || endM == nil || scoreM == nil {
			report = append(report, fmt.Sprintf("clip %d: missing fields", n))
			continue
		}

		startS := timecode.ToSeconds(strings.TrimSpace(startM[1]))
		endS := timecode.ToSeconds(strings.TrimSpace(endM[1]))
		if startS >= endS {
			report = append(report, fmt.Sprintf("clip %d: start %q not before end %q", n, startM[1], endM[1]))
			continue
		}
		if !b.Contains(endS - startS) {
			report = append(report, fmt.Sprintf("clip %d: duration %ds out of bounds", n, endS-startS))
			continue
		}

		score, err := strconv.Atoi(scoreM[1])
		if err != nil || score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		reason := fmt.Sprintf("Clip %d selected for engagement", n)
		if m := p.reason.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
			reason = strings.TrimSpace(m[1])
		}

		clips = append(clips, models.ClipCandidate{
			StartTime: timecode.FromSeconds(startS),
			EndTime:   timecode.FromSeconds(endS),
			Score:     models.ClipScore{Value: score, Origin: models.ScoreOriginAI},
			Reason:    reason,
		})
	}

	return clips, report
}

// AssembleBatch guarantees a batch of exactly numClips slots: AI-validated
// candidates first, then heuristic backfill for the shortfall, then inert
// placeholders. The pipeline never returns fewer slots than requested.
func AssembleBatch(aiClips []models.ClipCandidate, segs []models.Segment, videoDuration, numClips int, b highlights.Bounds) []models.ClipCandidate {
	batch := append([]models.ClipCandidate(nil), aiClips...)
	if len(batch) > numClips {
		batch = batch[:numClips]
	}
	if len(batch) < numClips {
		batch = append(batch, highlights.SelectClips(segs, videoDuration, numClips-len(batch), b)...)
	}
	for len(batch) < numClips {
		batch = append(batch, models.PlaceholderCandidate())
	}
	return batch
}
