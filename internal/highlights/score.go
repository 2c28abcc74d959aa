// Package highlights is the deterministic, non-AI selection path: it scores
// transcript passages and picks a non-overlapping top-N set.
package highlights

import (
	"strings"

	"clipperai/models"
)

// Scoring weights. These supersede the older base-50 revision; fallback
// scores are capped below 100 so provenance stays visible next to AI scores.
const (
	baseScore = 40

	sweetSpotMinSeconds = 25
	sweetSpotMaxSeconds = 60
	sweetSpotBonus      = 20

	shortMinSeconds = 15
	shortBonus      = 5

	lengthCharsPerPoint = 20
	lengthBonusCap      = 15

	questionBonus = 10
	hookBonus     = 5

	fallbackScoreCap = 99

	// relaxedScore is assigned to picks from the duration-relaxed second
	// pass; low enough to rank below any first-pass candidate.
	relaxedScore = 30
)

var hookWords = []string{"because", "secret", "finally", "imagine"}

// Score rates a passage's clip potential from duration, text length and
// content cues.
func Score(p models.Passage) int {
	score := baseScore

	d := p.DurationSeconds()
	switch {
	case d >= sweetSpotMinSeconds && d <= sweetSpotMaxSeconds:
		score += sweetSpotBonus
	case d >= shortMinSeconds && d < sweetSpotMinSeconds:
		score += shortBonus
	}

	lengthBonus := len(p.Text) / lengthCharsPerPoint
	if lengthBonus > lengthBonusCap {
		lengthBonus = lengthBonusCap
	}
	score += lengthBonus

	if strings.Contains(p.Text, "?") {
		score += questionBonus
	}
	lower := strings.ToLower(p.Text)
	for _, w := range hookWords {
		if strings.Contains(lower, w) {
			score += hookBonus
			break
		}
	}

	if score > fallbackScoreCap {
		score = fallbackScoreCap
	}
	return score
}
