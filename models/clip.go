package models

// ScoreOrigin tags where a clip's score came from, replacing the string
// sentinels ("AI unavailable" et al.) that used to share the score field.
type ScoreOrigin string

const (
	ScoreOriginAI       ScoreOrigin = "ai"
	ScoreOriginFallback ScoreOrigin = "fallback"
	ScoreOriginRelaxed  ScoreOrigin = "relaxed"
	ScoreOriginManual   ScoreOrigin = "manual"
	ScoreOriginNone     ScoreOrigin = "none"
)

// ClipScore is a tagged score: a value plus its provenance. Fallback-sourced
// scores are capped at 99 so only AI-sourced clips can reach 100.
type ClipScore struct {
	Value  int         `json:"value"`
	Origin ScoreOrigin `json:"origin"`
}

// PlaceholderTimestamp marks a non-renderable batch slot.
const PlaceholderTimestamp = "--:--"

// ClipCandidate is a proposed [start,end) span plus score/reason/render
// metadata. Timestamps are HH:MM:SS strings, the clip renderer's argument
// format.
type ClipCandidate struct {
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Score     ClipScore `json:"score"`
	Reason    string    `json:"reason"`
	Filename  *string   `json:"filename"`
	Processed bool      `json:"processed"`
}

// Renderable reports whether the candidate carries real timestamps.
func (c ClipCandidate) Renderable() bool {
	return c.StartTime != PlaceholderTimestamp && c.EndTime != PlaceholderTimestamp
}

// PlaceholderCandidate returns the inert slot used to pad a batch when fewer
// clips were produced than requested.
func PlaceholderCandidate() ClipCandidate {
	return ClipCandidate{
		StartTime: PlaceholderTimestamp,
		EndTime:   PlaceholderTimestamp,
		Score:     ClipScore{Value: 0, Origin: ScoreOriginNone},
		Reason:    "No clip found",
		Processed: false,
	}
}

// ClipResult is the terminal payload of a successful task.
type ClipResult struct {
	Clips      []ClipCandidate `json:"clips"`
	VideoTitle string          `json:"video_title"`
}
