package analysis

import (
	"fmt"

	"clipperai/internal/highlights"
)

// BuildAnalysisPrompt renders the clip-finding prompt for the analysis call.
// The response format it demands is what ParseClipResponse understands.
func BuildAnalysisPrompt(transcript string, b highlights.Bounds) string {
	return fmt.Sprintf(`Analyze this transcript to find the 3 most viral-worthy clips for social media.

Transcript:
%s

For each clip, you must identify:
1. A start timestamp (in MM:SS format)
2. An end timestamp (in MM:SS format)
3. A viral score (from 0-100) based on its potential to be engaging.
4. A brief, compelling reason why the clip is viral-worthy.

CRITICAL REQUIREMENTS:
- Each clip's duration MUST be between %d and %d seconds.
- Each clip MUST end at a natural stopping point (end of a sentence or a complete thought). Do NOT cut off a speaker mid-sentence.
- Prioritize moments with strong emotional cues, surprising statements, or valuable insights.

Respond in this exact format, with each field on a new line:
CLIP1_START: [MM:SS]
CLIP1_END: [MM:SS]
CLIP1_SCORE: [score]
CLIP1_REASON: [reason]

CLIP2_START: [MM:SS]
CLIP2_END: [MM:SS]
CLIP2_SCORE: [score]
CLIP2_REASON: [reason]

CLIP3_START: [MM:SS]
CLIP3_END: [MM:SS]
CLIP3_SCORE: [score]
CLIP3_REASON: [reason]`, transcript, b.MinSeconds, b.MaxSeconds)
}
