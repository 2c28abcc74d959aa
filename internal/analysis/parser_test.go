package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipperai/internal/highlights"
	"clipperai/models"
)

var testBounds = highlights.Bounds{MinSeconds: 16, MaxSeconds: 60}

const wellFormedResponse = `Here are the best clips I found:

CLIP1_START: [00:10]
CLIP1_END: [00:40]
CLIP1_SCORE: [95]
CLIP1_REASON: Strong hook right at the start.

CLIP2_START: [01:00]
CLIP2_END: [01:30]
CLIP2_SCORE: [88]
CLIP2_REASON: Emotional peak.

CLIP3_START: [02:00]
CLIP3_END: [02:45]
CLIP3_SCORE: [80]
CLIP3_REASON: Valuable insight.`

func TestParseClipResponseWellFormed(t *testing.T) {
	clips, report := ParseClipResponse(wellFormedResponse, testBounds)
	require.Len(t, clips, 3)
	assert.Empty(t, report)

	assert.Equal(t, "00:00:10", clips[0].StartTime)
	assert.Equal(t, "00:00:40", clips[0].EndTime)
	assert.Equal(t, 95, clips[0].Score.Value)
	assert.Equal(t, models.ScoreOriginAI, clips[0].Score.Origin)
	assert.Equal(t, "Strong hook right at the start.", clips[0].Reason)

	assert.Equal(t, "00:01:00", clips[1].StartTime)
	assert.Equal(t, "00:02:45", clips[2].EndTime)
}

func TestParseClipResponseDropsOutOfBounds(t *testing.T) {
	// Clip 2's five-second span violates the duration window.
	resp := strings.Replace(wellFormedResponse, "CLIP2_END: [01:30]", "CLIP2_END: [01:05]", 1)

	clips, report := ParseClipResponse(resp, testBounds)
	require.Len(t, clips, 2)
	require.Len(t, report, 1)
	assert.Contains(t, report[0], "clip 2")
	assert.Equal(t, "00:00:10", clips[0].StartTime)
	assert.Equal(t, "00:02:00", clips[1].StartTime)
}

func TestParseClipResponseDropsInvertedSpan(t *testing.T) {
	resp := strings.Replace(wellFormedResponse, "CLIP1_END: [00:40]", "CLIP1_END: [00:05]", 1)

	clips, report := ParseClipResponse(resp, testBounds)
	assert.Len(t, clips, 2)
	require.NotEmpty(t, report)
	assert.Contains(t, report[0], "clip 1")
}

func TestParseClipResponseGarbage(t *testing.T) {
	clips, report := ParseClipResponse("I could not find any clips, sorry.", testBounds)
	assert.Empty(t, clips)
	assert.Len(t, report, 3)
}

func TestParseClipResponseClampsScore(t *testing.T) {
	resp := strings.Replace(wellFormedResponse, "CLIP1_SCORE: [95]", "CLIP1_SCORE: [150]", 1)

	clips, _ := ParseClipResponse(resp, testBounds)
	require.NotEmpty(t, clips)
	assert.Equal(t, 100, clips[0].Score.Value)
}

func TestParseClipResponseDefaultReason(t *testing.T) {
	resp := `CLIP1_START: [00:10]
CLIP1_END: [00:40]
CLIP1_SCORE: [90]`

	clips, _ := ParseClipResponse(resp, testBounds)
	require.Len(t, clips, 1)
	assert.Equal(t, "Clip 1 selected for engagement", clips[0].Reason)
}

func TestAssembleBatchBackfillsShortfall(t *testing.T) {
	aiClips, _ := ParseClipResponse(`CLIP1_START: [00:10]
CLIP1_END: [00:40]
CLIP1_SCORE: [90]
CLIP1_REASON: Good.`, testBounds)
	require.Len(t, aiClips, 1)

	segs := []models.Segment{
		{StartSeconds: 100, EndSeconds: 120, Text: "A solid standalone moment"},
		{StartSeconds: 120, EndSeconds: 140, Text: "that wraps up cleanly."},
	}

	batch := AssembleBatch(aiClips, segs, 300, 3, testBounds)
	require.Len(t, batch, 3)

	assert.Equal(t, models.ScoreOriginAI, batch[0].Score.Origin)
	assert.Equal(t, models.ScoreOriginFallback, batch[1].Score.Origin)
	assert.Equal(t, "00:01:40", batch[1].StartTime)
	assert.Equal(t, models.ScoreOriginNone, batch[2].Score.Origin)
	assert.False(t, batch[2].Renderable())
}

func TestAssembleBatchAllPlaceholders(t *testing.T) {
	batch := AssembleBatch(nil, nil, 0, 3, testBounds)
	require.Len(t, batch, 3)
	for _, c := range batch {
		assert.Equal(t, models.PlaceholderTimestamp, c.StartTime)
		assert.Equal(t, "No clip found", c.Reason)
		assert.False(t, c.Processed)
	}
}

func TestAssembleBatchTruncatesExcess(t *testing.T) {
	clips, _ := ParseClipResponse(wellFormedResponse, testBounds)
	require.Len(t, clips, 3)

	batch := AssembleBatch(clips, nil, 0, 2, testBounds)
	require.Len(t, batch, 2)
	assert.Equal(t, "00:00:10", batch[0].StartTime)
	assert.Equal(t, "00:01:00", batch[1].StartTime)
}
