package highlights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipperai/internal/transcript"
	"clipperai/models"
)

var testBounds = Bounds{MinSeconds: 16, MaxSeconds: 60}

func passage(start, end int, text string) models.Passage {
	return models.Passage{Text: text, StartSeconds: start, EndSeconds: end}
}

func TestBoundsContains(t *testing.T) {
	assert.True(t, testBounds.Contains(16))
	assert.True(t, testBounds.Contains(60))
	assert.False(t, testBounds.Contains(15))
	assert.False(t, testBounds.Contains(61))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		p    models.Passage
		want int
	}{
		{"sweet spot duration", passage(0, 30, "hello world"), 60},
		{"short duration", passage(0, 20, "hi"), 45},
		{"below short threshold", passage(0, 10, "hi"), 40},
		{"question bonus", passage(0, 30, "really? yes"), 70},
		{"hook word bonus", passage(0, 30, "because x"), 65},
		{"length bonus capped", passage(0, 30, strings.Repeat("abcde ", 50)), 75},
		{"all bonuses", passage(0, 30, strings.Repeat("abcde ", 50) + "why? because"), 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.p))
		})
	}
}

func TestScoreNeverReaches100(t *testing.T) {
	extreme := passage(0, 40, strings.Repeat("because? secret! finally ", 40))
	assert.LessOrEqual(t, Score(extreme), 99)
}

func TestSelectClipsRanksByScore(t *testing.T) {
	segs := []models.Segment{
		{StartSeconds: 0, EndSeconds: 20, Text: "Here is something interesting to think about today"},
		{StartSeconds: 20, EndSeconds: 40, Text: "because the secret is finally out."},
		{StartSeconds: 40, EndSeconds: 70, Text: "Another thought begins here"},
		{StartSeconds: 70, EndSeconds: 100, Text: "and it ends with a question?"},
	}

	clips := SelectClips(segs, 300, 3, testBounds)
	require.Len(t, clips, 2)

	// The question-bearing passage outscores the hook-word one.
	assert.Equal(t, "00:00:40", clips[0].StartTime)
	assert.Equal(t, 72, clips[0].Score.Value)
	assert.Equal(t, "00:00:00", clips[1].StartTime)
	assert.Equal(t, 69, clips[1].Score.Value)
	for _, c := range clips {
		assert.Equal(t, models.ScoreOriginFallback, c.Score.Origin)
	}
}

func TestSelectClipsTimeSliceFallback(t *testing.T) {
	// No sentence boundary anywhere: selection degrades to synthetic slices.
	segs := []models.Segment{
		{StartSeconds: 0, EndSeconds: 150, Text: "endless run-on speech"},
		{StartSeconds: 150, EndSeconds: 300, Text: "still no punctuation"},
	}

	clips := SelectClips(segs, 300, 3, testBounds)
	require.Len(t, clips, 3)
	assert.Equal(t, "00:00:05", clips[0].StartTime)
	assert.Equal(t, "00:01:05", clips[1].StartTime)
	assert.Equal(t, "00:02:05", clips[2].StartTime)
	for _, c := range clips {
		assert.Equal(t, models.ScoreOriginFallback, c.Score.Origin)
	}
}

func TestSelectClipsRelaxedSecondPass(t *testing.T) {
	segs := []models.Segment{
		{StartSeconds: 0, EndSeconds: 30, Text: "Good one here today ok fine."},
		{StartSeconds: 30, EndSeconds: 130, Text: "A very long rambling passage."},
	}

	clips := SelectClips(segs, 300, 2, testBounds)
	require.Len(t, clips, 2)

	assert.Equal(t, models.ScoreOriginFallback, clips[0].Score.Origin)
	assert.Equal(t, "00:00:00", clips[0].StartTime)

	// Second slot comes from the relaxed pass over the oversized passage.
	assert.Equal(t, models.ScoreOriginRelaxed, clips[1].Score.Origin)
	assert.Equal(t, 30, clips[1].Score.Value)
	assert.Equal(t, "00:00:30", clips[1].StartTime)
}

func TestSelectClipsNeverOverlap(t *testing.T) {
	segs := []models.Segment{
		{StartSeconds: 0, EndSeconds: 20, Text: "First idea lands here."},
		{StartSeconds: 10, EndSeconds: 40, Text: "Overlapping second idea."},
		{StartSeconds: 50, EndSeconds: 80, Text: "Third idea stands alone."},
	}

	clips := SelectClips(segs, 300, 3, testBounds)
	for i := range clips {
		for j := i + 1; j < len(clips); j++ {
			a, b := clips[i], clips[j]
			overlaps := a.StartTime < b.EndTime && b.StartTime < a.EndTime
			assert.False(t, overlaps, "clips %d and %d overlap", i, j)
		}
	}
}

func TestSelectClipsFromShortTranscript(t *testing.T) {
	segs := transcript.ParseSegments(
		"[00:00] First passage ends right here.\n"+
			"[00:20] Second passage starts now\n"+
			"[00:40] and finishes cleanly.",
		90,
	)
	require.Len(t, segs, 3)

	clips := SelectClips(segs, 90, 2, testBounds)
	require.Len(t, clips, 2)
	for _, c := range clips {
		assert.Equal(t, models.ScoreOriginFallback, c.Score.Origin)
		assert.GreaterOrEqual(t, c.Score.Value, 40)
	}
	assert.True(t, clips[0].EndTime <= clips[1].StartTime || clips[1].EndTime <= clips[0].StartTime)
}

func TestSelectClipsZeroRequested(t *testing.T) {
	assert.Nil(t, SelectClips(nil, 300, 0, testBounds))
}
