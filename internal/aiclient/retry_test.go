package aiclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipperai/models"
)

// flakyTranscriber fails with scripted errors before succeeding.
type flakyTranscriber struct {
	errs     []error
	attempts int
	result   Transcription
}

func (f *flakyTranscriber) Transcribe(ctx context.Context, audioPath string) (Transcription, error) {
	f.attempts++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return Transcription{}, err
	}
	return f.result, nil
}

var testPolicy = RetryPolicy{BaseDelay: time.Millisecond, MaxRetries: 2}

func TestTranscribeWithRetrySucceedsAfterRateLimits(t *testing.T) {
	rl := errors.New("quota exceeded for model")
	ft := &flakyTranscriber{
		errs:   []error{rl, rl},
		result: Transcription{Transcript: "[00:01] ok.", Language: "English"},
	}

	var waits []time.Duration
	out, err := TranscribeWithRetry(context.Background(), ft, "a.mp3", testPolicy, nil, func(d time.Duration) {
		waits = append(waits, d)
	})
	require.NoError(t, err)
	assert.Equal(t, "[00:01] ok.", out.Transcript)
	assert.Equal(t, 3, ft.attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestTranscribeWithRetryExhaustsBudget(t *testing.T) {
	// Three straight rate limits exhaust the budget; the success a fourth
	// attempt would have seen is never reached.
	rl := errors.New("429 too many requests")
	ft := &flakyTranscriber{
		errs:   []error{rl, rl, rl},
		result: Transcription{Transcript: "[00:01] unreachable."},
	}

	_, err := TranscribeWithRetry(context.Background(), ft, "a.mp3", testPolicy, nil, nil)
	require.Error(t, err)

	var rlErr *models.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 3, ft.attempts)
}

func TestTranscribeWithRetryRetriesBareRateSignature(t *testing.T) {
	// "rate exceeded" has no "limit" or "quota" wording but is still a
	// throttle signal: it must burn the full retry budget, not abort.
	rl := errors.New("rate exceeded for resource")
	ft := &flakyTranscriber{errs: []error{rl, rl, rl}}

	_, err := TranscribeWithRetry(context.Background(), ft, "a.mp3", testPolicy, nil, nil)
	require.Error(t, err)

	var rlErr *models.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 3, ft.attempts)
}

func TestTranscribeWithRetryNonRateLimitFailsImmediately(t *testing.T) {
	ft := &flakyTranscriber{errs: []error{errors.New("audio codec unsupported")}}

	_, err := TranscribeWithRetry(context.Background(), ft, "a.mp3", testPolicy, nil, nil)
	require.Error(t, err)

	var trErr *models.TranscriptionError
	assert.True(t, errors.As(err, &trErr))

	var rlErr *models.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
	assert.Equal(t, 1, ft.attempts)
}

func TestDefaultRetryPolicySchedule(t *testing.T) {
	assert.Equal(t, 10*time.Second, DefaultRetryPolicy.BaseDelay)
	assert.Equal(t, uint64(2), DefaultRetryPolicy.MaxRetries)

	b := DefaultRetryPolicy.Backoff(nil)
	d1, stop := b.Next()
	require.False(t, stop)
	assert.Equal(t, 10*time.Second, d1)

	d2, stop := b.Next()
	require.False(t, stop)
	assert.Equal(t, 20*time.Second, d2)

	_, stop = b.Next()
	assert.True(t, stop)
}
