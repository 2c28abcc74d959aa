package aiclient

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"clipperai/models"
)

// Transcriber is the raw transcription call wrapped by the retry controller.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Transcription, error)
}

// RetryPolicy bounds the transcription retry schedule: an initial attempt
// plus MaxRetries retries, sleeping BaseDelay*2^n before retry n.
type RetryPolicy struct {
	BaseDelay  time.Duration
	MaxRetries uint64
}

// DefaultRetryPolicy gives a 3-attempt budget with 10s and 20s waits.
var DefaultRetryPolicy = RetryPolicy{BaseDelay: 10 * time.Second, MaxRetries: 2}

// Backoff builds the retry schedule. onWait, if non-nil, is invoked with each
// upcoming delay before the controller sleeps, so the owning task can surface
// the wait to pollers. The delay blocks only the calling goroutine and aborts
// early if the context is cancelled.
func (p RetryPolicy) Backoff(onWait func(time.Duration)) retry.Backoff {
	b := retry.WithMaxRetries(p.MaxRetries, retry.NewExponential(p.BaseDelay))
	if onWait == nil {
		return b
	}
	return retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := b.Next()
		if !stop {
			onWait(next)
		}
		return next, stop
	})
}

// TranscribeWithRetry invokes the transcription call under the retry policy.
// Only rate-limit-shaped errors are retried; any other failure is terminal on
// the spot as a TranscriptionError. An exhausted budget is reported as a
// RateLimitError, distinguishable from a generic transcription failure.
func TranscribeWithRetry(ctx context.Context, t Transcriber, audioPath string, p RetryPolicy, log *logrus.Entry, onWait func(time.Duration)) (Transcription, error) {
	var out Transcription
	attempt := 0
	err := retry.Do(ctx, p.Backoff(onWait), func(ctx context.Context) error {
		attempt++
		res, err := t.Transcribe(ctx, audioPath)
		if err != nil {
			if IsRateLimited(err) {
				if log != nil {
					log.WithField("attempt", attempt).WithError(err).Warn("Transcription rate limited")
				}
				return retry.RetryableError(err)
			}
			return &models.TranscriptionError{Err: err}
		}
		out = res
		return nil
	})
	if err != nil {
		if IsRateLimited(err) {
			return Transcription{}, &models.RateLimitError{Err: err}
		}
		return Transcription{}, err
	}
	return out, nil
}
