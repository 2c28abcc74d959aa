package models

import "fmt"

// Pipeline error taxonomy. Errors at or above the transcription level abort a
// task; AnalysisError is always recoverable via the heuristic fallback and
// RenderError is absorbed into the affected clip's reason.

// ValidationError rejects a request before any download happens (duration
// over the ceiling, unusable manual times).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// DownloadError wraps a failure to fetch the source video or its metadata.
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string { return "download failed: " + e.Err.Error() }
func (e *DownloadError) Unwrap() error { return e.Err }

// ExtractionError wraps an audio extraction failure.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "audio extraction failed: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// RateLimitError is the distinct terminal failure reported after the retry
// budget is exhausted on rate-limit-shaped transcription errors, so callers
// can offer "try again later" messaging.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return "rate limit exceeded: " + e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// TranscriptionError is a non-retryable transcription failure.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return "transcription failed: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// AnalysisError is an AI analysis failure. It never fails a task on its own;
// the orchestrator falls back to heuristic selection.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return "analysis failed: " + e.Err.Error() }
func (e *AnalysisError) Unwrap() error { return e.Err }

// RenderError is a per-clip render failure; it degrades the candidate to
// processed=false rather than failing the batch.
type RenderError struct {
	Clip int
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed for clip %d: %v", e.Clip, e.Err)
}
func (e *RenderError) Unwrap() error { return e.Err }
