package models

import "time"

// TaskStatus enumerates the orchestration stages. Transitions are strictly
// forward within one run; completed and error are terminal.
type TaskStatus string

const (
	StatusStarting        TaskStatus = "starting"
	StatusValidating      TaskStatus = "validating"
	StatusDownloading     TaskStatus = "downloading"
	StatusExtractingAudio TaskStatus = "extracting_audio"
	StatusTranscribing    TaskStatus = "transcribing"
	StatusAnalyzing       TaskStatus = "analyzing"
	StatusClipping        TaskStatus = "clipping"
	StatusCompleted       TaskStatus = "completed"
	StatusError           TaskStatus = "error"
)

// Terminal reports whether the status ends a run.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Task is one end-to-end request to produce clips from a single video. The
// owning orchestration run is the sole writer of its fields; the polling
// endpoint only ever sees copies.
type Task struct {
	ID        string      `json:"task_id"`
	Status    TaskStatus  `json:"status"`
	Progress  float64     `json:"progress"`
	Message   string      `json:"message"`
	Result    *ClipResult `json:"result,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
