package domain

import "time"

// RunState is the lifecycle state of a ship cycle.
type RunState string

const (
	RunRunning RunState = "running"
	RunSuccess RunState = "success"
	RunFailed  RunState = "failed"
)

// RunStatus describes the latest ship cycle. It is persisted as a single
// JSON object and overwritten on every transition; no history is kept.
type RunStatus struct {
	Status          RunState  `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	FilesProcessed  int       `json:"files_processed"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// FailureRecord is the metadata sidecar written next to a quarantined bucket
// file. Created once when the file is quarantined, never mutated afterward.
type FailureRecord struct {
	FailedAt      time.Time `json:"failed_at"`
	ErrorMessage  string    `json:"error_message"`
	RetryAttempts int       `json:"retry_attempts"`
}
