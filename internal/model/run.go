package model

import "time"

// RunStatus represents the state of one category's report generation.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// CategoryRun is a ledger entry for one license category.
type CategoryRun struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Status      RunStatus  `json:"status"`
	Years       int        `json:"years"`
	Files       int        `json:"files"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
