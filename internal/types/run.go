package types

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrRunNotFound is returned by run stores when no run has the requested ID
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a stored run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusAborted   RunStatus = "aborted"
)

// IsValid checks if the status value is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusCompleted, RunStatusAborted:
		return true
	}
	return false
}

// Run is the persisted record of one simulation run
type Run struct {
	ID          string          `json:"id"`
	Seed        int64           `json:"seed"`
	TotalDays   int             `json:"total_days"`
	NumPlants   int             `json:"num_plants"`
	Status      RunStatus       `json:"status"`
	Config      json.RawMessage `json:"config,omitempty"`
	Summary     json.RawMessage `json:"summary,omitempty"`
	DaysRun     int             `json:"days_run"`
	Faults      int             `json:"faults"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// Duration returns the wall-clock time the run took, or zero while running
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// RunFilter narrows ListRuns results
type RunFilter struct {
	Status RunStatus
	Limit  int
}
