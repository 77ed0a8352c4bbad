package events

import (
	"context"
	"time"

	"github.com/steveyegge/flaxsim/internal/types"
)

// EventType represents the type of event that occurred during a run.
type EventType string

const (
	// EventTypeRunStarted indicates a simulation run began
	EventTypeRunStarted EventType = "run_started"
	// EventTypeRunCompleted indicates a simulation run simulated its last day
	EventTypeRunCompleted EventType = "run_completed"
	// EventTypePhaseChanged indicates the calendar entered a new growth phase
	EventTypePhaseChanged EventType = "phase_changed"
	// EventTypeEnvironmentFault indicates a parameter left its optimal range
	EventTypeEnvironmentFault EventType = "environment_fault"
	// EventTypePlantStatusChanged indicates a plant moved to another health status
	EventTypePlantStatusChanged EventType = "plant_status_changed"
	// EventTypeGrowthCapReached indicates a plant metric hit its configured maximum
	EventTypeGrowthCapReached EventType = "growth_cap_reached"
)

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityCritical indicates events requiring immediate attention
	SeverityCritical EventSeverity = "critical"
)

// SimEvent is something noteworthy that happened on a simulated day.
type SimEvent struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event was recorded (wall clock)
	Timestamp time.Time `json:"timestamp"`
	// RunID is the run that produced this event
	RunID string `json:"run_id"`
	// Day is the simulated day, 0 for run-level events before day 1
	Day int `json:"day"`
	// PlantID is the plant concerned, 0 for greenhouse-wide events
	PlantID int `json:"plant_id,omitempty"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data"`
}

// RunStartedData contains structured data for run start events.
type RunStartedData struct {
	Seed      int64 `json:"seed"`
	TotalDays int   `json:"total_days"`
	NumPlants int   `json:"num_plants"`
}

// RunCompletedData contains structured data for run completion events.
type RunCompletedData struct {
	Days   int `json:"days"`
	Faults int `json:"faults"`
}

// PhaseChangedData contains structured data for phase transitions.
type PhaseChangedData struct {
	From types.PhaseName `json:"from"`
	To   types.PhaseName `json:"to"`
}

// EnvironmentFaultData contains structured data for environmental faults.
type EnvironmentFaultData struct {
	Param     types.Param     `json:"param"`
	Direction types.Direction `json:"direction"`
	Value     float64         `json:"value"`
	Min       float64         `json:"min"`
	Max       float64         `json:"max"`
}

// PlantStatusChangedData contains structured data for status transitions.
type PlantStatusChangedData struct {
	From       types.Status `json:"from"`
	To         types.Status `json:"to"`
	Appearance float64      `json:"appearance"`
}

// GrowthCapReachedData contains structured data for growth caps.
type GrowthCapReachedData struct {
	// Metric is one of height, root_length, flowers
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Max    float64 `json:"max"`
}

// EventStore defines the interface for storing and retrieving run events.
type EventStore interface {
	// StoreEvent stores a new event in the event store
	StoreEvent(ctx context.Context, event *SimEvent) error

	// GetEvents retrieves events matching the given filter, ordered by day then timestamp
	GetEvents(ctx context.Context, filter EventFilter) ([]*SimEvent, error)
}

// EventFilter defines criteria for filtering events.
type EventFilter struct {
	// RunID filters events by run
	RunID string
	// Type filters events by event type
	Type EventType
	// Severity filters events by severity level
	Severity EventSeverity
	// PlantID filters events by plant (0 = any)
	PlantID int
	// Limit limits the number of events returned
	Limit int
}

// IsValid reports whether t is a known event type
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeRunStarted, EventTypeRunCompleted, EventTypePhaseChanged,
		EventTypeEnvironmentFault, EventTypePlantStatusChanged, EventTypeGrowthCapReached:
		return true
	}
	return false
}

// IsValid reports whether s is a known severity
func (s EventSeverity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}
