package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/flaxsim/internal/types"
)

func newEvent(runID string, t EventType, day, plantID int, severity EventSeverity, message string) *SimEvent {
	return &SimEvent{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
		RunID:     runID,
		Day:       day,
		PlantID:   plantID,
		Severity:  severity,
		Message:   message,
	}
}

// NewRunStartedEvent creates an event for the start of a run.
func NewRunStartedEvent(runID string, data RunStartedData) (*SimEvent, error) {
	event := newEvent(runID, EventTypeRunStarted, 0, 0, SeverityInfo,
		fmt.Sprintf("Run started: %d plants, %d days, seed %d", data.NumPlants, data.TotalDays, data.Seed))
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert RunStartedData: %w", err)
	}
	return event, nil
}

// NewRunCompletedEvent creates an event for the end of a run.
func NewRunCompletedEvent(runID string, data RunCompletedData) (*SimEvent, error) {
	event := newEvent(runID, EventTypeRunCompleted, data.Days, 0, SeverityInfo,
		fmt.Sprintf("Run completed after %d days with %d environment faults", data.Days, data.Faults))
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert RunCompletedData: %w", err)
	}
	return event, nil
}

// NewPhaseChangedEvent creates an event for a phase transition.
func NewPhaseChangedEvent(runID string, day int, data PhaseChangedData) (*SimEvent, error) {
	msg := fmt.Sprintf("Entered %s phase", data.To)
	if data.From != "" {
		msg = fmt.Sprintf("Phase changed from %s to %s", data.From, data.To)
	}
	event := newEvent(runID, EventTypePhaseChanged, day, 0, SeverityInfo, msg)
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert PhaseChangedData: %w", err)
	}
	return event, nil
}

// NewEnvironmentFaultEvent creates an event for an out-of-range parameter.
func NewEnvironmentFaultEvent(runID string, day int, severity EventSeverity, description string, data EnvironmentFaultData) (*SimEvent, error) {
	event := newEvent(runID, EventTypeEnvironmentFault, day, 0, severity, description)
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert EnvironmentFaultData: %w", err)
	}
	return event, nil
}

// NewPlantStatusChangedEvent creates an event for a health status transition.
func NewPlantStatusChangedEvent(runID string, day, plantID int, data PlantStatusChangedData) (*SimEvent, error) {
	event := newEvent(runID, EventTypePlantStatusChanged, day, plantID, statusSeverity(data.From, data.To),
		fmt.Sprintf("Plant %d: %s -> %s", plantID, data.From, data.To.Description()))
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert PlantStatusChangedData: %w", err)
	}
	return event, nil
}

// NewGrowthCapReachedEvent creates an event for a metric reaching its maximum.
func NewGrowthCapReachedEvent(runID string, day, plantID int, data GrowthCapReachedData) (*SimEvent, error) {
	event := newEvent(runID, EventTypeGrowthCapReached, day, plantID, SeverityInfo,
		fmt.Sprintf("Plant %d reached maximum %s (%g)", plantID, data.Metric, data.Max))
	if err := event.setData(data); err != nil {
		return nil, fmt.Errorf("failed to convert GrowthCapReachedData: %w", err)
	}
	return event, nil
}

// statusRank orders statuses from worst (0) to best (4)
func statusRank(s types.Status) int {
	switch s {
	case types.StatusCritical:
		return 0
	case types.StatusStruggling:
		return 1
	case types.StatusAverage:
		return 2
	case types.StatusHealthy:
		return 3
	case types.StatusThriving:
		return 4
	}
	return 2
}

func statusSeverity(from, to types.Status) EventSeverity {
	switch {
	case to == types.StatusCritical:
		return SeverityCritical
	case statusRank(to) < statusRank(from):
		return SeverityWarning
	}
	return SeverityInfo
}
