package types

import "fmt"

// PlantState is the cumulative growth state of one plant
type PlantState struct {
	Height      float64 `json:"height"`      // cm
	RootLength  float64 `json:"root_length"` // cm
	Flowers     int     `json:"flowers"`
	Appearance  float64 `json:"appearance"`   // 0-10
	StressLevel float64 `json:"stress_level"` // 0-1
}

// Status is the health classification derived from appearance
type Status string

const (
	StatusThriving   Status = "Thriving"
	StatusHealthy    Status = "Healthy"
	StatusAverage    Status = "Average"
	StatusStruggling Status = "Struggling"
	StatusCritical   Status = "Critical"
)

// ClassifyAppearance maps an appearance rating to a status
func ClassifyAppearance(appearance float64) Status {
	switch {
	case appearance >= 8:
		return StatusThriving
	case appearance >= 6:
		return StatusHealthy
	case appearance >= 4:
		return StatusAverage
	case appearance >= 2:
		return StatusStruggling
	default:
		return StatusCritical
	}
}

// String returns the short status name
func (s Status) String() string {
	return string(s)
}

// Description returns the long-form status text shown in reports
func (s Status) Description() string {
	switch s {
	case StatusThriving:
		return "Thriving - Vibrant and healthy"
	case StatusHealthy:
		return "Healthy - Growing well"
	case StatusAverage:
		return "Average - Some minor issues"
	case StatusStruggling:
		return "Struggling - Visible stress signs"
	case StatusCritical:
		return "Critical - Severe stress"
	}
	return fmt.Sprintf("Unknown (%s)", string(s))
}

// PlantSnapshot is one plant's state at the end of a simulated day
type PlantSnapshot struct {
	PlantID      int        `json:"plant_id"`
	State        PlantState `json:"state"`
	Status       Status     `json:"status"`
	GrowthFactor float64    `json:"growth_factor"`
}

// DailySnapshot bundles everything produced for one simulated day.
// Consumers must treat it as read-only.
type DailySnapshot struct {
	Day     int             `json:"day"`
	Phase   PhaseName       `json:"phase"`
	Reading Reading         `json:"environment"`
	Plants  []PlantSnapshot `json:"plants"`
	Error   ErrorStatus     `json:"error_status"`
}

// Clone returns a deep copy of the snapshot
func (s DailySnapshot) Clone() DailySnapshot {
	out := s
	out.Plants = append([]PlantSnapshot(nil), s.Plants...)
	return out
}

// Plant returns the snapshot for a plant ID
func (s DailySnapshot) Plant(id int) (PlantSnapshot, bool) {
	for _, p := range s.Plants {
		if p.PlantID == id {
			return p, true
		}
	}
	return PlantSnapshot{}, false
}
