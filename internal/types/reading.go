package types

import "fmt"

// Direction tells whether a faulty parameter is below or above its range
type Direction string

const (
	DirectionLow  Direction = "low"
	DirectionHigh Direction = "high"
)

// ErrorStatus describes the simulated environmental fault of a day, if any.
// A fault is expected data, not an engine failure.
type ErrorStatus struct {
	Active      bool      `json:"error_active"`
	Param       Param     `json:"error_param,omitempty"`
	Direction   Direction `json:"error_direction,omitempty"`
	Description string    `json:"error_description"`
}

// NewErrorStatus builds an active fault for a parameter pushed out of range
func NewErrorStatus(p Param, dir Direction, value float64) ErrorStatus {
	word := "low"
	if dir == DirectionHigh {
		word = "high"
	}
	return ErrorStatus{
		Active:      true,
		Param:       p,
		Direction:   dir,
		Description: fmt.Sprintf("%s too %s: %.1f%s", p.Label(), word, value, p.Unit()),
	}
}

// Reading is one day's realized environment together with the phase ranges it
// was produced against. Readings are values; copies never share state.
type Reading struct {
	Day         int         `json:"day"`
	Phase       PhaseName   `json:"phase"`
	Temperature float64     `json:"temperature"`
	Ventilation float64     `json:"ventilation"`
	Irrigation  float64     `json:"irrigation"`
	LightHours  float64     `json:"light_hours"`
	Ranges      PhaseRanges `json:"ranges"`
	Error       ErrorStatus `json:"error_status"`
}

// Value returns the realized value of a parameter
func (r Reading) Value(p Param) float64 {
	switch p {
	case ParamTemperature:
		return r.Temperature
	case ParamVentilation:
		return r.Ventilation
	case ParamIrrigation:
		return r.Irrigation
	case ParamLightHours:
		return r.LightHours
	}
	return 0
}

// Range returns the phase range carried with the reading for a parameter
func (r Reading) Range(p Param) Range {
	return r.Ranges.Get(p)
}

// With returns a copy of the reading with one parameter replaced
func (r Reading) With(p Param, v float64) Reading {
	switch p {
	case ParamTemperature:
		r.Temperature = v
	case ParamVentilation:
		r.Ventilation = v
	case ParamIrrigation:
		r.Irrigation = v
	case ParamLightHours:
		r.LightHours = v
	}
	return r
}
