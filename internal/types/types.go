package types

import (
	"fmt"
	"math"
)

// PhaseName identifies one of the four sequential growth stages of a flax plant
type PhaseName string

const (
	PhaseGermination PhaseName = "germination"
	PhaseGrowth      PhaseName = "growth"
	PhaseFlowering   PhaseName = "flowering"
	PhaseRipening    PhaseName = "ripening"

	// PhaseUnknown is returned by lookups for days outside every configured range,
	// before any fallback is applied
	PhaseUnknown PhaseName = "unknown"
)

// AllPhases returns the growth phases in calendar order
func AllPhases() []PhaseName {
	return []PhaseName{PhaseGermination, PhaseGrowth, PhaseFlowering, PhaseRipening}
}

// IsValid checks if the phase is one of the four growth phases
func (p PhaseName) IsValid() bool {
	switch p {
	case PhaseGermination, PhaseGrowth, PhaseFlowering, PhaseRipening:
		return true
	}
	return false
}

// Flowering reports whether plants can produce flowers during this phase
func (p PhaseName) Flowering() bool {
	return p == PhaseFlowering || p == PhaseRipening
}

// Param identifies a controlled environmental parameter
type Param string

const (
	ParamTemperature Param = "temperature"
	ParamVentilation Param = "ventilation"
	ParamIrrigation  Param = "irrigation"
	ParamLightHours  Param = "light_hours"
)

// AllParams returns the environmental parameters in their canonical order.
// The order matters: random parameter selection and CSV columns follow it.
func AllParams() []Param {
	return []Param{ParamTemperature, ParamVentilation, ParamIrrigation, ParamLightHours}
}

// IsValid checks if the parameter name is known
func (p Param) IsValid() bool {
	switch p {
	case ParamTemperature, ParamVentilation, ParamIrrigation, ParamLightHours:
		return true
	}
	return false
}

// Unit returns the display unit of the parameter
func (p Param) Unit() string {
	switch p {
	case ParamTemperature:
		return "°C"
	case ParamVentilation:
		return "/hr"
	case ParamIrrigation:
		return "ml"
	case ParamLightHours:
		return "hrs"
	}
	return ""
}

// Label returns the capitalized human-readable name used in fault descriptions
func (p Param) Label() string {
	switch p {
	case ParamTemperature:
		return "Temperature"
	case ParamVentilation:
		return "Ventilation"
	case ParamIrrigation:
		return "Irrigation"
	case ParamLightHours:
		return "Light hours"
	}
	return string(p)
}

// Range is the (min, max, optimal) triple for one parameter in one phase
type Range struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Optimal float64 `json:"optimal" yaml:"optimal"`
}

// Validate checks min <= optimal <= max and a positive lower bound.
// Penalties are computed relative to Min, so a zero Min would divide by zero.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsNaN(r.Optimal) {
		return fmt.Errorf("range values must be numbers (got %v)", r)
	}
	if r.Min <= 0 {
		return fmt.Errorf("min must be positive (got %g)", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min (%g) must be <= max (%g)", r.Min, r.Max)
	}
	if r.Optimal < r.Min || r.Optimal > r.Max {
		return fmt.Errorf("optimal (%g) must be within [%g, %g]", r.Optimal, r.Min, r.Max)
	}
	return nil
}

// Contains reports whether v lies within [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Midpoint returns the center of the range
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// String returns a compact representation of the range
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g] opt %g", r.Min, r.Max, r.Optimal)
}

// PhaseRanges holds the optimal ranges of all four parameters for one phase
type PhaseRanges struct {
	Temperature Range `json:"temperature" yaml:"temperature"`
	Ventilation Range `json:"ventilation" yaml:"ventilation"`
	Irrigation  Range `json:"irrigation" yaml:"irrigation"`
	LightHours  Range `json:"light_hours" yaml:"light_hours"`
}

// Get returns the range for a parameter
func (r PhaseRanges) Get(p Param) Range {
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
	return Range{}
}

// Validate checks every parameter range
func (r PhaseRanges) Validate() error {
	for _, p := range AllParams() {
		if err := r.Get(p).Validate(); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
