package environment

import (
	"maps"

	"github.com/steveyegge/flaxsim/internal/types"
)

// Overrides pins parameters to fixed values (manual control)
type Overrides map[types.Param]float64

// Apply returns r with every pinned value substituted
func (o Overrides) Apply(r types.Reading) types.Reading {
	for _, p := range types.AllParams() {
		if v, ok := o[p]; ok {
			r = r.With(p, v)
		}
	}
	return r
}

// Clone returns an independent copy
func (o Overrides) Clone() Overrides {
	return maps.Clone(o)
}

// NewReading builds a reading from externally sourced values, such as sensors.
// Parameters missing from values are taken at their optimal setpoint.
func NewReading(day int, phase types.PhaseName, ranges types.PhaseRanges, values map[types.Param]float64) types.Reading {
	r := types.Reading{Day: day, Phase: phase, Ranges: ranges}
	for _, p := range types.AllParams() {
		v, ok := values[p]
		if !ok {
			v = ranges.Get(p).Optimal
		}
		r = r.With(p, v)
	}
	r.Error = Classify(r)
	return r
}

// Classify reports the first parameter (in canonical order) outside its range
func Classify(r types.Reading) types.ErrorStatus {
	for _, p := range types.AllParams() {
		rg := r.Range(p)
		v := r.Value(p)
		switch {
		case v < rg.Min:
			return types.NewErrorStatus(p, types.DirectionLow, v)
		case v > rg.Max:
			return types.NewErrorStatus(p, types.DirectionHigh, v)
		}
	}
	return types.ErrorStatus{}
}
