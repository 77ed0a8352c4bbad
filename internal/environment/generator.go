// Package environment produces the daily greenhouse climate readings.
package environment

import (
	"math"

	"github.com/steveyegge/flaxsim/internal/calendar"
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/rng"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Generator samples one Reading per day from the phase-optimal ranges and,
// with the configured probability, pushes a single parameter out of range.
// A Generator is not safe for concurrent use.
type Generator struct {
	cal       *calendar.Calendar
	ranges    map[types.PhaseName]types.PhaseRanges
	faults    config.ErrorSimulationConfig
	src       rng.Source
	overrides Overrides
}

// NewGenerator creates a generator for a validated configuration
func NewGenerator(cfg config.SimulationConfig, cal *calendar.Calendar, src rng.Source) *Generator {
	return &Generator{
		cal:       cal,
		ranges:    cfg.Environment,
		faults:    cfg.Errors,
		src:       src,
		overrides: Overrides{},
	}
}

// Ranges returns the optimal ranges of a phase
func (g *Generator) Ranges(phase types.PhaseName) types.PhaseRanges {
	return g.ranges[phase]
}

// Overrides returns the pinned parameter values (read-only view)
func (g *Generator) Overrides() Overrides {
	return g.overrides.Clone()
}

// SetOverride pins p to v on every subsequent reading until cleared
func (g *Generator) SetOverride(p types.Param, v float64) {
	g.overrides[p] = v
}

// ClearOverride removes the pin on p
func (g *Generator) ClearOverride(p types.Param) {
	delete(g.overrides, p)
}

// ClearOverrides removes every pin
func (g *Generator) ClearOverrides() {
	g.overrides = Overrides{}
}

// Generate produces the reading for day.
//
// All four parameters are sampled within range first; a fault, when drawn,
// then replaces exactly one of them. Pinned overrides are applied last and
// the fault status is re-derived from the final values.
func (g *Generator) Generate(day int) types.Reading {
	phase := g.cal.PhaseForDay(day)
	ranges := g.ranges[phase]

	faulty := g.faults.Enabled && g.src.Float64() < g.faults.Probability

	r := types.Reading{Day: day, Phase: phase, Ranges: ranges}
	for _, p := range types.AllParams() {
		rg := ranges.Get(p)
		r = r.With(p, round1(rng.Uniform(g.src, rg.Min, rg.Max)))
	}

	if faulty {
		r = g.injectFault(r)
	}

	if len(g.overrides) > 0 {
		r = g.overrides.Apply(r)
		r.Error = Classify(r)
	}
	return r
}

func (g *Generator) injectFault(r types.Reading) types.Reading {
	params := types.AllParams()
	p := params[g.src.IntN(len(params))]
	rg := r.Ranges.Get(p)
	dev := g.faults.Deviations[p]

	dir := types.DirectionHigh
	if g.src.Float64() < 0.5 {
		dir = types.DirectionLow
	}
	magnitude := rng.Uniform(g.src, dev.Min, dev.Max)

	var v float64
	if dir == types.DirectionLow {
		v = rg.Min - magnitude
	} else {
		v = rg.Max + magnitude
	}
	v = dev.Clamp(v)

	r = r.With(p, v)
	r.Error = types.NewErrorStatus(p, dir, v)
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
