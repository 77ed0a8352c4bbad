// Package plant holds the per-plant growth state machine.
package plant

import (
	"math"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/rng"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Natural variability bounds
const (
	minVariation       = 0.9
	maxVariation       = 1.1
	appearanceNoise    = 0.3
	sigmoidSteepness   = 10.0
	minAppearanceScale = 0.0
	maxAppearanceScale = 10.0
)

// Plant owns the cumulative state of one plant.
// Each plant draws from its own random stream, so plants can be advanced in
// parallel within a day without changing the outcome.
type Plant struct {
	id         int
	cfg        config.PlantConfig
	appearance map[types.PhaseName]config.AppearanceRange
	src        rng.Source

	state        types.PlantState
	growthFactor float64
}

// New creates a freshly sown plant
func New(id int, cfg config.SimulationConfig, src rng.Source) *Plant {
	return &Plant{
		id:         id,
		cfg:        cfg.Plant,
		appearance: cfg.Appearance,
		src:        src,
		state:      types.PlantState{Appearance: cfg.Plant.InitialAppearance},
	}
}

// ID returns the plant identifier (1-based)
func (p *Plant) ID() int { return p.id }

// State returns a copy of the current state
func (p *Plant) State() types.PlantState { return p.state }

// Status classifies the current appearance
func (p *Plant) Status() types.Status { return types.ClassifyAppearance(p.state.Appearance) }

// Snapshot returns the plant's end-of-day view
func (p *Plant) Snapshot() types.PlantSnapshot {
	return types.PlantSnapshot{
		PlantID:      p.id,
		State:        p.state,
		Status:       p.Status(),
		GrowthFactor: p.growthFactor,
	}
}

// Sigmoid returns the S-curve weight of a phase-local day:
// about 0 at the phase start, 0.5 at the midpoint and about 1 at the end.
func Sigmoid(localDay, phaseLength int) float64 {
	if phaseLength <= 0 {
		return 0
	}
	progress := float64(localDay) / float64(phaseLength)
	return 1 / (1 + math.Exp(-sigmoidSteepness*(progress-0.5)))
}

// Advance applies one day of growth and returns the new state.
//
// The daily ceiling of each metric is its global maximum times the phase share,
// spread over the phase length. That ceiling is scaled by the sigmoid weight, the
// growth factor and an independent ±10% variation. Flowers only grow in the
// flowering and ripening phases and the running total is re-rounded every day.
func (p *Plant) Advance(phase types.PhaseName, localDay, phaseLength int, growthFactor, stress float64) types.PlantState {
	sig := Sigmoid(localDay, phaseLength)
	days := float64(max(phaseLength, 1))

	heightInc := p.cfg.MaxHeight * p.cfg.HeightShare[phase] / days * sig * growthFactor
	rootInc := p.cfg.MaxRootLength * p.cfg.RootShare[phase] / days * sig * growthFactor
	flowerInc := 0.0
	if phase.Flowering() {
		flowerInc = float64(p.cfg.MaxFlowers) * p.cfg.FlowerShare[phase] / days * sig * growthFactor
	}

	heightInc *= rng.Uniform(p.src, minVariation, maxVariation)
	rootInc *= rng.Uniform(p.src, minVariation, maxVariation)
	flowerInc *= rng.Uniform(p.src, minVariation, maxVariation)

	// growth never reverses
	p.state.Height = math.Min(p.state.Height+math.Max(heightInc, 0), p.cfg.MaxHeight)
	p.state.RootLength = math.Min(p.state.RootLength+math.Max(rootInc, 0), p.cfg.MaxRootLength)
	flowers := int(math.Round(float64(p.state.Flowers) + math.Max(flowerInc, 0)))
	p.state.Flowers = min(flowers, p.cfg.MaxFlowers)

	p.state.StressLevel = stress
	p.state.Appearance = p.appearanceFor(phase, stress)
	p.growthFactor = growthFactor

	return p.state
}

func (p *Plant) appearanceFor(phase types.PhaseName, stress float64) float64 {
	band := p.appearance[phase]
	base := band.Min + (band.Max-band.Min)*(1-stress)
	v := base + rng.Uniform(p.src, -appearanceNoise, appearanceNoise)
	v = math.Max(minAppearanceScale, math.Min(maxAppearanceScale, v))
	return math.Round(v*10) / 10
}

// Average returns the mean state across plants. Height, root length and
// appearance are rounded to one decimal, flowers to the nearest whole flower.
func Average(states []types.PlantState) types.PlantState {
	if len(states) == 0 {
		return types.PlantState{}
	}
	var sum types.PlantState
	var flowers float64
	for _, s := range states {
		sum.Height += s.Height
		sum.RootLength += s.RootLength
		flowers += float64(s.Flowers)
		sum.Appearance += s.Appearance
		sum.StressLevel += s.StressLevel
	}
	n := float64(len(states))
	return types.PlantState{
		Height:      round1(sum.Height / n),
		RootLength:  round1(sum.RootLength / n),
		Flowers:     int(math.Round(flowers / n)),
		Appearance:  round1(sum.Appearance / n),
		StressLevel: sum.StressLevel / n,
	}
}
