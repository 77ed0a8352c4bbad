// Package growth scores how favorable a day's environment is for the plants.
package growth

import (
	"math"

	"github.com/steveyegge/flaxsim/internal/types"
)

// Growth factor and stress bounds
const (
	MinGrowthFactor = 0.1
	MaxGrowthFactor = 1.2
	MinStress       = 0.0
	MaxStress       = 1.0
)

// Weights are the penalty and bonus coefficients of one parameter
type Weights struct {
	GrowthLow  float64 // growth penalty per unit of relative shortfall
	GrowthHigh float64 // growth penalty per unit of relative excess
	StressLow  float64
	StressHigh float64
	Bonus      float64 // growth bonus at perfect optimality
}

// DefaultWeights returns the fixed per-parameter coefficients.
// Irrigation deviations are punished hardest, ventilation the least.
func DefaultWeights() map[types.Param]Weights {
	return map[types.Param]Weights{
		types.ParamTemperature: {GrowthLow: 0.5, GrowthHigh: 0.6, StressLow: 0.3, StressHigh: 0.4, Bonus: 0.2},
		types.ParamIrrigation:  {GrowthLow: 0.7, GrowthHigh: 0.6, StressLow: 0.5, StressHigh: 0.4, Bonus: 0.1},
		types.ParamVentilation: {GrowthLow: 0.4, GrowthHigh: 0.3, StressLow: 0.2, StressHigh: 0.1, Bonus: 0.1},
		types.ParamLightHours:  {GrowthLow: 0.6, GrowthHigh: 0.3, StressLow: 0.3, StressHigh: 0.2, Bonus: 0.2},
	}
}

// Evaluator turns a reading into a growth factor and a stress level.
// It is pure and safe for concurrent use.
type Evaluator struct {
	weights map[types.Param]Weights
}

// NewEvaluator returns an evaluator using DefaultWeights
func NewEvaluator() *Evaluator {
	return &Evaluator{weights: DefaultWeights()}
}

// Result is the evaluation of one reading
type Result struct {
	GrowthFactor float64 `json:"growth_factor"`
	StressLevel  float64 `json:"stress_level"`
}

// Evaluate scores r against the ranges it carries, clamping the growth
// factor to [0.1, 1.2] and the stress level to [0, 1].
func (e *Evaluator) Evaluate(r types.Reading) (growthFactor, stress float64) {
	growthFactor, stress = e.Raw(r)
	return clamp(growthFactor, MinGrowthFactor, MaxGrowthFactor), clamp(stress, MinStress, MaxStress)
}

// Raw returns the unclamped scores.
// The growth factor starts at 1.0 and the stress at 0.0; each parameter then
// subtracts a penalty when out of range or adds an optimality bonus when inside.
func (e *Evaluator) Raw(r types.Reading) (growthFactor, stress float64) {
	growthFactor = 1.0
	for _, p := range types.AllParams() {
		w := e.weights[p]
		rg := r.Range(p)
		v := r.Value(p)

		switch {
		case v < rg.Min:
			penalty := (rg.Min - v) / rg.Min
			growthFactor -= penalty * w.GrowthLow
			stress += penalty * w.StressLow
		case v > rg.Max:
			penalty := (v - rg.Max) / rg.Max
			growthFactor -= penalty * w.GrowthHigh
			stress += penalty * w.StressHigh
		default:
			growthFactor += Optimality(v, rg) * w.Bonus
		}
	}
	return growthFactor, stress
}

// EvaluateResult is Evaluate returning a Result
func (e *Evaluator) EvaluateResult(r types.Reading) Result {
	gf, s := e.Evaluate(r)
	return Result{GrowthFactor: gf, StressLevel: s}
}

// Optimality rates an in-range value: 1 at the optimum, falling linearly
// with distance relative to the range width. A zero-width range scores 1.0
// on the optimum and 0.8 otherwise.
func Optimality(v float64, rg types.Range) float64 {
	width := rg.Max - rg.Min
	if width == 0 {
		if v == rg.Optimal {
			return 1.0
		}
		return 0.8
	}
	return 1 - math.Abs(v-rg.Optimal)/width
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
