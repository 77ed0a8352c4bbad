package plant

import (
	"math"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Prediction estimates the state at maturity from nominal growth rates
type Prediction struct {
	DaysToMaturity      int     `json:"days_to_maturity"`
	PredictedHeight     float64 `json:"predicted_height"`
	PredictedRootLength float64 `json:"predicted_root_length"`
	PredictedFlowers    int     `json:"predicted_flowers"`
}

// Predict projects state forward from the end of day using the nominal
// per-phase rates, ignoring future weather. Results are capped at the maxima.
func Predict(state types.PlantState, day int, cfg config.SimulationConfig) Prediction {
	height := state.Height
	root := state.RootLength
	flowers := float64(state.Flowers)
	remaining := 0

	for _, span := range cfg.Phases {
		// days of this span strictly after day
		days := span.EndDay - max(day, span.StartDay-1)
		if days <= 0 {
			continue
		}
		remaining += days
		rates := cfg.NominalRates[span.Name]
		height += float64(days) * rates.Height
		root += float64(days) * rates.Root
		flowers += float64(days) * rates.Flowers
	}

	return Prediction{
		DaysToMaturity:      remaining,
		PredictedHeight:     round1(math.Min(height, cfg.Plant.MaxHeight)),
		PredictedRootLength: round1(math.Min(root, cfg.Plant.MaxRootLength)),
		PredictedFlowers:    min(int(math.Round(flowers)), cfg.Plant.MaxFlowers),
	}
}

// Recommendation is the suggested setpoint for one parameter
type Recommendation struct {
	Param    types.Param `json:"param"`
	Setpoint float64     `json:"setpoint"`
	Range    types.Range `json:"range"`
}

// Recommend returns the setpoints for a phase: the middle of each optimal range
func Recommend(cfg config.SimulationConfig, phase types.PhaseName) []Recommendation {
	ranges := cfg.Environment[phase]
	recs := make([]Recommendation, 0, len(types.AllParams()))
	for _, p := range types.AllParams() {
		rg := ranges.Get(p)
		recs = append(recs, Recommendation{Param: p, Setpoint: rg.Midpoint(), Range: rg})
	}
	return recs
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
