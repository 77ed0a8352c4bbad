// Package report turns the snapshot stream into tables and summaries.
package report

import (
	"math"

	"github.com/steveyegge/flaxsim/internal/types"
)

// Summary is the end-of-run aggregate document
type Summary struct {
	RunID     string                           `json:"simulation_id"`
	Seed      int64                            `json:"seed"`
	NumPlants int                              `json:"num_plants"`
	TotalDays int                              `json:"total_days"`
	Phases    map[types.PhaseName]PhaseSummary `json:"phases"`
	Plants    []PlantSummary                   `json:"plants"`
	Errors    ErrorSummary                     `json:"errors"`
}

// PhaseSummary aggregates the days spent in one phase
type PhaseSummary struct {
	Days           int     `json:"days"`
	FirstDay       int     `json:"first_day,omitempty"`
	LastDay        int     `json:"last_day,omitempty"`
	AvgTemperature float64 `json:"avg_temperature"`
	AvgVentilation float64 `json:"avg_ventilation"`
	AvgIrrigation  float64 `json:"avg_irrigation"`
	AvgLightHours  float64 `json:"avg_light_hours"`
	Errors         int     `json:"errors"`
}

// Rates are per-day growth rates
type Rates struct {
	Height  float64 `json:"height"`
	Root    float64 `json:"root"`
	Flowers float64 `json:"flowers"`
}

// PlantSummary is the outcome of one plant
type PlantSummary struct {
	PlantID         int                       `json:"plant_id"`
	FinalHeight     float64                   `json:"final_height"`
	FinalRootLength float64                   `json:"final_root_length"`
	FinalFlowers    int                       `json:"final_flowers"`
	FinalAppearance float64                   `json:"final_appearance"`
	FinalStatus     types.Status              `json:"final_status"`
	GrowthRate      Rates                     `json:"growth_rate"`
	PhaseGrowthRate map[types.PhaseName]Rates `json:"phase_growth_rate"`
}

// ErrorSummary counts simulated faults
type ErrorSummary struct {
	Total  int                 `json:"total"`
	ByType map[types.Param]int `json:"by_type"`
}

// Meta identifies the run a summary belongs to
type Meta struct {
	RunID string
	Seed  int64
}

// Summarize aggregates a complete, day-ordered snapshot list.
//
// The whole-run growth rate of a plant is (last day − first day) / days.
// The per-phase rate is the change across the phase divided by its days,
// measured from the last day of the previous phase (or from a freshly sown
// plant when the phase starts the run).
func Summarize(meta Meta, snaps []types.DailySnapshot) Summary {
	s := Summary{
		RunID:     meta.RunID,
		Seed:      meta.Seed,
		TotalDays: len(snaps),
		Phases:    map[types.PhaseName]PhaseSummary{},
		Errors:    ErrorSummary{ByType: map[types.Param]int{}},
	}
	for _, p := range types.AllParams() {
		s.Errors.ByType[p] = 0
	}
	for _, ph := range types.AllPhases() {
		s.Phases[ph] = PhaseSummary{}
	}
	if len(snaps) == 0 {
		return s
	}

	for _, snap := range snaps {
		ph := s.Phases[snap.Phase]
		if ph.Days == 0 {
			ph.FirstDay = snap.Day
		}
		ph.LastDay = snap.Day
		ph.Days++
		ph.AvgTemperature += snap.Reading.Temperature
		ph.AvgVentilation += snap.Reading.Ventilation
		ph.AvgIrrigation += snap.Reading.Irrigation
		ph.AvgLightHours += snap.Reading.LightHours
		if snap.Error.Active {
			ph.Errors++
			s.Errors.Total++
			if snap.Error.Param.IsValid() {
				s.Errors.ByType[snap.Error.Param]++
			}
		}
		s.Phases[snap.Phase] = ph
	}
	for name, ph := range s.Phases {
		if ph.Days > 0 {
			n := float64(ph.Days)
			ph.AvgTemperature = round(ph.AvgTemperature/n, 1)
			ph.AvgVentilation = round(ph.AvgVentilation/n, 1)
			ph.AvgIrrigation = round(ph.AvgIrrigation/n, 1)
			ph.AvgLightHours = round(ph.AvgLightHours/n, 1)
		}
		s.Phases[name] = ph
	}

	first, last := snaps[0], snaps[len(snaps)-1]
	s.NumPlants = len(last.Plants)
	days := float64(len(snaps))
	for _, lp := range last.Plants {
		fp, _ := first.Plant(lp.PlantID)
		ps := PlantSummary{
			PlantID:         lp.PlantID,
			FinalHeight:     round(lp.State.Height, 1),
			FinalRootLength: round(lp.State.RootLength, 1),
			FinalFlowers:    lp.State.Flowers,
			FinalAppearance: lp.State.Appearance,
			FinalStatus:     lp.Status,
			GrowthRate: Rates{
				Height:  round((lp.State.Height-fp.State.Height)/days, 2),
				Root:    round((lp.State.RootLength-fp.State.RootLength)/days, 2),
				Flowers: round(float64(lp.State.Flowers-fp.State.Flowers)/days, 2),
			},
			PhaseGrowthRate: phaseRates(lp.PlantID, snaps),
		}
		s.Plants = append(s.Plants, ps)
	}
	return s
}

func phaseRates(id int, snaps []types.DailySnapshot) map[types.PhaseName]Rates {
	out := map[types.PhaseName]Rates{}
	var base types.PlantState // freshly sown plant
	var days int
	current := snaps[0].Phase

	flush := func(end types.PlantState) {
		if days == 0 {
			return
		}
		n := float64(days)
		out[current] = Rates{
			Height:  round((end.Height-base.Height)/n, 2),
			Root:    round((end.RootLength-base.RootLength)/n, 2),
			Flowers: round(float64(end.Flowers-base.Flowers)/n, 2),
		}
	}

	var prev types.PlantState
	for _, snap := range snaps {
		p, _ := snap.Plant(id)
		if snap.Phase != current {
			flush(prev)
			base = prev
			days = 0
			current = snap.Phase
		}
		days++
		prev = p.State
	}
	flush(prev)
	return out
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
