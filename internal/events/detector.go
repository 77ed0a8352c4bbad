package events

import (
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/types"
)

// CriticalStress is the plant stress level at which a fault is escalated to critical
const CriticalStress = 0.5

// Detector derives events by comparing consecutive snapshots of one run.
// It must see every snapshot of the run, in day order.
type Detector struct {
	runID   string
	plant   config.PlantConfig
	prev    *types.DailySnapshot
	initial types.Status
	capped  map[int]map[string]bool
}

// NewDetector creates a detector for runID
func NewDetector(runID string, plant config.PlantConfig) *Detector {
	return &Detector{
		runID:   runID,
		plant:   plant,
		initial: types.ClassifyAppearance(plant.InitialAppearance),
		capped:  make(map[int]map[string]bool),
	}
}

// Observe returns the events caused by snap
func (d *Detector) Observe(snap types.DailySnapshot) ([]*SimEvent, error) {
	var out []*SimEvent
	add := func(e *SimEvent, err error) error {
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	}

	var prevPhase types.PhaseName
	if d.prev != nil {
		prevPhase = d.prev.Phase
	}
	if snap.Phase != prevPhase {
		if err := add(NewPhaseChangedEvent(d.runID, snap.Day, PhaseChangedData{From: prevPhase, To: snap.Phase})); err != nil {
			return nil, err
		}
	}

	if snap.Error.Active {
		severity := SeverityWarning
		for _, p := range snap.Plants {
			if p.State.StressLevel >= CriticalStress {
				severity = SeverityCritical
				break
			}
		}
		rg := snap.Reading.Range(snap.Error.Param)
		data := EnvironmentFaultData{
			Param:     snap.Error.Param,
			Direction: snap.Error.Direction,
			Value:     snap.Reading.Value(snap.Error.Param),
			Min:       rg.Min,
			Max:       rg.Max,
		}
		if err := add(NewEnvironmentFaultEvent(d.runID, snap.Day, severity, snap.Error.Description, data)); err != nil {
			return nil, err
		}
	}

	for _, p := range snap.Plants {
		from := d.initial
		if d.prev != nil {
			if pp, ok := d.prev.Plant(p.PlantID); ok {
				from = pp.Status
			}
		}
		if p.Status != from {
			data := PlantStatusChangedData{From: from, To: p.Status, Appearance: p.State.Appearance}
			if err := add(NewPlantStatusChangedEvent(d.runID, snap.Day, p.PlantID, data)); err != nil {
				return nil, err
			}
		}

		for _, c := range d.caps(p.State) {
			if d.capped[p.PlantID] == nil {
				d.capped[p.PlantID] = make(map[string]bool)
			}
			if d.capped[p.PlantID][c.Metric] {
				continue
			}
			d.capped[p.PlantID][c.Metric] = true
			if err := add(NewGrowthCapReachedEvent(d.runID, snap.Day, p.PlantID, c)); err != nil {
				return nil, err
			}
		}
	}

	d.prev = &snap
	return out, nil
}

func (d *Detector) caps(st types.PlantState) []GrowthCapReachedData {
	var out []GrowthCapReachedData
	if st.Height >= d.plant.MaxHeight {
		out = append(out, GrowthCapReachedData{Metric: "height", Value: st.Height, Max: d.plant.MaxHeight})
	}
	if st.RootLength >= d.plant.MaxRootLength {
		out = append(out, GrowthCapReachedData{Metric: "root_length", Value: st.RootLength, Max: d.plant.MaxRootLength})
	}
	if d.plant.MaxFlowers > 0 && st.Flowers >= d.plant.MaxFlowers {
		out = append(out, GrowthCapReachedData{Metric: "flowers", Value: float64(st.Flowers), Max: float64(d.plant.MaxFlowers)})
	}
	return out
}
