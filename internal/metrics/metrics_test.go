package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

func snapshot(day int, phase types.PhaseName, fault *types.ErrorStatus) types.DailySnapshot {
	snap := types.DailySnapshot{
		Day:   day,
		Phase: phase,
		Reading: types.Reading{
			Day: day, Phase: phase,
			Temperature: 18.2, Ventilation: 1.5, Irrigation: 75, LightHours: 13,
		},
		Plants: []types.PlantSnapshot{
			{PlantID: 1, State: types.PlantState{Height: 1.5, RootLength: 3, Appearance: 3.3, StressLevel: 0.1}, GrowthFactor: 0.95},
			{PlantID: 2, State: types.PlantState{Height: 1.2, RootLength: 2.5, Flowers: 4, Appearance: 2.8, StressLevel: 0.2}, GrowthFactor: 0.9},
		},
	}
	if fault != nil {
		snap.Error = *fault
	}
	return snap
}

func TestCollectorOnSnapshot(t *testing.T) {
	c := NewCollector("")
	ctx := context.Background()

	cold := types.NewErrorStatus(types.ParamTemperature, types.DirectionLow, 12)
	require.NoError(t, c.OnSnapshot(ctx, snapshot(1, types.PhaseGermination, nil)))
	require.NoError(t, c.OnSnapshot(ctx, snapshot(2, types.PhaseGermination, &cold)))
	require.NoError(t, c.OnSnapshot(ctx, snapshot(3, types.PhaseGrowth, &cold)))

	assert.Equal(t, 3.0, testutil.ToFloat64(c.days))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.day))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.faults.WithLabelValues("temperature", "low")))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.height.WithLabelValues("1")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.flowers.WithLabelValues("2")))
	assert.Equal(t, 0.9, testutil.ToFloat64(c.growthFactor.WithLabelValues("2")))
	assert.Equal(t, 75.0, testutil.ToFloat64(c.environment.WithLabelValues("irrigation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.phase.WithLabelValues("growth")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.phase.WithLabelValues("germination")))

	assert.Equal(t, 2, testutil.CollectAndCount(c.height))
}

func TestCollectorExposition(t *testing.T) {
	c := NewCollector("")
	require.NoError(t, c.OnSnapshot(context.Background(), snapshot(1, types.PhaseGermination, nil)))

	expected := `
# HELP flaxsim_days_total Simulated days.
# TYPE flaxsim_days_total counter
flaxsim_days_total 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "flaxsim_days_total"))

	out, err := c.Render()
	require.NoError(t, err)
	assert.Contains(t, string(out), `flaxsim_plant_height_cm{plant="1"} 1.5`)
	assert.Contains(t, string(out), `flaxsim_environment_value{parameter="light_hours"} 13`)

	a := c.Artifact()
	assert.Equal(t, "metrics.prom", a.Name)
}

func TestCollectorTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flaxsim.prom")
	c := NewCollector(path)
	require.NoError(t, c.OnSnapshot(context.Background(), snapshot(1, types.PhaseGermination, nil)))
	require.NoError(t, c.Finish(context.Background(), simulation.RunInfo{ID: "run"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flaxsim_plant_appearance")
	assert.Contains(t, string(data), `flaxsim_plant_stress_level{plant="2"} 0.2`)

	// no textfile configured
	assert.NoError(t, NewCollector("").Finish(context.Background(), simulation.RunInfo{}))
}
