package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/blob"
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runWith(t *testing.T, cfg config.SimulationConfig, sinks ...simulation.Sink) *simulation.Simulation {
	t.Helper()
	sim, err := simulation.New(cfg, simulation.WithLogger(quietLogger()), simulation.WithSinks(sinks...))
	require.NoError(t, err)
	require.NoError(t, sim.Run(context.Background()))
	return sim
}

func TestSummaryMatchesRecomputation(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 31
	cfg.NumPlants = 3
	cfg.Errors.Probability = 0.3

	hist := NewHistory()
	sim := runWith(t, cfg, hist)
	snaps := hist.Snapshots()
	sum := hist.Summary()

	assert.Equal(t, sim.Info().ID, sum.RunID)
	assert.Equal(t, cfg.TotalDays, sum.TotalDays)
	assert.Equal(t, 3, sum.NumPlants)

	// phase day counts and error totals
	errTotal := 0
	byType := map[types.Param]int{}
	for _, span := range cfg.Phases {
		assert.Equal(t, span.Length(), sum.Phases[span.Name].Days)
		assert.Equal(t, span.StartDay, sum.Phases[span.Name].FirstDay)
	}
	for _, s := range snaps {
		if s.Error.Active {
			errTotal++
			byType[s.Error.Param]++
		}
	}
	assert.Equal(t, errTotal, sum.Errors.Total)
	for p, n := range byType {
		assert.Equal(t, n, sum.Errors.ByType[p])
	}

	// per-phase rates equal the mean of the raw daily deltas
	for _, ps := range sum.Plants {
		deltaSum := map[types.PhaseName]float64{}
		days := map[types.PhaseName]int{}
		var prev types.PlantState
		for _, s := range snaps {
			p, ok := s.Plant(ps.PlantID)
			require.True(t, ok)
			deltaSum[s.Phase] += p.State.Height - prev.Height
			days[s.Phase]++
			prev = p.State
		}
		for phase, d := range days {
			assert.InDelta(t, deltaSum[phase]/float64(d), ps.PhaseGrowthRate[phase].Height, 0.005+1e-9,
				"plant %d phase %s", ps.PlantID, phase)
		}

		last, _ := snaps[len(snaps)-1].Plant(ps.PlantID)
		first, _ := snaps[0].Plant(ps.PlantID)
		assert.InDelta(t, (last.State.Height-first.State.Height)/float64(len(snaps)), ps.GrowthRate.Height, 0.005+1e-9)
		assert.Equal(t, last.State.Flowers, ps.FinalFlowers)
		assert.Equal(t, last.Status, ps.FinalStatus)
		assert.Zero(t, ps.PhaseGrowthRate[types.PhaseGermination].Flowers)
		assert.Zero(t, ps.PhaseGrowthRate[types.PhaseGrowth].Flowers)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(Meta{RunID: "r"}, nil)
	assert.Zero(t, sum.TotalDays)
	assert.Len(t, sum.Phases, 4)
	assert.Len(t, sum.Errors.ByType, 4)
	assert.Empty(t, sum.Plants)
}

func TestSummaryJSONRoundTrip(t *testing.T) {
	cfg := config.Default80Day()
	cfg.Seed = 5
	hist := NewHistory()
	runWith(t, cfg, hist)
	sum := hist.Summary()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sum))
	assert.Contains(t, buf.String(), `"simulation_id"`)
	assert.Contains(t, buf.String(), `"light_hours"`)

	back, err := ReadSummary(&buf)
	require.NoError(t, err)
	assert.Equal(t, sum, back)
}

func TestCSVLayout(t *testing.T) {
	assert.Equal(t, []string{
		"day", "date_time", "phase", "temperature", "ventilation", "irrigation", "light_hours",
		"plant1_height", "plant1_root_length", "plant1_flowers", "plant1_appearance",
		"plant2_height", "plant2_root_length", "plant2_flowers", "plant2_appearance",
		"error_active", "error_description",
	}, CSVHeader(2))

	snap := types.DailySnapshot{
		Day:     4,
		Phase:   types.PhaseGermination,
		Reading: types.Reading{Temperature: 12.5, Ventilation: 1.2, Irrigation: 60, LightHours: 13},
		Plants: []types.PlantSnapshot{
			{PlantID: 1, State: types.PlantState{Height: 0.4567, RootLength: 2.04, Flowers: 0, Appearance: 3.4}},
		},
		Error: types.NewErrorStatus(types.ParamTemperature, types.DirectionLow, 12.5),
	}
	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, []string{
		"4", "2026-05-01 08:30:00", "germination", "12.5", "1.2", "60", "13",
		"0.5", "2", "0", "3.4", "true", "Temperature too low: 12.5°C",
	}, CSVRow(snap, at))
}

func TestCSVWriterSink(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 3
	cfg.NumPlants = 2
	cfg.TotalDays = 12

	var buf bytes.Buffer
	w := NewCSVWriter(&buf, cfg.NumPlants)
	runWith(t, cfg, w)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 13)
	assert.Len(t, records[0], 7+4*2+2)
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "12", records[12][0])
}

func TestHistorySeries(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 4
	cfg.NumPlants = 2
	hist := NewHistory()
	runWith(t, cfg, hist)

	assert.Equal(t, 100, hist.Len())
	series := hist.Series(2)
	require.Len(t, series, 100)
	for i := 1; i < len(series); i++ {
		assert.GreaterOrEqual(t, series[i].Height, series[i-1].Height)
	}
	assert.Empty(t, hist.Series(9))
}

func TestPublisherUploadsOnlyOnFinish(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 3
	cfg.TotalDays = 5

	store := blob.NewMemory()
	hist := NewHistory()
	var sink simulation.Sink = NewPublisher(store, hist, quietLogger())

	sim, err := simulation.New(cfg, simulation.WithSinks(hist, sink), simulation.WithLogger(quietLogger()))
	require.NoError(t, err)
	for range 5 {
		_, err := sim.Step(context.Background())
		require.NoError(t, err)
	}

	prefix := RunPrefix(sim.Info().ID)
	infos, err := store.List(context.Background(), prefix)
	require.NoError(t, err)
	assert.Empty(t, infos, "nothing is published before Finish")

	require.NoError(t, sim.Finish(context.Background()))
	infos, err = store.List(context.Background(), prefix)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestPublisher(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 6
	cfg.TotalDays = 20

	store := blob.NewMemory()
	hist := NewHistory()
	pub := NewPublisher(store, hist, quietLogger(), Artifact{
		Name:   "metrics.prom",
		Render: func() ([]byte, error) { return []byte("flaxsim_days_total 20\n"), nil },
	})
	sim := runWith(t, cfg, hist, pub)

	prefix := RunPrefix(sim.Info().ID)
	infos, err := store.List(context.Background(), prefix)
	require.NoError(t, err)
	var keys []string
	for _, i := range infos {
		keys = append(keys, strings.TrimPrefix(i.Key, prefix))
	}
	assert.Equal(t, []string{"metrics.prom", SnapshotsArtifact, SummaryArtifact}, keys)
	assert.Len(t, pub.Published(), 3)

	_, rc, err := store.Get(context.Background(), prefix+SummaryArtifact)
	require.NoError(t, err)
	defer rc.Close()
	sum, err := ReadSummary(rc)
	require.NoError(t, err)
	assert.Equal(t, 20, sum.TotalDays)
	assert.Equal(t, sim.Info().ID, sum.RunID)
}
