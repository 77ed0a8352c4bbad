package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "runs", "flaxsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSnapshot(day int, fault bool) types.DailySnapshot {
	snap := types.DailySnapshot{
		Day:   day,
		Phase: types.PhaseGermination,
		Reading: types.Reading{
			Day: day, Phase: types.PhaseGermination,
			Temperature: 17.5, Ventilation: 1.4, Irrigation: 80, LightHours: 13,
		},
		Plants: []types.PlantSnapshot{{
			PlantID:      1,
			State:        types.PlantState{Height: 0.2 * float64(day), RootLength: 0.5 * float64(day), Appearance: 3.1},
			Status:       types.StatusStruggling,
			GrowthFactor: 0.97,
		}},
	}
	if fault {
		snap.Error = types.NewErrorStatus(types.ParamIrrigation, types.DirectionLow, 40)
		snap.Reading.Error = snap.Error
		snap.Reading.Irrigation = 40
	}
	return snap
}

func TestSchemaMigrated(t *testing.T) {
	store := newTestStore(t)
	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(schemaMigrations), v)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, MemoryPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "mem", Seed: 1, TotalDays: 10, NumPlants: 1}))
	_, err = store.GetRun(ctx, "mem")
	assert.NoError(t, err)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := &types.Run{
		ID:        "run-a",
		Seed:      42,
		TotalDays: 100,
		NumPlants: 1,
		Config:    json.RawMessage(`{"total_days":100}`),
	}
	require.NoError(t, store.CreateRun(ctx, run))
	assert.Equal(t, types.RunStatusRunning, run.Status)

	for day := 1; day <= 3; day++ {
		require.NoError(t, store.SaveSnapshot(ctx, "run-a", testSnapshot(day, day == 2)))
	}

	got, err := store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, 3, got.DaysRun)
	assert.Equal(t, 1, got.Faults)
	assert.Nil(t, got.CompletedAt)
	assert.JSONEq(t, `{"total_days":100}`, string(got.Config))

	require.NoError(t, store.CompleteRun(ctx, "run-a", types.RunStatusCompleted, json.RawMessage(`{"num_plants":1}`)))
	got, err = store.GetRun(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.JSONEq(t, `{"num_plants":1}`, string(got.Summary))
	assert.GreaterOrEqual(t, got.Duration(), time.Duration(0))

	snaps, err := store.GetSnapshots(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 1, snaps[0].Day)
	assert.True(t, snaps[1].Error.Active)
	assert.Equal(t, types.ParamIrrigation, snaps[1].Error.Param)
	assert.InDelta(t, 0.6, snaps[2].Plants[0].State.Height, 1e-9)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrRunNotFound)

	err = store.SaveSnapshot(ctx, "missing", testSnapshot(1, false))
	assert.Error(t, err)

	err = store.CompleteRun(ctx, "missing", types.RunStatusCompleted, nil)
	assert.ErrorIs(t, err, types.ErrRunNotFound)

	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "dup", Seed: 1, TotalDays: 10, NumPlants: 1}))
	assert.Error(t, store.CreateRun(ctx, &types.Run{ID: "dup", Seed: 1, TotalDays: 10, NumPlants: 1}))
	assert.Error(t, store.CompleteRun(ctx, "dup", types.RunStatusRunning, nil))

	require.NoError(t, store.SaveSnapshot(ctx, "dup", testSnapshot(1, false)))
	assert.Error(t, store.SaveSnapshot(ctx, "dup", testSnapshot(1, false)), "a day is stored once")
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, store.CreateRun(ctx, &types.Run{
			ID: id, Seed: int64(i), TotalDays: 80, NumPlants: 2,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.CompleteRun(ctx, "middle", types.RunStatusAborted, nil))

	runs, err := store.ListRuns(ctx, types.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "newest", runs[0].ID)
	assert.Equal(t, "oldest", runs[2].ID)

	runs, err = store.ListRuns(ctx, types.RunFilter{Status: types.RunStatusAborted})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "middle", runs[0].ID)

	runs, err = store.ListRuns(ctx, types.RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestAbortStaleRuns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now()
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "crashed", TotalDays: 100, NumPlants: 1, StartedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "active", TotalDays: 100, NumPlants: 1, StartedAt: now.Add(-time.Minute)}))
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "done", TotalDays: 100, NumPlants: 1, StartedAt: now.Add(-5 * time.Hour)}))
	require.NoError(t, store.CompleteRun(ctx, "done", types.RunStatusCompleted, nil))

	n, err := store.AbortStaleRuns(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	run, err := store.GetRun(ctx, "crashed")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusAborted, run.Status)
	assert.NotNil(t, run.CompletedAt)

	run, err = store.GetRun(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusRunning, run.Status)

	run, err = store.GetRun(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)

	n, err = store.AbortStaleRuns(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTimestampsSortAsText(t *testing.T) {
	a := formatTime(time.Date(2026, 3, 1, 8, 0, 0, 100000000, time.UTC))
	b := formatTime(time.Date(2026, 3, 1, 8, 0, 0, 120000000, time.UTC))
	c := formatTime(time.Date(2026, 3, 1, 8, 0, 1, 0, time.UTC))
	assert.Less(t, a, b)
	assert.Less(t, b, c)

	parsed, err := parseTime(b)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(time.Date(2026, 3, 1, 8, 0, 0, 120000000, time.UTC)))
}

func TestEventStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "run-e", Seed: 1, TotalDays: 100, NumPlants: 2}))

	phase, err := events.NewPhaseChangedEvent("run-e", 1, events.PhaseChangedData{To: types.PhaseGermination})
	require.NoError(t, err)
	fault, err := events.NewEnvironmentFaultEvent("run-e", 4, events.SeverityWarning, "Temperature too low: 12.0°C",
		events.EnvironmentFaultData{Param: types.ParamTemperature, Direction: types.DirectionLow, Value: 12, Min: 15, Max: 20})
	require.NoError(t, err)
	status, err := events.NewPlantStatusChangedEvent("run-e", 4, 2,
		events.PlantStatusChangedData{From: types.StatusAverage, To: types.StatusCritical, Appearance: 1.2})
	require.NoError(t, err)

	for _, e := range []*events.SimEvent{phase, fault, status} {
		require.NoError(t, store.StoreEvent(ctx, e))
	}

	t.Run("all in day order", func(t *testing.T) {
		got, err := store.GetEvents(ctx, events.EventFilter{RunID: "run-e"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, events.EventTypePhaseChanged, got[0].Type)
		assert.Equal(t, phase.ID, got[0].ID)
	})

	t.Run("by type", func(t *testing.T) {
		got, err := store.GetEvents(ctx, events.EventFilter{RunID: "run-e", Type: events.EventTypeEnvironmentFault})
		require.NoError(t, err)
		require.Len(t, got, 1)
		data, err := got[0].GetEnvironmentFaultData()
		require.NoError(t, err)
		assert.Equal(t, 12.0, data.Value)
		assert.Equal(t, types.DirectionLow, data.Direction)
	})

	t.Run("by severity and plant", func(t *testing.T) {
		got, err := store.GetEvents(ctx, events.EventFilter{Severity: events.SeverityCritical})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].PlantID)

		got, err = store.GetEvents(ctx, events.EventFilter{PlantID: 7})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.GetEvents(ctx, events.EventFilter{RunID: "run-e", Limit: 2})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
