package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/types"
)

// setupTestStore connects to FLAXSIM_TEST_PG_URL and empties the tables
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("FLAXSIM_TEST_PG_URL")
	if url == "" {
		t.Skip("Skipping PostgreSQL test (FLAXSIM_TEST_PG_URL not set)")
	}

	ctx := context.Background()
	store, err := New(ctx, DefaultConfig(url))
	if err != nil {
		t.Skipf("Skipping PostgreSQL test (database not available): %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.pool.Exec(ctx, `TRUNCATE TABLE sim_events, snapshots, runs CASCADE`)
	require.NoError(t, err, "failed to clean up test database")
	return store
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "pg-1", Seed: 9, TotalDays: 80, NumPlants: 1}))

	snap := types.DailySnapshot{
		Day:     1,
		Phase:   types.PhaseGermination,
		Reading: types.Reading{Day: 1, Phase: types.PhaseGermination, Temperature: 16},
		Error:   types.NewErrorStatus(types.ParamTemperature, types.DirectionHigh, 23),
		Plants:  []types.PlantSnapshot{{PlantID: 1, Status: types.StatusStruggling}},
	}
	require.NoError(t, store.SaveSnapshot(ctx, "pg-1", snap))
	require.NoError(t, store.CompleteRun(ctx, "pg-1", types.RunStatusCompleted, json.RawMessage(`{"total_days":80}`)))

	run, err := store.GetRun(ctx, "pg-1")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.Faults)
	require.NotNil(t, run.CompletedAt)

	snaps, err := store.GetSnapshots(ctx, "pg-1")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, types.ParamTemperature, snaps[0].Error.Param)

	runs, err := store.ListRuns(ctx, types.RunFilter{Status: types.RunStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = store.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
}

func TestAbortStaleRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "pg-stale", TotalDays: 80, NumPlants: 1, StartedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "pg-live", TotalDays: 80, NumPlants: 1, StartedAt: now}))

	n, err := store.AbortStaleRuns(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	run, err := store.GetRun(ctx, "pg-stale")
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusAborted, run.Status)
}

func TestEvents(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateRun(ctx, &types.Run{ID: "pg-2", Seed: 1, TotalDays: 100, NumPlants: 1}))

	e, err := events.NewGrowthCapReachedEvent("pg-2", 70, 1, events.GrowthCapReachedData{Metric: "height", Value: 100, Max: 100})
	require.NoError(t, err)
	require.NoError(t, store.StoreEvent(ctx, e))

	got, err := store.GetEvents(ctx, events.EventFilter{RunID: "pg-2", Type: events.EventTypeGrowthCapReached})
	require.NoError(t, err)
	require.Len(t, got, 1)
	data, err := got[0].GetGrowthCapReachedData()
	require.NoError(t, err)
	assert.Equal(t, "height", data.Metric)
}
