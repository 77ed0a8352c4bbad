// Package storage persists simulation runs, their daily snapshots and the
// events detected along the way.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/storage/postgres"
	"github.com/steveyegge/flaxsim/internal/storage/sqlite"
	"github.com/steveyegge/flaxsim/internal/types"
)

// ErrRunNotFound is returned when no run has the requested ID
var ErrRunNotFound = types.ErrRunNotFound

// RunStore defines the interface for run storage backends
type RunStore interface {
	// Runs
	CreateRun(ctx context.Context, run *types.Run) error
	CompleteRun(ctx context.Context, runID string, status types.RunStatus, summary json.RawMessage) error
	GetRun(ctx context.Context, runID string) (*types.Run, error)
	ListRuns(ctx context.Context, filter types.RunFilter) ([]*types.Run, error)
	AbortStaleRuns(ctx context.Context, cutoff time.Time) (int, error)

	// Daily snapshots
	SaveSnapshot(ctx context.Context, runID string, snap types.DailySnapshot) error
	GetSnapshots(ctx context.Context, runID string) ([]types.DailySnapshot, error)

	// Simulation events
	events.EventStore

	// Lifecycle
	Close() error
}

var (
	_ RunStore = (*sqlite.Store)(nil)
	_ RunStore = (*postgres.Store)(nil)
)

// Open returns the backend selected by cfg: PostgreSQL for postgres:// URLs,
// SQLite otherwise. It returns nil when storage is disabled.
func Open(ctx context.Context, cfg config.StorageConfig) (RunStore, error) {
	if cfg.Disabled {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsPostgres() {
		store, err := postgres.New(ctx, postgres.DefaultConfig(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return store, nil
	}

	store, err := sqlite.New(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %s: %w", cfg.Path, err)
	}
	return store, nil
}
