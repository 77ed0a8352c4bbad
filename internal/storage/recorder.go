package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Recorder is a simulation sink that writes the run, every snapshot and the
// events derived from them to a RunStore
type Recorder struct {
	store  RunStore
	logger *slog.Logger

	info     simulation.RunInfo
	detector *events.Detector
	snaps    []types.DailySnapshot
	faults   int
}

var (
	_ simulation.Starter  = (*Recorder)(nil)
	_ simulation.Finisher = (*Recorder)(nil)
)

// NewRecorder creates a recorder; a nil logger discards diagnostics
func NewRecorder(store RunStore, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: store, logger: logger}
}

// Start creates the run record
func (r *Recorder) Start(ctx context.Context, info simulation.RunInfo) error {
	cfg, err := json.Marshal(info.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	run := &types.Run{
		ID:        info.ID,
		Seed:      info.Seed,
		TotalDays: info.Config.TotalDays,
		NumPlants: info.Config.NumPlants,
		Config:    cfg,
		StartedAt: info.StartedAt,
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return err
	}

	r.info = info
	r.detector = events.NewDetector(info.ID, info.Config.Plant)
	r.snaps = r.snaps[:0]
	r.faults = 0

	started, err := events.NewRunStartedEvent(info.ID, events.RunStartedData{
		Seed:      info.Seed,
		TotalDays: info.Config.TotalDays,
		NumPlants: info.Config.NumPlants,
	})
	if err != nil {
		return err
	}
	return r.store.StoreEvent(ctx, started)
}

// OnSnapshot stores the day and its events
func (r *Recorder) OnSnapshot(ctx context.Context, snap types.DailySnapshot) error {
	if r.detector == nil {
		return fmt.Errorf("recorder not started")
	}
	if err := r.store.SaveSnapshot(ctx, r.info.ID, snap); err != nil {
		return err
	}
	r.snaps = append(r.snaps, snap)
	if snap.Error.Active {
		r.faults++
	}

	evts, err := r.detector.Observe(snap)
	if err != nil {
		return fmt.Errorf("failed to detect events: %w", err)
	}
	for _, e := range evts {
		if err := r.store.StoreEvent(ctx, e); err != nil {
			return err
		}
	}
	if len(evts) > 0 {
		r.logger.Debug("recorded events", "run_id", r.info.ID, "day", snap.Day, "count", len(evts))
	}
	return nil
}

// Finish stores the summary and closes the run. A run that stopped before its
// last configured day is marked aborted.
func (r *Recorder) Finish(ctx context.Context, info simulation.RunInfo) error {
	summary := report.Summarize(report.Meta{RunID: info.ID, Seed: info.Seed}, r.snaps)
	doc, err := report.MarshalSummary(summary)
	if err != nil {
		return err
	}

	status := types.RunStatusCompleted
	if len(r.snaps) < info.Config.TotalDays {
		status = types.RunStatusAborted
	}
	if err := r.store.CompleteRun(ctx, info.ID, status, doc); err != nil {
		return err
	}

	completed, err := events.NewRunCompletedEvent(info.ID, events.RunCompletedData{Days: len(r.snaps), Faults: r.faults})
	if err != nil {
		return err
	}
	if err := r.store.StoreEvent(ctx, completed); err != nil {
		return err
	}

	r.logger.Info("run recorded", "run_id", info.ID, "status", status, "days", len(r.snaps), "faults", r.faults)
	return nil
}
