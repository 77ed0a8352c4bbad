package report

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

// History buffers the full snapshot stream for end-of-run reporting.
// It is safe to read while a run is still appending.
type History struct {
	mu    sync.RWMutex
	info  simulation.RunInfo
	snaps []types.DailySnapshot
	times []time.Time
	now   func() time.Time
}

// NewHistory returns an empty buffer
func NewHistory() *History {
	return &History{now: time.Now}
}

// Start records the run identity
func (h *History) Start(_ context.Context, info simulation.RunInfo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.info = info
	return nil
}

// OnSnapshot appends snap
func (h *History) OnSnapshot(_ context.Context, snap types.DailySnapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snaps = append(h.snaps, snap)
	h.times = append(h.times, h.now())
	return nil
}

// Info returns the run identity seen by Start
func (h *History) Info() simulation.RunInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.info
}

// Len returns the number of buffered days
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snaps)
}

// Snapshots returns a copy of the buffered snapshots
func (h *History) Snapshots() []types.DailySnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]types.DailySnapshot(nil), h.snaps...)
}

// Series returns the day-by-day states of one plant
func (h *History) Series(plantID int) []types.PlantState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]types.PlantState, 0, len(h.snaps))
	for _, snap := range h.snaps {
		if p, ok := snap.Plant(plantID); ok {
			out = append(out, p.State)
		}
	}
	return out
}

// Summary aggregates everything buffered so far
func (h *History) Summary() Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Summarize(Meta{RunID: h.info.ID, Seed: h.info.Seed}, h.snaps)
}

// CSV renders the buffered days as a CSV document
func (h *History) CSV() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var buf bytes.Buffer
	numPlants := h.info.Config.NumPlants
	if numPlants == 0 && len(h.snaps) > 0 {
		numPlants = len(h.snaps[0].Plants)
	}
	w := NewCSVWriter(&buf, numPlants)
	for i, snap := range h.snaps {
		if err := w.Write(snap, h.times[i]); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
