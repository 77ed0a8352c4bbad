package simulation

import (
	"context"
	"time"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/types"
)

// RunInfo identifies a run to its collaborators
type RunInfo struct {
	ID        string                  `json:"id"`
	Seed      int64                   `json:"seed"`
	Config    config.SimulationConfig `json:"config"`
	StartedAt time.Time               `json:"started_at"`
}

// Sink receives every DailySnapshot in day order.
// Snapshots are shared between sinks and must not be modified.
type Sink interface {
	OnSnapshot(ctx context.Context, snap types.DailySnapshot) error
}

// Starter is implemented by sinks that need to know about the run before day 1
type Starter interface {
	Start(ctx context.Context, info RunInfo) error
}

// Finisher is implemented by sinks that flush or summarize at the end of a run
type Finisher interface {
	Finish(ctx context.Context, info RunInfo) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, snap types.DailySnapshot) error

// OnSnapshot calls f
func (f SinkFunc) OnSnapshot(ctx context.Context, snap types.DailySnapshot) error {
	return f(ctx, snap)
}
