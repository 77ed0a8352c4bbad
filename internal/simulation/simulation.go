// Package simulation drives the day-by-day growth run.
//
// Each day the driver asks the environment generator for a reading, scores it
// once per plant, advances every plant and hands the resulting DailySnapshot
// to the registered sinks. Days are strictly sequential; plants within a day
// may be advanced in parallel because each owns its random stream.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/steveyegge/flaxsim/internal/calendar"
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/environment"
	"github.com/steveyegge/flaxsim/internal/growth"
	"github.com/steveyegge/flaxsim/internal/plant"
	"github.com/steveyegge/flaxsim/internal/rng"
	"github.com/steveyegge/flaxsim/internal/types"
)

// ErrFinished is returned by Step once every configured day has been simulated
var ErrFinished = errors.New("simulation finished")

// Simulation is a single, non-restartable run
type Simulation struct {
	cfg       config.SimulationConfig
	cal       *calendar.Calendar
	gen       *environment.Generator
	evaluator *growth.Evaluator
	plants    []*plant.Plant
	info      RunInfo

	logger   *slog.Logger
	sinks    []Sink
	limiter  *rate.Limiter
	parallel int

	day      int
	started  bool
	finished bool
	last     *types.DailySnapshot
}

// Option configures a Simulation
type Option func(*Simulation)

// WithLogger sets the structured logger (default: slog.Default())
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithSinks registers snapshot consumers, called in order
func WithSinks(sinks ...Sink) Option {
	return func(s *Simulation) { s.sinks = append(s.sinks, sinks...) }
}

// WithPace spaces simulated days by at least d (0 = as fast as possible)
func WithPace(d time.Duration) Option {
	return func(s *Simulation) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithParallelism bounds how many plants advance concurrently (default 1)
func WithParallelism(n int) Option {
	return func(s *Simulation) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// WithRunID overrides the generated run identifier
func WithRunID(id string) Option {
	return func(s *Simulation) { s.info.ID = id }
}

// New validates cfg and prepares a run.
// A zero seed is replaced by a time-derived one, available through Info.
func New(cfg config.SimulationConfig, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	cal, err := calendar.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}

	cfg.Seed = rng.Resolve(cfg.Seed)

	s := &Simulation{
		cfg:       cfg,
		cal:       cal,
		gen:       environment.NewGenerator(cfg, cal, rng.New(cfg.Seed, "environment")),
		evaluator: growth.NewEvaluator(),
		logger:    slog.Default(),
		parallel:  1,
		info: RunInfo{
			ID:   uuid.New().String(),
			Seed: cfg.Seed,
		},
	}
	for i := 1; i <= cfg.NumPlants; i++ {
		s.plants = append(s.plants, plant.New(i, cfg, rng.ForPlant(cfg.Seed, i)))
	}
	for _, opt := range opts {
		opt(s)
	}
	s.info.Config = cfg
	return s, nil
}

// Info returns the run identity
func (s *Simulation) Info() RunInfo { return s.info }

// Config returns the effective configuration (with the resolved seed)
func (s *Simulation) Config() config.SimulationConfig { return s.cfg }

// Calendar returns the phase calendar of the run
func (s *Simulation) Calendar() *calendar.Calendar { return s.cal }

// Generator returns the environment generator, for manual overrides
func (s *Simulation) Generator() *environment.Generator { return s.gen }

// Day returns the last completed day (0 before the first step)
func (s *Simulation) Day() int { return s.day }

// Done reports whether every configured day has been simulated
func (s *Simulation) Done() bool { return s.day >= s.cfg.TotalDays }

// Last returns the most recent snapshot, if any
func (s *Simulation) Last() (types.DailySnapshot, bool) {
	if s.last == nil {
		return types.DailySnapshot{}, false
	}
	return s.last.Clone(), true
}

// Plants returns the current view of every plant
func (s *Simulation) Plants() []types.PlantSnapshot {
	out := make([]types.PlantSnapshot, len(s.plants))
	for i, p := range s.plants {
		out[i] = p.Snapshot()
	}
	return out
}

// Step simulates the next day with a generated reading
func (s *Simulation) Step(ctx context.Context) (types.DailySnapshot, error) {
	if s.Done() {
		return types.DailySnapshot{}, ErrFinished
	}
	if err := s.wait(ctx); err != nil {
		return types.DailySnapshot{}, err
	}
	return s.advance(ctx, s.gen.Generate(s.day+1))
}

// StepWithReading simulates the next day with an externally supplied reading.
// The reading's Day and Phase are replaced by the calendar position of the next
// day; its ranges are filled from the configuration when left empty.
func (s *Simulation) StepWithReading(ctx context.Context, r types.Reading) (types.DailySnapshot, error) {
	if s.Done() {
		return types.DailySnapshot{}, ErrFinished
	}
	if err := s.wait(ctx); err != nil {
		return types.DailySnapshot{}, err
	}
	day := s.day + 1
	r.Day = day
	r.Phase = s.cal.PhaseForDay(day)
	if r.Ranges == (types.PhaseRanges{}) {
		r.Ranges = s.gen.Ranges(r.Phase)
	}
	r.Error = environment.Classify(r)
	return s.advance(ctx, r)
}

// Run simulates every remaining day and finishes the sinks
func (s *Simulation) Run(ctx context.Context) error {
	for !s.Done() {
		if _, err := s.Step(ctx); err != nil {
			return err
		}
	}
	return s.Finish(ctx)
}

// Days returns the remaining days as a lazy sequence.
// Iteration stops after the last day, on the first error, or when the consumer breaks.
func (s *Simulation) Days(ctx context.Context) iter.Seq2[types.DailySnapshot, error] {
	return func(yield func(types.DailySnapshot, error) bool) {
		for !s.Done() {
			snap, err := s.Step(ctx)
			if !yield(snap, err) || err != nil {
				return
			}
		}
	}
}

// Finish notifies sinks that the run is over. It is idempotent.
func (s *Simulation) Finish(ctx context.Context) error {
	if s.finished {
		return nil
	}
	if err := s.start(ctx); err != nil {
		return err
	}
	s.finished = true

	var errs []error
	for _, sink := range s.sinks {
		if f, ok := sink.(Finisher); ok {
			if err := f.Finish(ctx, s.info); err != nil {
				errs = append(errs, err)
			}
		}
	}
	s.logger.Info("simulation finished",
		"run_id", s.info.ID,
		"days", s.day,
		"plants", len(s.plants))
	return errors.Join(errs...)
}

func (s *Simulation) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.start(ctx); err != nil {
		return err
	}
	if s.limiter != nil {
		return s.limiter.Wait(ctx)
	}
	return nil
}

func (s *Simulation) start(ctx context.Context) error {
	if s.started {
		return nil
	}
	s.started = true
	s.info.StartedAt = time.Now()

	s.logger.Info("simulation started",
		"run_id", s.info.ID,
		"seed", s.info.Seed,
		"days", s.cfg.TotalDays,
		"plants", s.cfg.NumPlants)

	for _, sink := range s.sinks {
		if st, ok := sink.(Starter); ok {
			if err := st.Start(ctx, s.info); err != nil {
				return fmt.Errorf("failed to start sink: %w", err)
			}
		}
	}
	return nil
}

func (s *Simulation) advance(ctx context.Context, r types.Reading) (types.DailySnapshot, error) {
	pos := s.cal.At(r.Day)
	gf, stress := s.evaluator.Evaluate(r)

	snaps := make([]types.PlantSnapshot, len(s.plants))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, p := range s.plants {
		g.Go(func() error {
			p.Advance(pos.Phase, pos.LocalDay, pos.Length, gf, stress)
			snaps[i] = p.Snapshot()
			return nil
		})
	}
	_ = g.Wait()

	snap := types.DailySnapshot{
		Day:     r.Day,
		Phase:   pos.Phase,
		Reading: r,
		Plants:  snaps,
		Error:   r.Error,
	}
	s.day = r.Day
	s.last = &snap

	s.logger.Debug("day simulated",
		"day", snap.Day,
		"phase", snap.Phase,
		"growth_factor", gf,
		"stress", stress)
	if snap.Error.Active {
		s.logger.Warn("environment fault",
			"day", snap.Day,
			"param", snap.Error.Param,
			"description", snap.Error.Description)
	}

	for _, sink := range s.sinks {
		if err := sink.OnSnapshot(ctx, snap); err != nil {
			return snap, fmt.Errorf("sink failed on day %d: %w", snap.Day, err)
		}
	}
	return snap, nil
}
