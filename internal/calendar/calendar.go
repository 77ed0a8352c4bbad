// Package calendar maps absolute simulation days onto growth phases.
package calendar

import (
	"fmt"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/types"
)

// Calendar is an immutable, validated view of the configured phase spans.
// All lookups are total: days outside every span fall back to the last phase.
type Calendar struct {
	spans []config.PhaseSpan
}

// New builds a calendar from phase spans.
// Spans must be ordered, contiguous, start on day 1, and each span at least one day long.
func New(spans []config.PhaseSpan) (*Calendar, error) {
	if len(spans) == 0 {
		return nil, fmt.Errorf("calendar needs at least one phase")
	}
	for i, s := range spans {
		if !s.Name.IsValid() {
			return nil, fmt.Errorf("unknown phase %q", s.Name)
		}
		if s.Length() < 1 {
			return nil, fmt.Errorf("phase %s has zero length (%d-%d)", s.Name, s.StartDay, s.EndDay)
		}
		if i == 0 && s.StartDay != 1 {
			return nil, fmt.Errorf("first phase must start on day 1 (got %d)", s.StartDay)
		}
		if i > 0 && s.StartDay != spans[i-1].EndDay+1 {
			return nil, fmt.Errorf("phase %s does not follow %s contiguously", s.Name, spans[i-1].Name)
		}
	}
	return &Calendar{spans: append([]config.PhaseSpan(nil), spans...)}, nil
}

// FromConfig builds the calendar of a simulation configuration
func FromConfig(cfg config.SimulationConfig) (*Calendar, error) {
	return New(cfg.Phases)
}

// Lookup returns the phase containing day without fallback.
// Days outside every span yield PhaseUnknown and false.
func (c *Calendar) Lookup(day int) (types.PhaseName, bool) {
	for _, s := range c.spans {
		if s.Contains(day) {
			return s.Name, true
		}
	}
	return types.PhaseUnknown, false
}

// PhaseForDay returns the phase of day, falling back to the last phase
// for days outside the configured spans.
func (c *Calendar) PhaseForDay(day int) types.PhaseName {
	if name, ok := c.Lookup(day); ok {
		return name
	}
	return c.spans[len(c.spans)-1].Name
}

// PhaseLocalDay returns the 1-based position of day within phase, clamped to [1, PhaseLength(phase)].
func (c *Calendar) PhaseLocalDay(day int, phase types.PhaseName) int {
	s, ok := c.span(phase)
	if !ok {
		return 1
	}
	local := day - s.StartDay + 1
	if local < 1 {
		return 1
	}
	if local > s.Length() {
		return s.Length()
	}
	return local
}

// PhaseLength returns the number of days in phase, or 0 for a phase not on the calendar
func (c *Calendar) PhaseLength(phase types.PhaseName) int {
	s, ok := c.span(phase)
	if !ok {
		return 0
	}
	return s.Length()
}

// Position bundles the calendar lookups for one day
type Position struct {
	Day      int
	Phase    types.PhaseName
	LocalDay int
	Length   int
}

// Progress returns LocalDay / Length
func (p Position) Progress() float64 {
	if p.Length == 0 {
		return 0
	}
	return float64(p.LocalDay) / float64(p.Length)
}

// At resolves day to its phase, local day and phase length
func (c *Calendar) At(day int) Position {
	phase := c.PhaseForDay(day)
	return Position{
		Day:      day,
		Phase:    phase,
		LocalDay: c.PhaseLocalDay(day, phase),
		Length:   c.PhaseLength(phase),
	}
}

// Spans returns a copy of the configured spans
func (c *Calendar) Spans() []config.PhaseSpan {
	return append([]config.PhaseSpan(nil), c.spans...)
}

// LastDay returns the final day covered by the calendar
func (c *Calendar) LastDay() int {
	return c.spans[len(c.spans)-1].EndDay
}

func (c *Calendar) span(phase types.PhaseName) (config.PhaseSpan, bool) {
	for _, s := range c.spans {
		if s.Name == phase {
			return s, true
		}
	}
	return config.PhaseSpan{}, false
}
