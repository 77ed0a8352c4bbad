package repl

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

func newTestREPL(t *testing.T, cfg config.SimulationConfig) (*REPL, *report.History, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	history := report.NewHistory()
	sim, err := simulation.New(cfg,
		simulation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		simulation.WithSinks(history))
	require.NoError(t, err)

	var out bytes.Buffer
	r, err := New(&Config{Sim: sim, History: history, Out: &out})
	require.NoError(t, err)
	return r, history, &out
}

func defaultConfig() config.SimulationConfig {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.NumPlants = 2
	return cfg
}

func TestNewRequiresSimulation(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)
}

func TestUnknownCommandSuggestion(t *testing.T) {
	r, _, _ := newTestREPL(t, defaultConfig())

	err := r.Execute("stepp 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "step"?`)

	err = r.Execute("recomend")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "recommend"?`)

	err = r.Execute("xyzzy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type 'help'")

	assert.NoError(t, r.Execute("   "))
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"temprature", "temperature"},
		{"ligth", "light"},
		{"vnt", "vent"},
		{"humidity", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.input, paramNames()))
		})
	}
}

func TestStepAdvancesDays(t *testing.T) {
	r, history, out := newTestREPL(t, defaultConfig())

	require.NoError(t, r.Execute("step"))
	assert.Equal(t, 1, r.sim.Day())
	assert.Contains(t, out.String(), "Day   1 germination")

	require.NoError(t, r.Execute("step 4"))
	assert.Equal(t, 5, r.sim.Day())
	assert.Equal(t, 5, history.Len())

	assert.Error(t, r.Execute("step zero"))
	assert.Error(t, r.Execute("step -1"))
}

func TestManualControlFeedsReadings(t *testing.T) {
	r, _, out := newTestREPL(t, defaultConfig())

	require.NoError(t, r.Execute("set temp 12"))
	assert.Contains(t, out.String(), "Temperature set to 12°C")
	assert.Contains(t, out.String(), "outside the optimal range")

	require.NoError(t, r.Execute("step 2"))
	last, ok := r.sim.Last()
	require.True(t, ok)
	assert.Equal(t, 12.0, last.Reading.Temperature)
	// unset parameters sit at their optimum
	assert.Equal(t, 75.0, last.Reading.Irrigation)
	assert.True(t, last.Error.Active)
	assert.Equal(t, types.ParamTemperature, last.Error.Param)
	assert.Equal(t, types.DirectionLow, last.Error.Direction)

	require.NoError(t, r.Execute("clear temperature"))
	require.NoError(t, r.Execute("set water 80"))
	require.NoError(t, r.Execute("step"))
	last, _ = r.sim.Last()
	assert.Equal(t, 80.0, last.Reading.Irrigation)
	assert.False(t, last.Error.Active)

	require.NoError(t, r.Execute("clear"))
	assert.Empty(t, r.manual)

	err := r.Execute("set humdity 3")
	require.Error(t, err)
	assert.Error(t, r.Execute("set temp warm"))
	assert.Error(t, r.Execute("set temp -4"))
	assert.Error(t, r.Execute("set temp"))
}

func TestRunToCompletion(t *testing.T) {
	r, history, out := newTestREPL(t, defaultConfig())

	require.NoError(t, r.Execute("run"))
	assert.True(t, r.sim.Done())
	assert.Equal(t, 100, history.Len())
	assert.Contains(t, out.String(), "Simulation complete after 100 days")

	out.Reset()
	require.NoError(t, r.Execute("step"))
	assert.Contains(t, out.String(), "Simulation complete")
	assert.Equal(t, 100, r.sim.Day())
}

func TestInformationalCommands(t *testing.T) {
	r, _, out := newTestREPL(t, defaultConfig())

	require.NoError(t, r.Execute("status"))
	assert.Contains(t, out.String(), "Day 0 of 100 (not started)")

	err := r.Execute("summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no days simulated yet")

	require.NoError(t, r.Execute("step 12"))
	out.Reset()
	require.NoError(t, r.Execute("status"))
	assert.Contains(t, out.String(), "Day 12 of 100, growth phase (day 2 of 50)")
	assert.Contains(t, out.String(), "avg")

	out.Reset()
	require.NoError(t, r.Execute("predict"))
	assert.Contains(t, out.String(), "in 88 days")

	out.Reset()
	require.NoError(t, r.Execute("recommend"))
	assert.Contains(t, out.String(), "growth phase")
	assert.Contains(t, out.String(), "irrigation")

	out.Reset()
	require.NoError(t, r.Execute("summary"))
	assert.Contains(t, out.String(), "12 days, 2 plants")

	out.Reset()
	require.NoError(t, r.Execute("help"))
	assert.Contains(t, out.String(), "Available Commands")
}

func TestExit(t *testing.T) {
	r, _, out := newTestREPL(t, defaultConfig())
	err := r.Execute("quit")
	assert.True(t, errors.Is(err, errExit))
	assert.Contains(t, out.String(), "Goodbye!")
}
