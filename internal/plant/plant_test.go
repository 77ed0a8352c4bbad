package plant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/calendar"
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/rng"
	"github.com/steveyegge/flaxsim/internal/types"
)

func TestSigmoidShape(t *testing.T) {
	const length = 50
	assert.InDelta(t, 0.5, Sigmoid(length/2, length), 1e-9)
	assert.Less(t, Sigmoid(1, length), 0.01)
	assert.Greater(t, Sigmoid(length, length), 0.99)

	prev := 0.0
	for d := 1; d <= length; d++ {
		s := Sigmoid(d, length)
		assert.Greater(t, s, prev, "sigmoid must increase at day %d", d)
		prev = s
	}
	assert.Equal(t, 0.0, Sigmoid(3, 0))
}

func TestNewPlantBaseline(t *testing.T) {
	p := New(1, config.Default(), rng.ForPlant(1, 1))
	st := p.State()
	assert.Zero(t, st.Height)
	assert.Zero(t, st.RootLength)
	assert.Zero(t, st.Flowers)
	assert.Equal(t, 3.0, st.Appearance)
	assert.Equal(t, types.StatusStruggling, p.Status())
}

// Property: for any sequence of growth factors and stress levels, the
// cumulative metrics never decrease, never exceed the maxima, and appearance
// stays on the 0-10 scale.
func TestAdvanceMonotonicAndBounded(t *testing.T) {
	cfg := config.Default()
	cal, err := calendar.FromConfig(cfg)
	require.NoError(t, err)

	for seed := int64(1); seed <= 20; seed++ {
		inputs := rng.New(seed, "inputs")
		p := New(1, cfg, rng.ForPlant(seed, 1))
		prev := p.State()

		// run well past the calendar to exercise the caps
		for day := 1; day <= 3*cfg.TotalDays; day++ {
			pos := cal.At(day)
			gf := rng.Uniform(inputs, 0.1, 1.2)
			stress := inputs.Float64()

			st := p.Advance(pos.Phase, pos.LocalDay, pos.Length, gf, stress)

			assert.GreaterOrEqual(t, st.Height, prev.Height)
			assert.GreaterOrEqual(t, st.RootLength, prev.RootLength)
			assert.GreaterOrEqual(t, st.Flowers, prev.Flowers)
			assert.LessOrEqual(t, st.Height, cfg.Plant.MaxHeight)
			assert.LessOrEqual(t, st.RootLength, cfg.Plant.MaxRootLength)
			assert.LessOrEqual(t, st.Flowers, cfg.Plant.MaxFlowers)
			assert.GreaterOrEqual(t, st.Appearance, 0.0)
			assert.LessOrEqual(t, st.Appearance, 10.0)
			assert.Equal(t, stress, st.StressLevel)
			prev = st
		}
	}
}

func TestFlowersOnlyWhenFlowering(t *testing.T) {
	cfg := config.Default()
	cal, err := calendar.FromConfig(cfg)
	require.NoError(t, err)
	p := New(1, cfg, rng.ForPlant(7, 1))

	for day := 1; day <= cfg.TotalDays; day++ {
		pos := cal.At(day)
		st := p.Advance(pos.Phase, pos.LocalDay, pos.Length, 1.0, 0)
		if !pos.Phase.Flowering() {
			require.Zero(t, st.Flowers, "no flowers expected on day %d (%s)", day, pos.Phase)
		}
	}
	assert.Positive(t, p.State().Flowers)
}

func TestAdvanceIncrementBounds(t *testing.T) {
	cfg := config.Default()
	p := New(1, cfg, rng.ForPlant(3, 1))

	// Mid growth phase: ceiling = 120 * 0.70 / 50 = 1.68 cm/day, sigmoid 0.5
	st := p.Advance(types.PhaseGrowth, 25, 50, 1.0, 0)
	assert.InDelta(t, 0.84, st.Height, 0.084+1e-9)
	assert.InDelta(t, 120*0.65/50*0.5, st.RootLength, 120*0.65/50*0.5*0.1+1e-9)
	assert.Zero(t, st.Flowers)
}

func TestAppearanceFollowsStress(t *testing.T) {
	cfg := config.Default()
	calm := New(1, cfg, rng.ForPlant(1, 1))
	stressed := New(2, cfg, rng.ForPlant(1, 2))

	for i := 0; i < 20; i++ {
		a := calm.Advance(types.PhaseFlowering, 5, 15, 1.0, 0).Appearance
		b := stressed.Advance(types.PhaseFlowering, 5, 15, 0.5, 1).Appearance
		// flowering band 7-10 with ±0.3 noise
		assert.GreaterOrEqual(t, a, 9.7)
		assert.LessOrEqual(t, b, 7.3)
		assert.InDelta(t, a, float64(int(a*10+0.5))/10, 1e-9, "appearance rounded to one decimal")
	}
	assert.Equal(t, types.StatusThriving, calm.Status())
}

func TestAdvanceDeterministic(t *testing.T) {
	cfg := config.Default()
	a := New(1, cfg, rng.ForPlant(11, 1))
	b := New(1, cfg, rng.ForPlant(11, 1))
	for d := 1; d <= 15; d++ {
		assert.Equal(t,
			a.Advance(types.PhaseFlowering, d, 15, 0.9, 0.1),
			b.Advance(types.PhaseFlowering, d, 15, 0.9, 0.1))
	}
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestAverage(t *testing.T) {
	avg := Average([]types.PlantState{
		{Height: 10, RootLength: 20, Flowers: 3, Appearance: 6, StressLevel: 0.2},
		{Height: 20, RootLength: 30, Flowers: 4, Appearance: 8, StressLevel: 0.4},
	})
	assert.Equal(t, 15.0, avg.Height)
	assert.Equal(t, 25.0, avg.RootLength)
	assert.Equal(t, 4, avg.Flowers)
	assert.Equal(t, 7.0, avg.Appearance)
	assert.InDelta(t, 0.3, avg.StressLevel, 1e-9)

	assert.Equal(t, types.PlantState{}, Average(nil))
}

func TestAverageRoundsToOneDecimal(t *testing.T) {
	avg := Average([]types.PlantState{
		{Height: 10.04, RootLength: 1.11, Flowers: 1, Appearance: 6.1},
		{Height: 10.07, RootLength: 1.12, Flowers: 2, Appearance: 6.2},
		{Height: 10.10, RootLength: 1.20, Flowers: 2, Appearance: 6.2},
	})
	assert.Equal(t, 10.1, avg.Height)
	assert.Equal(t, 1.1, avg.RootLength)
	assert.Equal(t, 2, avg.Flowers)
	assert.Equal(t, 6.2, avg.Appearance)
}
