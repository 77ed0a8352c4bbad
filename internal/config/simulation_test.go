package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/flaxsim/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.NoError(t, Default80Day().Validate())
}

func TestDefaultCalendars(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 100, cfg.TotalDays)
	assert.Equal(t, 1, cfg.NumPlants)
	assert.Equal(t, PhaseSpan{Name: types.PhaseRipening, StartDay: 76, EndDay: 100}, cfg.Phases[3])

	short := Default80Day()
	assert.Equal(t, 80, short.TotalDays)
	assert.Equal(t, 10, short.Phases[2].Length())
	assert.Equal(t, 80, short.Phases[3].EndDay)

	// Defaults must not share maps between calls
	cfg.Plant.HeightShare[types.PhaseGrowth] = 0
	assert.Equal(t, 0.70, Default().Plant.HeightShare[types.PhaseGrowth])
}

func TestForCalendar(t *testing.T) {
	cfg, err := ForCalendar("80d")
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.TotalDays)

	cfg, err = ForCalendar("")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.TotalDays)

	_, err = ForCalendar("90")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SimulationConfig)
		wantErr string
	}{
		{
			name:    "zero days",
			mutate:  func(c *SimulationConfig) { c.TotalDays = 0 },
			wantErr: "total_days must be between",
		},
		{
			name:    "too many plants",
			mutate:  func(c *SimulationConfig) { c.NumPlants = 5000 },
			wantErr: "num_plants must be between",
		},
		{
			name:    "overlapping phases",
			mutate:  func(c *SimulationConfig) { c.Phases[1].StartDay = 10 },
			wantErr: "overlaps",
		},
		{
			name:    "gap between phases",
			mutate:  func(c *SimulationConfig) { c.Phases[2].StartDay = 65 },
			wantErr: "gap between",
		},
		{
			name:    "first phase not on day 1",
			mutate:  func(c *SimulationConfig) { c.Phases[0].StartDay = 2 },
			wantErr: "must start on day 1",
		},
		{
			name:    "phases out of order",
			mutate:  func(c *SimulationConfig) { c.Phases[0].Name, c.Phases[1].Name = c.Phases[1].Name, c.Phases[0].Name },
			wantErr: "phases[0] must be germination",
		},
		{
			name: "zero range minimum",
			mutate: func(c *SimulationConfig) {
				r := c.Environment[types.PhaseGrowth]
				r.Irrigation.Min = 0
				c.Environment[types.PhaseGrowth] = r
			},
			wantErr: "environment.growth.irrigation: min must be positive",
		},
		{
			name: "optimal outside range",
			mutate: func(c *SimulationConfig) {
				r := c.Environment[types.PhaseFlowering]
				r.Temperature.Optimal = 30
				c.Environment[types.PhaseFlowering] = r
			},
			wantErr: "optimal (30) must be within",
		},
		{
			name:    "missing phase ranges",
			mutate:  func(c *SimulationConfig) { delete(c.Environment, types.PhaseRipening) },
			wantErr: "missing ranges for phase ripening",
		},
		{
			name:    "share above one",
			mutate:  func(c *SimulationConfig) { c.Plant.RootShare[types.PhaseGrowth] = 1.5 },
			wantErr: "plant.root_share.growth",
		},
		{
			name:    "appearance band out of scale",
			mutate:  func(c *SimulationConfig) { c.Appearance[types.PhaseFlowering] = AppearanceRange{Min: 7, Max: 11} },
			wantErr: "appearance.flowering",
		},
		{
			name:    "probability above one",
			mutate:  func(c *SimulationConfig) { c.Errors.Probability = 1.2 },
			wantErr: "error_simulation.probability",
		},
		{
			name: "inverted deviation",
			mutate: func(c *SimulationConfig) {
				c.Errors.Deviations[types.ParamTemperature] = Deviation{Min: 3, Max: 1}
			},
			wantErr: "deviations.temperature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeviationClamp(t *testing.T) {
	light := Default().Errors.Deviations[types.ParamLightHours]
	assert.Equal(t, 6.0, light.Clamp(4.2))
	assert.Equal(t, 24.0, light.Clamp(25))
	assert.Equal(t, 13.0, light.Clamp(13))

	temp := Default().Errors.Deviations[types.ParamTemperature]
	assert.Equal(t, -40.0, temp.Clamp(-40))
}

func TestPhaseSpan(t *testing.T) {
	s := PhaseSpan{Name: types.PhaseFlowering, StartDay: 61, EndDay: 75}
	assert.Equal(t, 15, s.Length())
	assert.True(t, s.Contains(61))
	assert.True(t, s.Contains(75))
	assert.False(t, s.Contains(76))
}
