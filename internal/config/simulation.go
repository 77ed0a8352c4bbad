package config

import (
	"fmt"
	"strings"

	"github.com/steveyegge/flaxsim/internal/types"
)

// SimulationConfig holds every tunable of a greenhouse run.
// It is built once at startup and handed to each component; nothing mutates it afterwards.
type SimulationConfig struct {
	// TotalDays is the number of days to simulate
	// Days past the last phase are simulated as part of the final phase
	// Default: 100, Range: 1-3650
	TotalDays int `yaml:"total_days" json:"total_days"`

	// NumPlants is the number of plants grown side by side
	// Default: 1, Range: 1-1000
	NumPlants int `yaml:"num_plants" json:"num_plants"`

	// Seed drives every random source of the run
	// 0 means "pick one at startup"; the chosen seed is recorded with the run
	Seed int64 `yaml:"seed" json:"seed"`

	// Phases is the growth calendar, in order, starting on day 1
	Phases []PhaseSpan `yaml:"phases" json:"phases"`

	// Environment holds the optimal parameter ranges per phase
	Environment map[types.PhaseName]types.PhaseRanges `yaml:"environment" json:"environment"`

	// Plant holds growth capacities and per-phase growth shares
	Plant PlantConfig `yaml:"plant" json:"plant"`

	// Appearance holds the appearance band per phase (0-10 scale)
	Appearance map[types.PhaseName]AppearanceRange `yaml:"appearance" json:"appearance"`

	// Errors controls injection of out-of-range environmental faults
	Errors ErrorSimulationConfig `yaml:"error_simulation" json:"error_simulation"`

	// NominalRates are average daily growth rates used for maturity predictions
	NominalRates map[types.PhaseName]GrowthRates `yaml:"nominal_rates" json:"nominal_rates"`
}

// PhaseSpan is an inclusive day range assigned to a phase
type PhaseSpan struct {
	Name     types.PhaseName `yaml:"name" json:"name"`
	StartDay int             `yaml:"start_day" json:"start_day"`
	EndDay   int             `yaml:"end_day" json:"end_day"`
}

// Length returns the number of days in the span
func (s PhaseSpan) Length() int {
	return s.EndDay - s.StartDay + 1
}

// Contains reports whether day falls inside the span
func (s PhaseSpan) Contains(day int) bool {
	return day >= s.StartDay && day <= s.EndDay
}

// PlantConfig describes growth capacity and how it is spread over the phases
type PlantConfig struct {
	MaxHeight     float64 `yaml:"max_height" json:"max_height"`           // cm
	MaxRootLength float64 `yaml:"max_root_length" json:"max_root_length"` // cm
	MaxFlowers    int     `yaml:"max_flowers" json:"max_flowers"`

	// Share of each global maximum grown during a phase (0-1)
	HeightShare map[types.PhaseName]float64 `yaml:"height_share" json:"height_share"`
	RootShare   map[types.PhaseName]float64 `yaml:"root_share" json:"root_share"`
	FlowerShare map[types.PhaseName]float64 `yaml:"flower_share" json:"flower_share"`

	// InitialAppearance is the appearance of a freshly sown plant
	InitialAppearance float64 `yaml:"initial_appearance" json:"initial_appearance"`
}

// AppearanceRange is the appearance band of a phase
type AppearanceRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// GrowthRates are nominal per-day increments for one phase
type GrowthRates struct {
	Height  float64 `yaml:"height" json:"height"`
	Root    float64 `yaml:"root" json:"root"`
	Flowers float64 `yaml:"flowers" json:"flowers"`
}

// ErrorSimulationConfig controls the random environmental faults
type ErrorSimulationConfig struct {
	// Enabled turns fault injection on or off
	// Default: true
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Probability is the daily chance of a fault
	// Default: 0.10, Range: 0-1
	Probability float64 `yaml:"probability" json:"probability"`

	// Deviations bounds how far a faulty parameter is pushed past its range
	Deviations map[types.Param]Deviation `yaml:"deviations" json:"deviations"`
}

// Deviation is the magnitude window of a fault plus hard physical limits
type Deviation struct {
	Min     float64  `yaml:"min" json:"min"`
	Max     float64  `yaml:"max" json:"max"`
	Floor   *float64 `yaml:"floor,omitempty" json:"floor,omitempty"`
	Ceiling *float64 `yaml:"ceiling,omitempty" json:"ceiling,omitempty"`
}

// Clamp applies the hard limits of the deviation to v
func (d Deviation) Clamp(v float64) float64 {
	if d.Floor != nil && v < *d.Floor {
		v = *d.Floor
	}
	if d.Ceiling != nil && v > *d.Ceiling {
		v = *d.Ceiling
	}
	return v
}

func ptr(v float64) *float64 { return &v }

// Default returns the 100-day greenhouse configuration
func Default() SimulationConfig {
	return SimulationConfig{
		TotalDays: 100,
		NumPlants: 1,
		Phases: []PhaseSpan{
			{Name: types.PhaseGermination, StartDay: 1, EndDay: 10},
			{Name: types.PhaseGrowth, StartDay: 11, EndDay: 60},
			{Name: types.PhaseFlowering, StartDay: 61, EndDay: 75},
			{Name: types.PhaseRipening, StartDay: 76, EndDay: 100},
		},
		Environment: map[types.PhaseName]types.PhaseRanges{
			types.PhaseGermination: {
				Temperature: types.Range{Min: 15, Max: 20, Optimal: 18},
				Ventilation: types.Range{Min: 1, Max: 2, Optimal: 1.5},
				Irrigation:  types.Range{Min: 50, Max: 100, Optimal: 75},
				LightHours:  types.Range{Min: 12, Max: 14, Optimal: 13},
			},
			types.PhaseGrowth: {
				Temperature: types.Range{Min: 18, Max: 22, Optimal: 20},
				Ventilation: types.Range{Min: 2, Max: 3, Optimal: 2.5},
				Irrigation:  types.Range{Min: 100, Max: 200, Optimal: 150},
				LightHours:  types.Range{Min: 14, Max: 16, Optimal: 15},
			},
			types.PhaseFlowering: {
				Temperature: types.Range{Min: 20, Max: 24, Optimal: 22},
				Ventilation: types.Range{Min: 3, Max: 4, Optimal: 3.5},
				Irrigation:  types.Range{Min: 150, Max: 250, Optimal: 200},
				LightHours:  types.Range{Min: 14, Max: 14, Optimal: 14},
			},
			types.PhaseRipening: {
				Temperature: types.Range{Min: 18, Max: 22, Optimal: 20},
				Ventilation: types.Range{Min: 2, Max: 3, Optimal: 2.5},
				Irrigation:  types.Range{Min: 100, Max: 200, Optimal: 150},
				LightHours:  types.Range{Min: 12, Max: 14, Optimal: 13},
			},
		},
		Plant: PlantConfig{
			MaxHeight:     120,
			MaxRootLength: 120,
			MaxFlowers:    50,
			HeightShare: map[types.PhaseName]float64{
				types.PhaseGermination: 0.05,
				types.PhaseGrowth:      0.70,
				types.PhaseFlowering:   0.20,
				types.PhaseRipening:    0.05,
			},
			RootShare: map[types.PhaseName]float64{
				types.PhaseGermination: 0.15,
				types.PhaseGrowth:      0.65,
				types.PhaseFlowering:   0.15,
				types.PhaseRipening:    0.05,
			},
			FlowerShare: map[types.PhaseName]float64{
				types.PhaseGermination: 0,
				types.PhaseGrowth:      0,
				types.PhaseFlowering:   0.80,
				types.PhaseRipening:    0.20,
			},
			InitialAppearance: 3.0,
		},
		Appearance: map[types.PhaseName]AppearanceRange{
			types.PhaseGermination: {Min: 2, Max: 4},
			types.PhaseGrowth:      {Min: 5, Max: 8},
			types.PhaseFlowering:   {Min: 7, Max: 10},
			types.PhaseRipening:    {Min: 6, Max: 9},
		},
		Errors: ErrorSimulationConfig{
			Enabled:     true,
			Probability: 0.10,
			Deviations: map[types.Param]Deviation{
				types.ParamTemperature: {Min: 1, Max: 3},
				types.ParamVentilation: {Min: 0.1, Max: 0.5, Floor: ptr(0.1)},
				types.ParamIrrigation:  {Min: 10, Max: 30, Floor: ptr(10)},
				types.ParamLightHours:  {Min: 1, Max: 2, Floor: ptr(6), Ceiling: ptr(24)},
			},
		},
		NominalRates: map[types.PhaseName]GrowthRates{
			types.PhaseGermination: {Height: 0.4, Root: 1.2, Flowers: 0},
			types.PhaseGrowth:      {Height: 1.0, Root: 1.0, Flowers: 0},
			types.PhaseFlowering:   {Height: 1.2, Root: 0.6, Flowers: 2.5},
			types.PhaseRipening:    {Height: 0.2, Root: 0.2, Flowers: 0.2},
		},
	}
}

// Default80Day returns the compact 80-day calendar used by the controller deployment
func Default80Day() SimulationConfig {
	cfg := Default()
	cfg.TotalDays = 80
	cfg.Phases = []PhaseSpan{
		{Name: types.PhaseGermination, StartDay: 1, EndDay: 10},
		{Name: types.PhaseGrowth, StartDay: 11, EndDay: 60},
		{Name: types.PhaseFlowering, StartDay: 61, EndDay: 70},
		{Name: types.PhaseRipening, StartDay: 71, EndDay: 80},
	}
	return cfg
}

// ForCalendar returns the default configuration for a named calendar ("100" or "80")
func ForCalendar(name string) (SimulationConfig, error) {
	switch strings.TrimSuffix(strings.TrimSpace(name), "d") {
	case "", "100":
		return Default(), nil
	case "80":
		return Default80Day(), nil
	}
	return SimulationConfig{}, fmt.Errorf("unknown calendar %q (expected 100 or 80)", name)
}

// Validate checks the configuration for values that would break the growth engine.
// Violations are programming errors in configuration and must stop the run before day 1.
func (c SimulationConfig) Validate() error {
	if c.TotalDays < 1 || c.TotalDays > 3650 {
		return fmt.Errorf("total_days must be between 1 and 3650 (got %d)", c.TotalDays)
	}
	if c.NumPlants < 1 || c.NumPlants > 1000 {
		return fmt.Errorf("num_plants must be between 1 and 1000 (got %d)", c.NumPlants)
	}

	if err := c.validatePhases(); err != nil {
		return err
	}

	for _, phase := range types.AllPhases() {
		ranges, ok := c.Environment[phase]
		if !ok {
			return fmt.Errorf("environment: missing ranges for phase %s", phase)
		}
		if err := ranges.Validate(); err != nil {
			return fmt.Errorf("environment.%s.%w", phase, err)
		}
	}

	if err := c.Plant.validate(); err != nil {
		return err
	}

	for _, phase := range types.AllPhases() {
		ar, ok := c.Appearance[phase]
		if !ok {
			return fmt.Errorf("appearance: missing range for phase %s", phase)
		}
		if ar.Min < 0 || ar.Max > 10 || ar.Min > ar.Max {
			return fmt.Errorf("appearance.%s must satisfy 0 <= min <= max <= 10 (got %g-%g)", phase, ar.Min, ar.Max)
		}
	}

	if err := c.Errors.validate(); err != nil {
		return err
	}

	for phase, rates := range c.NominalRates {
		if !phase.IsValid() {
			return fmt.Errorf("nominal_rates: unknown phase %q", phase)
		}
		if rates.Height < 0 || rates.Root < 0 || rates.Flowers < 0 {
			return fmt.Errorf("nominal_rates.%s cannot be negative", phase)
		}
	}

	return nil
}

func (c SimulationConfig) validatePhases() error {
	want := types.AllPhases()
	if len(c.Phases) != len(want) {
		return fmt.Errorf("phases must list exactly %d phases (got %d)", len(want), len(c.Phases))
	}
	for i, span := range c.Phases {
		if span.Name != want[i] {
			return fmt.Errorf("phases[%d] must be %s (got %q)", i, want[i], span.Name)
		}
		if span.Length() < 1 {
			return fmt.Errorf("phase %s must span at least one day (got %d-%d)", span.Name, span.StartDay, span.EndDay)
		}
		if i == 0 && span.StartDay != 1 {
			return fmt.Errorf("phase %s must start on day 1 (got %d)", span.Name, span.StartDay)
		}
		if i > 0 {
			prev := c.Phases[i-1]
			if span.StartDay <= prev.EndDay {
				return fmt.Errorf("phase %s overlaps %s (starts day %d, previous ends day %d)",
					span.Name, prev.Name, span.StartDay, prev.EndDay)
			}
			if span.StartDay != prev.EndDay+1 {
				return fmt.Errorf("gap between %s and %s (days %d-%d unassigned)",
					prev.Name, span.Name, prev.EndDay+1, span.StartDay-1)
			}
		}
	}
	return nil
}

func (p PlantConfig) validate() error {
	if p.MaxHeight <= 0 {
		return fmt.Errorf("plant.max_height must be positive (got %g)", p.MaxHeight)
	}
	if p.MaxRootLength <= 0 {
		return fmt.Errorf("plant.max_root_length must be positive (got %g)", p.MaxRootLength)
	}
	if p.MaxFlowers < 0 {
		return fmt.Errorf("plant.max_flowers cannot be negative (got %d)", p.MaxFlowers)
	}
	if p.InitialAppearance < 0 || p.InitialAppearance > 10 {
		return fmt.Errorf("plant.initial_appearance must be between 0 and 10 (got %g)", p.InitialAppearance)
	}
	shares := []struct {
		name   string
		values map[types.PhaseName]float64
	}{
		{"height_share", p.HeightShare},
		{"root_share", p.RootShare},
		{"flower_share", p.FlowerShare},
	}
	for _, s := range shares {
		for _, phase := range types.AllPhases() {
			v, ok := s.values[phase]
			if !ok {
				return fmt.Errorf("plant.%s: missing value for phase %s", s.name, phase)
			}
			if v < 0 || v > 1 {
				return fmt.Errorf("plant.%s.%s must be between 0 and 1 (got %g)", s.name, phase, v)
			}
		}
	}
	return nil
}

func (e ErrorSimulationConfig) validate() error {
	if e.Probability < 0 || e.Probability > 1 {
		return fmt.Errorf("error_simulation.probability must be between 0 and 1 (got %g)", e.Probability)
	}
	for _, p := range types.AllParams() {
		d, ok := e.Deviations[p]
		if !ok {
			return fmt.Errorf("error_simulation.deviations: missing entry for %s", p)
		}
		if d.Min < 0 || d.Min > d.Max {
			return fmt.Errorf("error_simulation.deviations.%s must satisfy 0 <= min <= max (got %g-%g)", p, d.Min, d.Max)
		}
		if d.Floor != nil && d.Ceiling != nil && *d.Floor > *d.Ceiling {
			return fmt.Errorf("error_simulation.deviations.%s floor (%g) above ceiling (%g)", p, *d.Floor, *d.Ceiling)
		}
	}
	return nil
}

// String returns a one-line summary of the configuration
func (c SimulationConfig) String() string {
	var spans []string
	for _, s := range c.Phases {
		spans = append(spans, fmt.Sprintf("%s %d-%d", s.Name, s.StartDay, s.EndDay))
	}
	return fmt.Sprintf(
		"SimulationConfig{TotalDays: %d, NumPlants: %d, Seed: %d, Phases: [%s], Errors: %t@%.2f}",
		c.TotalDays, c.NumPlants, c.Seed, strings.Join(spans, ", "),
		c.Errors.Enabled, c.Errors.Probability,
	)
}
