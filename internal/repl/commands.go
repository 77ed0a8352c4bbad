package repl

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/flaxsim/internal/environment"
	"github.com/steveyegge/flaxsim/internal/plant"
	"github.com/steveyegge/flaxsim/internal/types"
)

// paramAliases maps accepted spellings to parameters
var paramAliases = map[string]types.Param{
	"temperature": types.ParamTemperature,
	"temp":        types.ParamTemperature,
	"ventilation": types.ParamVentilation,
	"vent":        types.ParamVentilation,
	"irrigation":  types.ParamIrrigation,
	"water":       types.ParamIrrigation,
	"light_hours": types.ParamLightHours,
	"light":       types.ParamLightHours,
}

func paramNames() []string {
	names := make([]string, 0, len(paramAliases))
	for name := range paramAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseParam(s string) (types.Param, error) {
	s = strings.ToLower(s)
	if p, ok := paramAliases[s]; ok {
		return p, nil
	}
	if hint := suggest(s, paramNames()); hint != "" {
		return "", fmt.Errorf("unknown parameter %q (did you mean %q?)", s, hint)
	}
	return "", fmt.Errorf("unknown parameter %q (expected one of: %s)", s, strings.Join(paramNames(), ", "))
}

// cmdStep simulates the next n days. With manual values set, each day is fed
// through the external-reading path; unset parameters sit at their optimum.
func (r *REPL) cmdStep(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("step count must be a positive integer (got %q)", args[0])
		}
		n = v
	}

	for i := 0; i < n; i++ {
		if r.sim.Done() {
			return r.finishRun()
		}
		snap, err := r.stepOnce()
		if err != nil {
			return err
		}
		r.printDay(snap)
	}
	if r.sim.Done() {
		return r.finishRun()
	}
	return nil
}

func (r *REPL) stepOnce() (types.DailySnapshot, error) {
	if len(r.manual) == 0 {
		return r.sim.Step(r.ctx)
	}
	day := r.sim.Day() + 1
	phase := r.sim.Calendar().PhaseForDay(day)
	reading := environment.NewReading(day, phase, r.sim.Generator().Ranges(phase), r.manual)
	return r.sim.StepWithReading(r.ctx, reading)
}

// cmdRun simulates every remaining day, printing only faults
func (r *REPL) cmdRun(args []string) error {
	yellow := color.New(color.FgYellow).SprintFunc()
	start := r.sim.Day()
	for !r.sim.Done() {
		snap, err := r.stepOnce()
		if err != nil {
			return err
		}
		if snap.Error.Active {
			fmt.Fprintf(r.out, "  day %3d %s %s\n", snap.Day, yellow("⚠"), snap.Error.Description)
		}
	}
	fmt.Fprintf(r.out, "Simulated %d days\n", r.sim.Day()-start)
	return r.finishRun()
}

func (r *REPL) finishRun() error {
	green := color.New(color.FgGreen).SprintFunc()
	if err := r.sim.Finish(r.ctx); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s Simulation complete after %d days\n", green("✓"), r.sim.Day())
	return nil
}

// cmdSet pins a parameter to a manual value
func (r *REPL) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <param> <value>")
	}
	p, err := parseParam(args[0])
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", args[1], p, err)
	}
	if v < 0 {
		return fmt.Errorf("%s cannot be negative (got %g)", p, v)
	}
	r.manual[p] = v

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s %s set to %g%s\n", green("✓"), p.Label(), v, p.Unit())

	day := r.sim.Day() + 1
	rg := r.sim.Generator().Ranges(r.sim.Calendar().PhaseForDay(day)).Get(p)
	if !rg.Contains(v) {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(r.out, "%s outside the optimal range %s for day %d\n", yellow("Warning:"), rg, day)
	}
	return nil
}

// cmdClear releases one or all manual values
func (r *REPL) cmdClear(args []string) error {
	if len(args) == 0 {
		r.manual = environment.Overrides{}
		fmt.Fprintln(r.out, "All parameters released to the generator")
		return nil
	}
	p, err := parseParam(args[0])
	if err != nil {
		return err
	}
	delete(r.manual, p)
	fmt.Fprintf(r.out, "%s released\n", p.Label())
	return nil
}

// cmdStatus shows the current day, phase and plants
func (r *REPL) cmdStatus(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	day := r.sim.Day()
	fmt.Fprintf(r.out, "\n%s\n", cyan("Greenhouse Status"))
	if day == 0 {
		fmt.Fprintf(r.out, "  Day 0 of %d (not started)\n", r.sim.Config().TotalDays)
	} else {
		pos := r.sim.Calendar().At(day)
		fmt.Fprintf(r.out, "  Day %d of %d, %s phase (day %d of %d)\n",
			day, r.sim.Config().TotalDays, pos.Phase, pos.LocalDay, pos.Length)
	}

	if len(r.manual) > 0 {
		fmt.Fprint(r.out, "  Manual:")
		for _, p := range types.AllParams() {
			if v, ok := r.manual[p]; ok {
				fmt.Fprintf(r.out, " %s=%g%s", p, v, p.Unit())
			}
		}
		fmt.Fprintln(r.out)
	}

	if last, ok := r.sim.Last(); ok {
		rd := last.Reading
		fmt.Fprintf(r.out, "  Environment: %.1f°C, %.1f/hr, %.1fml, %.1fhrs\n",
			rd.Temperature, rd.Ventilation, rd.Irrigation, rd.LightHours)
		if last.Error.Active {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(r.out, "  %s %s\n", yellow("⚠"), last.Error.Description)
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %-6s %9s %9s %8s %11s  %s\n", "Plant", "Height", "Root", "Flowers", "Appearance", "Status")
	states := make([]types.PlantState, 0)
	for _, p := range r.sim.Plants() {
		states = append(states, p.State)
		fmt.Fprintf(r.out, "  %-6d %7.1fcm %7.1fcm %8d %11.1f  %s\n",
			p.PlantID, p.State.Height, p.State.RootLength, p.State.Flowers, p.State.Appearance, colorStatus(p.Status))
	}
	if len(states) > 1 {
		avg := plant.Average(states)
		fmt.Fprintf(r.out, "  %-6s %7.1fcm %7.1fcm %8d %11.1f\n", "avg", avg.Height, avg.RootLength, avg.Flowers, avg.Appearance)
	}
	fmt.Fprintln(r.out)
	return nil
}

// cmdPredict projects every plant to maturity
func (r *REPL) cmdPredict(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	cfg := r.sim.Config()
	day := r.sim.Day()

	fmt.Fprintf(r.out, "\n%s\n", cyan("Predicted at maturity"))
	for _, p := range r.sim.Plants() {
		pred := plant.Predict(p.State, day, cfg)
		fmt.Fprintf(r.out, "  Plant %d: %.1fcm tall, %.1fcm roots, %d flowers in %d days\n",
			p.PlantID, pred.PredictedHeight, pred.PredictedRootLength, pred.PredictedFlowers, pred.DaysToMaturity)
	}
	fmt.Fprintln(r.out)
	return nil
}

// cmdRecommend shows the setpoints for the phase of the next day
func (r *REPL) cmdRecommend(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	day := min(r.sim.Day()+1, r.sim.Config().TotalDays)
	phase := r.sim.Calendar().PhaseForDay(day)

	fmt.Fprintf(r.out, "\n%s\n", cyan(fmt.Sprintf("Recommended setpoints (%s phase)", phase)))
	for _, rec := range plant.Recommend(r.sim.Config(), phase) {
		fmt.Fprintf(r.out, "  %-12s %6.1f%-4s range %g-%g\n",
			rec.Param, rec.Setpoint, rec.Param.Unit(), rec.Range.Min, rec.Range.Max)
	}
	fmt.Fprintln(r.out)
	return nil
}

// cmdSummary prints the summary of the days simulated so far
func (r *REPL) cmdSummary(args []string) error {
	if r.history == nil {
		return errors.New("summary is not available (no history recorded)")
	}
	if r.history.Len() == 0 {
		return errors.New("no days simulated yet")
	}
	s := r.history.Summary()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Fprintf(r.out, "\n%s\n", cyan("Run Summary"))
	fmt.Fprintf(r.out, "  %d days, %d plants, %d environment faults\n", r.history.Len(), s.NumPlants, s.Errors.Total)
	for _, phase := range types.AllPhases() {
		ps, ok := s.Phases[phase]
		if !ok || ps.Days == 0 {
			continue
		}
		fmt.Fprintf(r.out, "  %-12s %3d days  avg %.1f°C %.1f/hr %.1fml %.1fhrs  %d faults\n",
			phase, ps.Days, ps.AvgTemperature, ps.AvgVentilation, ps.AvgIrrigation, ps.AvgLightHours, ps.Errors)
	}
	for _, p := range s.Plants {
		fmt.Fprintf(r.out, "  Plant %d: %.1fcm, %.1fcm roots, %d flowers, %s (%.2f cm/day)\n",
			p.PlantID, p.FinalHeight, p.FinalRootLength, p.FinalFlowers, p.FinalStatus, p.GrowthRate.Height)
	}
	fmt.Fprintln(r.out)
	return nil
}

func (r *REPL) printDay(snap types.DailySnapshot) {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	mark := green("✓")
	note := "all parameters in range"
	if snap.Error.Active {
		mark = yellow("⚠")
		note = snap.Error.Description
	}
	avg := plant.Average(statesOf(snap.Plants))
	fmt.Fprintf(r.out, "Day %3d %-11s %s %s | avg %.1fcm, %d flowers, appearance %.1f\n",
		snap.Day, snap.Phase, mark, note, avg.Height, avg.Flowers, avg.Appearance)
}

func statesOf(plants []types.PlantSnapshot) []types.PlantState {
	out := make([]types.PlantState, len(plants))
	for i, p := range plants {
		out[i] = p.State
	}
	return out
}

func colorStatus(s types.Status) string {
	switch s {
	case types.StatusThriving, types.StatusHealthy:
		return color.New(color.FgGreen).Sprint(s)
	case types.StatusAverage:
		return string(s)
	case types.StatusStruggling:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgRed).Sprint(s)
	}
}
