package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/blob"
	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/metrics"
	"github.com/steveyegge/flaxsim/internal/plant"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/storage"
	"github.com/steveyegge/flaxsim/internal/types"
)

var (
	runPlants      int
	runDays        int
	runSeed        int64
	runNoErrors    bool
	runErrorProb   float64
	runPace        time.Duration
	runQuiet       bool
	runNoStore     bool
	runArtifacts   string
	runMetricsFile string
	runCalendar    string
	runCSV         string
	runParallel    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a growth simulation",
	Long: `Run a complete growth simulation and print one line per day.

The run is stored in the database unless --no-store is given. Artifacts
(snapshots.csv, summary.json, metrics.prom) are published under
runs/<run-id>/ when an artifact driver is configured.

Examples:
  flaxsim run                                # 100-day run, 1 plant
  flaxsim run --plants 5 --seed 42           # Reproducible 5-plant run
  flaxsim run --calendar 80 --no-errors      # 80-day calendar, no faults
  flaxsim run --pace 200ms                   # Watch the run day by day
  flaxsim run --artifacts fs --csv run.csv   # Publish artifacts, stream CSV
  flaxsim run --metrics-file flaxsim.prom    # node_exporter textfile`,
	Run: func(cmd *cobra.Command, args []string) {
		file := mustLoadConfig()
		cfg, err := applyRunFlags(cmd, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := executeRun(ctx, cfg, file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().IntVarP(&runPlants, "plants", "p", 0, "Number of plants (default from config)")
	runCmd.Flags().IntVarP(&runDays, "days", "d", 0, "Number of days (default: end of the calendar)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Random seed (0 = pick one)")
	runCmd.Flags().BoolVar(&runNoErrors, "no-errors", false, "Disable environmental fault injection")
	runCmd.Flags().Float64Var(&runErrorProb, "error-prob", -1, "Daily fault probability (0-1)")
	runCmd.Flags().DurationVar(&runPace, "pace", 0, "Wall-clock delay between days (e.g. 100ms)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Only print the final summary")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Do not record the run in the database")
	runCmd.Flags().StringVar(&runArtifacts, "artifacts", "", "Artifact driver: none, fs, memory, s3 (overrides config)")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write final Prometheus metrics to this textfile")
	runCmd.Flags().StringVar(&runCalendar, "calendar", "", "Phase calendar: 100 or 80 (default from config)")
	runCmd.Flags().StringVar(&runCSV, "csv", "", "Stream the daily CSV to this file")
	runCmd.Flags().IntVar(&runParallel, "parallel", 1, "Plants advanced concurrently within a day")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays the run flags that were set onto the loaded config
func applyRunFlags(cmd *cobra.Command, file *config.File) (config.SimulationConfig, error) {
	cfg := file.Simulation
	flags := cmd.Flags()

	if flags.Changed("calendar") {
		cal, err := config.ForCalendar(runCalendar)
		if err != nil {
			return cfg, err
		}
		cfg.Phases = cal.Phases
		cfg.TotalDays = cal.TotalDays
	}
	if flags.Changed("plants") {
		cfg.NumPlants = runPlants
	}
	if flags.Changed("days") {
		cfg.TotalDays = runDays
	}
	if flags.Changed("seed") {
		cfg.Seed = runSeed
	}
	if runNoErrors {
		cfg.Errors.Enabled = false
	}
	if flags.Changed("error-prob") {
		cfg.Errors.Probability = runErrorProb
	}
	if runNoStore {
		file.Storage.Disabled = true
	}
	if flags.Changed("artifacts") {
		file.Artifacts.Driver = runArtifacts
		if err := file.Artifacts.Validate(); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid run configuration: %w", err)
	}
	return cfg, nil
}

func executeRun(ctx context.Context, cfg config.SimulationConfig, file *config.File) error {
	logger := newLogger()
	history := report.NewHistory()
	collector := metrics.NewCollector(runMetricsFile)
	sinks := []simulation.Sink{history, collector}

	store, err := storage.Open(ctx, file.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		sinks = append(sinks, storage.NewRecorder(store, logger))
	}

	if runCSV != "" {
		f, err := os.Create(runCSV)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer func() { _ = f.Close() }()
		sinks = append(sinks, report.NewCSVWriter(f, cfg.NumPlants))
	}

	artifacts, err := blob.Open(ctx, file.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	var publisher *report.Publisher
	if artifacts != nil {
		publisher = report.NewPublisher(artifacts, history, logger, collector.Artifact())
		sinks = append(sinks, publisher)
	}

	if !runQuiet {
		sinks = append(sinks, simulation.SinkFunc(func(_ context.Context, snap types.DailySnapshot) error {
			printDayLine(snap)
			return nil
		}))
	}

	sim, err := simulation.New(cfg,
		simulation.WithLogger(logger),
		simulation.WithSinks(sinks...),
		simulation.WithPace(runPace),
		simulation.WithParallelism(runParallel))
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	info := sim.Info()
	fmt.Printf("\n%s %s\n", cyan("Simulation"), info.ID)
	fmt.Printf("  %d plants, %d days, seed %d, faults %s\n\n",
		cfg.NumPlants, cfg.TotalDays, info.Seed, faultSetting(cfg))

	runErr := sim.Run(ctx)
	if runErr != nil {
		// still close the run so the partial history is recorded
		if ferr := sim.Finish(context.WithoutCancel(ctx)); ferr != nil {
			logger.Warn("failed to finish sinks", "error", ferr)
		}
		return runErr
	}

	printSummary(history.Summary(), cfg)
	if publisher != nil {
		green := color.New(color.FgGreen).SprintFunc()
		for _, bi := range publisher.Published() {
			fmt.Printf("  %s %s (%d bytes)\n", green("✓"), bi.Key, bi.Size)
		}
	}
	if runMetricsFile != "" {
		fmt.Printf("  Metrics written to %s\n", runMetricsFile)
	}
	if store != nil {
		fmt.Printf("\nInspect with: flaxsim show %s\n", info.ID)
	}
	fmt.Println()
	return nil
}

func faultSetting(cfg config.SimulationConfig) string {
	if !cfg.Errors.Enabled {
		return "off"
	}
	return fmt.Sprintf("%.0f%%/day", cfg.Errors.Probability*100)
}

func printDayLine(snap types.DailySnapshot) {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	mark, note := green("✓"), ""
	if snap.Error.Active {
		mark, note = yellow("⚠"), " "+snap.Error.Description
	}
	r := snap.Reading
	avg := plant.Average(plantStates(snap.Plants))
	fmt.Printf("Day %3d %-11s %5.1f°C %4.1f/hr %5.1fml %4.1fhrs | %5.1fcm %5.1fcm %3d fl %4.1f %s%s\n",
		snap.Day, snap.Phase, r.Temperature, r.Ventilation, r.Irrigation, r.LightHours,
		avg.Height, avg.RootLength, avg.Flowers, avg.Appearance, mark, note)
}

func plantStates(plants []types.PlantSnapshot) []types.PlantState {
	out := make([]types.PlantState, len(plants))
	for i, p := range plants {
		out[i] = p.State
	}
	return out
}

func printSummary(s report.Summary, cfg config.SimulationConfig) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Summary"))
	fmt.Printf("  %d days, %d environment faults\n", s.TotalDays, s.Errors.Total)
	for _, p := range types.AllParams() {
		if n := s.Errors.ByType[p]; n > 0 {
			fmt.Printf("    %-12s %d\n", p, n)
		}
	}
	fmt.Println()
	for _, p := range s.Plants {
		fmt.Printf("  Plant %d: %.1f/%.0fcm tall, %.1f/%.0fcm roots, %d/%d flowers, %s\n",
			p.PlantID, p.FinalHeight, cfg.Plant.MaxHeight, p.FinalRootLength, cfg.Plant.MaxRootLength,
			p.FinalFlowers, cfg.Plant.MaxFlowers, colorStatus(p.FinalStatus))
	}
	fmt.Println()
}
