package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/repl"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/storage"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive greenhouse console",
	Long: `Start an interactive console that advances the simulation on demand.

Use 'set temperature 22' to take manual control of a parameter, 'clear' to
hand it back to the generator, and 'step' or 'run' to advance days. The
session is recorded like a normal run unless --no-store is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := mustLoadConfig()
		cfg, err := applyConsoleFlags(cmd, file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logger := newLogger()
		history := report.NewHistory()
		sinks := []simulation.Sink{history}

		store, err := storage.Open(ctx, file.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if store != nil {
			defer func() { _ = store.Close() }()
			sinks = append(sinks, storage.NewRecorder(store, logger))
		}

		sim, err := simulation.New(cfg, simulation.WithLogger(logger), simulation.WithSinks(sinks...))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		console, err := repl.New(&repl.Config{Sim: sim, History: history})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := console.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	consoleCmd.Flags().IntP("plants", "p", 0, "Number of plants (default from config)")
	consoleCmd.Flags().Int64("seed", 0, "Random seed (0 = pick one)")
	consoleCmd.Flags().String("calendar", "", "Phase calendar: 100 or 80 (default from config)")
	consoleCmd.Flags().Bool("no-errors", false, "Disable environmental fault injection")
	consoleCmd.Flags().Bool("no-store", false, "Do not record the session in the database")
	rootCmd.AddCommand(consoleCmd)
}

func applyConsoleFlags(cmd *cobra.Command, file *config.File) (config.SimulationConfig, error) {
	cfg := file.Simulation
	flags := cmd.Flags()

	if flags.Changed("calendar") {
		name, _ := flags.GetString("calendar")
		cal, err := config.ForCalendar(name)
		if err != nil {
			return cfg, err
		}
		cfg.Phases = cal.Phases
		cfg.TotalDays = cal.TotalDays
	}
	if flags.Changed("plants") {
		cfg.NumPlants, _ = flags.GetInt("plants")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if noErrors, _ := flags.GetBool("no-errors"); noErrors {
		cfg.Errors.Enabled = false
	}
	if noStore, _ := flags.GetBool("no-store"); noStore {
		file.Storage.Disabled = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid console configuration: %w", err)
	}
	return cfg, nil
}
