package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/plant"
	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/storage"
	"github.com/steveyegge/flaxsim/internal/types"
)

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the days and summary of a stored run",
	Long: `Show a stored run: its configuration, a day-by-day table of the
environment and average plant state, and the run summary.

Examples:
  flaxsim show 3f2c...              # Every day
  flaxsim show 3f2c... --every 10   # Every 10th day
  flaxsim show 3f2c... --csv        # Day table as CSV`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		every, _ := cmd.Flags().GetInt("every")
		asCSV, _ := cmd.Flags().GetBool("csv")
		if every < 1 {
			every = 1
		}

		ctx := context.Background()
		file := mustLoadConfig()
		store := mustOpenStore(ctx, file)
		defer func() { _ = store.Close() }()

		run, err := store.GetRun(ctx, args[0])
		if errors.Is(err, storage.ErrRunNotFound) {
			fmt.Fprintf(os.Stderr, "Error: run %s not found\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		snaps, err := store.GetSnapshots(ctx, run.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if asCSV {
			w := report.NewCSVWriter(os.Stdout, run.NumPlants)
			for _, snap := range snaps {
				if err := w.Write(snap, run.StartedAt); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					os.Exit(1)
				}
			}
			if err := w.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s %s\n", cyan("Run"), run.ID)
		fmt.Printf("  Status:  %s\n", colorRunStatus(run.Status))
		fmt.Printf("  Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if run.CompletedAt != nil {
			fmt.Printf("  Took:    %s\n", run.Duration().Round(time.Millisecond))
		}
		fmt.Printf("  Plants:  %d, days %d/%d, seed %d, faults %d\n\n",
			run.NumPlants, run.DaysRun, run.TotalDays, run.Seed, run.Faults)

		for i, snap := range snaps {
			if (i+1)%every != 0 && i != len(snaps)-1 && i != 0 {
				continue
			}
			printDayLine(snap)
		}

		if len(run.Summary) == 0 {
			return
		}
		summary, err := report.ReadSummary(bytes.NewReader(run.Summary))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg := config.Default()
		cfg.Plant = file.Simulation.Plant
		printSummary(summary, cfg)

		if run.Status != types.RunStatusCompleted && len(snaps) > 0 {
			last := snaps[len(snaps)-1]
			pred := plant.Predict(plant.Average(plantStates(last.Plants)), last.Day, file.Simulation)
			fmt.Printf("  Average plant at maturity (nominal): %.1fcm, %d flowers in %d days\n\n",
				pred.PredictedHeight, pred.PredictedFlowers, pred.DaysToMaturity)
		}
	},
}

func init() {
	showCmd.Flags().Int("every", 1, "Show only every n-th day (first and last always shown)")
	showCmd.Flags().Bool("csv", false, "Print the day table as CSV")
	rootCmd.AddCommand(showCmd)
}
