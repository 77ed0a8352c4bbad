package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored simulation runs",
	Long: `List simulation runs recorded in the database, newest first.

Examples:
  flaxsim runs                      # Last 20 runs
  flaxsim runs -n 5                 # Last 5 runs
  flaxsim runs --status aborted     # Only interrupted runs`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")

		filter := types.RunFilter{Limit: limit}
		if status != "" {
			filter.Status = types.RunStatus(status)
			if !filter.Status.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid status %q (expected running, completed or aborted)\n", status)
				os.Exit(1)
			}
		}

		ctx := context.Background()
		store := mustOpenStore(ctx, mustLoadConfig())
		defer func() { _ = store.Close() }()

		runs, err := store.ListRuns(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(runs) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("\n%s No runs recorded yet. Start one with 'flaxsim run'\n\n", yellow("✨"))
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("Runs (%d)", len(runs))))
		fmt.Printf("  %-36s  %-19s  %-10s %6s %6s %6s %12s\n", "ID", "Started", "Status", "Plants", "Days", "Faults", "Seed")
		for _, r := range runs {
			fmt.Printf("  %-36s  %-19s  %-19s %6d %6s %6d %12d\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				colorRunStatus(r.Status),
				r.NumPlants,
				fmt.Sprintf("%d/%d", r.DaysRun, r.TotalDays),
				r.Faults,
				r.Seed)
		}
		fmt.Println()
	},
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsCmd.Flags().StringP("status", "s", "", "Filter by status (running, completed, aborted)")
	rootCmd.AddCommand(runsCmd)
}
