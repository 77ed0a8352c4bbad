package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/types"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Mark interrupted runs as aborted",
	Long: `Close runs that are still marked running but were started long ago.

A run stays in the running state when the process recording it is killed
before it can finish. This command marks such runs as aborted so they show
up correctly in 'flaxsim runs'.

Examples:
  flaxsim cleanup                  # Runs started more than 1 hour ago
  flaxsim cleanup --older-than 24h # Runs started more than a day ago
  flaxsim cleanup --dry-run        # Preview what would be closed`,
	Run: func(cmd *cobra.Command, args []string) {
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if olderThan <= 0 {
			fmt.Fprintf(os.Stderr, "Error: --older-than must be positive\n")
			os.Exit(1)
		}

		ctx := context.Background()
		store := mustOpenStore(ctx, mustLoadConfig())
		defer func() { _ = store.Close() }()

		cutoff := time.Now().Add(-olderThan)
		fmt.Printf("Scanning for stale runs (started before %s)...\n", cutoff.Local().Format("2006-01-02 15:04:05"))

		if dryRun {
			fmt.Printf("%s\n", color.YellowString("DRY RUN MODE - No runs will be changed"))
			runs, err := store.ListRuns(ctx, types.RunFilter{Status: types.RunStatusRunning})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			stale := 0
			for _, r := range runs {
				if r.StartedAt.Before(cutoff) {
					stale++
					fmt.Printf("  %s  day %d/%d\n", r.ID, r.DaysRun, r.TotalDays)
				}
			}
			fmt.Printf("Would abort %d run(s)\n", stale)
			return
		}

		cleaned, err := store.AbortStaleRuns(ctx, cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during cleanup: %v\n", err)
			os.Exit(1)
		}
		if cleaned > 0 {
			fmt.Printf("✓ Marked %d stale run(s) as aborted\n", cleaned)
		} else {
			fmt.Println("✓ No stale runs found")
		}
	},
}

func init() {
	cleanupCmd.Flags().Duration("older-than", time.Hour, "Abort running runs started longer ago than this")
	cleanupCmd.Flags().Bool("dry-run", false, "Show what would be aborted without changing anything")
	rootCmd.AddCommand(cleanupCmd)
}
