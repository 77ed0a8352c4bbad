package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/storage"
)

var eventsCmd = &cobra.Command{
	Use:   "events <run-id>",
	Short: "Show the event log of a stored run",
	Long: `Show the events recorded for a run: phase changes, environment faults,
plant status changes and growth caps, in simulated-day order.

Examples:
  flaxsim events 3f2c...                          # Every event
  flaxsim events 3f2c... --type environment_fault # Faults only
  flaxsim events 3f2c... --severity critical      # Critical events only
  flaxsim events 3f2c... --plant 2                # Events of plant 2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventType, _ := cmd.Flags().GetString("type")
		severity, _ := cmd.Flags().GetString("severity")
		plantID, _ := cmd.Flags().GetInt("plant")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := events.EventFilter{
			RunID:    args[0],
			Type:     events.EventType(eventType),
			Severity: events.EventSeverity(severity),
			PlantID:  plantID,
			Limit:    limit,
		}
		if eventType != "" && !filter.Type.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: unknown event type %q\n", eventType)
			os.Exit(1)
		}
		if severity != "" && !filter.Severity.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: invalid severity %q (expected info, warning or critical)\n", severity)
			os.Exit(1)
		}

		ctx := context.Background()
		store := mustOpenStore(ctx, mustLoadConfig())
		defer func() { _ = store.Close() }()

		if _, err := store.GetRun(ctx, args[0]); err != nil {
			if errors.Is(err, storage.ErrRunNotFound) {
				fmt.Fprintf(os.Stderr, "Error: run %s not found\n", args[0])
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}

		evts, err := store.GetEvents(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(evts) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("\n%s No matching events\n\n", yellow("✨"))
			return
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("Events for %s (%d)", truncateString(args[0], 40), len(evts))))
		for _, e := range evts {
			displayEvent(e)
		}
		fmt.Println()
	},
}

func init() {
	eventsCmd.Flags().StringP("type", "t", "", "Filter by event type")
	eventsCmd.Flags().StringP("severity", "s", "", "Filter by severity (info, warning, critical)")
	eventsCmd.Flags().IntP("plant", "p", 0, "Filter by plant ID")
	eventsCmd.Flags().IntP("limit", "n", 0, "Maximum number of events (0 = all)")
	rootCmd.AddCommand(eventsCmd)
}
