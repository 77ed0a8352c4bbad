package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/types"
)

func colorStatus(s types.Status) string {
	switch s {
	case types.StatusThriving, types.StatusHealthy:
		return color.New(color.FgGreen).Sprint(s)
	case types.StatusStruggling:
		return color.New(color.FgYellow).Sprint(s)
	case types.StatusCritical:
		return color.New(color.FgRed).Sprint(s)
	}
	return string(s)
}

func colorRunStatus(s types.RunStatus) string {
	switch s {
	case types.RunStatusCompleted:
		return color.New(color.FgGreen).Sprint(s)
	case types.RunStatusAborted:
		return color.New(color.FgRed).Sprint(s)
	}
	return color.New(color.FgYellow).Sprint(s)
}

// displayEvent prints one event on a single line, followed by its metadata
func displayEvent(event *events.SimEvent) {
	severityColor := getSeverityColor(event.Severity)
	typeColor := color.New(color.FgMagenta)

	day := "    -"
	if event.Day > 0 {
		day = fmt.Sprintf("d%3d ", event.Day)
	}
	fmt.Printf("%s %s %s %s\n",
		getEventEmoji(event),
		day,
		typeColor.Sprint(event.Type),
		severityColor.Sprint(event.Message),
	)
	if meta := extractEventMetadata(event); meta != "" {
		gray := color.New(color.FgHiBlack)
		fmt.Printf("        %s\n", gray.Sprint(meta))
	}
}

func getEventEmoji(event *events.SimEvent) string {
	switch event.Type {
	case events.EventTypeRunStarted:
		return "🚀"
	case events.EventTypeRunCompleted:
		return "✅"
	case events.EventTypePhaseChanged:
		return "🌱"
	case events.EventTypeEnvironmentFault:
		if event.Severity == events.SeverityCritical {
			return "🚨"
		}
		return "⚠️"
	case events.EventTypePlantStatusChanged:
		return "🌿"
	case events.EventTypeGrowthCapReached:
		return "📏"
	}
	return "•"
}

func getSeverityColor(severity events.EventSeverity) *color.Color {
	switch severity {
	case events.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case events.SeverityWarning:
		return color.New(color.FgYellow)
	}
	return color.New(color.Reset)
}

// extractEventMetadata returns a short pipe-separated description of the
// event data, or "" when there is nothing beyond the message
func extractEventMetadata(event *events.SimEvent) string {
	var parts []string
	switch event.Type {
	case events.EventTypeEnvironmentFault:
		data, err := event.GetEnvironmentFaultData()
		if err != nil {
			return ""
		}
		parts = append(parts,
			string(data.Param),
			fmt.Sprintf("%.1f%s", data.Value, data.Param.Unit()),
			fmt.Sprintf("range %g-%g", data.Min, data.Max))
	case events.EventTypePlantStatusChanged:
		data, err := event.GetPlantStatusChangedData()
		if err != nil {
			return ""
		}
		parts = append(parts,
			fmt.Sprintf("plant %d", event.PlantID),
			fmt.Sprintf("appearance %.1f", data.Appearance))
	case events.EventTypeGrowthCapReached:
		data, err := event.GetGrowthCapReachedData()
		if err != nil {
			return ""
		}
		parts = append(parts,
			fmt.Sprintf("plant %d", event.PlantID),
			fmt.Sprintf("%s %.1f/%g", data.Metric, data.Value, data.Max))
	}
	return strings.Join(parts, " | ")
}

func truncateString(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
