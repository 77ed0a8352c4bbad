package main

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/flaxsim/internal/events"
	"github.com/steveyegge/flaxsim/internal/types"
)

func TestExtractEventMetadata(t *testing.T) {
	tests := []struct {
		name     string
		event    *events.SimEvent
		expected string
	}{
		{
			name: "environment fault",
			event: &events.SimEvent{
				Type: events.EventTypeEnvironmentFault,
				Data: map[string]interface{}{
					"param":     "temperature",
					"direction": "low",
					"value":     12.04,
					"min":       15.0,
					"max":       25.0,
				},
			},
			expected: "temperature | 12.0°C | range 15-25",
		},
		{
			name: "plant status changed",
			event: &events.SimEvent{
				Type:    events.EventTypePlantStatusChanged,
				PlantID: 3,
				Data: map[string]interface{}{
					"from":       "Healthy",
					"to":         "Average",
					"appearance": 5.5,
				},
			},
			expected: "plant 3 | appearance 5.5",
		},
		{
			name: "growth cap reached",
			event: &events.SimEvent{
				Type:    events.EventTypeGrowthCapReached,
				PlantID: 1,
				Data: map[string]interface{}{
					"metric": "height",
					"value":  120.0,
					"max":    120.0,
				},
			},
			expected: "plant 1 | height 120.0/120",
		},
		{
			name: "phase change has no metadata",
			event: &events.SimEvent{
				Type: events.EventTypePhaseChanged,
				Data: map[string]interface{}{"from": "germination", "to": "growth"},
			},
			expected: "",
		},
		{
			name: "run started has no metadata",
			event: &events.SimEvent{
				Type: events.EventTypeRunStarted,
				Data: map[string]interface{}{"seed": 42},
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractEventMetadata(tt.event))
		})
	}
}

func TestGetEventEmoji(t *testing.T) {
	warn := &events.SimEvent{Type: events.EventTypeEnvironmentFault, Severity: events.SeverityWarning}
	crit := &events.SimEvent{Type: events.EventTypeEnvironmentFault, Severity: events.SeverityCritical}
	assert.NotEqual(t, getEventEmoji(warn), getEventEmoji(crit))
	assert.Equal(t, "•", getEventEmoji(&events.SimEvent{Type: "unknown"}))
	assert.Equal(t, "🌱", getEventEmoji(&events.SimEvent{Type: events.EventTypePhaseChanged}))
}

func TestColorStatus_NoColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	for _, s := range []types.Status{types.StatusThriving, types.StatusAverage, types.StatusCritical} {
		assert.Equal(t, string(s), colorStatus(s))
	}
	assert.Equal(t, "aborted", colorRunStatus(types.RunStatusAborted))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "abcdef", truncateString("abcdef", 3))
}
