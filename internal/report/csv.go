package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

// TimeLayout formats the date_time column
const TimeLayout = "2006-01-02 15:04:05"

// CSVHeader returns the column names for a run with numPlants plants
func CSVHeader(numPlants int) []string {
	header := []string{"day", "date_time", "phase", "temperature", "ventilation", "irrigation", "light_hours"}
	for p := 1; p <= numPlants; p++ {
		header = append(header,
			fmt.Sprintf("plant%d_height", p),
			fmt.Sprintf("plant%d_root_length", p),
			fmt.Sprintf("plant%d_flowers", p),
			fmt.Sprintf("plant%d_appearance", p),
		)
	}
	return append(header, "error_active", "error_description")
}

// CSVRow renders one snapshot as a row matching CSVHeader
func CSVRow(snap types.DailySnapshot, at time.Time) []string {
	r := snap.Reading
	row := []string{
		strconv.Itoa(snap.Day),
		at.Format(TimeLayout),
		string(snap.Phase),
		formatFloat(r.Temperature),
		formatFloat(r.Ventilation),
		formatFloat(r.Irrigation),
		formatFloat(r.LightHours),
	}
	for _, p := range snap.Plants {
		row = append(row,
			formatFloat(round(p.State.Height, 1)),
			formatFloat(round(p.State.RootLength, 1)),
			strconv.Itoa(p.State.Flowers),
			formatFloat(p.State.Appearance),
		)
	}
	return append(row, strconv.FormatBool(snap.Error.Active), snap.Error.Description)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CSVWriter streams snapshots as CSV rows. It can be registered as a simulation sink.
type CSVWriter struct {
	w         *csv.Writer
	numPlants int
	header    bool
	now       func() time.Time
}

// NewCSVWriter writes to w; the header is emitted before the first row
func NewCSVWriter(w io.Writer, numPlants int) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), numPlants: numPlants, now: time.Now}
}

// Write appends the row of snap stamped with at
func (c *CSVWriter) Write(snap types.DailySnapshot, at time.Time) error {
	if !c.header {
		if err := c.w.Write(CSVHeader(c.numPlants)); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		c.header = true
	}
	if err := c.w.Write(CSVRow(snap, at)); err != nil {
		return fmt.Errorf("failed to write CSV row for day %d: %w", snap.Day, err)
	}
	return nil
}

// OnSnapshot writes the row of snap and flushes it
func (c *CSVWriter) OnSnapshot(_ context.Context, snap types.DailySnapshot) error {
	if err := c.Write(snap, c.now()); err != nil {
		return err
	}
	return c.Flush()
}

// Finish flushes buffered rows
func (c *CSVWriter) Finish(context.Context, simulation.RunInfo) error {
	return c.Flush()
}

// Flush writes any buffered data
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}
