package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/steveyegge/flaxsim/internal/events"
)

// StoreEvent stores a new simulation event
func (s *Store) StoreEvent(ctx context.Context, event *events.SimEvent) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sim_events (id, run_id, type, timestamp, day, plant_id, severity, message, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.RunID, event.Type, formatTime(event.Timestamp), event.Day, event.PlantID,
		event.Severity, event.Message, string(dataJSON))
	if err != nil {
		return fmt.Errorf("failed to store event (type=%s, run=%s): %w", event.Type, event.RunID, err)
	}
	return nil
}

// GetEvents retrieves events matching the filter in day order
func (s *Store) GetEvents(ctx context.Context, filter events.EventFilter) ([]*events.SimEvent, error) {
	query := `
		SELECT id, run_id, type, timestamp, day, plant_id, severity, message, data
		FROM sim_events
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filter.Severity)
	}
	if filter.PlantID > 0 {
		query += " AND plant_id = ?"
		args = append(args, filter.PlantID)
	}

	query += " ORDER BY day ASC, timestamp ASC, rowid ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []*events.SimEvent
	for rows.Next() {
		var (
			event    events.SimEvent
			ts, data string
		)
		if err := rows.Scan(&event.ID, &event.RunID, &event.Type, &ts, &event.Day, &event.PlantID,
			&event.Severity, &event.Message, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if event.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &event.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		result = append(result, &event)
	}
	return result, rows.Err()
}
