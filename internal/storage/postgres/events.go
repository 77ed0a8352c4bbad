package postgres

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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sim_events (id, run_id, type, timestamp, day, plant_id, severity, message, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.RunID, string(event.Type), event.Timestamp, event.Day, event.PlantID,
		string(event.Severity), event.Message, dataJSON)
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
	argNum := 1

	if filter.RunID != "" {
		query += fmt.Sprintf(" AND run_id = $%d", argNum)
		args = append(args, filter.RunID)
		argNum++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(filter.Type))
		argNum++
	}
	if filter.Severity != "" {
		query += fmt.Sprintf(" AND severity = $%d", argNum)
		args = append(args, string(filter.Severity))
		argNum++
	}
	if filter.PlantID > 0 {
		query += fmt.Sprintf(" AND plant_id = $%d", argNum)
		args = append(args, filter.PlantID)
		argNum++
	}

	query += " ORDER BY day ASC, seq ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []*events.SimEvent
	for rows.Next() {
		var (
			event     events.SimEvent
			eventType string
			severity  string
			data      []byte
		)
		if err := rows.Scan(&event.ID, &event.RunID, &eventType, &event.Timestamp, &event.Day, &event.PlantID,
			&severity, &event.Message, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = events.EventType(eventType)
		event.Severity = events.EventSeverity(severity)
		if err := json.Unmarshal(data, &event.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		result = append(result, &event)
	}
	return result, rows.Err()
}
