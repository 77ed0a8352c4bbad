// Package postgres implements the run store on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/steveyegge/flaxsim/internal/types"
)

// Store is a PostgreSQL-backed run store
type Store struct {
	pool *pgxpool.Pool
}

// Config holds pool tuning on top of the connection URL
type Config struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	HealthCheck     time.Duration
}

// DefaultConfig returns pool settings for a single simulation process
func DefaultConfig(url string) *Config {
	return &Config{
		URL:             url,
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 1 * time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		HealthCheck:     1 * time.Minute,
	}
}

// New connects, verifies the connection and creates the schema
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("postgres connection URL is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateRun inserts a new run in the running state
func (s *Store) CreateRun(ctx context.Context, run *types.Run) error {
	if run.Status == "" {
		run.Status = types.RunStatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	cfg := run.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage("{}")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO runs (id, seed, total_days, num_plants, status, config, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.Seed, run.TotalDays, run.NumPlants, string(run.Status), []byte(cfg), run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// SaveSnapshot stores one day of a run
func (s *Store) SaveSnapshot(ctx context.Context, runID string, snap types.DailySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r := snap.Reading
	_, err = tx.Exec(ctx, `
		INSERT INTO snapshots (
			run_id, day, phase, temperature, ventilation, irrigation, light_hours,
			error_active, error_description, data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, runID, snap.Day, string(snap.Phase), r.Temperature, r.Ventilation, r.Irrigation, r.LightHours,
		snap.Error.Active, snap.Error.Description, data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot (run=%s, day=%d): %w", runID, snap.Day, err)
	}

	fault := 0
	if snap.Error.Active {
		fault = 1
	}
	tag, err := tx.Exec(ctx, `
		UPDATE runs SET days_run = GREATEST(days_run, $1), faults = faults + $2 WHERE id = $3
	`, snap.Day, fault, runID)
	if err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}

	return tx.Commit(ctx)
}

// CompleteRun marks a run finished and attaches its summary document
func (s *Store) CompleteRun(ctx context.Context, runID string, status types.RunStatus, summary json.RawMessage) error {
	if !status.IsValid() || status == types.RunStatusRunning {
		return fmt.Errorf("invalid completion status: %s", status)
	}
	var sum []byte
	if len(summary) > 0 {
		sum = summary
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE runs SET status = $1, summary = $2, completed_at = $3 WHERE id = $4
	`, string(status), sum, time.Now(), runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, seed, total_days, num_plants, status, config, summary, days_run, faults, started_at, completed_at`

// AbortStaleRuns marks runs still running that started before cutoff as
// aborted. It returns how many runs were closed.
func (s *Store) AbortStaleRuns(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE runs SET status = $1, completed_at = NOW()
		WHERE status = $2 AND started_at < $3
	`, string(types.RunStatusAborted), string(types.RunStatusRunning), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to abort stale runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// GetRun returns one run
func (s *Store) GetRun(ctx context.Context, runID string) (*types.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns runs newest first
func (s *Store) ListRuns(ctx context.Context, filter types.RunFilter) ([]*types.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := []interface{}{}
	argNum := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filter.Status))
		argNum++
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []*types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetSnapshots returns all stored days of a run in day order
func (s *Store) GetSnapshots(ctx context.Context, runID string) ([]types.DailySnapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM snapshots WHERE run_id = $1 ORDER BY day ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.DailySnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var snap types.DailySnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (*types.Run, error) {
	var (
		run     types.Run
		status  string
		cfg     []byte
		summary []byte
	)
	if err := row.Scan(&run.ID, &run.Seed, &run.TotalDays, &run.NumPlants, &status,
		&cfg, &summary, &run.DaysRun, &run.Faults, &run.StartedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	run.Status = types.RunStatus(status)
	run.Config = json.RawMessage(cfg)
	if summary != nil {
		run.Summary = json.RawMessage(summary)
	}
	return &run, nil
}
