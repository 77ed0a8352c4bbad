// Package sqlite implements the run store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/steveyegge/flaxsim/internal/storage/migrations"
	"github.com/steveyegge/flaxsim/internal/types"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// timeLayout is fixed-width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed run store
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and migrates it
func New(ctx context.Context, path string) (*Store, error) {
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := migrations.NewManager(schemaMigrations...).Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied migration version
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return migrations.Version(ctx, s.db)
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, total_days, num_plants, status, config, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seed, run.TotalDays, run.NumPlants, run.Status, string(cfg), formatTime(run.StartedAt))
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r := snap.Reading
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (
			run_id, day, phase, temperature, ventilation, irrigation, light_hours,
			error_active, error_description, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, snap.Day, snap.Phase, r.Temperature, r.Ventilation, r.Irrigation, r.LightHours,
		snap.Error.Active, snap.Error.Description, string(data))
	if err != nil {
		return fmt.Errorf("failed to save snapshot (run=%s, day=%d): %w", runID, snap.Day, err)
	}

	fault := 0
	if snap.Error.Active {
		fault = 1
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE runs SET days_run = MAX(days_run, ?), faults = faults + ? WHERE id = ?
	`, snap.Day, fault, runID)
	if err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}

	return tx.Commit()
}

// CompleteRun marks a run finished and attaches its summary document
func (s *Store) CompleteRun(ctx context.Context, runID string, status types.RunStatus, summary json.RawMessage) error {
	if !status.IsValid() || status == types.RunStatusRunning {
		return fmt.Errorf("invalid completion status: %s", status)
	}
	var sum interface{}
	if len(summary) > 0 {
		sum = string(summary)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, summary = ?, completed_at = ? WHERE id = ?
	`, status, sum, formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", types.ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `id, seed, total_days, num_plants, status, config, summary, days_run, faults, started_at, completed_at`

// AbortStaleRuns marks runs still running that started before cutoff as
// aborted. It returns how many runs were closed.
func (s *Store) AbortStaleRuns(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, completed_at = ?
		WHERE status = ? AND started_at < ?
	`, types.RunStatusAborted, formatTime(time.Now()), types.RunStatusRunning, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to abort stale runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count aborted runs: %w", err)
	}
	return int(n), nil
}

// GetRun returns one run
func (s *Store) GetRun(ctx context.Context, runID string) (*types.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM snapshots WHERE run_id = ? ORDER BY day ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.DailySnapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var snap types.DailySnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*types.Run, error) {
	var (
		run       types.Run
		cfg       string
		summary   sql.NullString
		started   string
		completed sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Seed, &run.TotalDays, &run.NumPlants, &run.Status,
		&cfg, &summary, &run.DaysRun, &run.Faults, &started, &completed); err != nil {
		return nil, err
	}

	run.Config = json.RawMessage(cfg)
	if summary.Valid {
		run.Summary = json.RawMessage(summary.String)
	}

	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
