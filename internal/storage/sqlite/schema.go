package sqlite

import "github.com/steveyegge/flaxsim/internal/storage/migrations"

// schemaMigrations builds the run store schema. Append new versions; never
// edit one that has shipped.
var schemaMigrations = []migrations.Migration{
	{
		Version:     1,
		Description: "runs and daily snapshots",
		Up: `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,
    total_days INTEGER NOT NULL CHECK(total_days > 0),
    num_plants INTEGER NOT NULL CHECK(num_plants > 0),
    status TEXT NOT NULL DEFAULT 'running',
    config TEXT NOT NULL DEFAULT '{}',
    summary TEXT,
    days_run INTEGER NOT NULL DEFAULT 0,
    faults INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT NOT NULL,
    day INTEGER NOT NULL,
    phase TEXT NOT NULL,
    temperature REAL NOT NULL,
    ventilation REAL NOT NULL,
    irrigation REAL NOT NULL,
    light_hours REAL NOT NULL,
    error_active INTEGER NOT NULL DEFAULT 0,
    error_description TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL,
    PRIMARY KEY (run_id, day),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);`,
		Down: `
DROP TABLE IF EXISTS snapshots;
DROP TABLE IF EXISTS runs;`,
	},
	{
		Version:     2,
		Description: "simulation events",
		Up: `
CREATE TABLE IF NOT EXISTS sim_events (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    day INTEGER NOT NULL DEFAULT 0,
    plant_id INTEGER NOT NULL DEFAULT 0,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sim_events_run ON sim_events(run_id);`,
		Down: `DROP TABLE IF EXISTS sim_events;`,
	},
	{
		Version:     3,
		Description: "event lookup by day and type",
		Up: `
CREATE INDEX IF NOT EXISTS idx_sim_events_run_day ON sim_events(run_id, day);
CREATE INDEX IF NOT EXISTS idx_sim_events_type ON sim_events(type);`,
		Down: `
DROP INDEX IF EXISTS idx_sim_events_type;
DROP INDEX IF EXISTS idx_sim_events_run_day;`,
	},
}
