package postgres

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    seed BIGINT NOT NULL,
    total_days INTEGER NOT NULL CHECK(total_days > 0),
    num_plants INTEGER NOT NULL CHECK(num_plants > 0),
    status TEXT NOT NULL DEFAULT 'running',
    config JSONB NOT NULL DEFAULT '{}',
    summary JSONB,
    days_run INTEGER NOT NULL DEFAULT 0,
    faults INTEGER NOT NULL DEFAULT 0,
    started_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    day INTEGER NOT NULL,
    phase TEXT NOT NULL,
    temperature DOUBLE PRECISION NOT NULL,
    ventilation DOUBLE PRECISION NOT NULL,
    irrigation DOUBLE PRECISION NOT NULL,
    light_hours DOUBLE PRECISION NOT NULL,
    error_active BOOLEAN NOT NULL DEFAULT FALSE,
    error_description TEXT NOT NULL DEFAULT '',
    data JSONB NOT NULL,
    PRIMARY KEY (run_id, day)
);

CREATE TABLE IF NOT EXISTS sim_events (
    seq BIGSERIAL UNIQUE,
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    type TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL,
    day INTEGER NOT NULL DEFAULT 0,
    plant_id INTEGER NOT NULL DEFAULT 0,
    severity TEXT NOT NULL,
    message TEXT NOT NULL,
    data JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_sim_events_run_day ON sim_events(run_id, day);
CREATE INDEX IF NOT EXISTS idx_sim_events_type ON sim_events(type);
`
