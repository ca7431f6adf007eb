// Package db provides SQLite database access for contextd.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/contextd-io/contextd/internal/logging"
	"github.com/contextd-io/contextd/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
	name              TEXT PRIMARY KEY,
	enabled           INTEGER NOT NULL DEFAULT 0,
	fence_set         INTEGER NOT NULL DEFAULT 0,
	latitude          REAL NOT NULL DEFAULT 0,
	longitude         REAL NOT NULL DEFAULT 0,
	radius_m          INTEGER NOT NULL DEFAULT -1,
	target_activity   TEXT NOT NULL,
	window_start      TEXT,
	window_end        TEXT,
	geofence_entered  INTEGER NOT NULL DEFAULT 0,
	triggered         INTEGER NOT NULL DEFAULT 0,
	config_updated_at TEXT NOT NULL,
	state_updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS device_state (
	id               INTEGER PRIMARY KEY CHECK (id = 1),
	current_activity TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	timestamp   TEXT NOT NULL,
	type        TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	payload_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp, id);
CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_type, entity_id, timestamp);
`

// DB wraps the SQLite connection pool.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// Open opens (creating if necessary) the database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &DB{DB: conn, logger: logging.Component("db")}, nil
}

// OpenInMemory opens an in-memory database, used by tests and the replay
// harness. The pool is capped at one connection so the shared memory
// database is not silently duplicated.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return &DB{DB: conn, logger: logging.Component("db")}, nil
}

// Migrate creates the schema and seeds the fixed scenario rows and the
// device-state singleton. Seeding is idempotent; existing rows are left
// untouched.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, scenario := range models.AllScenarios() {
		_, err := d.ExecContext(ctx, `
			INSERT OR IGNORE INTO scenarios (
				name, enabled, fence_set, latitude, longitude, radius_m,
				target_activity, geofence_entered, triggered,
				config_updated_at, state_updated_at
			) VALUES (?, 0, 0, 0, 0, -1, ?, 0, 0, ?, ?)
		`, string(scenario), string(scenario.DefaultTargetActivity()), now, now)
		if err != nil {
			return fmt.Errorf("failed to seed scenario %s: %w", scenario, err)
		}
	}

	_, err := d.ExecContext(ctx, `
		INSERT OR IGNORE INTO device_state (id, current_activity, updated_at)
		VALUES (1, ?, ?)
	`, string(models.ActivityUnknown), now)
	if err != nil {
		return fmt.Errorf("failed to seed device state: %w", err)
	}

	return nil
}
