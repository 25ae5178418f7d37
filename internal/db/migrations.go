package db

import (
	"context"
	"fmt"
	"time"
)

type migration struct {
	version     int
	description string
	up          string
}

var migrations = []migration{
	{
		version:     1,
		description: "preferences",
		up: `
			CREATE TABLE IF NOT EXISTS preferences (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`,
	},
	{
		version:     2,
		description: "registrations",
		up: `
			CREATE TABLE IF NOT EXISTS registrations (
				id TEXT PRIMARY KEY,
				remote_id TEXT,
				patient_name TEXT NOT NULL,
				patient_phone TEXT,
				service_id TEXT NOT NULL,
				doctor_id TEXT,
				appointment_date TEXT NOT NULL,
				time_slot TEXT NOT NULL,
				visit_type TEXT NOT NULL,
				subtotal_cents INTEGER NOT NULL DEFAULT 0,
				covered_cents INTEGER NOT NULL DEFAULT 0,
				payable_cents INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				submitted_at TEXT NOT NULL,
				metadata_json TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_registrations_submitted_at ON registrations(submitted_at);
		`,
	},
	{
		version:     3,
		description: "events",
		up: `
			CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				type TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				entity_id TEXT NOT NULL,
				payload_json TEXT,
				metadata_json TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp, id);
			CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_type, entity_id);
		`,
	},
}

// MigrateUp applies pending migrations and returns how many ran.
func (db *DB) MigrateUp(ctx context.Context) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
			m.version, m.description, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}

		db.logger.Debug().Int("version", m.version).Str("description", m.description).Msg("migration applied")
		applied++
	}

	return applied, nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
