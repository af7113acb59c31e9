package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; Migrate may run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS inspection_sheets (
		id TEXT PRIMARY KEY,
		object_id TEXT NOT NULL,
		executor_id TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('issued', 'in_progress', 'completed', 'approved')),
		issued_date DATE NOT NULL,
		completed_date DATE,
		worker_signature TEXT,
		master_accepted_date DATE,
		master_signature TEXT,
		master_notes TEXT NOT NULL DEFAULT '',
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS inspection_sheets_executor_idx ON inspection_sheets (executor_id)`,
	`CREATE INDEX IF NOT EXISTS inspection_sheets_object_idx ON inspection_sheets (object_id)`,
	`CREATE TABLE IF NOT EXISTS sheet_defects (
		id TEXT PRIMARY KEY,
		sheet_id TEXT NOT NULL REFERENCES inspection_sheets (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		location_id TEXT NOT NULL,
		location_name TEXT NOT NULL,
		description TEXT NOT NULL,
		severity TEXT CHECK (severity IN ('low', 'medium', 'high')),
		UNIQUE (sheet_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		seq BIGSERIAL,
		id TEXT PRIMARY KEY,
		user_id TEXT,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT,
		old_values JSONB,
		new_values JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_resource_idx ON audit_logs (resource, resource_id, created_at)`,
}

// Migrate creates the tables used by the sheet and audit repositories.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
