package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements are applied in order and written to be idempotent,
// so Migrate can run on every boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		capacity_hrs_per_week DOUBLE PRECISION,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		domain TEXT,
		stage TEXT NOT NULL,
		priority TEXT NOT NULL,
		notes TEXT,
		contact_ids TEXT[] NOT NULL DEFAULT '{}',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS clients_name_normalized_idx
		ON clients (name_normalized) WHERE is_deleted = FALSE`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients (id),
		name TEXT NOT NULL,
		description TEXT,
		stage TEXT NOT NULL,
		priority TEXT NOT NULL,
		due_date TIMESTAMPTZ,
		member_ids TEXT[] NOT NULL DEFAULT '{}',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS projects_client_id_idx ON projects (client_id)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id),
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		due_date TIMESTAMPTZ,
		estimate_hrs DOUBLE PRECISION,
		order_index INTEGER NOT NULL DEFAULT 0,
		assignee_ids TEXT[] NOT NULL DEFAULT '{}',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_project_id_idx ON tasks (project_id)`,
	`CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status)`,
	`CREATE TABLE IF NOT EXISTS review_submissions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id),
		task_id TEXT NOT NULL REFERENCES tasks (id),
		status TEXT NOT NULL,
		submitted_by_id TEXT NOT NULL REFERENCES users (id),
		reviewer_id TEXT REFERENCES users (id),
		notes TEXT,
		responded_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS review_submissions_pending_idx
		ON review_submissions (task_id) WHERE status = 'PENDING'`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		content TEXT NOT NULL,
		is_client_visible BOOLEAN NOT NULL DEFAULT FALSE,
		author_id TEXT NOT NULL REFERENCES users (id),
		client_id TEXT,
		project_id TEXT,
		task_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS feedback_target_idx ON feedback (target_type, target_id)`,
	`CREATE TABLE IF NOT EXISTS time_logs (
		id TEXT PRIMARY KEY,
		target_type TEXT NOT NULL,
		target_id TEXT NOT NULL,
		project_id TEXT,
		task_id TEXT,
		member_id TEXT NOT NULL REFERENCES users (id),
		hours DOUBLE PRECISION NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS time_logs_member_date_idx ON time_logs (member_id, date)`,
	`CREATE TABLE IF NOT EXISTS channels (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		project_id TEXT,
		participant_ids TEXT[] NOT NULL DEFAULT '{}',
		is_archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL REFERENCES channels (id),
		author_id TEXT NOT NULL REFERENCES users (id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS messages_channel_idx ON messages (channel_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		mime TEXT NOT NULL,
		size BIGINT NOT NULL,
		version INTEGER NOT NULL,
		client_id TEXT,
		project_id TEXT,
		uploader_id TEXT NOT NULL REFERENCES users (id),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS files_version_idx ON files (name, client_id, project_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users (id),
		type TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, created_at)`,
}

// Migrate applies the schema statement by statement.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
