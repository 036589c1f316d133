package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is idempotent; Migrate may run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                   TEXT PRIMARY KEY,
		project_name         TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		repo_url             TEXT NOT NULL DEFAULT '',
		file_path            TEXT NOT NULL DEFAULT '',
		subdomain            TEXT,
		status               TEXT NOT NULL DEFAULT 'pending_setup',
		deployment_url       TEXT NOT NULL DEFAULT '',
		vercel_project_id    TEXT NOT NULL DEFAULT '',
		vercel_deployment_id TEXT NOT NULL DEFAULT '',
		github_repo_name     TEXT NOT NULL DEFAULT '',
		github_repo_id       BIGINT NOT NULL DEFAULT 0,
		github_repo_url      TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS projects_subdomain_key
		ON projects (subdomain) WHERE subdomain IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS projects_status_created_idx ON projects (status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS project_logs (
		id         BIGSERIAL PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
		logged_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		message    TEXT NOT NULL,
		log_type   TEXT NOT NULL DEFAULT 'info'
	)`,
	`CREATE INDEX IF NOT EXISTS project_logs_project_idx ON project_logs (project_id, id)`,
	`CREATE TABLE IF NOT EXISTS project_reviews (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
		rating        INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
		comment       TEXT NOT NULL DEFAULT '',
		reviewer_name TEXT NOT NULL DEFAULT 'Anonymous',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS project_reviews_project_idx ON project_reviews (project_id, created_at)`,
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
