package store

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			one_line_idea TEXT NOT NULL DEFAULT '',
			hackathon_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'Member',
			joined_at TIMESTAMP NOT NULL,
			UNIQUE(project_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			column_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			assignee_id TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS pivots (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS submissions (
			project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
			github_url TEXT NOT NULL DEFAULT '',
			presentation_url TEXT NOT NULL DEFAULT '',
			demo_video_url TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL
		)`,

		// No uniqueness on (project_id, hackathon_id, name): duplicate secret
		// names are allowed, matching the product's behavior.
		`CREATE TABLE IF NOT EXISTS secrets (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			hackathon_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			encrypted_value TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_by_name TEXT NOT NULL DEFAULT '',
			access_count BIGINT NOT NULL DEFAULT 0,
			last_accessed_at TIMESTAMP,
			last_accessed_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// secret_id is a weak reference on purpose: deleting a secret leaves
		// its requests behind as an audit trail.
		`CREATE TABLE IF NOT EXISTS access_requests (
			id TEXT PRIMARY KEY,
			secret_id TEXT NOT NULL,
			requested_by TEXT NOT NULL,
			requested_by_name TEXT NOT NULL DEFAULT '',
			justification TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			handled_by TEXT NOT NULL DEFAULT '',
			handled_by_name TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMP NOT NULL,
			handled_at TIMESTAMP,
			access_expires_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_members_project ON members(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_board ON tasks(project_id, column_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_pivots_project ON pivots(project_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_secrets_project ON secrets(project_id, hackathon_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_secret ON access_requests(secret_id, requested_at)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requester ON access_requests(secret_id, requested_by)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// ALTER TABLE ADD COLUMN fails if the column already exists;
			// treat "duplicate column" as a no-op for idempotent migrations.
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
