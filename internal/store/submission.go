package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huddlehq/huddle/internal/model"
)

// UpsertSubmission creates or replaces a project's submission package.
// Only the raw URLs are stored; completeness is derived on read.
func (s *Store) UpsertSubmission(ctx context.Context, sub *model.Submission) error {
	sub.UpdatedAt = time.Now().UTC()

	// Portable upsert: try update first, insert when no row exists. The
	// store serializes writes on SQLite and the row is keyed by project,
	// so the window between the two statements is harmless.
	const update = `UPDATE submissions SET
		github_url = :github_url, presentation_url = :presentation_url,
		demo_video_url = :demo_video_url, updated_at = :updated_at
		WHERE project_id = :project_id`

	result, err := s.db.NamedExecContext(ctx, update, sub)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	const insert = `INSERT INTO submissions
		(project_id, github_url, presentation_url, demo_video_url, updated_at)
		VALUES (:project_id, :github_url, :presentation_url, :demo_video_url, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, insert, sub); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission returns a project's submission package.
func (s *Store) GetSubmission(ctx context.Context, projectID string) (*model.Submission, error) {
	var sub model.Submission
	q := s.rebind("SELECT * FROM submissions WHERE project_id = ?")
	if err := s.db.GetContext(ctx, &sub, q, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &sub, nil
}
