package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/internal/model"
)

// AddPivot appends a pivot-log entry. Pivots are never updated or deleted.
func (s *Store) AddPivot(ctx context.Context, p *model.Pivot) error {
	p.ID = uuid.Must(uuid.NewV7()).String()
	p.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO pivots (id, project_id, description, reason, created_at)
		VALUES (:id, :project_id, :description, :reason, :created_at)`

	if _, err := s.db.NamedExecContext(ctx, q, p); err != nil {
		return fmt.Errorf("insert pivot: %w", err)
	}
	return nil
}

// ListPivots returns a project's pivot log newest-first. UUID v7 IDs break
// ties between entries logged within the same timestamp tick.
func (s *Store) ListPivots(ctx context.Context, projectID string) ([]model.Pivot, error) {
	pivots := []model.Pivot{}
	q := s.rebind("SELECT * FROM pivots WHERE project_id = ? ORDER BY created_at DESC, id DESC")
	if err := s.db.SelectContext(ctx, &pivots, q, projectID); err != nil {
		return nil, fmt.Errorf("list pivots: %w", err)
	}
	return pivots, nil
}
