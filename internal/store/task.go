package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huddlehq/huddle/internal/model"
)

// CreateTask inserts a task. When t.Position is negative the store assigns
// the next free position within (project, column): creating N tasks in
// sequence without explicit positions yields 0..N-1.
func (s *Store) CreateTask(ctx context.Context, t *model.Task, assignPosition bool) error {
	now := time.Now().UTC()
	t.ID = uuid.Must(uuid.NewV7()).String()
	t.CreatedAt = now
	t.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if assignPosition {
		var next sql.NullInt64
		q := s.rebind("SELECT MAX(position) + 1 FROM tasks WHERE project_id = ? AND column_id = ?")
		if err := tx.GetContext(ctx, &next, q, t.ProjectID, t.ColumnID); err != nil {
			return fmt.Errorf("next task position: %w", err)
		}
		if next.Valid {
			t.Position = int(next.Int64)
		} else {
			t.Position = 0
		}
	}

	const insert = `INSERT INTO tasks
		(id, project_id, column_id, title, description, assignee_id, position, created_at, updated_at)
		VALUES (:id, :project_id, :column_id, :title, :description, :assignee_id, :position, :created_at, :updated_at)`

	if _, err := tx.NamedExecContext(ctx, insert, t); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return tx.Commit()
}

// GetTask returns a task by ID.
func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task
	if err := s.db.GetContext(ctx, &t, s.rebind("SELECT * FROM tasks WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns a project's tasks ordered by column then position.
func (s *Store) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	tasks := []model.Task{}
	q := s.rebind("SELECT * FROM tasks WHERE project_id = ? ORDER BY column_id, position, created_at")
	if err := s.db.SelectContext(ctx, &tasks, q, projectID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask persists the full task row and refreshes updated_at.
func (s *Store) UpdateTask(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = time.Now().UTC()

	const q = `UPDATE tasks SET
		column_id = :column_id, title = :title, description = :description,
		assignee_id = :assignee_id, position = :position, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task by ID.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTasks returns the number of tasks. Used by telemetry.
func (s *Store) CountTasks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}
