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

// CreateProject inserts a project together with its creator as the sole
// Team Lead member, in one transaction. The ID, timestamps, and Members
// slice on p are populated after a successful insert.
func (s *Store) CreateProject(ctx context.Context, p *model.Project, creatorName string) error {
	now := time.Now().UTC()
	p.ID = uuid.Must(uuid.NewV7()).String()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertProject = `INSERT INTO projects
		(id, name, one_line_idea, hackathon_id, created_at, updated_at)
		VALUES (:id, :name, :one_line_idea, :hackathon_id, :created_at, :updated_at)`

	if _, err := tx.NamedExecContext(ctx, insertProject, p); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert project: %w", err)
	}

	creator := model.Member{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ProjectID: p.ID,
		Name:      creatorName,
		Role:      model.RoleTeamLead,
		JoinedAt:  now,
	}

	const insertMember = `INSERT INTO members (id, project_id, name, role, joined_at)
		VALUES (:id, :project_id, :name, :role, :joined_at)`

	if _, err := tx.NamedExecContext(ctx, insertMember, creator); err != nil {
		return fmt.Errorf("insert creator member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.Members = []model.Member{creator}
	return nil
}

// GetProject returns a project with its members loaded.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := s.db.GetContext(ctx, &p, s.rebind("SELECT * FROM projects WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	members, err := s.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return &p, nil
}

// UpdateProject applies name/idea/hackathon updates and refreshes updated_at.
func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now().UTC()

	const q = `UPDATE projects SET
		name = :name, one_line_idea = :one_line_idea, hackathon_id = :hackathon_id,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("update project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// AddMember inserts a member into a project. The ID and JoinedAt fields are
// populated after a successful insert.
func (s *Store) AddMember(ctx context.Context, m *model.Member) error {
	m.ID = uuid.Must(uuid.NewV7()).String()
	m.JoinedAt = time.Now().UTC()
	if m.Role == "" {
		m.Role = model.RoleMember
	}

	const q = `INSERT INTO members (id, project_id, name, role, joined_at)
		VALUES (:id, :project_id, :name, :role, :joined_at)`

	if _, err := s.db.NamedExecContext(ctx, q, m); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// GetMember returns a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	if err := s.db.GetContext(ctx, &m, s.rebind("SELECT * FROM members WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

// ListMembers returns all members of a project ordered by join time.
func (s *Store) ListMembers(ctx context.Context, projectID string) ([]model.Member, error) {
	members := []model.Member{}
	q := s.rebind("SELECT * FROM members WHERE project_id = ? ORDER BY joined_at, id")
	if err := s.db.SelectContext(ctx, &members, q, projectID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes a member from a project. A project can never lose its
// last member: the check and the delete run in one transaction so two
// concurrent removals cannot both succeed on a two-member team.
func (s *Store) RemoveMember(ctx context.Context, projectID, memberID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.GetContext(ctx, &count,
		s.rebind("SELECT COUNT(*) FROM members WHERE project_id = ?"), projectID); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count <= 1 {
		return ErrLastMember
	}

	result, err := tx.ExecContext(ctx,
		s.rebind("DELETE FROM members WHERE id = ? AND project_id = ?"), memberID, projectID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// CountProjects returns the number of projects. Used by telemetry.
func (s *Store) CountProjects(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM projects"); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}
