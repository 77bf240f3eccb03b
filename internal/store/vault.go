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

// CreateSecret inserts a vault secret. No uniqueness check is performed on
// the name: a second secret with the same name in the same scope creates a
// duplicate record.
func (s *Store) CreateSecret(ctx context.Context, sec *model.Secret) error {
	now := time.Now().UTC()
	sec.ID = uuid.Must(uuid.NewV7()).String()
	sec.AccessCount = 0
	sec.CreatedAt = now
	sec.UpdatedAt = now

	const q = `INSERT INTO secrets
		(id, project_id, hackathon_id, name, description, encrypted_value,
		 created_by, created_by_name, access_count, last_accessed_at, last_accessed_by,
		 created_at, updated_at)
		VALUES
		(:id, :project_id, :hackathon_id, :name, :description, :encrypted_value,
		 :created_by, :created_by_name, :access_count, :last_accessed_at, :last_accessed_by,
		 :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, sec); err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

// GetSecret returns a secret by ID, value included. Callers are responsible
// for not serializing the value; handlers should go through Meta().
func (s *Store) GetSecret(ctx context.Context, id string) (*model.Secret, error) {
	var sec model.Secret
	if err := s.db.GetContext(ctx, &sec, s.rebind("SELECT * FROM secrets WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get secret: %w", err)
	}
	return &sec, nil
}

// ListSecrets returns secret metadata for a scope. The value column is not
// selected at all, so no code path from here can leak it.
func (s *Store) ListSecrets(ctx context.Context, projectID, hackathonID string) ([]model.SecretMeta, error) {
	secrets := []model.SecretMeta{}
	q := s.rebind(`SELECT id, project_id, hackathon_id, name, description,
			created_by, created_by_name, access_count, last_accessed_at, last_accessed_by,
			created_at, updated_at
		FROM secrets
		WHERE project_id = ? AND hackathon_id = ?
		ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &secrets, q, projectID, hackathonID); err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	return secrets, nil
}

// TouchSecretAccess records an authorized read: a relative increment on the
// access counter plus the access stamp, so concurrent reveals never lose
// counts.
func (s *Store) TouchSecretAccess(ctx context.Context, id, actorID string) error {
	now := time.Now().UTC()
	q := s.rebind(`UPDATE secrets SET
		access_count = access_count + 1, last_accessed_at = ?, last_accessed_by = ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, q, now, actorID, id)
	if err != nil {
		return fmt.Errorf("touch secret access: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch secret rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSecret applies a partial update. Empty fields mean "unchanged";
// in particular an empty value leaves the stored value as-is.
func (s *Store) UpdateSecret(ctx context.Context, sec *model.Secret) error {
	sec.UpdatedAt = time.Now().UTC()

	const q = `UPDATE secrets SET
		name = :name, description = :description, encrypted_value = :encrypted_value,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, sec)
	if err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update secret rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSecret hard-deletes a secret. Access requests referencing it are
// left in place as orphaned audit rows.
func (s *Store) DeleteSecret(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM secrets WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete secret rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSecrets returns the number of stored secrets. Used by telemetry.
func (s *Store) CountSecrets(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM secrets"); err != nil {
		return 0, fmt.Errorf("count secrets: %w", err)
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Access requests
// ---------------------------------------------------------------------------

// CreateAccessRequest inserts a new pending request. Duplicate requests for
// the same (secret, requester) pair are allowed; re-requesting after a
// denial simply creates a fresh row.
func (s *Store) CreateAccessRequest(ctx context.Context, r *model.AccessRequest) error {
	r.ID = uuid.Must(uuid.NewV7()).String()
	r.Status = model.RequestPending
	r.RequestedAt = time.Now().UTC()
	r.HandledAt = nil
	r.AccessExpiresAt = nil

	const q = `INSERT INTO access_requests
		(id, secret_id, requested_by, requested_by_name, justification, status,
		 handled_by, handled_by_name, requested_at, handled_at, access_expires_at)
		VALUES
		(:id, :secret_id, :requested_by, :requested_by_name, :justification, :status,
		 :handled_by, :handled_by_name, :requested_at, :handled_at, :access_expires_at)`

	if _, err := s.db.NamedExecContext(ctx, q, r); err != nil {
		return fmt.Errorf("insert access request: %w", err)
	}
	return nil
}

// GetAccessRequest returns a request by ID.
func (s *Store) GetAccessRequest(ctx context.Context, id string) (*model.AccessRequest, error) {
	var r model.AccessRequest
	q := s.rebind("SELECT * FROM access_requests WHERE id = ?")
	if err := s.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get access request: %w", err)
	}
	return &r, nil
}

// HandleAccessRequest transitions a pending request to approved or denied.
// The WHERE clause guards the transition: a request leaves pending exactly
// once, and a second decision returns ErrAlreadyHandled.
func (s *Store) HandleAccessRequest(ctx context.Context, id, decision, handlerID, handlerName string, expiresAt *time.Time) (*model.AccessRequest, error) {
	if decision != model.RequestApproved && decision != model.RequestDenied {
		return nil, fmt.Errorf("invalid decision: %q", decision)
	}
	now := time.Now().UTC()

	var expiry *time.Time
	if decision == model.RequestApproved {
		expiry = expiresAt
	}

	q := s.rebind(`UPDATE access_requests SET
		status = ?, handled_by = ?, handled_by_name = ?, handled_at = ?, access_expires_at = ?
		WHERE id = ? AND status = ?`)
	result, err := s.db.ExecContext(ctx, q,
		decision, handlerID, handlerName, now, expiry, id, model.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("handle access request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("handle access request rows affected: %w", err)
	}
	if n == 0 {
		// Distinguish "no such request" from "already decided".
		if _, getErr := s.GetAccessRequest(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAlreadyHandled
	}

	return s.GetAccessRequest(ctx, id)
}

// ListAccessRequestsForSecret returns all requests for one secret,
// newest-first.
func (s *Store) ListAccessRequestsForSecret(ctx context.Context, secretID string) ([]model.AccessRequest, error) {
	requests := []model.AccessRequest{}
	q := s.rebind("SELECT * FROM access_requests WHERE secret_id = ? ORDER BY requested_at DESC, id DESC")
	if err := s.db.SelectContext(ctx, &requests, q, secretID); err != nil {
		return nil, fmt.Errorf("list access requests: %w", err)
	}
	return requests, nil
}

// ListAccessRequestsForProject returns all requests against a project's
// secrets, newest-first, optionally filtered to one requester.
func (s *Store) ListAccessRequestsForProject(ctx context.Context, projectID, requesterID string) ([]model.AccessRequest, error) {
	requests := []model.AccessRequest{}
	q := `SELECT ar.* FROM access_requests ar
		JOIN secrets s ON s.id = ar.secret_id
		WHERE s.project_id = ?`
	args := []interface{}{projectID}
	if requesterID != "" {
		q += " AND ar.requested_by = ?"
		args = append(args, requesterID)
	}
	q += " ORDER BY ar.requested_at DESC, ar.id DESC"

	if err := s.db.SelectContext(ctx, &requests, s.rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list project access requests: %w", err)
	}
	return requests, nil
}

// LatestAccessRequest returns the most recent request a member made for a
// secret, or ErrNotFound when none exists. "Most recent" is requested_at
// DESC with the ID as a tiebreaker, making latest-wins explicit.
func (s *Store) LatestAccessRequest(ctx context.Context, secretID, requesterID string) (*model.AccessRequest, error) {
	var r model.AccessRequest
	q := s.rebind(`SELECT * FROM access_requests
		WHERE secret_id = ? AND requested_by = ?
		ORDER BY requested_at DESC, id DESC
		LIMIT 1`)
	if err := s.db.GetContext(ctx, &r, q, secretID, requesterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest access request: %w", err)
	}
	return &r, nil
}
