package model

import "time"

// Stored access-request states. "expired" is deliberately absent: it is a
// derived view over (status, access_expires_at, now) and is never written
// back, so stored and displayed state cannot drift.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDenied   = "denied"
	RequestExpired  = "expired" // derived only
	RequestNone     = "none"    // derived only
)

// Secret is a named sensitive string scoped to a project (team) within a
// hackathon. The value is an opaque string to this service; the backend
// performs no cryptography on it.
type Secret struct {
	ID             string     `db:"id" json:"id"`
	ProjectID      string     `db:"project_id" json:"projectId"`
	HackathonID    string     `db:"hackathon_id" json:"hackathonId,omitempty"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description,omitempty"`
	EncryptedValue string     `db:"encrypted_value" json:"-"`
	CreatedBy      string     `db:"created_by" json:"createdBy"`
	CreatedByName  string     `db:"created_by_name" json:"createdByName"`
	AccessCount    int64      `db:"access_count" json:"accessCount"`
	LastAccessedAt *time.Time `db:"last_accessed_at" json:"lastAccessedAt,omitempty"`
	LastAccessedBy string     `db:"last_accessed_by" json:"lastAccessedBy,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Meta strips the value so list responses cannot leak it regardless of how
// they are serialized.
func (s *Secret) Meta() SecretMeta {
	return SecretMeta{
		ID:             s.ID,
		ProjectID:      s.ProjectID,
		HackathonID:    s.HackathonID,
		Name:           s.Name,
		Description:    s.Description,
		CreatedBy:      s.CreatedBy,
		CreatedByName:  s.CreatedByName,
		AccessCount:    s.AccessCount,
		LastAccessedAt: s.LastAccessedAt,
		LastAccessedBy: s.LastAccessedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// SecretMeta is a Secret without its value.
type SecretMeta struct {
	ID             string     `db:"id" json:"id"`
	ProjectID      string     `db:"project_id" json:"projectId"`
	HackathonID    string     `db:"hackathon_id" json:"hackathonId,omitempty"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description,omitempty"`
	CreatedBy      string     `db:"created_by" json:"createdBy"`
	CreatedByName  string     `db:"created_by_name" json:"createdByName"`
	AccessCount    int64      `db:"access_count" json:"accessCount"`
	LastAccessedAt *time.Time `db:"last_accessed_at" json:"lastAccessedAt,omitempty"`
	LastAccessedBy string     `db:"last_accessed_by" json:"lastAccessedBy,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// AccessRequest is a member's request for time-bounded visibility into a
// secret's value. It references the secret by ID only; deleting the secret
// leaves its requests orphaned.
type AccessRequest struct {
	ID              string     `db:"id" json:"id"`
	SecretID        string     `db:"secret_id" json:"secretId"`
	RequestedBy     string     `db:"requested_by" json:"requestedBy"`
	RequestedByName string     `db:"requested_by_name" json:"requestedByName"`
	Justification   string     `db:"justification" json:"justification"`
	Status          string     `db:"status" json:"status"`
	HandledBy       string     `db:"handled_by" json:"handledBy,omitempty"`
	HandledByName   string     `db:"handled_by_name" json:"handledByName,omitempty"`
	RequestedAt     time.Time  `db:"requested_at" json:"requestedAt"`
	HandledAt       *time.Time `db:"handled_at" json:"handledAt,omitempty"`
	AccessExpiresAt *time.Time `db:"access_expires_at" json:"accessExpiresAt,omitempty"`
}

// EffectiveStatus derives the viewer-facing state of a request at the given
// instant. An approved request whose expiry has passed reads as "expired";
// the stored row is untouched.
func (r *AccessRequest) EffectiveStatus(now time.Time) string {
	if r.Status == RequestApproved && r.AccessExpiresAt != nil && r.AccessExpiresAt.Before(now) {
		return RequestExpired
	}
	return r.Status
}

// GrantsAccess reports whether the request currently authorizes a read of
// the secret value.
func (r *AccessRequest) GrantsAccess(now time.Time) bool {
	return r.EffectiveStatus(now) == RequestApproved
}
