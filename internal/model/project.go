package model

import "time"

// Member roles. The Team Lead is the "manager" for vault purposes: only a
// Team Lead may create, edit, or delete secrets and decide access requests.
const (
	RoleTeamLead = "Team Lead"
	RoleMember   = "Member"
)

// Project is a hackathon team workspace. A project always has at least one
// member; the creator is seeded as the sole Team Lead.
type Project struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"projectName"`
	OneLineIdea string    `db:"one_line_idea" json:"oneLineIdea"`
	HackathonID string    `db:"hackathon_id" json:"hackathonId,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	Members []Member `db:"-" json:"members,omitempty"`
}

// Member is a person on a project team. Names are unique within a project.
type Member struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	JoinedAt  time.Time `db:"joined_at" json:"joinedAt"`
}

// IsManager reports whether the member holds the manager capability.
func (m *Member) IsManager() bool {
	return m.Role == RoleTeamLead
}
