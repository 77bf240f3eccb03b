package model

import "time"

// Task is a board card. Position orders tasks within a (project, column)
// pair; when a create request omits it, the store assigns max+1 so tasks
// created in sequence get positions 0..N-1.
type Task struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"projectId"`
	ColumnID    string    `db:"column_id" json:"columnId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	AssigneeID  string    `db:"assignee_id" json:"assigneeId,omitempty"`
	Position    int       `db:"position" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Pivot records a change of project direction. Entries are append-only and
// listed newest-first.
type Pivot struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"projectId"`
	Description string    `db:"description" json:"description"`
	Reason      string    `db:"reason" json:"reason"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
