package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert collides with an existing
	// unique value (project name, member name within a project).
	ErrConflict = errors.New("already exists")

	// ErrLastMember is returned when removing a member would leave the
	// project with no members at all.
	ErrLastMember = errors.New("cannot remove the last member")

	// ErrAlreadyHandled is returned when deciding an access request that
	// has already left the pending state.
	ErrAlreadyHandled = errors.New("request already handled")
)

// isUniqueViolation reports whether err looks like a unique-constraint
// failure on any of the supported backends.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicate entry")
}
