package handler

import (
	"net/http"

	"github.com/huddlehq/huddle/internal/featureflag"
)

// FlagsHandler evaluates feature flags for the authenticated caller.
type FlagsHandler struct {
	flags *featureflag.Service
}

// NewFlagsHandler creates a new FlagsHandler.
func NewFlagsHandler(flags *featureflag.Service) *FlagsHandler {
	return &FlagsHandler{flags: flags}
}

// List returns every configured flag evaluated against the caller's member
// identity and role.
// GET /api/flags
func (h *FlagsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}

	id := featureflag.Identity{UserID: p.MemberID, Role: p.Role}
	writeData(w, http.StatusOK, h.flags.EvaluateAll(id))
}
