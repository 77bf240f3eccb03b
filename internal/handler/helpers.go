package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/server/middleware"
	"github.com/huddlehq/huddle/internal/service"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeData wraps v in the success envelope.
func writeData(w http.ResponseWriter, status int, v interface{}) {
	writeJSON(w, status, model.Response{
		Success:   true,
		Data:      v,
		Timestamp: time.Now().UTC(),
	})
}

// writeError writes the error envelope with a machine-readable code. The
// optional details map provides additional context fields.
func writeError(w http.ResponseWriter, status int, code, message string, details ...map[string]interface{}) {
	var detailMap map[string]interface{}
	if len(details) > 0 {
		detailMap = details[0]
	}
	writeJSON(w, status, model.Response{
		Success: false,
		Error: &model.ErrorDetail{
			Code:    code,
			Message: message,
			Details: detailMap,
		},
		Timestamp: time.Now().UTC(),
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// principal returns the authenticated principal, or writes a 401 envelope
// and returns nil. Routes behind the auth middleware always have one; the
// nil path only fires on wiring mistakes.
func principal(w http.ResponseWriter, r *http.Request) *service.Principal {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, model.CodeNoToken, "Authentication required")
	}
	return p
}

// requireProject checks the principal's token against the addressed project.
// A token for another project reads as 403 ACCESS_DENIED, not 404, so a
// caller cannot probe which project IDs exist.
func requireProject(w http.ResponseWriter, p *service.Principal, projectID string) bool {
	if p.ProjectID != projectID {
		writeError(w, http.StatusForbidden, model.CodeAccessDenied, "Token does not grant access to this project")
		return false
	}
	return true
}

// requireManager checks that the principal holds the Team Lead role.
func requireManager(w http.ResponseWriter, p *service.Principal) bool {
	if !p.IsManager() {
		writeError(w, http.StatusForbidden, model.CodeAccessDenied, "Team Lead role required")
		return false
	}
	return true
}
