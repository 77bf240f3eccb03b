package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/service"
	"github.com/huddlehq/huddle/internal/store"
)

// VaultHandler manages team secrets and the access-request workflow. The
// authorization rules live in the vault service; the handler maps them onto
// HTTP.
type VaultHandler struct {
	store *store.Store
	vault *service.VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(st *store.Store, vault *service.VaultService) *VaultHandler {
	return &VaultHandler{store: st, vault: vault}
}

// secretFor loads a secret addressed by the secretId URL param and checks
// project scope. Writes the error envelope and returns nil on failure.
func (h *VaultHandler) secretFor(w http.ResponseWriter, r *http.Request, p *service.Principal) *model.Secret {
	secretID := chi.URLParam(r, "secretId")

	sec, err := h.store.GetSecret(r.Context(), secretID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load secret")
		return nil
	}
	if !requireProject(w, p, sec.ProjectID) {
		return nil
	}
	return sec
}

// ---------------------------------------------------------------------------
// Secrets
// ---------------------------------------------------------------------------

// ListSecrets returns secret metadata for the project. Values are never
// selected from the database on this path.
// GET /api/projects/{id}/vault/secrets
func (h *VaultHandler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeProjectNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load project")
		return
	}

	secrets, err := h.store.ListSecrets(r.Context(), id, project.HackathonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to list secrets")
		return
	}
	writeData(w, http.StatusOK, secrets)
}

// secretRequest is the payload for secret creation and update. On update an
// empty value means "unchanged".
type secretRequest struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// CreateSecret stores a new secret. Team Lead only.
// POST /api/projects/{id}/vault/secrets
func (h *VaultHandler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) || !requireManager(w, p) {
		return
	}

	var req secretRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" || req.Value == "" {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "name and value are required")
		return
	}

	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load project")
		return
	}

	sec := &model.Secret{
		ProjectID:      id,
		HackathonID:    project.HackathonID,
		Name:           req.Name,
		Description:    req.Description,
		EncryptedValue: req.Value,
		CreatedBy:      p.MemberID,
		CreatedByName:  p.Name,
	}
	if err := h.store.CreateSecret(r.Context(), sec); err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to create secret")
		return
	}
	writeData(w, http.StatusCreated, sec.Meta())
}

// UpdateSecret applies a partial update. Team Lead only.
// PUT /api/vault/secrets/{secretId}
func (h *VaultHandler) UpdateSecret(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	if !requireManager(w, p) {
		return
	}
	sec := h.secretFor(w, r, p)
	if sec == nil {
		return
	}

	var req secretRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}

	if req.Name != "" {
		sec.Name = req.Name
	}
	if req.Description != "" {
		sec.Description = req.Description
	}
	if req.Value != "" {
		sec.EncryptedValue = req.Value
	}

	if err := h.store.UpdateSecret(r.Context(), sec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to update secret")
		return
	}
	writeData(w, http.StatusOK, sec.Meta())
}

// DeleteSecret hard-deletes a secret. Team Lead only. Outstanding access
// requests are left behind as audit rows.
// DELETE /api/vault/secrets/{secretId}
func (h *VaultHandler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	if !requireManager(w, p) {
		return
	}
	sec := h.secretFor(w, r, p)
	if sec == nil {
		return
	}

	if err := h.store.DeleteSecret(r.Context(), sec.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to delete secret")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"deleted": sec.ID})
}

// revealResponse carries the secret value. This is the only response shape
// in the API that includes it.
type revealResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Value          string     `json:"value"`
	AccessCount    int64      `json:"accessCount"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
}

// Reveal returns the secret value for an authorized caller and records the
// read. Team Leads always pass; members need an approved, unexpired request.
// POST /api/vault/secrets/{secretId}/reveal
func (h *VaultHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	secretID := chi.URLParam(r, "secretId")

	sec, err := h.vault.RevealSecret(r.Context(), secretID, p)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
		case errors.Is(err, service.ErrAccessDenied):
			writeError(w, http.StatusForbidden, model.CodeAccessDenied, "No active grant for this secret")
		default:
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to reveal secret")
		}
		return
	}

	writeData(w, http.StatusOK, revealResponse{
		ID:             sec.ID,
		Name:           sec.Name,
		Value:          sec.EncryptedValue,
		AccessCount:    sec.AccessCount,
		LastAccessedAt: sec.LastAccessedAt,
	})
}

// ---------------------------------------------------------------------------
// Access requests
// ---------------------------------------------------------------------------

// accessRequestBody is the payload for RequestAccess.
type accessRequestBody struct {
	Justification string `json:"justification"`
}

// RequestAccess files a pending access request for the caller.
// POST /api/vault/secrets/{secretId}/requests
func (h *VaultHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	secretID := chi.URLParam(r, "secretId")

	var req accessRequestBody
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.vault.RequestAccess(r.Context(), secretID, p, req.Justification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJustificationRequired):
			writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "justification is required")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
		case errors.Is(err, service.ErrAccessDenied):
			writeError(w, http.StatusForbidden, model.CodeAccessDenied, "Token does not grant access to this secret")
		default:
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to create request")
		}
		return
	}
	writeData(w, http.StatusCreated, created)
}

// ListRequests returns access requests for the project: every request for a
// Team Lead, only the caller's own for a member.
// GET /api/projects/{id}/vault/requests
func (h *VaultHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	requests, err := h.vault.ListRequests(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to list requests")
		return
	}
	writeData(w, http.StatusOK, requests)
}

// handleRequestBody is the payload for HandleRequest.
type handleRequestBody struct {
	Decision        string     `json:"decision"`
	AccessExpiresAt *time.Time `json:"accessExpiresAt"`
}

// HandleRequest records a Team Lead's decision on a pending request.
// PUT /api/vault/requests/{requestId}
func (h *VaultHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	requestID := chi.URLParam(r, "requestId")

	var req handleRequestBody
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}
	if req.Decision != model.RequestApproved && req.Decision != model.RequestDenied {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed,
			"decision must be approved or denied")
		return
	}

	handled, err := h.vault.HandleRequest(r.Context(), requestID, req.Decision, p, req.AccessExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			writeError(w, http.StatusForbidden, model.CodeAccessDenied, "Team Lead role required")
		case errors.Is(err, store.ErrAlreadyHandled):
			writeError(w, http.StatusConflict, model.CodeRequestAlreadyHandled, "Request was already decided")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.CodeRequestNotFound, "Request not found")
		default:
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to handle request")
		}
		return
	}
	writeData(w, http.StatusOK, handled)
}

// statusResponse is the response payload for Status.
type statusResponse struct {
	Status  string               `json:"status"`
	Request *model.AccessRequest `json:"request,omitempty"`
}

// Status derives the caller's standing on a secret from their latest
// request: pending, approved, denied, expired, or none.
// GET /api/vault/secrets/{secretId}/status
func (h *VaultHandler) Status(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	secretID := chi.URLParam(r, "secretId")

	status, req, err := h.vault.StatusFor(r.Context(), secretID, p)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.CodeSecretNotFound, "Secret not found")
		case errors.Is(err, service.ErrAccessDenied):
			writeError(w, http.StatusForbidden, model.CodeAccessDenied, "Token does not grant access to this secret")
		default:
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to derive status")
		}
		return
	}
	writeData(w, http.StatusOK, statusResponse{Status: status, Request: req})
}
