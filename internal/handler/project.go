package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/service"
	"github.com/huddlehq/huddle/internal/store"
)

// ProjectHandler manages projects and their members.
type ProjectHandler struct {
	store   *store.Store
	authSvc *service.AuthService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(st *store.Store, authSvc *service.AuthService) *ProjectHandler {
	return &ProjectHandler{store: st, authSvc: authSvc}
}

// createProjectRequest is the expected payload for Create.
type createProjectRequest struct {
	ProjectName string `json:"projectName"`
	OneLineIdea string `json:"oneLineIdea"`
	CreatorName string `json:"creatorName"`
	HackathonID string `json:"hackathonId"`
}

// createProjectResponse pairs the new project with its minted token.
type createProjectResponse struct {
	Project *model.Project `json:"project"`
	Token   string         `json:"token"`
}

// Create registers a project with its creator as the sole Team Lead, and
// mints the project token in the same response.
// POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeCreationFailed, "Invalid request body: "+err.Error())
		return
	}

	if req.ProjectName == "" || req.OneLineIdea == "" || req.CreatorName == "" {
		writeError(w, http.StatusBadRequest, model.CodeCreationFailed,
			"projectName, oneLineIdea, and creatorName are required")
		return
	}

	p := &model.Project{
		Name:        req.ProjectName,
		OneLineIdea: req.OneLineIdea,
		HackathonID: req.HackathonID,
	}
	if err := h.store.CreateProject(r.Context(), p, req.CreatorName); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, model.CodeProjectExists, "A project with this name already exists")
			return
		}
		writeError(w, http.StatusBadRequest, model.CodeCreationFailed, "Failed to create project")
		return
	}

	token, err := h.authSvc.IssueToken(p.ID, &p.Members[0])
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to issue token")
		return
	}

	writeData(w, http.StatusCreated, createProjectResponse{Project: p, Token: token})
}

// Get returns a project with its members.
// GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	writeData(w, http.StatusOK, project)
}

// updateProjectRequest is the expected payload for Update. Empty fields are
// left unchanged.
type updateProjectRequest struct {
	ProjectName string `json:"projectName"`
	OneLineIdea string `json:"oneLineIdea"`
	HackathonID string `json:"hackathonId"`
}

// Update modifies the project's name, idea, or hackathon.
// PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req updateProjectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeUpdateFailed, "Invalid request body: "+err.Error())
		return
	}

	if req.ProjectName != "" {
		project.Name = req.ProjectName
	}
	if req.OneLineIdea != "" {
		project.OneLineIdea = req.OneLineIdea
	}
	if req.HackathonID != "" {
		project.HackathonID = req.HackathonID
	}

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, model.CodeProjectExists, "A project with this name already exists")
			return
		}
		writeError(w, http.StatusBadRequest, model.CodeUpdateFailed, "Failed to update project")
		return
	}

	writeData(w, http.StatusOK, project)
}

// addMemberRequest is the expected payload for AddMember.
type addMemberRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// AddMember adds a member to the project. The role defaults to Member.
// POST /api/projects/{id}/members
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	var req addMemberRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeAddMemberFailed, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, model.CodeAddMemberFailed, "Member name is required")
		return
	}
	if req.Role != "" && req.Role != model.RoleTeamLead && req.Role != model.RoleMember {
		writeError(w, http.StatusBadRequest, model.CodeAddMemberFailed, "Unknown role: "+req.Role)
		return
	}

	m := &model.Member{ProjectID: id, Name: req.Name, Role: req.Role}
	if err := h.store.AddMember(r.Context(), m); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, model.CodeMemberExists, "A member with this name already exists")
			return
		}
		writeError(w, http.StatusBadRequest, model.CodeAddMemberFailed, "Failed to add member")
		return
	}

	writeData(w, http.StatusCreated, m)
}

// RemoveMember removes a member. A project always keeps at least one member.
// DELETE /api/projects/{id}/members/{memberId}
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}
	memberID := chi.URLParam(r, "memberId")

	if err := h.store.RemoveMember(r.Context(), id, memberID); err != nil {
		switch {
		case errors.Is(err, store.ErrLastMember):
			writeError(w, http.StatusBadRequest, model.CodeCannotRemoveLastMember,
				"Cannot remove the last member of a project")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, model.CodeMemberNotFound, "Member not found")
		default:
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to remove member")
		}
		return
	}

	writeData(w, http.StatusOK, map[string]interface{}{"removed": memberID})
}
