package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/store"
)

// SubmissionHandler manages the project's hand-in package.
type SubmissionHandler struct {
	store *store.Store
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(st *store.Store) *SubmissionHandler {
	return &SubmissionHandler{store: st}
}

// submissionView is a Submission plus its derived fields. isComplete is
// recomputed on every serialization, never stored.
type submissionView struct {
	*model.Submission
	IsComplete bool   `json:"isComplete"`
	ShareURL   string `json:"shareUrl"`
}

func viewOf(s *model.Submission) submissionView {
	return submissionView{
		Submission: s,
		IsComplete: s.IsComplete(),
		ShareURL:   s.ShareURL(),
	}
}

// submissionRequest is the expected payload for Upsert. Empty fields are
// left unchanged.
type submissionRequest struct {
	GithubURL       string `json:"githubUrl"`
	PresentationURL string `json:"presentationUrl"`
	DemoVideoURL    string `json:"demoVideoUrl"`
}

// Upsert creates or updates the project's submission.
// POST /api/projects/{id}/submission
func (h *SubmissionHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	var req submissionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}

	sub, err := h.store.GetSubmission(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load submission")
			return
		}
		sub = &model.Submission{ProjectID: id}
	}

	if req.GithubURL != "" {
		sub.GithubURL = req.GithubURL
	}
	if req.PresentationURL != "" {
		sub.PresentationURL = req.PresentationURL
	}
	if req.DemoVideoURL != "" {
		sub.DemoVideoURL = req.DemoVideoURL
	}

	if err := h.store.UpsertSubmission(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to save submission")
		return
	}
	writeData(w, http.StatusOK, viewOf(sub))
}

// Get returns the project's submission.
// GET /api/projects/{id}/submission
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	sub, err := h.store.GetSubmission(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeSubmissionNotFound, "No submission yet")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load submission")
		return
	}
	writeData(w, http.StatusOK, viewOf(sub))
}

// Public returns the unauthenticated share view of a submission.
// GET /api/submission/{projectId}/public
func (h *SubmissionHandler) Public(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	sub, err := h.store.GetSubmission(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeSubmissionNotFound, "Submission not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load submission")
		return
	}
	writeData(w, http.StatusOK, viewOf(sub))
}
