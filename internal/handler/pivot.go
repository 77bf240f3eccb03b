package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/store"
)

// PivotHandler manages the append-only pivot log.
type PivotHandler struct {
	store *store.Store
}

// NewPivotHandler creates a new PivotHandler.
func NewPivotHandler(st *store.Store) *PivotHandler {
	return &PivotHandler{store: st}
}

// pivotRequest is the expected payload for Create.
type pivotRequest struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Create appends a pivot entry. Entries are never edited or deleted.
// POST /api/projects/{id}/pivots
func (h *PivotHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	var req pivotRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "description is required")
		return
	}

	pivot := &model.Pivot{ProjectID: id, Description: req.Description, Reason: req.Reason}
	if err := h.store.AddPivot(r.Context(), pivot); err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to record pivot")
		return
	}
	writeData(w, http.StatusCreated, pivot)
}

// List returns the pivot log newest-first.
// GET /api/projects/{id}/pivots
func (h *PivotHandler) List(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	pivots, err := h.store.ListPivots(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to list pivots")
		return
	}
	writeData(w, http.StatusOK, pivots)
}
