package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/store"
)

// TaskHandler manages board tasks.
type TaskHandler struct {
	store *store.Store
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(st *store.Store) *TaskHandler {
	return &TaskHandler{store: st}
}

// taskRequest is the payload for task creation and update. Order is a
// pointer so a client can distinguish "omitted" (auto-assign on create,
// unchanged on update) from an explicit 0.
type taskRequest struct {
	ColumnID    string `json:"columnId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  string `json:"assigneeId"`
	Order       *int   `json:"order"`
}

// List returns all tasks of a project ordered by column and position.
// GET /api/projects/{id}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to list tasks")
		return
	}
	writeData(w, http.StatusOK, tasks)
}

// Create adds a task. When order is omitted the store assigns the next
// position in the task's column.
// POST /api/projects/{id}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if !requireProject(w, p, id) {
		return
	}

	var req taskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.ColumnID == "" {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "title and columnId are required")
		return
	}

	task := &model.Task{
		ProjectID:   id,
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	}
	assignPosition := req.Order == nil
	if req.Order != nil {
		task.Position = *req.Order
	}

	if err := h.store.CreateTask(r.Context(), task, assignPosition); err != nil {
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to create task")
		return
	}
	writeData(w, http.StatusCreated, task)
}

// taskFor loads a task and checks it belongs to the principal's project.
func (h *TaskHandler) taskFor(w http.ResponseWriter, r *http.Request) *model.Task {
	p := principal(w, r)
	if p == nil {
		return nil
	}
	taskID := chi.URLParam(r, "taskId")

	task, err := h.store.GetTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeTaskNotFound, "Task not found")
			return nil
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to load task")
		return nil
	}
	if !requireProject(w, p, task.ProjectID) {
		return nil
	}
	return task
}

// Update applies a partial update to a task.
// PUT /api/tasks/{taskId}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	task := h.taskFor(w, r)
	if task == nil {
		return
	}

	var req taskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidationFailed, "Invalid request body: "+err.Error())
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.ColumnID != "" {
		task.ColumnID = req.ColumnID
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.AssigneeID != "" {
		task.AssigneeID = req.AssigneeID
	}
	if req.Order != nil {
		task.Position = *req.Order
	}

	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeTaskNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to update task")
		return
	}
	writeData(w, http.StatusOK, task)
}

// Delete removes a task.
// DELETE /api/tasks/{taskId}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task := h.taskFor(w, r)
	if task == nil {
		return
	}

	if err := h.store.DeleteTask(r.Context(), task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, model.CodeTaskNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, model.CodeInternalError, "Failed to delete task")
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{"deleted": task.ID})
}
