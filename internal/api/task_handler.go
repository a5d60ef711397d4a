package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskapp/internal/api/shared"
	"github.com/phrazzld/taskapp/internal/domain"
	"github.com/phrazzld/taskapp/internal/platform/logger"
	"github.com/phrazzld/taskapp/internal/service"
	"github.com/phrazzld/taskapp/internal/store"
)

// TaskHandler serves the task resource. Every operation except ServeImage
// is scoped to the authenticated owner.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidRequest, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	query := ParseTaskQuery(user.ID, r.URL.Query())
	tasks, err := h.tasks.List(r.Context(), query)
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, msgInvalidID, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PATCH /tasks/{id}. Only description and completed may be
// sent; any other key rejects the whole request.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var update domain.TaskUpdate
	if err := shared.DecodeStrictJSON(r, &update); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgInvalidTaskUpdate, err)
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusNotFound, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), id, user.ID, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id} and returns the deleted task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithStatus(w, r, http.StatusNotFound, err)
		return
	}

	task, err := h.tasks.Delete(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			shared.RespondWithStatus(w, r, http.StatusNotFound, nil)
			return
		}
		shared.RespondWithStatus(w, r, http.StatusInternalServerError, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task deleted",
		slog.String("task_id", task.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
