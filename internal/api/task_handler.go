package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/service/task"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService task.Service
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService task.Service) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	created, err := h.taskService.Create(r.Context(), userID, task.CreateInput{
		Title:      req.Title,
		Priority:   domain.TaskPriority(req.Priority),
		DueDate:    req.DueDate,
		ReminderAt: req.ReminderAt,
		ProjectID:  req.ProjectID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, created)
}

// Get handles GET /tasks/{taskID}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	t, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, t)
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Update handles PATCH /tasks/{taskID}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	in := task.UpdateInput{
		Title:         req.Title,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		ReminderAt:    req.ReminderAt,
		ClearReminder: req.ClearReminder,
		AssigneeID:    req.AssigneeID,
		ClearAssignee: req.ClearAssignee,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		in.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		in.Status = &status
	}

	updated, err := h.taskService.Update(r.Context(), taskID, userID, in)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /tasks/{taskID}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := getPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
