package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/service/project"
)

// ProjectHandler handles project-related API requests.
type ProjectHandler struct {
	projectService project.Service
	validator      *validator.Validate
}

// NewProjectHandler creates a new ProjectHandler with the given dependencies.
func NewProjectHandler(projectService project.Service) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		validator:      validator.New(),
	}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	proj, err := h.projectService.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, proj)
}

// Get handles GET /projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := getPathUUID(w, r, "projectID")
	if !ok {
		return
	}

	proj, err := h.projectService.Get(r.Context(), projectID, userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, proj)
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	projects, err := h.projectService.List(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projects)
}

// Update handles PATCH /projects/{projectID}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := getPathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	in := project.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		in.Status = &status
	}

	proj, err := h.projectService.Update(r.Context(), projectID, userID, in)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, proj)
}

// RemoveMember handles DELETE /projects/{projectID}/members/{userID}.
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := getPathUUID(w, r, "projectID")
	if !ok {
		return
	}
	memberID, ok := getPathUUID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(r.Context(), projectID, actingUserID, memberID); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
