package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
	"github.com/loujainjnad/taskboard-api/internal/service/invite"
)

// InviteHandler handles project invitation API requests.
type InviteHandler struct {
	inviteService invite.Service
	validator     *validator.Validate
}

// NewInviteHandler creates a new InviteHandler with the given dependencies.
func NewInviteHandler(inviteService invite.Service) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		validator:     validator.New(),
	}
}

// Issue handles POST /projects/{projectID}/invites. The response is the only
// place the invite token ever appears.
func (h *InviteHandler) Issue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := getPathUUID(w, r, "projectID")
	if !ok {
		return
	}

	var req IssueInviteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	inv, err := h.inviteService.Issue(r.Context(), projectID, userID, req.Email)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newInviteResponse(inv, true))
}

// ListForProject handles GET /projects/{projectID}/invites. Owner only;
// tokens are never included.
func (h *InviteHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	projectID, ok := getPathUUID(w, r, "projectID")
	if !ok {
		return
	}

	invites, err := h.inviteService.ListForProject(r.Context(), projectID, userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	resp := make([]InviteResponse, 0, len(invites))
	for _, inv := range invites {
		resp = append(resp, newInviteResponse(inv, false))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Preview handles GET /invites/{token}. It works with or without
// authentication: the invite is validated but never mutated, and the
// response says whether accepting will require logging in first.
func (h *InviteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing token")
		return
	}

	// uuid.Nil marks the call read-only regardless of who is asking.
	result, err := h.inviteService.Accept(r.Context(), token, uuid.Nil)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	_, authenticated := getUserIDFromContext(r)
	shared.RespondWithJSON(w, r, http.StatusOK, InvitePreviewResponse{
		ProjectID:    result.Invite.ProjectID,
		Email:        result.Invite.Email,
		Status:       result.Invite.Status,
		ExpiresAt:    result.Invite.ExpiresAt,
		RequiresAuth: !authenticated,
	})
}

// Accept handles POST /invites/{token}/accept.
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing token")
		return
	}

	result, err := h.inviteService.Accept(r.Context(), token, userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newInviteResponse(result.Invite, false))
}

// Reject handles POST /invites/{token}/reject.
func (h *InviteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing token")
		return
	}

	inv, err := h.inviteService.Reject(r.Context(), token, userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newInviteResponse(inv, false))
}
