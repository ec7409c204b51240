package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserID extracts the authenticated user's UUID or writes a 401 and
// returns false. Handlers behind the auth middleware should never hit the
// failure path; this is the backstop for misconfigured routes.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter. On failure it
// writes a 400 and returns false.
func getPathUUID(w http.ResponseWriter, r *http.Request, paramName string) (uuid.UUID, bool) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing "+paramName)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+paramName)
		return uuid.Nil, false
	}

	return id, true
}
