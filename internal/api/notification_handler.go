package api

import (
	"net/http"
	"strconv"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
)

// NotificationHandler handles notification read API requests.
type NotificationHandler struct {
	notificationService notification.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService notification.Service) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List handles GET /notifications?unread=true&limit=50&offset=0.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	notifications, err := h.notificationService.List(r.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, notifications)
}

// MarkRead handles POST /notifications/{notificationID}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	notificationID, ok := getPathUUID(w, r, "notificationID")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	count, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{Updated: count})
}

// queryInt parses a non-negative integer query parameter, falling back to
// def when absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
