package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/loujainjnad/taskboard-api/internal/api/shared"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/service/auth"
	"github.com/loujainjnad/taskboard-api/internal/service/invite"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
	"github.com/loujainjnad/taskboard-api/internal/service/project"
	"github.com/loujainjnad/taskboard-api/internal/service/task"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, invite.ErrNotProjectOwner),
		errors.Is(err, invite.ErrEmailMismatch),
		errors.Is(err, task.ErrNotAuthorized),
		errors.Is(err, task.ErrNotProjectMember),
		errors.Is(err, project.ErrNotProjectOwner),
		errors.Is(err, project.ErrNotAuthorized):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, invite.ErrInviteNotFound),
		errors.Is(err, invite.ErrProjectNotFound),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, task.ErrProjectNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrMemberNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, invite.ErrDuplicateInvite),
		errors.Is(err, invite.ErrAlreadyMember),
		errors.Is(err, invite.ErrAlreadyAccepted),
		errors.Is(err, invite.ErrAlreadyRejected),
		errors.Is(err, invite.ErrAlreadyProcessed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, invite.ErrInviteExpired),
		errors.Is(err, project.ErrOwnerNotRemovable),
		errors.Is(err, task.ErrAssigneeNotMember),
		errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Sentinels from the invite ledger, task, project and notification
	// services carry deliberately client-safe messages.
	case errors.Is(err, invite.ErrNotProjectOwner),
		errors.Is(err, invite.ErrEmailMismatch),
		errors.Is(err, invite.ErrInviteNotFound),
		errors.Is(err, invite.ErrProjectNotFound),
		errors.Is(err, invite.ErrDuplicateInvite),
		errors.Is(err, invite.ErrAlreadyMember),
		errors.Is(err, invite.ErrInviteExpired),
		errors.Is(err, invite.ErrAlreadyAccepted),
		errors.Is(err, invite.ErrAlreadyRejected),
		errors.Is(err, invite.ErrAlreadyProcessed),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, task.ErrProjectNotFound),
		errors.Is(err, task.ErrNotAuthorized),
		errors.Is(err, task.ErrNotProjectMember),
		errors.Is(err, task.ErrAssigneeNotMember),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrNotProjectOwner),
		errors.Is(err, project.ErrNotAuthorized),
		errors.Is(err, project.ErrOwnerNotRemovable),
		errors.Is(err, project.ErrMemberNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		return unwrapSentinelMessage(err)

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case isDomainValidationError(err):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the HTTP response for an error coming out of a
// service call: mapped status code, sanitized message, redacted logging.
// An optional override message replaces the derived one when non-empty.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, override string) {
	status := MapErrorToStatusCode(err)
	message := override
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// unwrapSentinelMessage digs out the innermost sentinel's text so wrapped
// service errors still produce the short, safe message.
func unwrapSentinelMessage(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return capitalize(err.Error())
		}
		err = inner
	}
}

// isDomainValidationError reports whether the error is one of the domain
// layer's validation sentinels, whose messages are written for end users.
func isDomainValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrValidation,
		domain.ErrInvalidEmail,
		domain.ErrInvalidTaskStatus,
		domain.ErrInvalidTaskPriority,
		domain.ErrInvalidProjectStatus,
		domain.ErrInvalidInviteStatus,
		domain.ErrInvalidNotificationType,
		domain.ErrInviteNotPending,
		domain.ErrEmptyTaskTitle,
		domain.ErrEmptyProjectName,
		domain.ErrEmptyDisplayName,
		domain.ErrEmptyEmail,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrCompletedAtMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing submitted values back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return "Invalid " + field + ": " + validationTagMessage(tag)
				}
				return "Invalid " + field
			}
		}
	}

	return "Validation error"
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
