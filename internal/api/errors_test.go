package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/service/auth"
	"github.com/loujainjnad/taskboard-api/internal/service/invite"
	"github.com/loujainjnad/taskboard-api/internal/service/notification"
	"github.com/loujainjnad/taskboard-api/internal/service/project"
	"github.com/loujainjnad/taskboard-api/internal/service/task"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError, // Default to 500 for nil error
		},
		{
			name:           "authentication error",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrapped authentication error",
			err:            fmt.Errorf("failed to authenticate: %w", auth.ErrInvalidToken),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			err:            auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non-owner issuing an invite",
			err:            invite.ErrNotProjectOwner,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "email mismatch on accept",
			err:            invite.ErrEmailMismatch,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "non-member creating a project task",
			err:            task.ErrNotProjectMember,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "member removal by a non-owner",
			err:            project.ErrNotAuthorized,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "unknown invite token",
			err:            invite.ErrInviteNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing task",
			err:            task.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing notification",
			err:            notification.ErrNotificationNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "duplicate registration email",
			err:            store.ErrEmailExists,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "duplicate pending invite",
			err:            invite.ErrDuplicateInvite,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "already accepted invite",
			err:            invite.ErrAlreadyAccepted,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "already processed invite",
			err:            invite.ErrAlreadyProcessed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "expired invite",
			err:            invite.ErrInviteExpired,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "owner removal attempt",
			err:            project.ErrOwnerNotRemovable,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "assignee outside the project",
			err:            task.ErrAssigneeNotMember,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "domain validation error",
			err:            domain.ErrEmptyTaskTitle,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "wrapped service error keeps its sentinel's status",
			err: &invite.ServiceError{
				Operation: "accept",
				Message:   "failed to transition invite",
				Err:       invite.ErrAlreadyAccepted,
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := MapErrorToStatusCode(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "nil error",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "authentication error",
			err:             auth.ErrInvalidToken,
			expectedMessage: "Invalid token",
		},
		{
			name:            "invite sentinel keeps its message",
			err:             invite.ErrDuplicateInvite,
			expectedMessage: "A pending invite already exists for this email",
		},
		{
			name:            "wrapped invite sentinel keeps its message",
			err:             fmt.Errorf("accept failed: %w", invite.ErrEmailMismatch),
			expectedMessage: "Invite was issued to a different email address",
		},
		{
			name:            "email conflict",
			err:             store.ErrEmailExists,
			expectedMessage: "Email already exists",
		},
		{
			name:            "unknown error",
			err:             errors.New("database error: connection refused"),
			expectedMessage: "An unexpected error occurred", // Database error details are hidden
		},
		{
			name: "wrapped database error with SQL details",
			err: fmt.Errorf(
				"SQL error: %w",
				errors.New("syntax error at line 42 in SELECT * FROM users"),
			),
			expectedMessage: "An unexpected error occurred", // SQL details are hidden
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message := GetSafeErrorMessage(tt.err)
			assert.Equal(t, tt.expectedMessage, message)
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name: "required field",
			err: errors.New(
				"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag",
			),
			expectedMessage: "Invalid Email: required field",
		},
		{
			name: "min length",
			err: errors.New(
				"Key: 'RegisterRequest.Password' Error:Field validation for 'Password' failed on the 'min' tag",
			),
			expectedMessage: "Invalid Password: too short",
		},
		{
			name:            "unrecognized error shape",
			err:             errors.New("something else entirely"),
			expectedMessage: "Validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMessage, SanitizeValidationError(tt.err))
		})
	}
}
