package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a task priority is not valid.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ErrInvalidProjectStatus is returned when a project status is not valid.
	ErrInvalidProjectStatus = errors.New("invalid project status")

	// ErrInvalidInviteStatus is returned when an invite status is not valid.
	ErrInvalidInviteStatus = errors.New("invalid invite status")

	// ErrInvalidNotificationType is returned when a notification type is not valid.
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// ErrInviteNotPending is returned when a state transition is attempted
	// on an invite that has already reached a terminal state.
	ErrInviteNotPending = errors.New("invite is not pending")
)
