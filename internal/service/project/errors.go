package project

import (
	"errors"
	"fmt"
)

// Common project service errors
var (
	// ErrProjectNotFound indicates the project does not exist or the caller
	// may not see it.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotProjectOwner indicates an owner-only operation was attempted by
	// someone else.
	ErrNotProjectOwner = errors.New("only the project owner can do this")

	// ErrNotAuthorized indicates the caller may not act on this project.
	ErrNotAuthorized = errors.New("not authorized to act on this project")

	// ErrOwnerNotRemovable indicates an attempt to remove the owner from the
	// member set. Ownership is not membership; the owner cannot leave their
	// own project.
	ErrOwnerNotRemovable = errors.New("the project owner cannot be removed")

	// ErrMemberNotFound indicates the user is not in the project's member set.
	ErrMemberNotFound = errors.New("user is not a member of the project")
)

// ServiceError wraps unexpected errors from the project service with context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("project %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("project %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
