package task

import (
	"errors"
	"fmt"
)

// Common task service errors
var (
	// ErrTaskNotFound indicates the task does not exist or the caller may not
	// see it. The two cases are indistinguishable on purpose.
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound indicates the referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotAuthorized indicates the caller may not perform this mutation on
	// the task.
	ErrNotAuthorized = errors.New("not authorized to modify this task")

	// ErrAssigneeNotMember indicates the requested assignee does not belong
	// to the task's project.
	ErrAssigneeNotMember = errors.New("assignee is not a member of the project")

	// ErrNotProjectMember indicates the caller does not belong to the project
	// the task is being created in.
	ErrNotProjectMember = errors.New("not a member of the project")
)

// ServiceError wraps unexpected errors from the task service with context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
