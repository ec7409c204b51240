package invite

import (
	"errors"
	"fmt"
)

// Error taxonomy for the invite ledger. Each sentinel is classified where
// the condition is detected and propagated unmodified to the API boundary,
// which owns the mapping to HTTP status codes.
var (
	// ErrInviteNotFound indicates that no invite carries the given token.
	ErrInviteNotFound = errors.New("invite not found")

	// ErrProjectNotFound indicates that the target project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotProjectOwner indicates the caller is authenticated but is not
	// the owner of the project, which only the owner may invite into.
	ErrNotProjectOwner = errors.New("only the project owner can issue invites")

	// ErrEmailMismatch indicates the acting user's registered email does not
	// match the invite's email. Surfaced explicitly rather than silently
	// ignored, to stop tokens stolen from one inbox being redeemed by
	// another account.
	ErrEmailMismatch = errors.New("invite was issued to a different email address")

	// ErrDuplicateInvite indicates an unexpired pending invite already
	// exists for this (project, email) pair.
	ErrDuplicateInvite = errors.New("a pending invite already exists for this email")

	// ErrAlreadyMember indicates the email already denotes a current member
	// (or the owner) of the project.
	ErrAlreadyMember = errors.New("user is already a member of the project")

	// ErrInviteExpired indicates the invite's expiry has passed. This is
	// computed from expiresAt on every read; the stored status may lag.
	ErrInviteExpired = errors.New("invite has expired")

	// ErrAlreadyAccepted indicates the invite has already been accepted.
	ErrAlreadyAccepted = errors.New("invite has already been accepted")

	// ErrAlreadyRejected indicates the invite has already been rejected.
	ErrAlreadyRejected = errors.New("invite has already been rejected")

	// ErrAlreadyProcessed is the deliberately coarse failure for Reject:
	// callers learn the invite left the pending state, not how.
	ErrAlreadyProcessed = errors.New("invite has already been processed")
)

// ServiceError wraps unexpected errors from the invite service with context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "issue", "accept")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invite %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("invite %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
