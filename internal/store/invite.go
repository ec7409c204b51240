package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// InviteStore defines the interface for project invite persistence.
//
// The store carries the invite ledger's concurrency contract: uniqueness of
// (project, email, pending) and of tokens is enforced by database
// constraints, and state transitions are conditional single-statement
// updates. No in-process locking is involved, so the guarantees hold across
// multiple service instances.
type InviteStore interface {
	// Create saves a new pending invite.
	// Returns ErrPendingInviteExists if a pending invite already exists for
	// the same (project, email) pair — the partial unique index makes the
	// check-then-create race impossible.
	// Returns ErrDuplicate if the token collides with any invite ever stored.
	Create(ctx context.Context, invite *domain.ProjectInvite) error

	// GetByToken retrieves an invite by its secret token.
	// Returns ErrInviteNotFound if no invite carries the token.
	GetByToken(ctx context.Context, token string) (*domain.ProjectInvite, error)

	// ListByProject retrieves all invites for a project, newest first.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectInvite, error)

	// MarkAccepted transitions the invite to accepted, stamping acceptedAt.
	// The update applies only if the row is still pending and unexpired at
	// write time; the boolean reports whether this call won the transition.
	// Exactly one of N concurrent callers observes true.
	MarkAccepted(ctx context.Context, id uuid.UUID, acceptedAt time.Time) (bool, error)

	// MarkRejected transitions the invite to rejected under the same
	// conditional-update contract as MarkAccepted.
	MarkRejected(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	// MarkExpired persists the expired status on a stored-pending invite
	// whose expiry has passed. Opportunistic: losing the race to another
	// writer is not an error, so no applied flag is reported.
	MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) error

	// ExpireStalePending flips any stored-pending invite for (project, email)
	// whose expiry has passed to expired, clearing the partial unique index
	// slot so a fresh invite can be issued.
	ExpireStalePending(ctx context.Context, projectID uuid.UUID, email string, now time.Time) error

	// WithTx returns a new InviteStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InviteStore
}
