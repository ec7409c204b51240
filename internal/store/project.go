package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// ProjectStore defines the interface for project and membership persistence.
//
// The owner is never stored in the member set; callers that need
// "owner or member" semantics combine GetByID with IsMember (see the
// membership guard).
type ProjectStore interface {
	// Create saves a new project to the store.
	Create(ctx context.Context, project *domain.Project) error

	// GetByID retrieves a project by its unique ID.
	// Returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)

	// Update saves changes to an existing project.
	// Returns ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project *domain.Project) error

	// ListForUser retrieves projects the user owns or is a member of,
	// most recently created first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// IsMember reports whether the user appears in the project's member set.
	// Missing projects read as false; the store never errors on absence.
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)

	// AddMember inserts the user into the project's member set. The insert is
	// conditional: if the user is already a member, no row is written and
	// ErrAlreadyMember is returned, so concurrent adds cannot duplicate.
	AddMember(ctx context.Context, projectID, userID uuid.UUID) error

	// RemoveMember deletes the user from the project's member set.
	// Returns ErrNotFound if the user was not a member.
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error

	// WithTx returns a new ProjectStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProjectStore
}
