package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The caller must have hashed the
	// password already; the plaintext Password field is never persisted.
	// Returns ErrEmailExists if the email is already taken (case-insensitive).
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address. The email is
	// normalized before lookup, so matching is case-insensitive.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
