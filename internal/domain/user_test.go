package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates a valid user with a normalized email", func(t *testing.T) {
		t.Parallel()

		user, err := NewUser("  Alice@Example.COM ", "Alice", "password123")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice", user.DisplayName)
	})

	t.Run("validation failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name        string
			email       string
			displayName string
			password    string
			wantErr     error
		}{
			{"empty email", "", "Alice", "password123", ErrEmptyEmail},
			{"missing at sign", "alice.example.com", "Alice", "password123", ErrInvalidEmail},
			{"missing domain dot", "alice@example", "Alice", "password123", ErrInvalidEmail},
			{"empty display name", "alice@example.com", "   ", "password123", ErrEmptyDisplayName},
			{"short password", "alice@example.com", "Alice", "short", ErrPasswordTooShort},
			{"long password", "alice@example.com", "Alice", strings.Repeat("x", 73), ErrPasswordTooLong},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewUser(tt.email, tt.displayName, tt.password)
				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the database has no plaintext password, only a hash.
	user := &User{
		ID:             uuid.New(),
		Email:          "alice@example.com",
		DisplayName:    "Alice",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bob@example.com", NormalizeEmail(" BOB@Example.Com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
