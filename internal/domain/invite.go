package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InviteStatus represents the stored lifecycle state of a project invite.
//
// The stored status is not authoritative on its own: an invite whose
// ExpiresAt has passed is logically expired even while the row still reads
// pending. Every read and write must go through EffectiveStatus.
type InviteStatus string

// Possible invite status values
const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
	InviteStatusExpired  InviteStatus = "expired"
)

// InviteTTL is how long a freshly issued invite stays valid.
const InviteTTL = 7 * 24 * time.Hour

// inviteTokenBytes is the entropy of an invite token. 32 bytes is well above
// the 128-bit minimum required for tokens to be unguessable.
const inviteTokenBytes = 32

// Common validation errors for ProjectInvite
var (
	ErrEmptyInviteID      = errors.New("invite ID cannot be empty")
	ErrEmptyInviteProject = errors.New("invite project ID cannot be empty")
	ErrEmptyInviteEmail   = errors.New("invite email cannot be empty")
	ErrEmptyInviterID     = errors.New("invite inviter ID cannot be empty")
	ErrEmptyInviteToken   = errors.New("invite token cannot be empty")
)

// ProjectInvite represents an invitation for an email address to join a
// project. The token is a single-use, globally unique secret; state
// transitions out of pending are terminal.
type ProjectInvite struct {
	ID         uuid.UUID    `json:"id"`
	ProjectID  uuid.UUID    `json:"project_id"`
	Email      string       `json:"email"`
	InviterID  uuid.UUID    `json:"inviter_id"`
	Token      string       `json:"-"` // Secret; never exposed in listings
	Status     InviteStatus `json:"status"`
	ExpiresAt  time.Time    `json:"expires_at"`
	AcceptedAt *time.Time   `json:"accepted_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewProjectInvite creates a pending invite for the given project and email
// with a freshly generated token and a 7-day expiry.
// Returns an error if validation or token generation fails.
func NewProjectInvite(projectID, inviterID uuid.UUID, email string) (*ProjectInvite, error) {
	token, err := NewInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	now := time.Now().UTC()
	invite := &ProjectInvite{
		ID:        uuid.New(),
		ProjectID: projectID,
		Email:     NormalizeEmail(email),
		InviterID: inviterID,
		Token:     token,
		Status:    InviteStatusPending,
		ExpiresAt: now.Add(InviteTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := invite.Validate(); err != nil {
		return nil, err
	}

	return invite, nil
}

// NewInviteToken generates an unguessable invite token from crypto/rand.
func NewInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Validate checks if the ProjectInvite has valid data.
// Returns an error if any field fails validation.
func (i *ProjectInvite) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInviteID
	}

	if i.ProjectID == uuid.Nil {
		return ErrEmptyInviteProject
	}

	if i.Email == "" {
		return ErrEmptyInviteEmail
	}

	if !validEmailFormat(i.Email) {
		return ErrInvalidEmail
	}

	if i.InviterID == uuid.Nil {
		return ErrEmptyInviterID
	}

	if i.Token == "" {
		return ErrEmptyInviteToken
	}

	if !isValidInviteStatus(i.Status) {
		return ErrInvalidInviteStatus
	}

	return nil
}

// EffectiveStatus computes the invite's logical status at the given instant.
// A stored pending invite whose expiry has passed reads as expired; terminal
// stored states are returned as-is. This is the expiry override: callers
// never branch on the stored Status directly.
func (i *ProjectInvite) EffectiveStatus(now time.Time) InviteStatus {
	if i.Status == InviteStatusPending && !now.Before(i.ExpiresAt) {
		return InviteStatusExpired
	}
	return i.Status
}

// IsTerminal reports whether the given status permits no further transitions.
func (s InviteStatus) IsTerminal() bool {
	return s == InviteStatusAccepted || s == InviteStatusRejected || s == InviteStatusExpired
}

// isValidInviteStatus checks if the given status is a valid InviteStatus.
func isValidInviteStatus(status InviteStatus) bool {
	switch status {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusRejected, InviteStatusExpired:
		return true
	default:
		return false
	}
}
