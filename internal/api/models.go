package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/loujainjnad/taskboard-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateProjectRequest defines the payload for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest defines a partial project update. Omitted fields are
// left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=active archived completed"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title      string     `json:"title"                 validate:"required,min=1,max=500"`
	Priority   string     `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	ReminderAt *time.Time `json:"reminder_at,omitempty"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

// UpdateTaskRequest defines a partial task update. Omitted fields are left
// unchanged; the clear flags unset their optional counterparts, which a JSON
// null cannot express.
type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"    validate:"omitempty,min=1,max=500"`
	Priority      *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status        *string    `json:"status,omitempty"   validate:"omitempty,oneof=todo in_progress done"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	ReminderAt    *time.Time `json:"reminder_at,omitempty"`
	ClearReminder bool       `json:"clear_reminder,omitempty"`
	AssigneeID    *uuid.UUID `json:"assignee_id,omitempty"`
	ClearAssignee bool       `json:"clear_assignee,omitempty"`
}

// IssueInviteRequest defines the payload for issuing a project invite.
type IssueInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// InviteResponse is the client-facing shape of an invite. The token is only
// present in the response to Issue; listings never echo it back.
type InviteResponse struct {
	ID        uuid.UUID           `json:"id"`
	ProjectID uuid.UUID           `json:"project_id"`
	Email     string              `json:"email"`
	Status    domain.InviteStatus `json:"status"`
	Token     string              `json:"token,omitempty"`
	ExpiresAt time.Time           `json:"expires_at"`
	CreatedAt time.Time           `json:"created_at"`
}

// InvitePreviewResponse is returned by the unauthenticated invite preview.
type InvitePreviewResponse struct {
	ProjectID    uuid.UUID           `json:"project_id"`
	Email        string              `json:"email"`
	Status       domain.InviteStatus `json:"status"`
	ExpiresAt    time.Time           `json:"expires_at"`
	RequiresAuth bool                `json:"requires_auth"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// newInviteResponse maps a domain invite, optionally including the token.
func newInviteResponse(inv *domain.ProjectInvite, includeToken bool) InviteResponse {
	resp := InviteResponse{
		ID:        inv.ID,
		ProjectID: inv.ProjectID,
		Email:     inv.Email,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
	if includeToken {
		resp.Token = inv.Token
	}
	return resp
}
