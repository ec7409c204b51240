package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

// Possible project status values
const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Common validation errors for Project
var (
	ErrEmptyProjectID   = errors.New("project ID cannot be empty")
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrEmptyOwnerID     = errors.New("project owner ID cannot be empty")
)

// Project represents a shared collection of tasks owned by exactly one user.
// The owner is not stored in the member set; authorization treats the owner
// as a member via a predicate so there is a single source of truth.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject creates a new active Project owned by the given user.
// Returns an error if validation fails.
func NewProject(ownerID uuid.UUID, name, description string) (*Project, error) {
	project := &Project{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		OwnerID:     ownerID,
		Status:      ProjectStatusActive,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
// Returns an error if any field fails validation.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProjectID
	}

	if p.Name == "" {
		return ErrEmptyProjectName
	}

	if p.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if !isValidProjectStatus(p.Status) {
		return ErrInvalidProjectStatus
	}

	return nil
}

// isValidProjectStatus checks if the given status is a valid ProjectStatus.
func isValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	default:
		return false
	}
}
