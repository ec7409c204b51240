// Package project implements project CRUD and membership management.
// Joining a project happens exclusively through the invite flow; this
// service only creates projects, reads them, changes their status and
// removes members.
package project

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/service/membership"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// UpdateInput carries a partial project update. Nil fields are unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
}

// Service provides project operations.
type Service interface {
	// Create creates an active project owned by the given user.
	Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Project, error)

	// Get returns the project if the user is its owner or a member;
	// otherwise ErrProjectNotFound.
	Get(ctx context.Context, projectID, userID uuid.UUID) (*domain.Project, error)

	// List returns projects the user owns or is a member of.
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error)

	// Update applies a partial update. Owner only.
	Update(ctx context.Context, projectID, userID uuid.UUID, in UpdateInput) (*domain.Project, error)

	// RemoveMember removes a member. The owner may remove anyone; a member
	// may remove themself (leave). The owner is never removable.
	RemoveMember(ctx context.Context, projectID, actingUserID, memberID uuid.UUID) error
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	projectStore store.ProjectStore
	guard        *membership.Guard
	now          func() time.Time
	logger       *slog.Logger
}

// NewService creates a new project Service.
func NewService(projectStore store.ProjectStore, guard *membership.Guard, logger *slog.Logger) Service {
	if projectStore == nil {
		panic("projectStore cannot be nil")
	}
	if guard == nil {
		panic("guard cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		projectStore: projectStore,
		guard:        guard,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger.With(slog.String("component", "project_service")),
	}
}

// Create implements Service.Create.
func (s *serviceImpl) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := domain.NewProject(ownerID, name, description)
	if err != nil {
		return nil, err
	}

	if err := s.projectStore.Create(ctx, project); err != nil {
		return nil, &ServiceError{Operation: "create", Message: "failed to store project", Err: err}
	}

	log.Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", ownerID.String()))

	return project, nil
}

// Get implements Service.Get.
func (s *serviceImpl) Get(ctx context.Context, projectID, userID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "get", Message: "failed to load project", Err: err}
	}

	// Non-members cannot tell the project exists.
	if !s.guard.IsProjectMember(ctx, userID, projectID) {
		return nil, ErrProjectNotFound
	}

	return project, nil
}

// List implements Service.List.
func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID) ([]*domain.Project, error) {
	projects, err := s.projectStore.ListForUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "list", Message: "failed to list projects", Err: err}
	}
	return projects, nil
}

// Update implements Service.Update.
func (s *serviceImpl) Update(ctx context.Context, projectID, userID uuid.UUID, in UpdateInput) (*domain.Project, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "update", Message: "failed to load project", Err: err}
	}

	if project.OwnerID != userID {
		if !s.guard.IsProjectMember(ctx, userID, projectID) {
			return nil, ErrProjectNotFound
		}
		return nil, ErrNotProjectOwner
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	project.UpdatedAt = s.now()

	if err := project.Validate(); err != nil {
		return nil, err
	}

	if err := s.projectStore.Update(ctx, project); err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "update", Message: "failed to store project", Err: err}
	}

	return project, nil
}

// RemoveMember implements Service.RemoveMember.
func (s *serviceImpl) RemoveMember(ctx context.Context, projectID, actingUserID, memberID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrProjectNotFound
		}
		return &ServiceError{Operation: "remove_member", Message: "failed to load project", Err: err}
	}

	if memberID == project.OwnerID {
		return ErrOwnerNotRemovable
	}

	// The owner may remove anyone; anyone else may only remove themself.
	if actingUserID != project.OwnerID && actingUserID != memberID {
		if !s.guard.IsProjectMember(ctx, actingUserID, projectID) {
			return ErrProjectNotFound
		}
		return ErrNotAuthorized
	}

	if err := s.projectStore.RemoveMember(ctx, projectID, memberID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrMemberNotFound
		}
		return &ServiceError{Operation: "remove_member", Message: "failed to remove member", Err: err}
	}

	log.Info("project member removed",
		slog.String("project_id", projectID.String()),
		slog.String("member_id", memberID.String()),
		slog.String("removed_by", actingUserID.String()))

	return nil
}
