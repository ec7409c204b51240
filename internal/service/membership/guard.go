// Package membership provides the authorization predicates for projects and
// tasks. The guard holds no state of its own: every call re-reads the
// authoritative records, and every predicate fails closed — missing entities
// and lookup errors read as "not authorized", never as an exception. The
// caller maps "not found" separately where it matters.
package membership

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// Guard answers authorization questions for projects and tasks.
type Guard struct {
	projectStore store.ProjectStore
	logger       *slog.Logger
}

// NewGuard creates a new membership Guard.
func NewGuard(projectStore store.ProjectStore, logger *slog.Logger) *Guard {
	if projectStore == nil {
		panic("projectStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Guard{
		projectStore: projectStore,
		logger:       logger.With(slog.String("component", "membership_guard")),
	}
}

// IsProjectOwner reports whether the user owns the project.
func (g *Guard) IsProjectOwner(ctx context.Context, userID, projectID uuid.UUID) bool {
	project, err := g.projectStore.GetByID(ctx, projectID)
	if err != nil {
		g.deny(ctx, "owner check failed", projectID, err)
		return false
	}
	return project.OwnerID == userID
}

// IsProjectMember reports whether the user may act on the project: either as
// its owner or as a stored member. The owner is never denormalized into the
// member set; this predicate is the single place that unifies the two.
func (g *Guard) IsProjectMember(ctx context.Context, userID, projectID uuid.UUID) bool {
	project, err := g.projectStore.GetByID(ctx, projectID)
	if err != nil {
		g.deny(ctx, "member check failed", projectID, err)
		return false
	}

	if project.OwnerID == userID {
		return true
	}

	isMember, err := g.projectStore.IsMember(ctx, projectID, userID)
	if err != nil {
		g.deny(ctx, "member lookup failed", projectID, err)
		return false
	}
	return isMember
}

// CanAccessTask reports whether the user may read the task:
// true iff the user created it or is assigned to it.
func (g *Guard) CanAccessTask(userID uuid.UUID, task *domain.Task) bool {
	if task == nil {
		return false
	}
	if task.CreatedBy == userID {
		return true
	}
	return task.AssignedTo != nil && *task.AssignedTo == userID
}

// CanMutateTask reports whether the user may update the task.
// Same predicate as access: creators and assignees may update.
func (g *Guard) CanMutateTask(userID uuid.UUID, task *domain.Task) bool {
	return g.CanAccessTask(userID, task)
}

// CanDeleteTask reports whether the user may delete the task.
// Only the creator may delete.
func (g *Guard) CanDeleteTask(userID uuid.UUID, task *domain.Task) bool {
	return task != nil && task.CreatedBy == userID
}

// deny logs a failed-closed predicate at debug level. Store errors other
// than absence are worth surfacing, but never change the answer.
func (g *Guard) deny(ctx context.Context, msg string, projectID uuid.UUID, err error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	if store.IsNotFoundError(err) {
		log.Debug(msg,
			slog.String("project_id", projectID.String()),
			slog.String("reason", "not found"))
		return
	}
	log.Warn(msg,
		slog.String("project_id", projectID.String()),
		slog.String("error", err.Error()))
}
