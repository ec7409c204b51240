package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "project_store")),
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore interface
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// WithTx implements store.ProjectStore.WithTx
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ProjectStore.Create
func (s *PostgresProjectStore) Create(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during create",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		INSERT INTO projects (id, name, description, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}

	log.Info("project created successfully",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", project.OwnerID.String()))
	return nil
}

// GetByID implements store.ProjectStore.GetByID
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, owner_id, status, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	var status string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("project not found", slog.String("project_id", id.String()))
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project by ID",
			slog.String("error", err.Error()),
			slog.String("project_id", id.String()))
		return nil, MapError(err)
	}

	project.Status = domain.ProjectStatus(status)
	return &project, nil
}

// Update implements store.ProjectStore.Update
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) Update(ctx context.Context, project *domain.Project) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := project.Validate(); err != nil {
		log.Warn("project validation failed during update",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return err
	}

	query := `
		UPDATE projects
		SET name = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		project.Name,
		project.Description,
		project.Status,
		project.UpdatedAt,
		project.ID,
	)

	if err != nil {
		log.Error("failed to update project",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrProjectNotFound
	}

	return nil
}

// ListForUser implements store.ProjectStore.ListForUser
func (s *PostgresProjectStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT p.id, p.name, p.description, p.owner_id, p.status, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_members m ON m.project_id = p.id
		WHERE p.owner_id = $1 OR m.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list projects for user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	projects := []*domain.Project{}
	for rows.Next() {
		var project domain.Project
		var status string

		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.OwnerID,
			&status,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan project row",
				slog.String("error", err.Error()))
			return nil, err
		}

		project.Status = domain.ProjectStatus(status)
		projects = append(projects, &project)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return projects, nil
}

// IsMember implements store.ProjectStore.IsMember
// Missing projects read as false; the store never errors on absence.
func (s *PostgresProjectStore) IsMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members
			WHERE project_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// AddMember implements store.ProjectStore.AddMember
// The insert is conditional on the membership not already existing, so two
// concurrent adds for the same pair result in one row and one ErrAlreadyMember.
func (s *PostgresProjectStore) AddMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO project_members (project_id, user_id, added_at)
		VALUES ($1, $2, now())
		ON CONFLICT (project_id, user_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		log.Error("failed to add project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		log.Debug("user already a member of project",
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return store.ErrAlreadyMember
	}

	log.Info("project member added",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// RemoveMember implements store.ProjectStore.RemoveMember
// Returns store.ErrNotFound if the user was not a member.
func (s *PostgresProjectStore) RemoveMember(
	ctx context.Context,
	projectID, userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, projectID, userID)
	if err != nil {
		log.Error("failed to remove project member",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "project member"); err != nil {
		return err
	}

	log.Info("project member removed",
		slog.String("project_id", projectID.String()),
		slog.String("user_id", userID.String()))
	return nil
}
