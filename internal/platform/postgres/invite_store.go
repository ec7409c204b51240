package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// pendingInviteConstraint is the partial unique index guaranteeing at most
// one pending invite per (project, email) pair.
const pendingInviteConstraint = "project_invites_pending_project_email_key"

// inviteColumns is the column list shared by every invite SELECT in this file.
const inviteColumns = `id, project_id, email, inviter_id, token, status,
	expires_at, accepted_at, created_at, updated_at`

// PostgresInviteStore implements the store.InviteStore interface
// using a PostgreSQL database as the storage backend.
//
// All state transitions are single-statement conditional updates; the
// database, not the process, arbitrates concurrent attempts.
type PostgresInviteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInviteStore creates a new PostgreSQL implementation of the
// InviteStore interface.
func NewPostgresInviteStore(db store.DBTX, logger *slog.Logger) *PostgresInviteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInviteStore{
		db:     db,
		logger: logger.With(slog.String("component", "invite_store")),
	}
}

// Ensure PostgresInviteStore implements store.InviteStore interface
var _ store.InviteStore = (*PostgresInviteStore)(nil)

// WithTx implements store.InviteStore.WithTx
func (s *PostgresInviteStore) WithTx(tx *sql.Tx) store.InviteStore {
	return &PostgresInviteStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.InviteStore.Create
// Returns store.ErrPendingInviteExists when the partial unique index rejects
// a second pending invite for the same (project, email) pair, and
// store.ErrDuplicate on a token collision.
func (s *PostgresInviteStore) Create(ctx context.Context, invite *domain.ProjectInvite) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := invite.Validate(); err != nil {
		log.Warn("invite validation failed during create",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return err
	}

	query := `
		INSERT INTO project_invites (id, project_id, email, inviter_id, token,
			status, expires_at, accepted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		invite.ID,
		invite.ProjectID,
		invite.Email,
		invite.InviterID,
		invite.Token,
		invite.Status,
		invite.ExpiresAt,
		invite.AcceptedAt,
		invite.CreatedAt,
		invite.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err, pendingInviteConstraint) {
			log.Debug("pending invite already exists",
				slog.String("project_id", invite.ProjectID.String()))
			return store.ErrPendingInviteExists
		}
		if IsUniqueViolation(err, "") {
			// Token collision; astronomically unlikely with 256-bit tokens.
			log.Warn("invite token collision",
				slog.String("invite_id", invite.ID.String()))
			return MapError(err)
		}

		log.Error("failed to create invite",
			slog.String("error", err.Error()),
			slog.String("invite_id", invite.ID.String()))
		return MapError(err)
	}

	log.Info("invite created successfully",
		slog.String("invite_id", invite.ID.String()),
		slog.String("project_id", invite.ProjectID.String()))
	return nil
}

// GetByToken implements store.InviteStore.GetByToken
// Returns store.ErrInviteNotFound if no invite carries the token.
func (s *PostgresInviteStore) GetByToken(
	ctx context.Context,
	token string,
) (*domain.ProjectInvite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + inviteColumns + ` FROM project_invites WHERE token = $1`

	invite, err := scanInvite(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("invite not found by token")
			return nil, store.ErrInviteNotFound
		}
		log.Error("failed to get invite by token",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return invite, nil
}

// ListByProject implements store.InviteStore.ListByProject
func (s *PostgresInviteStore) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
) ([]*domain.ProjectInvite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + inviteColumns + `
		FROM project_invites
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		log.Error("failed to list invites",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	invites := []*domain.ProjectInvite{}
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			log.Error("failed to scan invite row", slog.String("error", err.Error()))
			return nil, err
		}
		invites = append(invites, invite)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return invites, nil
}

// MarkAccepted implements store.InviteStore.MarkAccepted
// The WHERE clause requires the row to still be pending and unexpired, so of
// N concurrent accepts exactly one observes applied == true.
func (s *PostgresInviteStore) MarkAccepted(
	ctx context.Context,
	id uuid.UUID,
	acceptedAt time.Time,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE project_invites
		SET status = 'accepted', accepted_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'pending' AND expires_at > $1
	`

	result, err := s.db.ExecContext(ctx, query, acceptedAt, id)
	if err != nil {
		log.Error("failed to mark invite accepted",
			slog.String("error", err.Error()),
			slog.String("invite_id", id.String()))
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	applied := rowsAffected > 0
	if applied {
		log.Info("invite accepted", slog.String("invite_id", id.String()))
	} else {
		log.Debug("invite accept not applied, row no longer pending",
			slog.String("invite_id", id.String()))
	}
	return applied, nil
}

// MarkRejected implements store.InviteStore.MarkRejected
func (s *PostgresInviteStore) MarkRejected(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE project_invites
		SET status = 'rejected', updated_at = $1
		WHERE id = $2 AND status = 'pending' AND expires_at > $1
	`

	result, err := s.db.ExecContext(ctx, query, now, id)
	if err != nil {
		log.Error("failed to mark invite rejected",
			slog.String("error", err.Error()),
			slog.String("invite_id", id.String()))
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	applied := rowsAffected > 0
	if applied {
		log.Info("invite rejected", slog.String("invite_id", id.String()))
	}
	return applied, nil
}

// MarkExpired implements store.InviteStore.MarkExpired
// Opportunistic: a row that is no longer stored-pending is left alone.
func (s *PostgresInviteStore) MarkExpired(
	ctx context.Context,
	id uuid.UUID,
	now time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE project_invites
		SET status = 'expired', updated_at = $1
		WHERE id = $2 AND status = 'pending' AND expires_at <= $1
	`

	if _, err := s.db.ExecContext(ctx, query, now, id); err != nil {
		log.Error("failed to mark invite expired",
			slog.String("error", err.Error()),
			slog.String("invite_id", id.String()))
		return MapError(err)
	}

	return nil
}

// ExpireStalePending implements store.InviteStore.ExpireStalePending
func (s *PostgresInviteStore) ExpireStalePending(
	ctx context.Context,
	projectID uuid.UUID,
	email string,
	now time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE project_invites
		SET status = 'expired', updated_at = $1
		WHERE project_id = $2 AND email = $3 AND status = 'pending' AND expires_at <= $1
	`

	if _, err := s.db.ExecContext(ctx, query, now, projectID, domain.NormalizeEmail(email)); err != nil {
		log.Error("failed to expire stale pending invites",
			slog.String("error", err.Error()),
			slog.String("project_id", projectID.String()))
		return MapError(err)
	}

	return nil
}

// scanInvite scans an invite row in inviteColumns order.
func scanInvite(row rowScanner) (*domain.ProjectInvite, error) {
	var invite domain.ProjectInvite
	var status string
	var acceptedAt sql.NullTime

	err := row.Scan(
		&invite.ID,
		&invite.ProjectID,
		&invite.Email,
		&invite.InviterID,
		&invite.Token,
		&status,
		&invite.ExpiresAt,
		&acceptedAt,
		&invite.CreatedAt,
		&invite.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invite.Status = domain.InviteStatus(status)
	if acceptedAt.Valid {
		invite.AcceptedAt = &acceptedAt.Time
	}
	return &invite, nil
}
