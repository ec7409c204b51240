// Package invite implements the project collaboration ledger: issuing,
// accepting and rejecting project invitations.
//
// Every invariant that must survive concurrency — one pending invite per
// (project, email), accept-exactly-once, no transition out of a terminal
// state — is enforced by conditional writes and unique constraints in the
// storage layer, never by in-process locks, because multiple service
// instances may run side by side.
package invite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/platform/logger"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// AcceptResult is the outcome of an Accept call.
type AcceptResult struct {
	// Invite is the invite record after the call.
	Invite *domain.ProjectInvite

	// RequiresAuth is true when the token is valid but the caller was
	// unauthenticated. Nothing was mutated; the client should authenticate
	// and retry.
	RequiresAuth bool
}

// Service provides the invite ledger operations.
type Service interface {
	// Issue creates a pending invite for the email to join the project.
	// Only the project owner may issue. Returns ErrAlreadyMember if the
	// email denotes a current member, ErrDuplicateInvite if an unexpired
	// pending invite already exists for the pair. Of concurrent Issue calls
	// for the same (project, email), exactly one succeeds.
	Issue(ctx context.Context, projectID, inviterID uuid.UUID, email string) (*domain.ProjectInvite, error)

	// Accept redeems an invite token. With actingUserID == uuid.Nil the call
	// is a read-only validity check returning RequiresAuth. Otherwise the
	// acting user's email must match the invite's, and the transition to
	// accepted plus the membership insert commit atomically. Of N concurrent
	// accepts of one token, exactly one succeeds; the rest see
	// ErrAlreadyAccepted.
	Accept(ctx context.Context, token string, actingUserID uuid.UUID) (*AcceptResult, error)

	// Reject declines a pending invite. Failures are deliberately coarse:
	// any invite that already left pending — accepted, rejected or expired —
	// reads as ErrAlreadyProcessed.
	Reject(ctx context.Context, token string, actingUserID uuid.UUID) (*domain.ProjectInvite, error)

	// ListForProject returns the project's invites; owner only.
	ListForProject(ctx context.Context, projectID, callerID uuid.UUID) ([]*domain.ProjectInvite, error)
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	db           *sql.DB
	inviteStore  store.InviteStore
	projectStore store.ProjectStore
	userStore    store.UserStore
	emitter      events.Emitter
	now          func() time.Time
	runTx        func(ctx context.Context, db *sql.DB, fn store.TxFn) error
	logger       *slog.Logger
}

// NewService creates a new invite Service.
func NewService(
	db *sql.DB,
	inviteStore store.InviteStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	emitter events.Emitter,
	logger *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if inviteStore == nil {
		panic("inviteStore cannot be nil")
	}
	if projectStore == nil {
		panic("projectStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		db:           db,
		inviteStore:  inviteStore,
		projectStore: projectStore,
		userStore:    userStore,
		emitter:      emitter,
		now:          func() time.Time { return time.Now().UTC() },
		runTx:        store.RunInTransaction,
		logger:       logger.With(slog.String("component", "invite_service")),
	}
}

// Issue implements Service.Issue.
func (s *serviceImpl) Issue(
	ctx context.Context,
	projectID, inviterID uuid.UUID,
	email string,
) (*domain.ProjectInvite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()
	email = domain.NormalizeEmail(email)

	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "issue", Message: "failed to load project", Err: err}
	}

	if project.OwnerID != inviterID {
		log.Warn("invite issue denied, caller is not the owner",
			slog.String("project_id", projectID.String()),
			slog.String("caller_id", inviterID.String()))
		return nil, ErrNotProjectOwner
	}

	// An email that already denotes a member (or the owner) is a conflict,
	// not a new invite.
	if invitee, err := s.userStore.GetByEmail(ctx, email); err == nil {
		if invitee.ID == project.OwnerID {
			return nil, ErrAlreadyMember
		}
		isMember, err := s.projectStore.IsMember(ctx, projectID, invitee.ID)
		if err != nil {
			return nil, &ServiceError{Operation: "issue", Message: "failed to check membership", Err: err}
		}
		if isMember {
			return nil, ErrAlreadyMember
		}
	} else if !store.IsNotFoundError(err) {
		return nil, &ServiceError{Operation: "issue", Message: "failed to look up invitee", Err: err}
	}

	// A stored-pending invite whose expiry has passed is logically expired;
	// persist that now so it cannot block the partial unique index.
	if err := s.inviteStore.ExpireStalePending(ctx, projectID, email, now); err != nil {
		return nil, &ServiceError{Operation: "issue", Message: "failed to expire stale invites", Err: err}
	}

	invite, err := domain.NewProjectInvite(projectID, inviterID, email)
	if err != nil {
		return nil, &ServiceError{Operation: "issue", Message: "failed to build invite", Err: err}
	}

	// The insert races concurrent Issue calls for the same pair; the partial
	// unique index decides the winner.
	if err := s.inviteStore.Create(ctx, invite); err != nil {
		if errors.Is(err, store.ErrPendingInviteExists) {
			return nil, ErrDuplicateInvite
		}
		return nil, &ServiceError{Operation: "issue", Message: "failed to persist invite", Err: err}
	}

	log.Info("invite issued",
		slog.String("invite_id", invite.ID.String()),
		slog.String("project_id", projectID.String()))

	// The invite row is already committed; the notification it feeds is
	// derived state. Emission failures are logged, never returned.
	event, err := events.NewEvent(events.TypeInviteIssued, events.InviteIssuedPayload{
		InviteID:    invite.ID,
		ProjectID:   projectID,
		ProjectName: project.Name,
		Email:       email,
		InviterID:   inviterID,
	})
	if err != nil {
		log.Error("failed to build invite event",
			slog.String("invite_id", invite.ID.String()),
			slog.String("error", err.Error()))
		return invite, nil
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit invite event",
			slog.String("invite_id", invite.ID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}

	return invite, nil
}

// Accept implements Service.Accept.
func (s *serviceImpl) Accept(
	ctx context.Context,
	token string,
	actingUserID uuid.UUID,
) (*AcceptResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	invite, err := s.lookupPending(ctx, token, now, "accept")
	if err != nil {
		return nil, err
	}

	// Unauthenticated preview: the identity that will ultimately accept is
	// unknown, so this path is read-only by design.
	if actingUserID == uuid.Nil {
		return &AcceptResult{Invite: invite, RequiresAuth: true}, nil
	}

	user, err := s.userStore.GetByID(ctx, actingUserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, &ServiceError{Operation: "accept", Message: "acting user not found", Err: err}
		}
		return nil, &ServiceError{Operation: "accept", Message: "failed to load acting user", Err: err}
	}

	if user.Email != invite.Email {
		log.Warn("invite accept denied, email mismatch",
			slog.String("invite_id", invite.ID.String()),
			slog.String("user_id", actingUserID.String()))
		return nil, ErrEmailMismatch
	}

	// Short-circuit before mutating anything if the user already belongs.
	project, err := s.projectStore.GetByID(ctx, invite.ProjectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "accept", Message: "failed to load project", Err: err}
	}
	if project.OwnerID == actingUserID {
		return nil, ErrAlreadyMember
	}
	isMember, err := s.projectStore.IsMember(ctx, invite.ProjectID, actingUserID)
	if err != nil {
		return nil, &ServiceError{Operation: "accept", Message: "failed to check membership", Err: err}
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	// The conditional transition and the membership insert commit together.
	// MarkAccepted applies only if the row is still pending and unexpired at
	// write time, so two racing accepts produce one winner.
	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txInvites := s.inviteStore.WithTx(tx)
		txProjects := s.projectStore.WithTx(tx)

		applied, err := txInvites.MarkAccepted(ctx, invite.ID, now)
		if err != nil {
			return &ServiceError{Operation: "accept", Message: "failed to transition invite", Err: err}
		}
		if !applied {
			// Lost the race; classify against current state outside the tx.
			return errAcceptNotApplied
		}

		if err := txProjects.AddMember(ctx, invite.ProjectID, actingUserID); err != nil {
			if errors.Is(err, store.ErrAlreadyMember) {
				// A concurrent path added the membership between our check
				// and the insert; roll the transition back too.
				return ErrAlreadyMember
			}
			return &ServiceError{Operation: "accept", Message: "failed to add member", Err: err}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errAcceptNotApplied) {
			return nil, s.classifyLostRace(ctx, token, now)
		}
		return nil, err
	}

	accepted := now
	invite.Status = domain.InviteStatusAccepted
	invite.AcceptedAt = &accepted
	invite.UpdatedAt = now

	log.Info("invite accepted",
		slog.String("invite_id", invite.ID.String()),
		slog.String("project_id", invite.ProjectID.String()),
		slog.String("user_id", actingUserID.String()))

	return &AcceptResult{Invite: invite}, nil
}

// Reject implements Service.Reject.
func (s *serviceImpl) Reject(
	ctx context.Context,
	token string,
	actingUserID uuid.UUID,
) (*domain.ProjectInvite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	invite, err := s.inviteStore.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, &ServiceError{Operation: "reject", Message: "failed to load invite", Err: err}
	}

	// Reject's failure taxonomy is intentionally coarser than Accept's:
	// every non-pending effective state reads the same.
	if status := invite.EffectiveStatus(now); status != domain.InviteStatusPending {
		if status == domain.InviteStatusExpired && invite.Status == domain.InviteStatusPending {
			if err := s.inviteStore.MarkExpired(ctx, invite.ID, now); err != nil {
				log.Warn("failed to persist expired status",
					slog.String("invite_id", invite.ID.String()),
					slog.String("error", err.Error()))
			}
		}
		return nil, ErrAlreadyProcessed
	}

	user, err := s.userStore.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, &ServiceError{Operation: "reject", Message: "failed to load acting user", Err: err}
	}
	if user.Email != invite.Email {
		log.Warn("invite reject denied, email mismatch",
			slog.String("invite_id", invite.ID.String()),
			slog.String("user_id", actingUserID.String()))
		return nil, ErrEmailMismatch
	}

	applied, err := s.inviteStore.MarkRejected(ctx, invite.ID, now)
	if err != nil {
		return nil, &ServiceError{Operation: "reject", Message: "failed to transition invite", Err: err}
	}
	if !applied {
		return nil, ErrAlreadyProcessed
	}

	invite.Status = domain.InviteStatusRejected
	invite.UpdatedAt = now

	log.Info("invite rejected",
		slog.String("invite_id", invite.ID.String()),
		slog.String("project_id", invite.ProjectID.String()))

	return invite, nil
}

// ListForProject implements Service.ListForProject.
func (s *serviceImpl) ListForProject(
	ctx context.Context,
	projectID, callerID uuid.UUID,
) ([]*domain.ProjectInvite, error) {
	project, err := s.projectStore.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, &ServiceError{Operation: "list", Message: "failed to load project", Err: err}
	}
	if project.OwnerID != callerID {
		return nil, ErrNotProjectOwner
	}

	invites, err := s.inviteStore.ListByProject(ctx, projectID)
	if err != nil {
		return nil, &ServiceError{Operation: "list", Message: "failed to list invites", Err: err}
	}

	// Apply the expiry override on the way out so clients never see a
	// stored-pending invite that is logically expired.
	now := s.now()
	for _, inv := range invites {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invites, nil
}

// errAcceptNotApplied signals inside the accept transaction that the
// conditional update matched no row. Never escapes this package.
var errAcceptNotApplied = errors.New("accept transition not applied")

// lookupPending loads an invite by token and enforces the expiry override,
// returning the taxonomy error for whichever terminal state the record has
// effectively reached.
func (s *serviceImpl) lookupPending(
	ctx context.Context,
	token string,
	now time.Time,
	operation string,
) (*domain.ProjectInvite, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	invite, err := s.inviteStore.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, &ServiceError{Operation: operation, Message: "failed to load invite", Err: err}
	}

	switch invite.EffectiveStatus(now) {
	case domain.InviteStatusPending:
		return invite, nil
	case domain.InviteStatusAccepted:
		return nil, ErrAlreadyAccepted
	case domain.InviteStatusRejected:
		return nil, ErrAlreadyRejected
	default: // expired, possibly only logically
		if invite.Status == domain.InviteStatusPending {
			if err := s.inviteStore.MarkExpired(ctx, invite.ID, now); err != nil {
				log.Warn("failed to persist expired status",
					slog.String("invite_id", invite.ID.String()),
					slog.String("error", err.Error()))
			}
		}
		return nil, ErrInviteExpired
	}
}

// classifyLostRace re-reads the invite after a conditional accept matched no
// row and maps the current effective state to the right taxonomy error.
func (s *serviceImpl) classifyLostRace(ctx context.Context, token string, now time.Time) error {
	invite, err := s.inviteStore.GetByToken(ctx, token)
	if err != nil {
		return ErrAlreadyProcessed
	}
	switch invite.EffectiveStatus(now) {
	case domain.InviteStatusAccepted:
		return ErrAlreadyAccepted
	case domain.InviteStatusRejected:
		return ErrAlreadyRejected
	case domain.InviteStatusExpired:
		return ErrInviteExpired
	default:
		return ErrAlreadyProcessed
	}
}
