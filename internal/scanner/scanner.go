// Package scanner implements the background reminder scanner. On a fixed
// interval it re-derives, from the task table alone, which due (upcoming or
// overdue) and reminder alerts should exist, and emits an event for each
// candidate. It
// keeps no memory of what it already emitted: every cycle re-finds the same
// candidates, and the notification dispatcher's dedup key is what makes
// redelivery a no-op. Missing a cycle therefore loses nothing, and several
// instances may scan concurrently without coordination.
package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loujainjnad/taskboard-api/internal/config"
	"github.com/loujainjnad/taskboard-api/internal/domain"
	"github.com/loujainjnad/taskboard-api/internal/events"
	"github.com/loujainjnad/taskboard-api/internal/store"
)

// Scanner periodically finds tasks needing due-soon or reminder alerts.
type Scanner struct {
	taskStore store.TaskStore
	emitter   events.Emitter

	interval  time.Duration
	lookahead time.Duration
	now       func() time.Time // Injectable for testing

	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// New creates a Scanner from the given configuration.
func New(
	taskStore store.TaskStore,
	emitter events.Emitter,
	cfg config.ScannerConfig,
	logger *slog.Logger,
) *Scanner {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		taskStore: taskStore,
		emitter:   emitter,
		interval:  time.Duration(cfg.IntervalSeconds) * time.Second,
		lookahead: time.Duration(cfg.DueLookaheadMinutes) * time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "reminder_scanner")),
	}
}

// Start launches the scan loop in a background goroutine. The first scan
// runs immediately rather than one interval in.
func (s *Scanner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFunc = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("reminder scanner started",
		slog.Duration("interval", s.interval),
		slog.Duration("due_lookahead", s.lookahead))
}

// Stop cancels the scan loop and waits for an in-flight cycle to finish.
func (s *Scanner) Stop() {
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()
	s.logger.Info("reminder scanner stopped")
}

func (s *Scanner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ScanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

// ScanOnce runs a single scan cycle: one query per alert kind, one emitted
// event per candidate. Emission failures are logged and skipped; the next
// cycle will re-find the same candidate.
func (s *Scanner) ScanOnce(ctx context.Context) {
	now := s.now()

	due, err := s.taskStore.FindDueWithin(ctx, now, s.lookahead)
	if err != nil {
		s.logger.Error("due scan failed", slog.String("error", err.Error()))
	} else {
		for _, t := range due {
			s.emitDue(ctx, t)
		}
	}

	elapsed, err := s.taskStore.FindReminderElapsed(ctx, now)
	if err != nil {
		s.logger.Error("reminder scan failed", slog.String("error", err.Error()))
		return
	}
	for _, t := range elapsed {
		s.emitReminder(ctx, t)
	}
}

func (s *Scanner) emitDue(ctx context.Context, t *domain.Task) {
	if t.DueDate == nil {
		return
	}

	event, err := events.NewEvent(events.TypeTaskDue, events.TaskDuePayload{
		TaskID:      t.ID,
		TaskTitle:   t.Title,
		ProjectID:   t.ProjectID,
		RecipientID: recipientFor(t),
		DueAt:       *t.DueDate,
	})
	if err != nil {
		s.logger.Error("failed to build due event",
			slog.String("task_id", t.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit due event",
			slog.String("task_id", t.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (s *Scanner) emitReminder(ctx context.Context, t *domain.Task) {
	if t.ReminderAt == nil {
		return
	}

	event, err := events.NewEvent(events.TypeTaskReminder, events.TaskReminderPayload{
		TaskID:      t.ID,
		TaskTitle:   t.Title,
		ProjectID:   t.ProjectID,
		RecipientID: recipientFor(t),
		ReminderAt:  *t.ReminderAt,
	})
	if err != nil {
		s.logger.Error("failed to build reminder event",
			slog.String("task_id", t.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit reminder event",
			slog.String("task_id", t.ID.String()),
			slog.String("error", err.Error()))
	}
}

// recipientFor picks who a time-based alert goes to: the assignee when the
// task has one, otherwise the creator.
func recipientFor(t *domain.Task) uuid.UUID {
	if t.AssignedTo != nil {
		return *t.AssignedTo
	}
	return t.CreatedBy
}
