package remind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/core/notify"
	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/core/store"
	"github.com/colonyops/remind/internal/gateway"
)

// ReminderService sequences every user-facing mutation as
// optimistic-local-update, remote-confirm, notify, rollback-on-failure.
// The in-memory store reflects each change before the gateway confirms it,
// so the UI never waits on storage.
type ReminderService struct {
	store *store.Store
	gw    gateway.Gateway
	bus   *eventbus.EventBus
	log   zerolog.Logger

	// settleDelay defers the store-side removal of completed and deleted
	// reminders so exit animations can play. The operation itself commits
	// immediately.
	settleDelay time.Duration
	undoWindow  time.Duration

	mu      sync.Mutex
	undo    *undoEntry
	leaving map[int64]*time.Timer

	now func() time.Time
}

// undoEntry captures the inverse of a just-committed complete or delete.
type undoEntry struct {
	label   string
	expires time.Time
	apply   func(ctx context.Context) error
}

// NewReminderService creates a ReminderService.
func NewReminderService(st *store.Store, gw gateway.Gateway, bus *eventbus.EventBus, log zerolog.Logger, settleDelay time.Duration) *ReminderService {
	return &ReminderService{
		store:       st,
		gw:          gw,
		bus:         bus,
		log:         log.With().Str("component", "reminder-service").Logger(),
		settleDelay: settleDelay,
		undoWindow:  5 * time.Second,
		leaving:     map[int64]*time.Timer{},
		now:         time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

// Store exposes the in-memory snapshot for read-only view projections.
func (s *ReminderService) Store() *store.Store {
	return s.store
}

// Add validates, optimistically inserts under a temporary negative id, then
// asks the gateway for a durable one. If the placeholder is gone by the time
// the gateway answers, the confirmed entity is dropped.
func (s *ReminderService) Add(ctx context.Context, message string, urgency reminder.Urgency, list reminder.ListType) error {
	if err := reminder.ValidateMessage(message); err != nil {
		return err
	}

	r := reminder.New(message, urgency, list)
	r.ID = reminder.TempID(s.now())
	s.store.ApplyOptimisticAdd(r)

	id, err := s.gw.AddReminder(ctx, message, urgency, list)
	if err != nil {
		s.fail(ctx, "Failed to add task", err)
		return fmt.Errorf("add reminder: %w", err)
	}

	confirmed := r
	confirmed.ID = id
	s.store.ReconcileAdd(r.ID, confirmed)

	s.settled()
	return nil
}

// Complete marks a pending reminder done. The store-side move to the
// completed partition is deferred by the settle delay; the reminder is
// logically gone the moment this returns.
func (s *ReminderService) Complete(ctx context.Context, id int64) error {
	r, ok := s.store.Find(id)
	if !ok || r.IsCompleted {
		return nil
	}

	s.beginLeaving(id, func() {
		s.store.ApplyOptimisticComplete(id)
	})

	if err := s.gw.CompleteReminder(ctx, id); err != nil {
		s.abandonLeaving(id)
		s.fail(ctx, "Failed to complete task", err)
		return fmt.Errorf("complete reminder: %w", err)
	}

	s.armUndo("Task completed", func(ctx context.Context) error {
		return s.Uncomplete(ctx, id)
	})

	s.settled()
	return nil
}

// Uncomplete returns a completed reminder to pending with its original
// urgency and list. Undoing a complete whose settle transformation has not
// fired yet cancels it instead, so the reminder never leaves pending
// locally.
func (s *ReminderService) Uncomplete(ctx context.Context, id int64) error {
	if !s.cancelSettle(id) {
		s.store.ApplyOptimisticUncomplete(id)
	}

	if err := s.gw.UncompleteReminder(ctx, id); err != nil {
		s.fail(ctx, "Failed to restore task", err)
		return fmt.Errorf("uncomplete reminder: %w", err)
	}

	s.settled()
	return nil
}

// Delete removes a reminder from either partition, with the same settle
// deferral as Complete. Deleting an id that is already gone is a no-op.
func (s *ReminderService) Delete(ctx context.Context, id int64) error {
	removed, ok := s.store.Find(id)
	if !ok {
		return nil
	}

	s.beginLeaving(id, func() {
		s.store.ApplyOptimisticDelete(id)
	})

	if err := s.gw.DeleteReminder(ctx, id); err != nil {
		s.abandonLeaving(id)
		s.fail(ctx, "Failed to delete task", err)
		return fmt.Errorf("delete reminder: %w", err)
	}

	s.armUndo("Task deleted", func(ctx context.Context) error {
		return s.Add(ctx, removed.Message, removed.Urgency, removed.ListType)
	})

	s.settled()
	return nil
}

// Move relocates a pending reminder between the actual and backlog lists.
func (s *ReminderService) Move(ctx context.Context, id int64, to reminder.ListType) error {
	if !s.store.IsPending(id) {
		return nil
	}
	s.store.ApplyOptimisticMove(id, to)

	if err := s.gw.MoveReminder(ctx, id, to); err != nil {
		s.fail(ctx, "Failed to move task", err)
		return fmt.Errorf("move reminder: %w", err)
	}

	s.settledLocal()
	return nil
}

// SetUrgency updates the urgency band of a pending reminder in place.
func (s *ReminderService) SetUrgency(ctx context.Context, id int64, urgency reminder.Urgency) error {
	if !s.store.IsPending(id) {
		return nil
	}
	s.store.ApplyOptimisticUrgency(id, urgency)

	if err := s.gw.SetUrgency(ctx, id, urgency); err != nil {
		s.fail(ctx, "Failed to update task", err)
		return fmt.Errorf("set urgency: %w", err)
	}

	s.settledLocal()
	return nil
}

// Update rewrites the message and urgency of a pending reminder.
func (s *ReminderService) Update(ctx context.Context, id int64, message string, urgency reminder.Urgency) error {
	if err := reminder.ValidateMessage(message); err != nil {
		return err
	}
	if !s.store.IsPending(id) {
		return nil
	}
	s.store.ApplyOptimisticUpdate(id, message, urgency)

	if err := s.gw.UpdateReminder(ctx, id, message, urgency); err != nil {
		s.fail(ctx, "Failed to update task", err)
		return fmt.Errorf("update reminder: %w", err)
	}

	s.settled()
	return nil
}

// Reorder reassigns sort order within one list to match orderedIDs. Ids in
// the list but omitted from orderedIDs keep their relative order at the end.
func (s *ReminderService) Reorder(ctx context.Context, list reminder.ListType, orderedIDs []int64) error {
	s.store.ApplyReorder(list, orderedIDs)

	if err := s.gw.ReorderReminders(ctx, orderedIDs); err != nil {
		s.fail(ctx, "Failed to reorder tasks", err)
		return fmt.Errorf("reorder reminders: %w", err)
	}

	s.settledLocal()
	return nil
}

// Undo reissues the inverse of the most recent complete or delete, if its
// window has not elapsed. Returns false when there is nothing to undo.
func (s *ReminderService) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	entry := s.undo
	s.undo = nil
	s.mu.Unlock()

	if entry == nil || s.now().After(entry.expires) {
		return false, nil
	}

	if err := entry.apply(ctx); err != nil {
		return false, fmt.Errorf("undo %s: %w", entry.label, err)
	}
	return true, nil
}

// CanUndo reports whether an undo token is armed and unexpired.
func (s *ReminderService) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo != nil && s.now().Before(s.undo.expires)
}

// Refresh pulls the authoritative snapshot from the gateway and overwrites
// the store. Any unconfirmed optimistic edits are discarded.
func (s *ReminderService) Refresh(ctx context.Context) error {
	pending, err := s.gw.GetPendingReminders(ctx)
	if err != nil {
		return fmt.Errorf("refresh pending: %w", err)
	}
	completed, err := s.gw.GetCompletedReminders(ctx)
	if err != nil {
		return fmt.Errorf("refresh completed: %w", err)
	}
	stats, err := s.gw.GetCompletionStats(ctx)
	if err != nil {
		return fmt.Errorf("refresh stats: %w", err)
	}

	s.store.ReplaceSnapshot(pending, completed, stats)
	s.bus.PublishRemindersRefreshed(eventbus.RemindersRefreshedPayload{})
	return nil
}

// History aggregates completion activity over time straight from the
// gateway; it is not part of the in-memory snapshot.
func (s *ReminderService) History(ctx context.Context) (reminder.History, error) {
	return s.gw.GetHistoricalStats(ctx)
}

// Leaving reports whether id is inside its settle delay, still visible in
// the store but already committed as completed or deleted.
func (s *ReminderService) Leaving(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.leaving[id]
	return ok
}

// beginLeaving marks id as leaving and schedules the deferred store
// transformation. With a zero settle delay the transformation is immediate.
func (s *ReminderService) beginLeaving(id int64, apply func()) {
	if s.settleDelay <= 0 {
		apply()
		return
	}

	s.mu.Lock()
	s.leaving[id] = time.AfterFunc(s.settleDelay, func() {
		s.mu.Lock()
		_, live := s.leaving[id]
		delete(s.leaving, id)
		s.mu.Unlock()

		// Cancelled between firing and acquiring the lock.
		if !live {
			return
		}
		apply()
		s.bus.PublishRemindersRefreshed(eventbus.RemindersRefreshedPayload{})
	})
	s.mu.Unlock()
}

// abandonLeaving stops the pending settle transformation after a remote
// failure. The follow-up refresh restores the authoritative state either way.
func (s *ReminderService) abandonLeaving(id int64) {
	s.cancelSettle(id)
}

// cancelSettle stops the pending settle transformation for id before it
// lands in the store. Reports whether one was pending.
func (s *ReminderService) cancelSettle(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.leaving[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.leaving, id)
	return true
}

// armUndo installs the inverse operation for the undo window, replacing any
// previous token, and surfaces a dismissible notice carrying it.
func (s *ReminderService) armUndo(label string, apply func(ctx context.Context) error) {
	s.mu.Lock()
	s.undo = &undoEntry{
		label:   label,
		expires: s.now().Add(s.undoWindow),
		apply:   apply,
	}
	s.mu.Unlock()

	s.bus.PublishNoticePublished(eventbus.NoticePublishedPayload{
		Level:   notify.LevelInfo,
		Message: label,
		Undo:    true,
	})
}

// settled runs after a confirmed mutation: tell other surfaces to re-pull
// and push local state to the cloud without blocking the caller.
func (s *ReminderService) settled() {
	s.settledLocal()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.gw.SyncToCloudBackground(ctx); err != nil {
			s.log.Warn().Err(err).Msg("background cloud push failed")
		}
	}()
}

// settledLocal is settled without the cloud push. Ordering and urgency
// changes persist locally only; the next content mutation or periodic sync
// carries them up.
func (s *ReminderService) settledLocal() {
	s.bus.PublishRemindersRefreshed(eventbus.RemindersRefreshedPayload{})
}

// fail surfaces a transient notice and resynchronizes the store from the
// gateway, discarding the optimistic guess.
func (s *ReminderService) fail(ctx context.Context, message string, err error) {
	s.log.Error().Err(err).Msg(message)

	s.bus.PublishNoticePublished(eventbus.NoticePublishedPayload{
		Level:   notify.LevelError,
		Message: message,
	})

	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		s.log.Error().Err(refreshErr).Msg("rollback refresh failed")
	}
}
