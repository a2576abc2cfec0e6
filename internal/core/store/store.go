// Package store holds the in-memory reminder snapshot: the source of truth
// the UI reads from. It applies optimistic mutations before remote
// confirmation and is overwritten wholesale by sync refreshes.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/colonyops/remind/internal/core/reminder"
)

// Store partitions reminders into pending and completed and derives the
// active/backlog views on every read. All methods are safe for concurrent
// use; each runs to completion under the lock, so callers only observe
// whole snapshots.
type Store struct {
	mu        sync.Mutex
	pending   []reminder.Reminder
	completed []reminder.Reminder
	stats     reminder.Stats
	now       func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

// SetClock overrides the store's clock. Used by tests to pin CompletedAt.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// ApplyOptimisticAdd inserts r into the pending partition at the list
// boundary: actual items go above all existing actual items, backlog items
// below all existing backlog items. The id may be a temporary placeholder.
func (s *Store) ApplyOptimisticAdd(r reminder.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ListType == reminder.ListActual {
		r.SortOrder = s.minOrderLocked(reminder.ListActual) - 1
	} else {
		r.SortOrder = s.maxOrderLocked(reminder.ListBacklog) + 1
	}
	s.pending = append(s.pending, r)
}

// ReconcileAdd replaces the placeholder entry for tempID with the
// storage-confirmed reminder. If the placeholder is gone (deleted before
// confirmation arrived) the confirmed entity is dropped: last local intent
// wins.
func (s *Store) ReconcileAdd(tempID int64, confirmed reminder.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == tempID {
			confirmed.SortOrder = s.pending[i].SortOrder
			s.pending[i] = confirmed
			return
		}
	}
}

// ApplyOptimisticComplete moves the reminder with the given id from pending
// to completed, stamping CompletedAt and bumping both stats counters.
// Returns false if the id is not pending.
func (s *Store) ApplyOptimisticComplete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID != id {
			continue
		}
		r := s.pending[i]
		s.pending = append(s.pending[:i], s.pending[i+1:]...)

		now := s.now().UTC()
		r.IsCompleted = true
		r.CompletedAt = &now
		s.completed = append(s.completed, r)

		s.stats.CompletedToday++
		s.stats.CompletedThisWeek++
		return true
	}
	return false
}

// ApplyOptimisticUncomplete moves a completed reminder back to pending with
// its original urgency and list type, and decrements both stats counters.
// Returns false if the id is not completed.
func (s *Store) ApplyOptimisticUncomplete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.completed {
		if s.completed[i].ID != id {
			continue
		}
		r := s.completed[i]
		s.completed = append(s.completed[:i], s.completed[i+1:]...)

		r.IsCompleted = false
		r.CompletedAt = nil
		if r.ListType == reminder.ListActual {
			r.SortOrder = s.minOrderLocked(reminder.ListActual) - 1
		} else {
			r.SortOrder = s.maxOrderLocked(reminder.ListBacklog) + 1
		}
		s.pending = append(s.pending, r)

		if s.stats.CompletedToday > 0 {
			s.stats.CompletedToday--
		}
		if s.stats.CompletedThisWeek > 0 {
			s.stats.CompletedThisWeek--
		}
		return true
	}
	return false
}

// ApplyOptimisticDelete removes the reminder from whichever partition holds
// it and returns the removed entity so the caller can build an undo token.
func (s *Store) ApplyOptimisticDelete(id int64) (reminder.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == id {
			r := s.pending[i]
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return r, true
		}
	}
	for i := range s.completed {
		if s.completed[i].ID == id {
			r := s.completed[i]
			s.completed = append(s.completed[:i], s.completed[i+1:]...)
			return r, true
		}
	}
	return reminder.Reminder{}, false
}

// ApplyOptimisticMove changes the list type of a pending reminder and
// resets its sort order to the destination boundary. No-op if the reminder
// is already in the destination list or is not pending.
func (s *Store) ApplyOptimisticMove(id int64, to reminder.ListType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID != id {
			continue
		}
		if s.pending[i].ListType == to {
			return false
		}
		if to == reminder.ListActual {
			s.pending[i].SortOrder = s.minOrderLocked(reminder.ListActual) - 1
		} else {
			s.pending[i].SortOrder = s.maxOrderLocked(reminder.ListBacklog) + 1
		}
		s.pending[i].ListType = to
		return true
	}
	return false
}

// ApplyOptimisticUrgency updates the urgency band in place. Partition and
// order are untouched. Returns false if the id is not pending.
func (s *Store) ApplyOptimisticUrgency(id int64, u reminder.Urgency) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == id {
			s.pending[i].Urgency = u
			return true
		}
	}
	return false
}

// ApplyOptimisticUpdate rewrites the message and urgency of a pending
// reminder in place. Returns false if the id is not pending.
func (s *Store) ApplyOptimisticUpdate(id int64, message string, u reminder.Urgency) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == id {
			s.pending[i].Message = message
			s.pending[i].Urgency = u
			return true
		}
	}
	return false
}

// ApplyReorder assigns SortOrder = index for every id in orderedIDs that
// belongs to the given list partition. Partition members omitted from
// orderedIDs are appended after, preserving their relative order, so a
// stale or partial reorder never silently drops reminders.
func (s *Store) ApplyReorder(list reminder.ListType, orderedIDs []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make(map[int64]int) // id -> index into s.pending
	for i := range s.pending {
		if s.pending[i].ListType == list {
			members[s.pending[i].ID] = i
		}
	}

	next := int64(0)
	seen := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		i, ok := members[id]
		if !ok || seen[id] {
			continue
		}
		s.pending[i].SortOrder = next
		next++
		seen[id] = true
	}

	// Append omitted members in their current relative order.
	var rest []int
	for id, i := range members {
		if !seen[id] {
			rest = append(rest, i)
		}
	}
	sort.Slice(rest, func(a, b int) bool {
		return s.pending[rest[a]].SortOrder < s.pending[rest[b]].SortOrder
	})
	for _, i := range rest {
		s.pending[i].SortOrder = next
		next++
	}
}

// ReplaceSnapshot overwrites the full store state. This is the
// authoritative reconciliation point used by sync and rollback refreshes;
// optimistic edits not yet confirmed are clobbered by design.
func (s *Store) ReplaceSnapshot(pending, completed []reminder.Reminder, stats reminder.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append([]reminder.Reminder(nil), pending...)
	s.completed = append([]reminder.Reminder(nil), completed...)
	s.stats = stats
}

// Active returns the actual-list view, sorted by SortOrder ascending.
func (s *Store) Active() []reminder.Reminder {
	return s.view(reminder.ListActual)
}

// Backlog returns the backlog view, sorted by SortOrder ascending.
func (s *Store) Backlog() []reminder.Reminder {
	return s.view(reminder.ListBacklog)
}

// Pending returns all pending reminders sorted by SortOrder ascending.
func (s *Store) Pending() []reminder.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]reminder.Reminder(nil), s.pending...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].SortOrder < out[b].SortOrder })
	return out
}

// Completed returns completed reminders, most recently completed first.
func (s *Store) Completed() []reminder.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]reminder.Reminder(nil), s.completed...)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Touched().After(out[b].Touched())
	})
	return out
}

// Stats returns the current completion counters.
func (s *Store) Stats() reminder.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Find returns the reminder with the given id from either partition.
func (s *Store) Find(id int64) (reminder.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == id {
			return s.pending[i], true
		}
	}
	for i := range s.completed {
		if s.completed[i].ID == id {
			return s.completed[i], true
		}
	}
	return reminder.Reminder{}, false
}

// IsPending reports whether id is in the pending partition.
func (s *Store) IsPending(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.pending {
		if s.pending[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Store) view(list reminder.ListType) []reminder.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []reminder.Reminder
	for i := range s.pending {
		if s.pending[i].ListType == list {
			out = append(out, s.pending[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].SortOrder < out[b].SortOrder })
	return out
}

// minOrderLocked returns the smallest SortOrder in the given pending list,
// or 0 when the list is empty. Callers must hold s.mu.
func (s *Store) minOrderLocked(list reminder.ListType) int64 {
	var minv int64
	found := false
	for i := range s.pending {
		if s.pending[i].ListType != list {
			continue
		}
		if !found || s.pending[i].SortOrder < minv {
			minv = s.pending[i].SortOrder
			found = true
		}
	}
	if !found {
		return 0
	}
	return minv
}

func (s *Store) maxOrderLocked(list reminder.ListType) int64 {
	var maxv int64
	found := false
	for i := range s.pending {
		if s.pending[i].ListType != list {
			continue
		}
		if !found || s.pending[i].SortOrder > maxv {
			maxv = s.pending[i].SortOrder
			found = true
		}
	}
	if !found {
		return 0
	}
	return maxv
}
