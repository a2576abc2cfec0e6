package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remind/internal/core/reminder"
)

func pending(id int64, list reminder.ListType, order int64) reminder.Reminder {
	return reminder.Reminder{
		ID:        id,
		Message:   "task",
		Urgency:   reminder.UrgencyToday,
		ListType:  list,
		SortOrder: order,
		CreatedAt: time.Now().UTC(),
	}
}

func ids(rs []reminder.Reminder) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

// countIn reports how many of the three views contain id.
func countIn(s *Store, id int64) int {
	n := 0
	for _, r := range s.Active() {
		if r.ID == id {
			n++
		}
	}
	for _, r := range s.Backlog() {
		if r.ID == id {
			n++
		}
	}
	for _, r := range s.Completed() {
		if r.ID == id {
			n++
		}
	}
	return n
}

func TestStore_AddVisibleImmediately(t *testing.T) {
	s := New()

	r := reminder.New("write report", reminder.UrgencyToday, reminder.ListActual)
	r.ID = reminder.TempID(time.Now())
	s.ApplyOptimisticAdd(r)

	active := s.Active()
	require.Len(t, active, 1)
	assert.Equal(t, r.ID, active[0].ID)
	assert.Equal(t, reminder.UrgencyToday, active[0].Urgency)
}

func TestStore_AddBoundaryOrdering(t *testing.T) {
	s := New()
	s.ReplaceSnapshot([]reminder.Reminder{
		pending(1, reminder.ListActual, 0),
		pending(2, reminder.ListActual, 1),
		pending(3, reminder.ListBacklog, 0),
	}, nil, reminder.Stats{})

	// New actual items go above all existing actual items.
	s.ApplyOptimisticAdd(pending(10, reminder.ListActual, 0))
	assert.Equal(t, []int64{10, 1, 2}, ids(s.Active()))

	// New backlog items go below all existing backlog items.
	s.ApplyOptimisticAdd(pending(11, reminder.ListBacklog, 0))
	assert.Equal(t, []int64{3, 11}, ids(s.Backlog()))
}

func TestStore_EachIDInExactlyOnePartition(t *testing.T) {
	s := New()

	r := pending(1, reminder.ListActual, 0)
	s.ApplyOptimisticAdd(r)
	assert.Equal(t, 1, countIn(s, 1))

	s.ApplyOptimisticMove(1, reminder.ListBacklog)
	assert.Equal(t, 1, countIn(s, 1))

	s.ApplyOptimisticComplete(1)
	assert.Equal(t, 1, countIn(s, 1))

	s.ApplyOptimisticUncomplete(1)
	assert.Equal(t, 1, countIn(s, 1))

	_, ok := s.ApplyOptimisticDelete(1)
	require.True(t, ok)
	assert.Equal(t, 0, countIn(s, 1))
}

func TestStore_Complete(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	s := New()
	s.SetClock(func() time.Time { return now })
	s.ReplaceSnapshot([]reminder.Reminder{
		pending(1, reminder.ListActual, 0),
		pending(2, reminder.ListBacklog, 0),
	}, nil, reminder.Stats{CompletedToday: 2, CompletedThisWeek: 5})

	require.True(t, s.ApplyOptimisticComplete(1))

	assert.Empty(t, s.Active())
	assert.Len(t, s.Backlog(), 1)

	completed := s.Completed()
	require.Len(t, completed, 1)
	assert.True(t, completed[0].IsCompleted)
	require.NotNil(t, completed[0].CompletedAt)
	assert.Equal(t, now, *completed[0].CompletedAt)

	stats := s.Stats()
	assert.Equal(t, 3, stats.CompletedToday)
	assert.Equal(t, 6, stats.CompletedThisWeek)
}

func TestStore_UncompleteRestoresOriginalListAndUrgency(t *testing.T) {
	s := New()
	r := pending(1, reminder.ListBacklog, 0)
	r.Urgency = reminder.UrgencySoon
	s.ReplaceSnapshot([]reminder.Reminder{r}, nil, reminder.Stats{})

	require.True(t, s.ApplyOptimisticComplete(1))
	require.True(t, s.ApplyOptimisticUncomplete(1))

	backlog := s.Backlog()
	require.Len(t, backlog, 1)
	assert.Equal(t, reminder.UrgencySoon, backlog[0].Urgency)
	assert.False(t, backlog[0].IsCompleted)
	assert.Nil(t, backlog[0].CompletedAt)

	stats := s.Stats()
	assert.Equal(t, 0, stats.CompletedToday)
	assert.Equal(t, 0, stats.CompletedThisWeek)
}

func TestStore_DeleteReturnsRemoved(t *testing.T) {
	s := New()
	r := pending(7, reminder.ListActual, 0)
	r.Message = "call dentist"
	s.ReplaceSnapshot([]reminder.Reminder{r}, nil, reminder.Stats{})

	removed, ok := s.ApplyOptimisticDelete(7)
	require.True(t, ok)
	assert.Equal(t, "call dentist", removed.Message)
	assert.Equal(t, reminder.ListActual, removed.ListType)
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	s := New()
	s.ReplaceSnapshot([]reminder.Reminder{pending(1, reminder.ListActual, 0)}, nil, reminder.Stats{})

	_, ok := s.ApplyOptimisticDelete(999)
	assert.False(t, ok)
	assert.Len(t, s.Active(), 1)
}

func TestStore_MoveRelocatesWithoutTouchingOtherFields(t *testing.T) {
	s := New()
	r := pending(1, reminder.ListBacklog, 5)
	r.Urgency = reminder.UrgencyNow
	s.ReplaceSnapshot([]reminder.Reminder{r}, nil, reminder.Stats{})

	require.True(t, s.ApplyOptimisticMove(1, reminder.ListActual))

	active := s.Active()
	require.Len(t, active, 1)
	assert.Empty(t, s.Backlog())
	assert.Equal(t, reminder.UrgencyNow, active[0].Urgency)
	assert.False(t, active[0].IsCompleted)

	// Moving to the list it is already in is a no-op.
	assert.False(t, s.ApplyOptimisticMove(1, reminder.ListActual))
}

func TestStore_Reorder(t *testing.T) {
	s := New()
	s.ReplaceSnapshot([]reminder.Reminder{
		pending(1, reminder.ListActual, 0),
		pending(2, reminder.ListActual, 1),
		pending(3, reminder.ListActual, 2),
		pending(4, reminder.ListActual, 3),
	}, nil, reminder.Stats{})

	// Omitted id 4 is appended after the explicit sequence, not dropped.
	s.ApplyReorder(reminder.ListActual, []int64{3, 1, 2})
	assert.Equal(t, []int64{3, 1, 2, 4}, ids(s.Active()))
}

func TestStore_ReorderIgnoresForeignIDs(t *testing.T) {
	s := New()
	s.ReplaceSnapshot([]reminder.Reminder{
		pending(1, reminder.ListActual, 0),
		pending(2, reminder.ListActual, 1),
		pending(9, reminder.ListBacklog, 0),
	}, nil, reminder.Stats{})

	s.ApplyReorder(reminder.ListActual, []int64{2, 9, 1, 42})
	assert.Equal(t, []int64{2, 1}, ids(s.Active()))
	assert.Equal(t, []int64{9}, ids(s.Backlog()))
}

func TestStore_ReplaceSnapshotClobbersOptimisticAdd(t *testing.T) {
	s := New()

	r := reminder.New("unconfirmed", reminder.UrgencyToday, reminder.ListActual)
	r.ID = reminder.TempID(time.Now())
	s.ApplyOptimisticAdd(r)
	require.Len(t, s.Active(), 1)

	// Authoritative snapshot lacks the temp reminder: it disappears.
	// This is the accepted sync race, asserted exactly.
	s.ReplaceSnapshot([]reminder.Reminder{pending(1, reminder.ListActual, 0)}, nil, reminder.Stats{})

	active := s.Active()
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
}

func TestStore_ReconcileAdd(t *testing.T) {
	s := New()

	tempID := reminder.TempID(time.Now())
	r := reminder.New("buy milk", reminder.UrgencyToday, reminder.ListActual)
	r.ID = tempID
	s.ApplyOptimisticAdd(r)

	confirmed := r
	confirmed.ID = 42
	s.ReconcileAdd(tempID, confirmed)

	active := s.Active()
	require.Len(t, active, 1)
	assert.Equal(t, int64(42), active[0].ID)
}

func TestStore_ReconcileAddDroppedWhenPlaceholderGone(t *testing.T) {
	s := New()

	tempID := reminder.TempID(time.Now())
	r := reminder.New("ephemeral", reminder.UrgencyToday, reminder.ListActual)
	r.ID = tempID
	s.ApplyOptimisticAdd(r)

	// Deleted before confirmation arrived; the confirmation must be dropped.
	_, ok := s.ApplyOptimisticDelete(tempID)
	require.True(t, ok)

	confirmed := r
	confirmed.ID = 42
	s.ReconcileAdd(tempID, confirmed)

	assert.Empty(t, s.Active())
	assert.Empty(t, s.Backlog())
}

func TestStore_UrgencyUpdateKeepsOrder(t *testing.T) {
	s := New()
	s.ReplaceSnapshot([]reminder.Reminder{
		pending(1, reminder.ListActual, 0),
		pending(2, reminder.ListActual, 1),
	}, nil, reminder.Stats{})

	require.True(t, s.ApplyOptimisticUrgency(2, reminder.UrgencyNow))
	assert.Equal(t, []int64{1, 2}, ids(s.Active()))

	r, ok := s.Find(2)
	require.True(t, ok)
	assert.Equal(t, reminder.UrgencyNow, r.Urgency)
}
