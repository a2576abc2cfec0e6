package remind

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/core/eventbus/testbus"
	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/core/store"
)

var errGateway = errors.New("gateway unavailable")

// fakeGateway is an in-memory Gateway with scriptable failures.
type fakeGateway struct {
	mu      sync.Mutex
	nextID  int64
	pending []reminder.Reminder
	calls   []string

	failNext map[string]error
	synced   bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failNext: map[string]error{}}
}

func (g *fakeGateway) fail(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext[op] = errGateway
}

func (g *fakeGateway) called(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, op)
	if err := g.failNext[op]; err != nil {
		delete(g.failNext, op)
		return err
	}
	return nil
}

func (g *fakeGateway) callCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (g *fakeGateway) GetPendingReminders(_ context.Context) ([]reminder.Reminder, error) {
	if err := g.called("get_pending"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]reminder.Reminder, len(g.pending))
	copy(out, g.pending)
	return out, nil
}

func (g *fakeGateway) GetCompletedReminders(_ context.Context) ([]reminder.Reminder, error) {
	return nil, g.called("get_completed")
}

func (g *fakeGateway) GetCompletionStats(_ context.Context) (reminder.Stats, error) {
	return reminder.Stats{}, g.called("get_stats")
}

func (g *fakeGateway) GetHistoricalStats(_ context.Context) (reminder.History, error) {
	return reminder.History{}, g.called("get_history")
}

func (g *fakeGateway) AddReminder(_ context.Context, message string, urgency reminder.Urgency, list reminder.ListType) (int64, error) {
	if err := g.called("add"); err != nil {
		return 0, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.pending = append(g.pending, reminder.Reminder{
		ID:       g.nextID,
		Message:  message,
		Urgency:  urgency,
		ListType: list,
	})
	return g.nextID, nil
}

func (g *fakeGateway) UpdateReminder(_ context.Context, _ int64, _ string, _ reminder.Urgency) error {
	return g.called("update")
}

func (g *fakeGateway) CompleteReminder(_ context.Context, _ int64) error {
	return g.called("complete")
}

func (g *fakeGateway) UncompleteReminder(_ context.Context, _ int64) error {
	return g.called("uncomplete")
}

func (g *fakeGateway) DeleteReminder(_ context.Context, _ int64) error {
	return g.called("delete")
}

func (g *fakeGateway) MoveReminder(_ context.Context, _ int64, _ reminder.ListType) error {
	return g.called("move")
}

func (g *fakeGateway) SetUrgency(_ context.Context, _ int64, _ reminder.Urgency) error {
	return g.called("set_urgency")
}

func (g *fakeGateway) ReorderReminders(_ context.Context, _ []int64) error {
	return g.called("reorder")
}

func (g *fakeGateway) SyncOnStartup(_ context.Context) (bool, error) {
	if err := g.called("sync_on_startup"); err != nil {
		return false, err
	}
	return g.synced, nil
}

func (g *fakeGateway) RefreshFromCloud(_ context.Context) (bool, error) {
	if err := g.called("refresh_from_cloud"); err != nil {
		return false, err
	}
	return g.synced, nil
}

func (g *fakeGateway) SyncToCloudBackground(_ context.Context) error {
	return g.called("sync_background")
}

type serviceFixture struct {
	svc *ReminderService
	gw  *fakeGateway
	st  *store.Store
	bus *testbus.Bus
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	gw := newFakeGateway()
	st := store.New()
	bus := testbus.New(t)
	svc := NewReminderService(st, gw, bus.EventBus, zerolog.Nop(), 0)
	return &serviceFixture{svc: svc, gw: gw, st: st, bus: bus}
}

func TestService_AddIsVisibleBeforeConfirmation(t *testing.T) {
	f := newServiceFixture(t)
	f.gw.fail("add")

	err := f.svc.Add(context.Background(), "write report", reminder.UrgencyToday, reminder.ListActual)
	require.Error(t, err)

	// The optimistic insert happened before the gateway rejected; the
	// rollback refresh then removed it again.
	assert.Empty(t, f.st.Active())
	f.bus.AssertPublished(t, eventbus.EventNoticePublished)
}

func TestService_AddReconcilesTempID(t *testing.T) {
	f := newServiceFixture(t)

	require.NoError(t, f.svc.Add(context.Background(), "write report", reminder.UrgencyNow, reminder.ListActual))

	active := f.st.Active()
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
	assert.False(t, reminder.IsTemp(active[0].ID))
	f.bus.AssertPublished(t, eventbus.EventRemindersRefreshed)
}

func TestService_AddRejectsEmptyMessage(t *testing.T) {
	f := newServiceFixture(t)

	err := f.svc.Add(context.Background(), "   ", reminder.UrgencyToday, reminder.ListActual)
	assert.ErrorIs(t, err, reminder.ErrEmptyMessage)
	assert.Zero(t, f.gw.callCount("add"))
}

func TestService_CompleteArmsUndo(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Add(ctx, "task", reminder.UrgencyToday, reminder.ListActual))
	id := f.st.Active()[0].ID

	require.NoError(t, f.svc.Complete(ctx, id))
	assert.Empty(t, f.st.Active())
	assert.Len(t, f.st.Completed(), 1)
	assert.True(t, f.svc.CanUndo())

	done, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	require.Len(t, f.st.Active(), 1)
	assert.Equal(t, id, f.st.Active()[0].ID)
	assert.False(t, f.svc.CanUndo())
}

func TestService_UndoExpiresAfterWindow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	now := time.Now()
	f.svc.SetClock(func() time.Time { return now })

	require.NoError(t, f.svc.Add(ctx, "task", reminder.UrgencyToday, reminder.ListActual))
	require.NoError(t, f.svc.Complete(ctx, f.st.Active()[0].ID))

	now = now.Add(6 * time.Second)
	assert.False(t, f.svc.CanUndo())

	done, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestService_CompleteMissingIDIsNoop(t *testing.T) {
	f := newServiceFixture(t)

	require.NoError(t, f.svc.Complete(context.Background(), 999))
	assert.Zero(t, f.gw.callCount("complete"))
}

func TestService_CompleteFailureRollsBack(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Add(ctx, "task", reminder.UrgencyToday, reminder.ListActual))
	id := f.st.Active()[0].ID

	f.gw.fail("complete")
	require.Error(t, f.svc.Complete(ctx, id))

	// Rollback refresh restored the pending reminder from the gateway.
	require.Len(t, f.st.Active(), 1)
	assert.Equal(t, id, f.st.Active()[0].ID)
	assert.Empty(t, f.st.Completed())
	assert.False(t, f.svc.CanUndo())
}

func TestService_DeleteUndoReadds(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Add(ctx, "keep me", reminder.UrgencySoon, reminder.ListBacklog))
	id := f.st.Backlog()[0].ID

	require.NoError(t, f.svc.Delete(ctx, id))
	assert.Empty(t, f.st.Backlog())

	done, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	restored := f.st.Backlog()
	require.Len(t, restored, 1)
	assert.Equal(t, "keep me", restored[0].Message)
	assert.Equal(t, reminder.UrgencySoon, restored[0].Urgency)
}

func TestService_SettleDelayDefersRemoval(t *testing.T) {
	gw := newFakeGateway()
	st := store.New()
	bus := testbus.New(t)
	svc := NewReminderService(st, gw, bus.EventBus, zerolog.Nop(), 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "task", reminder.UrgencyToday, reminder.ListActual))
	id := st.Active()[0].ID

	require.NoError(t, svc.Complete(ctx, id))

	// Still visible during the settle window, but marked as leaving.
	assert.Len(t, st.Active(), 1)
	assert.True(t, svc.Leaving(id))

	assert.Eventually(t, func() bool {
		return len(st.Active()) == 0 && !svc.Leaving(id)
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, st.Completed(), 1)
}

func TestService_UndoDuringSettleWindowKeepsPending(t *testing.T) {
	gw := newFakeGateway()
	st := store.New()
	bus := testbus.New(t)
	svc := NewReminderService(st, gw, bus.EventBus, zerolog.Nop(), 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "task", reminder.UrgencyToday, reminder.ListActual))
	id := st.Active()[0].ID

	require.NoError(t, svc.Complete(ctx, id))
	require.True(t, svc.Leaving(id))

	// Undo before the settle transformation lands: the deferred complete
	// must be cancelled, not race the inverse.
	done, err := svc.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, svc.Leaving(id))

	time.Sleep(150 * time.Millisecond)

	require.Len(t, st.Active(), 1)
	assert.Equal(t, id, st.Active()[0].ID)
	assert.Empty(t, st.Completed())
	assert.Equal(t, reminder.Stats{}, st.Stats())
	assert.Equal(t, 1, gw.callCount("uncomplete"))
}

func TestService_MoveAndUrgencySkipStaleIDs(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Move(ctx, 42, reminder.ListActual))
	require.NoError(t, f.svc.SetUrgency(ctx, 42, reminder.UrgencyNow))

	assert.Zero(t, f.gw.callCount("move"))
	assert.Zero(t, f.gw.callCount("set_urgency"))
}

func TestService_ReorderFailureResyncs(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Add(ctx, "a", reminder.UrgencyToday, reminder.ListActual))
	require.NoError(t, f.svc.Add(ctx, "b", reminder.UrgencyToday, reminder.ListActual))

	f.gw.fail("reorder")
	err := f.svc.Reorder(ctx, reminder.ListActual, []int64{1, 2})
	require.Error(t, err)
	assert.Positive(t, f.gw.callCount("get_pending"))
}

func TestService_RefreshPublishesEvent(t *testing.T) {
	f := newServiceFixture(t)

	require.NoError(t, f.svc.Refresh(context.Background()))
	f.bus.AssertPublished(t, eventbus.EventRemindersRefreshed)
}
