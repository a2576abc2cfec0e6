package tui

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remind/internal/core/config"
	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/core/eventbus/testbus"
	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/core/store"
	"github.com/colonyops/remind/internal/remind"
	"github.com/colonyops/remind/pkg/tuitest"
)

// stubGateway accepts every operation and hands out sequential ids.
type stubGateway struct {
	nextID int64
}

func (g *stubGateway) GetPendingReminders(context.Context) ([]reminder.Reminder, error) {
	return nil, nil
}

func (g *stubGateway) GetCompletedReminders(context.Context) ([]reminder.Reminder, error) {
	return nil, nil
}

func (g *stubGateway) GetCompletionStats(context.Context) (reminder.Stats, error) {
	return reminder.Stats{}, nil
}

func (g *stubGateway) GetHistoricalStats(context.Context) (reminder.History, error) {
	return reminder.History{BacklogSize: 3}, nil
}

func (g *stubGateway) AddReminder(context.Context, string, reminder.Urgency, reminder.ListType) (int64, error) {
	return atomic.AddInt64(&g.nextID, 1), nil
}

func (g *stubGateway) UpdateReminder(context.Context, int64, string, reminder.Urgency) error {
	return nil
}
func (g *stubGateway) CompleteReminder(context.Context, int64) error   { return nil }
func (g *stubGateway) UncompleteReminder(context.Context, int64) error { return nil }
func (g *stubGateway) DeleteReminder(context.Context, int64) error     { return nil }
func (g *stubGateway) MoveReminder(context.Context, int64, reminder.ListType) error {
	return nil
}
func (g *stubGateway) SetUrgency(context.Context, int64, reminder.Urgency) error { return nil }
func (g *stubGateway) ReorderReminders(context.Context, []int64) error           { return nil }
func (g *stubGateway) SyncOnStartup(context.Context) (bool, error)               { return false, nil }
func (g *stubGateway) RefreshFromCloud(context.Context) (bool, error)            { return false, nil }
func (g *stubGateway) SyncToCloudBackground(context.Context) error               { return nil }

func newTestModel(t *testing.T) (*Model, *store.Store) {
	m, st, _ := newTestModelWithConfig(t, nil)
	return m, st
}

func newTestModelWithConfig(t *testing.T, cfg *config.Config) (*Model, *store.Store, *testbus.Bus) {
	t.Helper()
	st := store.New()
	bus := testbus.New(t)
	svc := remind.NewReminderService(st, &stubGateway{}, bus.EventBus, zerolog.Nop(), 0)
	app := remind.NewApp(svc, nil, bus.EventBus, cfg, nil)

	m := NewModel(app, zerolog.Nop())
	m.Update(tuitest.WindowSize(80, 24))
	return m, st, bus
}

// step feeds a message and runs any returned command synchronously.
// Cursor blink messages are dropped so the loop never waits on a tick.
func step(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	for i := 0; cmd != nil && i < 8; i++ {
		out := cmd()
		if out == nil {
			return
		}
		if _, ok := out.(cursor.BlinkMsg); ok {
			return
		}
		_, cmd = m.Update(out)
	}
}

func typeString(t *testing.T, m *Model, s string) {
	t.Helper()
	for _, r := range s {
		step(t, m, tuitest.KeyPress(r))
	}
}

func TestModel_AddTask(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	assert.True(t, m.adding)

	typeString(t, m, "ship it")
	step(t, m, tuitest.KeyEnter())

	require.Len(t, st.Active(), 1)
	assert.Equal(t, "ship it", st.Active()[0].Message)
	assert.False(t, m.adding)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "ship it")
}

func TestModel_AddToBacklogWithTab(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	typeString(t, m, "later")
	step(t, m, tuitest.KeyEnter())

	assert.Empty(t, st.Active())
	require.Len(t, st.Backlog(), 1)
	assert.Equal(t, "later", st.Backlog()[0].Message)
}

func TestModel_EscCancelsAdd(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "never mind")
	step(t, m, tuitest.KeyEsc())

	assert.False(t, m.adding)
	assert.Empty(t, st.Active())
}

func TestModel_CompleteSelected(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "task one")
	step(t, m, tuitest.KeyEnter())

	step(t, m, tuitest.KeyEnter())

	assert.Empty(t, st.Active())
	require.Len(t, st.Completed(), 1)
}

func TestModel_UndoAfterComplete(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "task one")
	step(t, m, tuitest.KeyEnter())
	step(t, m, tuitest.KeyEnter())
	require.Empty(t, st.Active())

	step(t, m, tuitest.KeyPress('u'))
	require.Len(t, st.Active(), 1)
	assert.Empty(t, st.Completed())
}

func TestModel_ReorderMovesSelectionDown(t *testing.T) {
	m, st := newTestModel(t)

	for _, s := range []string{"first", "second"} {
		step(t, m, tuitest.KeyPress('a'))
		typeString(t, m, s)
		step(t, m, tuitest.KeyEnter())
	}
	// Newest on top: [second, first].
	require.Equal(t, "second", st.Active()[0].Message)

	step(t, m, tuitest.KeyPress('J'))

	assert.Equal(t, "first", st.Active()[0].Message)
	assert.Equal(t, "second", st.Active()[1].Message)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_MoveBetweenLists(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "task")
	step(t, m, tuitest.KeyEnter())

	step(t, m, tuitest.KeyPress('m'))
	assert.Empty(t, st.Active())
	require.Len(t, st.Backlog(), 1)

	step(t, m, tuitest.KeyPress('m'))
	require.Len(t, st.Active(), 1)
	assert.Empty(t, st.Backlog())
}

func TestModel_HelpTogglesAndCloses(t *testing.T) {
	m, _ := newTestModel(t)

	step(t, m, tuitest.KeyPress('?'))
	assert.True(t, m.showHelp)
	assert.Contains(t, tuitest.StripANSI(m.View()), "Keys")

	step(t, m, tuitest.KeyPress('x'))
	assert.False(t, m.showHelp)
}

func TestModel_NoticeRendersAndClears(t *testing.T) {
	m, _ := newTestModel(t)

	// Update directly; the returned command is the 4s clear tick.
	_, _ = m.Update(noticeMsg{text: "Task completed", undo: true})
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Task completed")
	assert.Contains(t, view, "(u to undo)")

	_, _ = m.Update(clearNoticeMsg{})
	assert.NotContains(t, tuitest.StripANSI(m.View()), "Task completed")
}

func TestModel_CursorMoveEmitsFocus(t *testing.T) {
	m, st, bus := newTestModelWithConfig(t, nil)

	for _, s := range []string{"one", "two"} {
		step(t, m, tuitest.KeyPress('a'))
		typeString(t, m, s)
		step(t, m, tuitest.KeyEnter())
	}

	step(t, m, tuitest.KeyDown())
	require.Equal(t, 1, m.cursor)
	bus.AssertPublished(t, eventbus.EventReminderFocused)

	selected := st.Active()[1].ID
	var got *int64
	for _, e := range bus.Events() {
		if p, ok := e.Payload.(eventbus.ReminderFocusedPayload); ok {
			got = p.ID
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, selected, *got)
}

func TestModel_InputFocusOpensAdd(t *testing.T) {
	m, _ := newTestModel(t)

	step(t, m, inputFocusMsg{})
	assert.True(t, m.adding)
}

func TestModel_ShowCompletedSection(t *testing.T) {
	cfg := config.DefaultConfig()
	m, st, _ := newTestModelWithConfig(t, &cfg)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "ship it")
	step(t, m, tuitest.KeyEnter())
	step(t, m, tuitest.KeyEnter())
	require.Len(t, st.Completed(), 1)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "done")
	assert.Contains(t, view, "ship it")
}

func TestModel_CompletedSectionHiddenByDefault(t *testing.T) {
	m, st := newTestModel(t)

	step(t, m, tuitest.KeyPress('a'))
	typeString(t, m, "ship it")
	step(t, m, tuitest.KeyEnter())
	step(t, m, tuitest.KeyEnter())
	require.Len(t, st.Completed(), 1)

	assert.NotContains(t, tuitest.StripANSI(m.View()), "ship it")
}

func TestModel_FocusMessageMovesCursor(t *testing.T) {
	m, st := newTestModel(t)

	for _, s := range []string{"a", "b", "c"} {
		step(t, m, tuitest.KeyPress('a'))
		typeString(t, m, s)
		step(t, m, tuitest.KeyEnter())
	}
	m.cursor = 0

	target := st.Active()[2].ID
	step(t, m, focusMsg{id: &target})
	assert.Equal(t, 2, m.cursor)
}
