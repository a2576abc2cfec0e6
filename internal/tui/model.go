package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/core/notify"
	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/remind"
)

// row is one rendered line of the task list, either partition.
type row struct {
	r       reminder.Reminder
	backlog bool
}

// Model is the root bubbletea model for the task list.
type Model struct {
	app   *remind.App
	log   zerolog.Logger
	keys  KeyMap
	relay *eventbus.FocusRelay

	width  int
	height int
	cursor int

	adding     bool
	addBacklog bool
	input      textinput.Model

	notice      string
	noticeLevel notify.Level
	noticeUndo  bool

	showHelp  bool
	showStats bool
	history   *reminder.History

	focusedID *int64
}

// NewModel creates the root model.
func NewModel(app *remind.App, log zerolog.Logger) *Model {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 200

	return &Model{
		app:   app,
		log:   log.With().Str("component", "tui").Logger(),
		keys:  DefaultKeyMap(),
		relay: eventbus.NewFocusRelay(app.Bus),
		input: input,
	}
}

// Messages delivered by the event bus relay and by command completions.
type (
	refreshMsg struct{}
	noticeMsg  struct {
		level notify.Level
		text  string
		undo  bool
	}
	focusMsg       struct{ id *int64 }
	inputFocusMsg  struct{}
	clearNoticeMsg struct{}
	historyMsg     struct {
		history reminder.History
		err     error
	}
	opDoneMsg struct{ err error }
)

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// rows flattens the active list and backlog into display order.
func (m *Model) rows() []row {
	st := m.app.Reminders.Store()
	var out []row
	for _, r := range st.Active() {
		out = append(out, row{r: r})
	}
	for _, r := range st.Backlog() {
		out = append(out, row{r: r, backlog: true})
	}
	return out
}

func (m *Model) selected() (row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case refreshMsg:
		m.clampCursor()
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.noticeLevel = msg.level
		m.noticeUndo = msg.undo
		return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
			return clearNoticeMsg{}
		})

	case clearNoticeMsg:
		m.notice = ""
		m.noticeUndo = false
		return m, nil

	case focusMsg:
		m.focusedID = msg.id
		if msg.id != nil {
			for i, r := range m.rows() {
				if r.r.ID == *msg.id {
					m.cursor = i
					break
				}
			}
		}
		return m, nil

	case inputFocusMsg:
		return m, m.startAdding(false)

	case historyMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("load history")
			return m, nil
		}
		m.history = &msg.history
		m.showStats = true
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("operation failed")
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.adding {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.handleAddingKey(msg)
	}

	if m.showHelp || m.showStats {
		m.showHelp = false
		m.showStats = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.emitFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
			m.emitFocus()
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		return m, m.startAdding(false)

	case key.Matches(msg, m.keys.Complete):
		if r, ok := m.selected(); ok {
			return m, m.op(func(ctx context.Context) error {
				return m.app.Reminders.Complete(ctx, r.r.ID)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			return m, m.op(func(ctx context.Context) error {
				return m.app.Reminders.Delete(ctx, r.r.ID)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Move):
		if r, ok := m.selected(); ok {
			to := reminder.ListBacklog
			if r.backlog {
				to = reminder.ListActual
			}
			return m, m.op(func(ctx context.Context) error {
				return m.app.Reminders.Move(ctx, r.r.ID, to)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Urgency):
		if r, ok := m.selected(); ok {
			next := nextUrgency(r.r.Urgency)
			return m, m.op(func(ctx context.Context) error {
				return m.app.Reminders.SetUrgency(ctx, r.r.ID, next)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		return m, m.shiftSelected(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m, m.shiftSelected(1)

	case key.Matches(msg, m.keys.Undo):
		return m, m.op(func(ctx context.Context) error {
			_, err := m.app.Reminders.Undo(ctx)
			return err
		})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.op(func(ctx context.Context) error {
			m.app.Syncer.Tick(ctx)
			return nil
		})

	case key.Matches(msg, m.keys.Stats):
		return m, m.loadHistory()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	return m, nil
}

func (m *Model) handleAddingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case tea.KeyTab:
		m.addBacklog = !m.addBacklog
		return m, nil

	case tea.KeyEnter:
		message := m.input.Value()
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		if message == "" {
			return m, nil
		}
		list := reminder.ListActual
		if m.addBacklog {
			list = reminder.ListBacklog
		}
		return m, m.op(func(ctx context.Context) error {
			return m.app.Reminders.Add(ctx, message, reminder.UrgencyToday, list)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) startAdding(backlog bool) tea.Cmd {
	m.adding = true
	m.addBacklog = backlog
	m.input.Focus()
	return textinput.Blink
}

// shiftSelected swaps the selected reminder with its neighbor inside the
// same partition and persists the new order.
func (m *Model) shiftSelected(delta int) tea.Cmd {
	r, ok := m.selected()
	if !ok {
		return nil
	}

	st := m.app.Reminders.Store()
	part := st.Active()
	list := reminder.ListActual
	if r.backlog {
		part = st.Backlog()
		list = reminder.ListBacklog
	}

	idx := -1
	for i, it := range part {
		if it.ID == r.r.ID {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(part) {
		return nil
	}

	ids := make([]int64, len(part))
	for i, it := range part {
		ids[i] = it.ID
	}
	ids[idx], ids[target] = ids[target], ids[idx]

	m.cursor += delta
	return m.op(func(ctx context.Context) error {
		return m.app.Reminders.Reorder(ctx, list, ids)
	})
}

// op runs a service call off the update loop. Failures surface through the
// event bus as notices, so the error here is only logged.
func (m *Model) op(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return opDoneMsg{err: fn(ctx)}
	}
}

// emitFocus tells other surfaces which reminder is selected. The relay
// swallows the echo this surface gets back.
func (m *Model) emitFocus() {
	if r, ok := m.selected(); ok {
		id := r.r.ID
		m.relay.Emit(&id)
	}
}

func (m *Model) showCompleted() bool {
	return m.app.Config != nil && m.app.Config.TUI.ShowCompleted
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h, err := m.app.Reminders.History(ctx)
		return historyMsg{history: h, err: err}
	}
}

func nextUrgency(u reminder.Urgency) reminder.Urgency {
	switch u {
	case reminder.UrgencyNow:
		return reminder.UrgencyToday
	case reminder.UrgencyToday:
		return reminder.UrgencySoon
	case reminder.UrgencySoon:
		return reminder.UrgencyWhenever
	default:
		return reminder.UrgencyNow
	}
}
