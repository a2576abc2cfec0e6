// Package tui implements the interactive task list.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/colonyops/remind/internal/core/eventbus"
	"github.com/colonyops/remind/internal/remind"
)

// Run starts the task list and blocks until the user quits. The periodic
// sync scheduler runs for the lifetime of the program and is torn down with
// it.
func Run(ctx context.Context, app *remind.App, log zerolog.Logger) error {
	m := NewModel(app, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := relayBus(app, m, p)
	defer unsubscribe()

	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	go app.Syncer.Run(syncCtx)

	// A brand-new list has nothing to select; drop the user straight into
	// the add input.
	if len(app.Reminders.Store().Pending()) == 0 {
		app.Bus.PublishInputFocus(eventbus.InputFocusPayload{})
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// relayBus forwards event bus traffic into the program as messages. Focus
// events go through the model's relay so this surface never reacts to its
// own emissions. Returns a function that removes all subscriptions.
func relayBus(app *remind.App, m *Model, p *tea.Program) func() {
	unsubs := []func(){
		app.Bus.SubscribeRemindersRefreshed(func(eventbus.RemindersRefreshedPayload) {
			p.Send(refreshMsg{})
		}),
		app.Bus.SubscribeNoticePublished(func(n eventbus.NoticePublishedPayload) {
			p.Send(noticeMsg{level: n.Level, text: n.Message, undo: n.Undo})
		}),
		app.Bus.SubscribeInputFocus(func(eventbus.InputFocusPayload) {
			p.Send(inputFocusMsg{})
		}),
		m.relay.Subscribe(func(f eventbus.ReminderFocusedPayload) {
			p.Send(focusMsg{id: f.ID})
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
