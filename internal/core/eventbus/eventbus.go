package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches typed events to subscribers from a single dispatch
// goroutine. Publishing never blocks: events are dropped (with the OnDrop
// hook fired) when the buffer is full.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu                 sync.RWMutex
	remindersRefreshed []func(RemindersRefreshedPayload)
	reminderFocused    []func(ReminderFocusedPayload)
	inputFocus         []func(InputFocusPayload)
	noticePublished    []func(NoticePublishedPayload)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{ch: make(chan envelope, buffer)}
}

// Start runs the dispatch loop until ctx is cancelled. Subscribers run on
// the dispatch goroutine; a panicking subscriber is recovered and reported
// via the OnPanic hook.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// PublishRemindersRefreshed enqueues a reminders.refreshed event.
func (bus *EventBus) PublishRemindersRefreshed(p RemindersRefreshedPayload) {
	bus.send(EventRemindersRefreshed, p)
}

// SubscribeRemindersRefreshed registers fn and returns an unsubscribe func.
func (bus *EventBus) SubscribeRemindersRefreshed(fn func(RemindersRefreshedPayload)) func() {
	bus.mu.Lock()
	bus.remindersRefreshed = append(bus.remindersRefreshed, fn)
	i := len(bus.remindersRefreshed) - 1
	bus.mu.Unlock()
	bus.runOnSubscribe(EventRemindersRefreshed)
	return func() {
		bus.mu.Lock()
		bus.remindersRefreshed[i] = nil
		bus.mu.Unlock()
	}
}

// PublishReminderFocused enqueues a reminder.focused event.
func (bus *EventBus) PublishReminderFocused(p ReminderFocusedPayload) {
	bus.send(EventReminderFocused, p)
}

// SubscribeReminderFocused registers fn and returns an unsubscribe func.
func (bus *EventBus) SubscribeReminderFocused(fn func(ReminderFocusedPayload)) func() {
	bus.mu.Lock()
	bus.reminderFocused = append(bus.reminderFocused, fn)
	i := len(bus.reminderFocused) - 1
	bus.mu.Unlock()
	bus.runOnSubscribe(EventReminderFocused)
	return func() {
		bus.mu.Lock()
		bus.reminderFocused[i] = nil
		bus.mu.Unlock()
	}
}

// PublishInputFocus enqueues an input.focus event.
func (bus *EventBus) PublishInputFocus(p InputFocusPayload) {
	bus.send(EventInputFocus, p)
}

// SubscribeInputFocus registers fn and returns an unsubscribe func.
func (bus *EventBus) SubscribeInputFocus(fn func(InputFocusPayload)) func() {
	bus.mu.Lock()
	bus.inputFocus = append(bus.inputFocus, fn)
	i := len(bus.inputFocus) - 1
	bus.mu.Unlock()
	bus.runOnSubscribe(EventInputFocus)
	return func() {
		bus.mu.Lock()
		bus.inputFocus[i] = nil
		bus.mu.Unlock()
	}
}

// PublishNoticePublished enqueues a notice.published event.
func (bus *EventBus) PublishNoticePublished(p NoticePublishedPayload) {
	bus.send(EventNoticePublished, p)
}

// SubscribeNoticePublished registers fn and returns an unsubscribe func.
func (bus *EventBus) SubscribeNoticePublished(fn func(NoticePublishedPayload)) func() {
	bus.mu.Lock()
	bus.noticePublished = append(bus.noticePublished, fn)
	i := len(bus.noticePublished) - 1
	bus.mu.Unlock()
	bus.runOnSubscribe(EventNoticePublished)
	return func() {
		bus.mu.Lock()
		bus.noticePublished[i] = nil
		bus.mu.Unlock()
	}
}

func (bus *EventBus) dispatch(env envelope) {
	switch p := env.payload.(type) {
	case RemindersRefreshedPayload:
		for _, fn := range bus.snapshotRefreshed() {
			bus.call(env, func() { fn(p) })
		}
	case ReminderFocusedPayload:
		for _, fn := range bus.snapshotFocused() {
			bus.call(env, func() { fn(p) })
		}
	case InputFocusPayload:
		for _, fn := range bus.snapshotInputFocus() {
			bus.call(env, func() { fn(p) })
		}
	case NoticePublishedPayload:
		for _, fn := range bus.snapshotNotice() {
			bus.call(env, func() { fn(p) })
		}
	}
}

func (bus *EventBus) call(env envelope, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn()
}

func (bus *EventBus) snapshotRefreshed() []func(RemindersRefreshedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	out := make([]func(RemindersRefreshedPayload), 0, len(bus.remindersRefreshed))
	for _, fn := range bus.remindersRefreshed {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (bus *EventBus) snapshotFocused() []func(ReminderFocusedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	out := make([]func(ReminderFocusedPayload), 0, len(bus.reminderFocused))
	for _, fn := range bus.reminderFocused {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (bus *EventBus) snapshotInputFocus() []func(InputFocusPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	out := make([]func(InputFocusPayload), 0, len(bus.inputFocus))
	for _, fn := range bus.inputFocus {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (bus *EventBus) snapshotNotice() []func(NoticePublishedPayload) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	out := make([]func(NoticePublishedPayload), 0, len(bus.noticePublished))
	for _, fn := range bus.noticePublished {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}
