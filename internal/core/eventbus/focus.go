package eventbus

import "sync"

// FocusRelay wraps reminder.focused emission for a single UI surface.
// Every surface both emits and subscribes to the same event, so an origin
// would otherwise re-process its own emission and bounce the focus back.
// The relay marks a flag before emitting and swallows the first echo it
// receives from itself.
type FocusRelay struct {
	bus *EventBus

	mu      sync.Mutex
	echoing int
}

// NewFocusRelay creates a relay bound to bus.
func NewFocusRelay(bus *EventBus) *FocusRelay {
	return &FocusRelay{bus: bus}
}

// Emit publishes a focus event for id (nil clears focus). The next
// delivery of this event to the relay's own subscribers is suppressed.
func (r *FocusRelay) Emit(id *int64) {
	r.mu.Lock()
	r.echoing++
	r.mu.Unlock()
	r.bus.PublishReminderFocused(ReminderFocusedPayload{ID: id})
}

// Subscribe registers fn for focus events originating from other surfaces.
// Self-originated echoes are consumed silently. Returns an unsubscribe
// func.
func (r *FocusRelay) Subscribe(fn func(ReminderFocusedPayload)) func() {
	return r.bus.SubscribeReminderFocused(func(p ReminderFocusedPayload) {
		if r.consumeEcho() {
			return
		}
		fn(p)
	})
}

func (r *FocusRelay) consumeEcho() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.echoing > 0 {
		r.echoing--
		return true
	}
	return false
}
