// Package eventbus provides a typed publish/subscribe event bus relaying
// notifications between UI surfaces (list view, quick-add input) and the
// reminder services.
package eventbus

import "github.com/colonyops/remind/internal/core/notify"

// Event names all bus topics.
type Event string

const (
	// Keep list sorted A-Z
	EventInputFocus         Event = "input.focus"
	EventNoticePublished    Event = "notice.published"
	EventReminderFocused    Event = "reminder.focused"
	EventRemindersRefreshed Event = "reminders.refreshed"
)

// RemindersRefreshedPayload is emitted after a mutation is confirmed or a
// sync merge lands; subscribers re-pull the store.
type RemindersRefreshedPayload struct{}

// ReminderFocusedPayload is emitted to scroll a UI surface to a reminder.
// A nil ID clears the focus.
type ReminderFocusedPayload struct {
	ID *int64
}

// InputFocusPayload is emitted to move keyboard focus to the add input.
type InputFocusPayload struct{}

// NoticePublishedPayload carries a transient user-facing notice.
type NoticePublishedPayload struct {
	Level   notify.Level
	Message string
	Undo    bool // notice offers a bounded undo window
}
