// Package notify defines transient user-facing notices.
package notify

import "time"

// Level represents the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a dismissible transient message shown to the user, such as
// "Failed to add task" after a remote call rejection.
type Notice struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}
