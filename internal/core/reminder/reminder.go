// Package reminder defines the reminder domain model.
package reminder

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a reminder does not exist.
	ErrNotFound = errors.New("reminder not found")
	// ErrEmptyMessage is returned when a reminder message is blank.
	ErrEmptyMessage = errors.New("reminder message cannot be empty")
)

// Urgency is the coarse priority band of a reminder, independent of due time.
type Urgency string

const (
	UrgencyNow      Urgency = "now"
	UrgencyToday    Urgency = "today"
	UrgencySoon     Urgency = "soon"
	UrgencyWhenever Urgency = "whenever"
)

// IsValid reports whether u is a known urgency band.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyNow, UrgencyToday, UrgencySoon, UrgencyWhenever:
		return true
	}
	return false
}

// ListType identifies which working list a pending reminder belongs to.
type ListType string

const (
	// ListActual is the small working set of in-progress tasks.
	ListActual ListType = "actual"
	// ListBacklog holds tasks deferred out of the active working set.
	ListBacklog ListType = "backlog"
)

// IsValid reports whether l is a known list type.
func (l ListType) IsValid() bool {
	return l == ListActual || l == ListBacklog
}

// Reminder is a single task. SortOrder defines manual ordering within a
// list partition; lower values are shown first. It is not necessarily
// contiguous.
type Reminder struct {
	ID          int64      `json:"id"`
	Message     string     `json:"message"`
	Urgency     Urgency    `json:"urgency"`
	ListType    ListType   `json:"list_type"`
	SortOrder   int64      `json:"sort_order"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// New returns an unsaved reminder with defaults applied. The ID is zero
// until storage assigns one.
func New(message string, urgency Urgency, list ListType) Reminder {
	if urgency == "" {
		urgency = UrgencyToday
	}
	if list == "" {
		list = ListActual
	}
	return Reminder{
		Message:   message,
		Urgency:   urgency,
		ListType:  list,
		CreatedAt: time.Now().UTC(),
	}
}

// TempID returns a placeholder id for a locally created reminder that has
// not yet been confirmed by storage. Placeholder ids are negative so they
// can never collide with storage-assigned ids.
func TempID(now time.Time) int64 {
	return -now.UnixMilli()
}

// IsTemp reports whether id is a local placeholder id.
func IsTemp(id int64) bool {
	return id < 0
}

// Touched returns the most recent timestamp on r, used by the cloud merge
// to decide which of two versions of the same reminder is newer.
func (r Reminder) Touched() time.Time {
	if r.CompletedAt != nil {
		return *r.CompletedAt
	}
	return r.CreatedAt
}

// Stats holds completion counters derived from the completed partition.
type Stats struct {
	CompletedToday    int `json:"completed_today"`
	CompletedThisWeek int `json:"completed_this_week"`
}

// DayCount is a single day's completion count for historical stats.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// History aggregates completion activity over time.
type History struct {
	Daily       []DayCount `json:"daily"`   // last 14 days, oldest first
	Hourly      [24]int    `json:"hourly"`  // completions per UTC hour
	Weekday     [7]int     `json:"weekday"` // completions per weekday, 0=Monday
	BacklogSize int        `json:"backlog_size"`
}
