// Package gateway defines the command boundary between the in-memory
// reminder state and durable storage. The services treat implementations
// as an opaque asynchronous RPC surface: every call can fail, and callers
// reconcile by re-pulling the authoritative snapshot.
package gateway

import (
	"context"

	"github.com/colonyops/remind/internal/core/reminder"
)

// Gateway executes named operations against durable storage.
type Gateway interface {
	// GetPendingReminders returns all pending reminders sorted by
	// SortOrder ascending.
	GetPendingReminders(ctx context.Context) ([]reminder.Reminder, error)

	// GetCompletedReminders returns completed reminders, most recently
	// completed first.
	GetCompletedReminders(ctx context.Context) ([]reminder.Reminder, error)

	// GetCompletionStats returns today/this-week completion counters.
	GetCompletionStats(ctx context.Context) (reminder.Stats, error)

	// GetHistoricalStats aggregates completion activity over time.
	GetHistoricalStats(ctx context.Context) (reminder.History, error)

	// AddReminder persists a new reminder and returns its assigned id.
	AddReminder(ctx context.Context, message string, urgency reminder.Urgency, list reminder.ListType) (int64, error)

	// UpdateReminder rewrites the message and urgency of a pending reminder.
	UpdateReminder(ctx context.Context, id int64, message string, urgency reminder.Urgency) error

	// CompleteReminder marks a pending reminder completed.
	CompleteReminder(ctx context.Context, id int64) error

	// UncompleteReminder returns a completed reminder to pending.
	UncompleteReminder(ctx context.Context, id int64) error

	// DeleteReminder removes a reminder from either partition.
	DeleteReminder(ctx context.Context, id int64) error

	// MoveReminder changes the list a pending reminder belongs to.
	MoveReminder(ctx context.Context, id int64, to reminder.ListType) error

	// SetUrgency updates the urgency band of a pending reminder.
	SetUrgency(ctx context.Context, id int64, urgency reminder.Urgency) error

	// ReorderReminders assigns SortOrder = index for each pending id in
	// orderedIDs.
	ReorderReminders(ctx context.Context, orderedIDs []int64) error

	// SyncOnStartup performs the initial two-way cloud merge. Returns true
	// when remote data was merged.
	SyncOnStartup(ctx context.Context) (bool, error)

	// RefreshFromCloud pulls and merges remote changes. Returns true when
	// remote data was merged.
	RefreshFromCloud(ctx context.Context) (bool, error)

	// SyncToCloudBackground pushes local state to the cloud. Failures are
	// for the caller to log, not surface.
	SyncToCloudBackground(ctx context.Context) error
}
