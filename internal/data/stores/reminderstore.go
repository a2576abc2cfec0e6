// Package stores provides SQLite-backed gateway implementations.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/remind/internal/core/reminder"
	"github.com/colonyops/remind/internal/data/cloud"
	"github.com/colonyops/remind/internal/data/db"
	"github.com/colonyops/remind/internal/gateway"
)

const reminderCols = "id, message, urgency, list_type, sort_order, is_completed, created_at, completed_at"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ReminderStore implements gateway.Gateway over SQLite plus an optional
// cloud document store. It owns the actual-list capacity rules: adding or
// moving into a full actual list bumps the least important item to
// backlog, and completing or deleting an actual item promotes the best
// backlog item into the freed slot.
type ReminderStore struct {
	db        *db.DB
	cloud     *cloud.Client
	maxActual int
	log       zerolog.Logger
	now       func() time.Time
}

var _ gateway.Gateway = (*ReminderStore)(nil)

// writeTx runs fn in a transaction, retrying once when another writer held
// the database past the busy timeout.
func (s *ReminderStore) writeTx(ctx context.Context, fn func(*sql.Tx) error) error {
	err := s.db.WithTx(ctx, fn)
	if IsBusyError(err) {
		s.log.Warn().Msg("database busy, retrying write")
		err = s.db.WithTx(ctx, fn)
	}
	return err
}

// NewReminderStore creates a SQLite-backed reminder gateway.
func NewReminderStore(database *db.DB, cloudClient *cloud.Client, maxActual int, logger zerolog.Logger) *ReminderStore {
	return &ReminderStore{
		db:        database,
		cloud:     cloudClient,
		maxActual: maxActual,
		log:       logger,
		now:       time.Now,
	}
}

// SetClock overrides the store's clock for tests.
func (s *ReminderStore) SetClock(now func() time.Time) {
	s.now = now
}

// GetPendingReminders returns all pending reminders sorted by sort order.
func (s *ReminderStore) GetPendingReminders(ctx context.Context) ([]reminder.Reminder, error) {
	return s.list(ctx, "SELECT "+reminderCols+" FROM reminders WHERE is_completed = 0 ORDER BY sort_order ASC")
}

// GetCompletedReminders returns completed reminders, newest first.
func (s *ReminderStore) GetCompletedReminders(ctx context.Context) ([]reminder.Reminder, error) {
	return s.list(ctx, "SELECT "+reminderCols+" FROM reminders WHERE is_completed = 1 ORDER BY completed_at DESC")
}

// GetCompletionStats counts completions since UTC midnight and since the
// start of the week (Monday 00:00 UTC).
func (s *ReminderStore) GetCompletionStats(ctx context.Context) (reminder.Stats, error) {
	now := s.now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := todayStart.AddDate(0, 0, -daysFromMonday(now.Weekday()))

	var stats reminder.Stats
	row := s.db.Conn().QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN completed_at >= ? THEN 1 END),
			COUNT(CASE WHEN completed_at >= ? THEN 1 END)
		FROM reminders WHERE is_completed = 1`,
		todayStart.UnixNano(), weekStart.UnixNano())
	if err := row.Scan(&stats.CompletedToday, &stats.CompletedThisWeek); err != nil {
		return reminder.Stats{}, fmt.Errorf("count completions: %w", err)
	}
	return stats, nil
}

// GetHistoricalStats aggregates completion activity: daily counts for the
// last 14 days, hourly and weekday distributions, and backlog size.
func (s *ReminderStore) GetHistoricalStats(ctx context.Context) (reminder.History, error) {
	completed, err := s.GetCompletedReminders(ctx)
	if err != nil {
		return reminder.History{}, err
	}

	var h reminder.History
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := make(map[string]int)
	for _, r := range completed {
		if r.CompletedAt == nil {
			continue
		}
		at := r.CompletedAt.UTC()
		counts[at.Format("2006-01-02")]++
		h.Hourly[at.Hour()]++
		h.Weekday[daysFromMonday(at.Weekday())]++
	}

	for daysAgo := 13; daysAgo >= 0; daysAgo-- {
		date := today.AddDate(0, 0, -daysAgo).Format("2006-01-02")
		h.Daily = append(h.Daily, reminder.DayCount{Date: date, Count: counts[date]})
	}

	row := s.db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminders WHERE is_completed = 0 AND list_type = ?", string(reminder.ListBacklog))
	if err := row.Scan(&h.BacklogSize); err != nil {
		return reminder.History{}, fmt.Errorf("count backlog: %w", err)
	}

	return h, nil
}

// AddReminder inserts a new reminder and returns its assigned id. New
// actual items go on top (sort order 0, everything else shifted down); new
// backlog items go above the current backlog top so recently deferred work
// surfaces first.
func (s *ReminderStore) AddReminder(ctx context.Context, message string, urgency reminder.Urgency, list reminder.ListType) (int64, error) {
	var id int64
	err := s.writeTx(ctx, func(tx *sql.Tx) error {
		var sortOrder int64
		if list == reminder.ListActual {
			n, err := s.countList(ctx, tx, reminder.ListActual)
			if err != nil {
				return err
			}
			if n >= s.maxActual {
				if err := s.bumpLeastImportant(ctx, tx); err != nil {
					return err
				}
			}
			if err := s.shiftActualDown(ctx, tx); err != nil {
				return err
			}
			sortOrder = 0
		} else {
			minOrder, err := s.minOrder(ctx, tx, reminder.ListBacklog)
			if err != nil {
				return err
			}
			sortOrder = minOrder - 1
		}

		next, err := s.nextID(ctx, tx)
		if err != nil {
			return err
		}
		id = next

		_, err = tx.ExecContext(ctx,
			`INSERT INTO reminders (id, message, urgency, list_type, sort_order, is_completed, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)`,
			id, message, string(urgency), string(list), sortOrder, s.now().UTC().UnixNano())
		if err != nil {
			return fmt.Errorf("insert reminder: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateReminder rewrites the message and urgency of a pending reminder.
func (s *ReminderStore) UpdateReminder(ctx context.Context, id int64, message string, urgency reminder.Urgency) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE reminders SET message = ?, urgency = ? WHERE id = ? AND is_completed = 0",
		message, string(urgency), id)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireRow(res)
}

// CompleteReminder marks a pending reminder completed and promotes a
// backlog item if an actual slot was freed.
func (s *ReminderStore) CompleteReminder(ctx context.Context, id int64) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		list, err := s.pendingList(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE reminders SET is_completed = 1, completed_at = ? WHERE id = ?",
			s.now().UTC().UnixNano(), id)
		if err != nil {
			return fmt.Errorf("complete reminder: %w", err)
		}

		if list == reminder.ListActual {
			return s.promoteFromBacklog(ctx, tx)
		}
		return nil
	})
}

// UncompleteReminder returns a completed reminder to pending: to the top
// of the actual list when there is room, otherwise to the top of backlog.
func (s *ReminderStore) UncompleteReminder(ctx context.Context, id int64) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		var exists int
		row := tx.QueryRowContext(ctx, "SELECT 1 FROM reminders WHERE id = ? AND is_completed = 1", id)
		if err := row.Scan(&exists); err != nil {
			if IsNotFoundError(err) {
				return reminder.ErrNotFound
			}
			return fmt.Errorf("find completed reminder: %w", err)
		}

		list := reminder.ListActual
		var sortOrder int64
		n, err := s.countList(ctx, tx, reminder.ListActual)
		if err != nil {
			return err
		}
		if n < s.maxActual {
			if err := s.shiftActualDown(ctx, tx); err != nil {
				return err
			}
			sortOrder = 0
		} else {
			list = reminder.ListBacklog
			minOrder, err := s.minOrder(ctx, tx, reminder.ListBacklog)
			if err != nil {
				return err
			}
			sortOrder = minOrder - 1
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE reminders SET is_completed = 0, completed_at = NULL, list_type = ?, sort_order = ? WHERE id = ?",
			string(list), sortOrder, id)
		if err != nil {
			return fmt.Errorf("uncomplete reminder: %w", err)
		}
		return nil
	})
}

// DeleteReminder removes a reminder from either partition and promotes a
// backlog item if an actual slot was freed.
func (s *ReminderStore) DeleteReminder(ctx context.Context, id int64) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		var list string
		var isCompleted bool
		row := tx.QueryRowContext(ctx, "SELECT list_type, is_completed FROM reminders WHERE id = ?", id)
		if err := row.Scan(&list, &isCompleted); err != nil {
			if IsNotFoundError(err) {
				return reminder.ErrNotFound
			}
			return fmt.Errorf("find reminder: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete reminder: %w", err)
		}

		if !isCompleted && reminder.ListType(list) == reminder.ListActual {
			return s.promoteFromBacklog(ctx, tx)
		}
		return nil
	})
}

// MoveReminder changes the list of a pending reminder, enforcing the
// actual-list capacity. Moving to the current list is a no-op.
func (s *ReminderStore) MoveReminder(ctx context.Context, id int64, to reminder.ListType) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		current, err := s.pendingList(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == to {
			return nil
		}

		var sortOrder int64
		if to == reminder.ListActual {
			n, err := s.countList(ctx, tx, reminder.ListActual)
			if err != nil {
				return err
			}
			if n >= s.maxActual {
				if err := s.bumpLeastImportant(ctx, tx); err != nil {
					return err
				}
			}
			if err := s.shiftActualDown(ctx, tx); err != nil {
				return err
			}
			sortOrder = 0
		} else {
			minOrder, err := s.minOrder(ctx, tx, reminder.ListBacklog)
			if err != nil {
				return err
			}
			sortOrder = minOrder - 1
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE reminders SET list_type = ?, sort_order = ? WHERE id = ?",
			string(to), sortOrder, id)
		if err != nil {
			return fmt.Errorf("move reminder: %w", err)
		}
		return nil
	})
}

// SetUrgency updates the urgency band of a pending reminder.
func (s *ReminderStore) SetUrgency(ctx context.Context, id int64, urgency reminder.Urgency) error {
	res, err := s.db.Conn().ExecContext(ctx,
		"UPDATE reminders SET urgency = ? WHERE id = ? AND is_completed = 0",
		string(urgency), id)
	if err != nil {
		return fmt.Errorf("set urgency: %w", err)
	}
	return requireRow(res)
}

// ReorderReminders assigns sort order = index for each pending id in
// orderedIDs. Unknown ids are skipped.
func (s *ReminderStore) ReorderReminders(ctx context.Context, orderedIDs []int64) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			_, err := tx.ExecContext(ctx,
				"UPDATE reminders SET sort_order = ? WHERE id = ? AND is_completed = 0",
				int64(i), id)
			if err != nil {
				return fmt.Errorf("reorder reminder %d: %w", id, err)
			}
		}
		return nil
	})
}

// SyncOnStartup merges local and remote state and pushes the result back.
func (s *ReminderStore) SyncOnStartup(ctx context.Context) (bool, error) {
	return s.syncWithCloud(ctx)
}

// RefreshFromCloud pulls remote changes and merges them into local state.
func (s *ReminderStore) RefreshFromCloud(ctx context.Context) (bool, error) {
	return s.syncWithCloud(ctx)
}

// SyncToCloudBackground pushes the local document to the remote store.
func (s *ReminderStore) SyncToCloudBackground(ctx context.Context) error {
	if !s.cloud.Enabled() {
		return nil
	}
	doc, err := s.localDocument(ctx)
	if err != nil {
		return err
	}
	if err := s.cloud.Save(ctx, doc); err != nil {
		return fmt.Errorf("push to cloud: %w", err)
	}
	return nil
}

func (s *ReminderStore) syncWithCloud(ctx context.Context) (bool, error) {
	if !s.cloud.Enabled() {
		return false, nil
	}

	local, err := s.localDocument(ctx)
	if err != nil {
		return false, err
	}

	remote, err := s.cloud.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load from cloud: %w", err)
	}

	merged := cloud.Merge(local, remote)
	if err := s.replaceAll(ctx, merged); err != nil {
		return false, err
	}

	// Push the merged document back so both sides converge. Best effort:
	// the local merge already succeeded.
	if err := s.cloud.Save(ctx, merged); err != nil {
		s.log.Warn().Err(err).Msg("failed to push merged data to cloud")
	}

	return true, nil
}

func (s *ReminderStore) localDocument(ctx context.Context) (cloud.Document, error) {
	pending, err := s.GetPendingReminders(ctx)
	if err != nil {
		return cloud.Document{}, err
	}
	completed, err := s.GetCompletedReminders(ctx)
	if err != nil {
		return cloud.Document{}, err
	}
	return cloud.Document{Pending: pending, Completed: completed}, nil
}

// replaceAll overwrites the reminders table with the given document.
func (s *ReminderStore) replaceAll(ctx context.Context, doc cloud.Document) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reminders"); err != nil {
			return fmt.Errorf("clear reminders: %w", err)
		}
		for _, r := range append(append([]reminder.Reminder(nil), doc.Pending...), doc.Completed...) {
			var completedAt any
			if r.CompletedAt != nil {
				completedAt = r.CompletedAt.UTC().UnixNano()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO reminders (id, message, urgency, list_type, sort_order, is_completed, created_at, completed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.Message, string(r.Urgency), string(r.ListType), r.SortOrder,
				r.IsCompleted, r.CreatedAt.UTC().UnixNano(), completedAt)
			if err != nil {
				return fmt.Errorf("insert reminder %d: %w", r.ID, err)
			}
		}
		return nil
	})
}

// bumpLeastImportant moves the actual item with the highest sort order to
// the top of backlog, freeing an actual slot.
func (s *ReminderStore) bumpLeastImportant(ctx context.Context, tx *sql.Tx) error {
	var id int64
	row := tx.QueryRowContext(ctx,
		`SELECT id FROM reminders WHERE is_completed = 0 AND list_type = ?
		ORDER BY sort_order DESC LIMIT 1`, string(reminder.ListActual))
	if err := row.Scan(&id); err != nil {
		if IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("find least important: %w", err)
	}

	minOrder, err := s.minOrder(ctx, tx, reminder.ListBacklog)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE reminders SET list_type = ?, sort_order = ? WHERE id = ?",
		string(reminder.ListBacklog), minOrder-1, id)
	if err != nil {
		return fmt.Errorf("bump to backlog: %w", err)
	}
	return nil
}

// promoteFromBacklog moves the best backlog item to the end of the actual
// list when there is room.
func (s *ReminderStore) promoteFromBacklog(ctx context.Context, tx *sql.Tx) error {
	n, err := s.countList(ctx, tx, reminder.ListActual)
	if err != nil {
		return err
	}
	if n >= s.maxActual {
		return nil
	}

	var id int64
	row := tx.QueryRowContext(ctx,
		`SELECT id FROM reminders WHERE is_completed = 0 AND list_type = ?
		ORDER BY sort_order ASC LIMIT 1`, string(reminder.ListBacklog))
	if err := row.Scan(&id); err != nil {
		if IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("find backlog head: %w", err)
	}

	var maxOrder sql.NullInt64
	row = tx.QueryRowContext(ctx,
		"SELECT MAX(sort_order) FROM reminders WHERE is_completed = 0 AND list_type = ?",
		string(reminder.ListActual))
	if err := row.Scan(&maxOrder); err != nil {
		return fmt.Errorf("max actual order: %w", err)
	}
	next := int64(0)
	if maxOrder.Valid {
		next = maxOrder.Int64 + 1
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE reminders SET list_type = ?, sort_order = ? WHERE id = ?",
		string(reminder.ListActual), next, id)
	if err != nil {
		return fmt.Errorf("promote from backlog: %w", err)
	}
	return nil
}

func (s *ReminderStore) pendingList(ctx context.Context, q querier, id int64) (reminder.ListType, error) {
	var list string
	row := q.QueryRowContext(ctx, "SELECT list_type FROM reminders WHERE id = ? AND is_completed = 0", id)
	if err := row.Scan(&list); err != nil {
		if IsNotFoundError(err) {
			return "", reminder.ErrNotFound
		}
		return "", fmt.Errorf("find pending reminder: %w", err)
	}
	return reminder.ListType(list), nil
}

func (s *ReminderStore) countList(ctx context.Context, q querier, list reminder.ListType) (int, error) {
	var n int
	row := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reminders WHERE is_completed = 0 AND list_type = ?", string(list))
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s list: %w", list, err)
	}
	return n, nil
}

func (s *ReminderStore) minOrder(ctx context.Context, q querier, list reminder.ListType) (int64, error) {
	var minOrder sql.NullInt64
	row := q.QueryRowContext(ctx,
		"SELECT MIN(sort_order) FROM reminders WHERE is_completed = 0 AND list_type = ?", string(list))
	if err := row.Scan(&minOrder); err != nil {
		return 0, fmt.Errorf("min %s order: %w", list, err)
	}
	if !minOrder.Valid {
		return 0, nil
	}
	return minOrder.Int64, nil
}

func (s *ReminderStore) shiftActualDown(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE reminders SET sort_order = sort_order + 1 WHERE is_completed = 0 AND list_type = ?",
		string(reminder.ListActual))
	if err != nil {
		return fmt.Errorf("shift actual list: %w", err)
	}
	return nil
}

func (s *ReminderStore) nextID(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	row := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM reminders")
	if err := row.Scan(&next); err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return next, nil
}

func (s *ReminderStore) list(ctx context.Context, query string, args ...any) ([]reminder.Reminder, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]reminder.Reminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminders: %w", err)
	}
	return out, nil
}

func scanReminder(rows *sql.Rows) (reminder.Reminder, error) {
	var (
		r           reminder.Reminder
		urgency     string
		list        string
		createdAt   int64
		completedAt sql.NullInt64
	)
	err := rows.Scan(&r.ID, &r.Message, &urgency, &list, &r.SortOrder, &r.IsCompleted, &createdAt, &completedAt)
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("scan reminder: %w", err)
	}
	r.Urgency = reminder.Urgency(urgency)
	r.ListType = reminder.ListType(list)
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	if completedAt.Valid {
		at := time.Unix(0, completedAt.Int64).UTC()
		r.CompletedAt = &at
	}
	return r, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return reminder.ErrNotFound
	}
	return nil
}

// daysFromMonday returns the number of days since Monday for w.
func daysFromMonday(w time.Weekday) int {
	return (int(w) + 6) % 7
}
