package cloud

import "github.com/colonyops/remind/internal/core/reminder"

// Merge combines a local and a remote document, keeping all unique tasks.
// For pending conflicts the version with the newer timestamp wins. An id
// completed on either side wins over a pending copy of the same id: a task
// finished on one device must not resurrect on another.
func Merge(local, remote Document) Document {
	pending := make(map[int64]reminder.Reminder)
	for _, r := range local.Pending {
		pending[r.ID] = r
	}
	for _, r := range remote.Pending {
		existing, ok := pending[r.ID]
		if !ok {
			pending[r.ID] = r
			continue
		}
		if r.Touched().After(existing.Touched()) {
			pending[r.ID] = r
		}
	}

	completed := make(map[int64]reminder.Reminder)
	for _, r := range local.Completed {
		completed[r.ID] = r
	}
	for _, r := range remote.Completed {
		if _, ok := completed[r.ID]; !ok {
			completed[r.ID] = r
		}
		// Remote completed beats local pending.
		if _, ok := pending[r.ID]; ok {
			delete(pending, r.ID)
			completed[r.ID] = r
		}
	}

	// Local completed beats remote pending.
	for _, r := range local.Completed {
		delete(pending, r.ID)
	}

	out := Document{
		Pending:   make([]reminder.Reminder, 0, len(pending)),
		Completed: make([]reminder.Reminder, 0, len(completed)),
	}
	for _, r := range pending {
		out.Pending = append(out.Pending, r)
	}
	for _, r := range completed {
		out.Completed = append(out.Completed, r)
	}
	return out
}
