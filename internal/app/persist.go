package app

import (
	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/cache"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/engine"
	"github.com/connorleisz/monitor/internal/fswatch"
	"github.com/connorleisz/monitor/internal/registry"
)

// dehydrate projects a domain.Model into the gob-serializable shape
// status.db stores, per §4.3 ("cursor, sort, orientation, paused" plus
// the row/entry grid). ToolDescriptor pointers are dropped in favor of
// tool names; Result bodies are dropped in favor of BlobKey, since both
// are rebuilt/reloaded at startup from the registry and the blob store.
func dehydrate(m domain.Model) cache.PersistedState {
	n := m.RowCount()
	rows := make([]cache.PersistedRow, 0, n)
	for i := 0; i < n; i++ {
		row, ok := m.Row(i)
		if !ok {
			continue
		}
		entries := make([]cache.PersistedEntry, 0, len(row.Entries))
		for _, e := range row.Entries {
			toolName := ""
			if e.Descriptor != nil {
				toolName = e.Descriptor.Name
			}
			entries = append(entries, cache.PersistedEntry{
				ToolName:    toolName,
				SnapshotKey: e.SnapshotKey,
				Status:      e.Status,
				BlobKey:     e.Handle.BlobKey,
			})
		}
		rows = append(rows, cache.PersistedRow{
			Path:     row.Path,
			Snapshot: row.Snapshot,
			Entries:  entries,
		})
	}
	return cache.PersistedState{
		Rows:        rows,
		Cursor:      m.Cursor,
		Sort:        m.Sort,
		Orientation: m.Orientation,
		Paused:      m.Paused,
	}
}

// rehydrate rebuilds a domain.Model from a loaded PersistedState,
// resolving each PersistedEntry's tool name back to the live
// *domain.ToolDescriptor the current registry registered it under. An
// entry naming a tool no longer in the registry (removed from $PATH, or
// a descriptor renamed) is dropped, per §4.6's "tool removed from
// registry -> entry removed" state transition; BuildRow is used to
// re-synthesize a correct entry set for the row's current descriptors,
// then persisted statuses are overlaid onto it by tool name so a cold
// start shows the last known results instead of All-Pending.
func rehydrate(state cache.PersistedState, reg *registry.Registry) domain.Model {
	m := domain.NewModel()

	for _, pr := range state.Rows {
		row := reg.BuildRow(pr.Path, pr.Snapshot)
		persisted := make(map[string]cache.PersistedEntry, len(pr.Entries))
		for _, pe := range pr.Entries {
			persisted[pe.ToolName] = pe
		}
		for i, e := range row.Entries {
			if e.Descriptor == nil {
				continue
			}
			pe, ok := persisted[e.Descriptor.Name]
			if !ok || pe.SnapshotKey != e.SnapshotKey {
				continue // file changed since the last run: leave it Pending
			}
			row.Entries[i].Status = pe.Status
			if pe.BlobKey != "" {
				row.Entries[i].Handle = domain.ResultHandle{BlobKey: pe.BlobKey}
			}
		}
		m = m.UpsertRow(row)
	}

	m.Cursor = state.Cursor
	m.Sort = state.Sort
	m.Orientation = state.Orientation
	m.Paused = state.Paused
	return m
}

// Bootstrap assembles the Presenter's starting Model: it rehydrates a
// warm cache's last known statuses (S3 — "cache hit on restart", §8),
// reconciles that snapshot against what's actually on disk right now
// (files changed, added, or removed while the monitor wasn't running),
// and enqueues every Pending entry the reconciled grid still has.
func Bootstrap(codebaseRoot, editor string, reg *registry.Registry, eng *engine.Engine, c *cache.Cache, w *fswatch.Synchronizer, log *applog.Buffer, persisted cache.PersistedState, warm bool, snapshots map[domain.Path]domain.FileSnapshot) Model {
	m := domain.NewModel()
	if warm {
		m = rehydrate(persisted, reg)
	}

	for path, snap := range snapshots {
		fresh := reg.BuildRow(path, snap)
		if existing, ok := m.RowByPath(path); ok {
			fresh = mergeInvalidated(existing, fresh)
		}
		m = m.UpsertRow(fresh)
	}

	var stale []domain.Path
	n := m.RowCount()
	for i := 0; i < n; i++ {
		row, ok := m.Row(i)
		if !ok {
			continue
		}
		if _, stillPresent := snapshots[row.Path]; !stillPresent {
			stale = append(stale, row.Path)
		}
	}
	for _, p := range stale {
		m = m.RemoveRow(p) // file removed while the monitor wasn't running
	}

	if warm {
		m.Cursor = persisted.Cursor
		m.Sort = persisted.Sort
		m.Orientation = persisted.Orientation
		m.Paused = persisted.Paused
	}

	out := NewModel(codebaseRoot, editor, reg, eng, c, w, log, m)
	out.enqueuePending()
	if m.Paused {
		eng.Pause()
	}
	return out
}

// enqueuePending enqueues every entry still Pending after Bootstrap's
// reconciliation, so a cold or partially-warm start actually schedules
// work instead of leaving the grid inert until the next FS event.
func (m Model) enqueuePending() {
	n := m.domain.RowCount()
	for i := 0; i < n; i++ {
		row, ok := m.domain.Row(i)
		if !ok {
			continue
		}
		for _, e := range row.Entries {
			if e.Status == domain.Pending {
				m.engine.Enqueue(row.Path, e.Descriptor, e.SnapshotKey)
			}
		}
	}
}

// requestPersist hands the current model to the cache's debounced
// status-write path; cheap to call on every mutation since
// RequestStatusWrite just swaps a pointer, the actual write happening on
// the cache's own background timer (§4.3's ≥1.1s debounce).
func (m Model) requestPersist() {
	if m.cache == nil {
		return
	}
	m.cache.RequestStatusWrite(dehydrate(m.domain))
}
