package cache

import "github.com/connorleisz/monitor/internal/domain"

// PersistedEntry is the gob-serializable projection of a domain.Entry:
// everything except the *ToolDescriptor pointer, which is rebuilt from
// the live registry by name at load time.
type PersistedEntry struct {
	ToolName    string
	SnapshotKey domain.SnapshotKey
	Status      domain.Status
	BlobKey     string // "" if the result carries no body (Ok with empty output, Pending, ...)
}

// PersistedRow is the gob-serializable projection of a domain.Row.
type PersistedRow struct {
	Path     domain.Path
	Snapshot domain.FileSnapshot
	Entries  []PersistedEntry
}

// PersistedState is the whole of status.db's payload: the summary grid
// plus the application state listed in §4.3 (cursor, sort, orientation,
// paused).
type PersistedState struct {
	Rows        []PersistedRow
	Cursor      domain.Cursor
	Sort        domain.SortOrder
	Orientation domain.Orientation
	Paused      bool
}

// ReferencedBlobKeys collects every non-empty BlobKey across the loaded
// state, the set the garbage collector keeps.
func (s PersistedState) ReferencedBlobKeys() map[string]bool {
	keys := make(map[string]bool)
	for _, row := range s.Rows {
		for _, e := range row.Entries {
			if e.BlobKey != "" {
				keys[e.BlobKey] = true
			}
		}
	}
	return keys
}
