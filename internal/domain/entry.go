package domain

// ResultHandle locates a Result body: either already resident in memory,
// or addressable on disk by digest (the cache loads it lazily on demand).
type ResultHandle struct {
	InMemory *Result
	BlobKey  string // cache digest key; empty if InMemory is set or no body exists
}

// Entry is one (path, tool) slot in a Row.
type Entry struct {
	Descriptor  *ToolDescriptor
	SnapshotKey SnapshotKey
	Status      Status
	Handle      ResultHandle
}

// Invalidate transitions a non-Running Entry back to Pending when its
// snapshot has changed, per the state machine in §4.6. A Running entry
// is left alone; the engine handles that transition when the stale
// result comes back (it is dropped) and the next dispatch re-evaluates.
func (e Entry) Invalidate(newKey SnapshotKey) Entry {
	if e.Status == Running {
		return e
	}
	e.SnapshotKey = newKey
	e.Status = Pending
	e.Handle = ResultHandle{}
	return e
}

// ApplyResult transitions an Entry to a terminal status from a finished
// Result, but only if the result's snapshot key still matches — a stale
// result (superseded by a newer snapshot while the job was in flight) is
// dropped, per the ordering guarantee in §5.
func (e Entry) ApplyResult(r Result) (Entry, bool) {
	if r.SnapshotKey != e.SnapshotKey {
		return e, false
	}
	e.Status = r.Status
	if r.Status.RequiresBody() {
		e.Handle = ResultHandle{InMemory: &r}
	} else {
		e.Handle = ResultHandle{}
	}
	return e, true
}

// Row is all Entries for one path, plus the snapshot they were computed
// against.
type Row struct {
	Path     Path
	Snapshot FileSnapshot
	Entries  []Entry // order matches ToolRegistry's descriptor order
}

// EntryForTool returns the index of the Entry for the named tool, or -1.
func (r Row) EntryForTool(toolName string) int {
	for i, e := range r.Entries {
		if e.Descriptor != nil && e.Descriptor.Name == toolName {
			return i
		}
	}
	return -1
}

// SortKeyDirExt and SortKeyExtDir implement the two sort orders the
// summary grid supports (§3 Row.sort_keys).
func (r Row) SortKeyDirExt() [2]string { return [2]string{dirOf(r.Path), extOf(r.Path)} }
func (r Row) SortKeyExtDir() [2]string { return [2]string{extOf(r.Path), dirOf(r.Path)} }

func dirOf(p Path) string {
	s := string(p)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return s[:i]
		}
	}
	return ""
}

func extOf(p Path) string {
	s := string(p)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return ""
		}
		if s[i] == '.' {
			return s[i:]
		}
	}
	return ""
}
