package domain

import "testing"

func rowFor(path string, n int) Row {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Descriptor: &ToolDescriptor{Name: "t"}, Status: Pending}
	}
	return Row{Path: Path(path), Entries: entries}
}

func TestCursorClampedOnShrink(t *testing.T) {
	m := NewModel()
	m = m.UpsertRow(rowFor("a.go", 3))
	m = m.UpsertRow(rowFor("b.go", 1))
	m.Cursor = Cursor{Row: 1, Col: 0}

	// Replace b.go with zero entries; cursor col must clamp to 0, not
	// teleport to row 0.
	m = m.UpsertRow(rowFor("b.go", 0))
	if m.Cursor.Row != 1 || m.Cursor.Col != 0 {
		t.Fatalf("cursor not clamped correctly: %+v", m.Cursor)
	}
}

func TestCursorClampedOnRowRemoval(t *testing.T) {
	m := NewModel()
	m = m.UpsertRow(rowFor("a.go", 1))
	m = m.UpsertRow(rowFor("b.go", 1))
	m.Cursor = Cursor{Row: 1, Col: 0}

	m = m.RemoveRow(Path("b.go"))
	if m.Cursor.Row != 0 {
		t.Fatalf("expected cursor clamped to row 0, got %+v", m.Cursor)
	}
}

func TestNextIssueWraps(t *testing.T) {
	m := NewModel()
	r := rowFor("a.go", 3)
	r.Entries[2].Status = Problem
	m = m.UpsertRow(r)
	m.Cursor = Cursor{Row: 0, Col: 2}

	next, ok := m.NextIssue(false)
	if !ok {
		t.Fatalf("expected to find an issue")
	}
	if next.Row != 0 || next.Col != 2 {
		t.Fatalf("expected wrap back to the only issue, got %+v", next)
	}
}

func TestApplyResultDropsStale(t *testing.T) {
	e := Entry{Status: Running, SnapshotKey: SnapshotKey{Size: 1}}
	stale := Result{SnapshotKey: SnapshotKey{Size: 2}, Status: Ok}
	got, applied := e.ApplyResult(stale)
	if applied {
		t.Fatalf("expected stale result to be dropped")
	}
	if got.Status != Running {
		t.Fatalf("expected status unchanged, got %v", got.Status)
	}
}

func TestApplyResultMatchingSnapshot(t *testing.T) {
	key := SnapshotKey{Size: 1}
	e := Entry{Status: Running, SnapshotKey: key}
	fresh := Result{SnapshotKey: key, Status: Problem}
	got, applied := e.ApplyResult(fresh)
	if !applied || got.Status != Problem {
		t.Fatalf("expected applied Problem, got applied=%v status=%v", applied, got.Status)
	}
}
