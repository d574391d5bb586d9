package domain

import "sort"

// FocusPane names which pane (§3) has keyboard focus.
type FocusPane int

const (
	SummaryPane FocusPane = iota
	ResultPane
)

// SortOrder selects one of the two Row sort_keys.
type SortOrder int

const (
	ByDirExt SortOrder = iota
	ByExtDir
)

// Orientation selects landscape or portrait pane layout.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

// Cursor addresses one cell of the summary grid by (row, column).
type Cursor struct {
	Row, Col int
}

// Model is the whole application state: the summary grid plus UI flags.
// It owns no goroutines or I/O. Mutations return a new Model value, but
// the row map is shared with the Model it was derived from, so
// UpsertRow and RemoveRow also change the rows an earlier copy sees.
type Model struct {
	index map[Path]int
	order []Path // row display order, kept consistent with Sort

	rowsByPath map[Path]Row

	Cursor      Cursor
	FocusPane   FocusPane
	Sort        SortOrder
	Orientation Orientation

	LogVisible   bool
	Fullscreen   bool
	HelpVisible  bool
	Paused       bool
}

// NewModel returns an empty Model ready to accept rows.
func NewModel() Model {
	return Model{
		index:      make(map[Path]int),
		rowsByPath: make(map[Path]Row),
	}
}

// UpsertRow inserts or replaces a Row, then re-sorts the display order.
// Cursor is re-clamped so it always addresses an extant cell (§3
// invariant 5: clamped, not teleported).
func (m Model) UpsertRow(r Row) Model {
	m.rowsByPath[r.Path] = r
	m.resort()
	return m.clampCursor()
}

// RemoveRow deletes a path's row entirely (file removed). Cursor is
// re-clamped afterward.
func (m Model) RemoveRow(p Path) Model {
	delete(m.rowsByPath, p)
	m.resort()
	return m.clampCursor()
}

// Row returns the Row at display index i and whether it exists.
func (m Model) Row(i int) (Row, bool) {
	if i < 0 || i >= len(m.order) {
		return Row{}, false
	}
	return m.rowsByPath[m.order[i]], true
}

// RowByPath looks up a row directly by path.
func (m Model) RowByPath(p Path) (Row, bool) {
	r, ok := m.rowsByPath[p]
	return r, ok
}

// RowCount returns the number of rows currently in the model.
func (m Model) RowCount() int { return len(m.order) }

// FocusedEntry returns the Entry under the cursor, and whether one
// exists (an empty grid or a row with fewer columns than Cursor.Col has
// none).
func (m Model) FocusedEntry() (Entry, bool) {
	r, ok := m.Row(m.Cursor.Row)
	if !ok || m.Cursor.Col < 0 || m.Cursor.Col >= len(r.Entries) {
		return Entry{}, false
	}
	return r.Entries[m.Cursor.Col], true
}

// MoveCursor moves the cursor by (dRow, dCol) and clamps it to stay on
// an extant cell.
func (m Model) MoveCursor(dRow, dCol int) Model {
	m.Cursor.Row += dRow
	m.Cursor.Col += dCol
	return m.clampCursor()
}

// SetSort changes the sort order and re-sorts, preserving the focused
// path under the cursor where possible.
func (m Model) SetSort(s SortOrder) Model {
	focusedPath := Path("")
	if r, ok := m.Row(m.Cursor.Row); ok {
		focusedPath = r.Path
	}
	m.Sort = s
	m.resort()
	if idx, ok := m.index[focusedPath]; ok {
		m.Cursor.Row = idx
	}
	return m.clampCursor()
}

func (m *Model) resort() {
	paths := make([]Path, 0, len(m.rowsByPath))
	for p := range m.rowsByPath {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		ri, rj := m.rowsByPath[paths[i]], m.rowsByPath[paths[j]]
		var ki, kj [2]string
		if m.Sort == ByExtDir {
			ki, kj = ri.SortKeyExtDir(), rj.SortKeyExtDir()
		} else {
			ki, kj = ri.SortKeyDirExt(), rj.SortKeyDirExt()
		}
		if ki[0] != kj[0] {
			return ki[0] < kj[0]
		}
		if ki[1] != kj[1] {
			return ki[1] < kj[1]
		}
		return paths[i] < paths[j]
	})
	m.order = paths
	m.index = make(map[Path]int, len(paths))
	for i, p := range paths {
		m.index[p] = i
	}
}

func (m Model) clampCursor() Model {
	if len(m.order) == 0 {
		m.Cursor = Cursor{}
		return m
	}
	if m.Cursor.Row < 0 {
		m.Cursor.Row = 0
	}
	if m.Cursor.Row >= len(m.order) {
		m.Cursor.Row = len(m.order) - 1
	}
	row := m.rowsByPath[m.order[m.Cursor.Row]]
	if len(row.Entries) == 0 {
		m.Cursor.Col = 0
		return m
	}
	if m.Cursor.Col < 0 {
		m.Cursor.Col = 0
	}
	if m.Cursor.Col >= len(row.Entries) {
		m.Cursor.Col = len(row.Entries) - 1
	}
	return m
}

// NextIssue returns the index path (row, col) of the next Entry whose
// status is one of Problem/TimedOut/Error, searching forward from the
// cursor and wrapping around. sameToolOnly restricts the search to
// entries for the tool under the cursor ("next issue of same tool").
func (m Model) NextIssue(sameToolOnly bool) (Cursor, bool) {
	if len(m.order) == 0 {
		return Cursor{}, false
	}
	var wantTool string
	if sameToolOnly {
		if e, ok := m.FocusedEntry(); ok && e.Descriptor != nil {
			wantTool = e.Descriptor.Name
		}
	}

	total := 0
	for i := range m.order {
		total += len(m.rowsByPath[m.order[i]].Entries)
	}
	if total == 0 {
		return Cursor{}, false
	}

	// Flatten cursor position into a linear offset to search from just
	// after the current cell, wrapping around the whole grid once.
	linear := func(row, col int) int {
		n := 0
		for i := 0; i < row; i++ {
			n += len(m.rowsByPath[m.order[i]].Entries)
		}
		return n + col
	}
	start := linear(m.Cursor.Row, m.Cursor.Col) + 1

	for step := 0; step < total; step++ {
		pos := (start + step) % total
		row, col := unlinear(m, pos)
		e := m.rowsByPath[m.order[row]].Entries[col]
		if !isIssue(e.Status) {
			continue
		}
		if wantTool != "" && (e.Descriptor == nil || e.Descriptor.Name != wantTool) {
			continue
		}
		return Cursor{Row: row, Col: col}, true
	}
	return Cursor{}, false
}

func unlinear(m Model, pos int) (row, col int) {
	for i := range m.order {
		n := len(m.rowsByPath[m.order[i]].Entries)
		if pos < n {
			return i, pos
		}
		pos -= n
	}
	return 0, 0
}

func isIssue(s Status) bool {
	return s == Problem || s == TimedOut || s == Error
}
