package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/connorleisz/monitor/internal/cache"
	"github.com/connorleisz/monitor/internal/clipboard"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/fswatch"
)

// feedbackDuration is how long the "y" copy banner stays visible.
const feedbackDuration = 2 * time.Second

// Update is the Presenter's single mutation point: every keystroke, FS
// event, and job completion flows through here, per §4.7's "apply model
// mutations" tick phase.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.terminalTooSmall = msg.Width < minWidth || msg.Height < minHeight
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case FsEventMsg:
		return m.handleFsEvent(msg)

	case JobResultMsg:
		return m.handleJobResult(msg)

	case clearFeedbackMsg:
		m.feedback = clipboardFeedback{}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filter.active {
		return m.handleFilterKey(msg)
	}

	m.feedback = clipboardFeedback{} // any keystroke dismisses the copy banner early
	prevY := m.lastNKeyWasRepeat
	m.lastNKeyWasRepeat = false

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "h":
		m.domain.HelpVisible = !m.domain.HelpVisible
		return m, nil
	case "o", "t":
		if m.domain.Orientation == domain.Landscape {
			m.domain.Orientation = domain.Portrait
		} else {
			m.domain.Orientation = domain.Landscape
		}
		m.requestPersist()
		return m, nil
	case "l":
		m.domain.LogVisible = !m.domain.LogVisible
		return m, nil
	case "e":
		return m.openEditor()
	case "n":
		return m.jumpToNextIssue(false), nil
	case "N":
		return m.jumpToNextIssue(true), nil
	case "s":
		if m.domain.Sort == domain.ByDirExt {
			m.domain = m.domain.SetSort(domain.ByExtDir)
		} else {
			m.domain = m.domain.SetSort(domain.ByDirExt)
		}
		m.requestPersist()
		return m, nil
	case "r":
		m.refreshFocused()
		return m, nil
	case "R":
		m.refreshAllOfFocusedTool()
		return m, nil
	case "f":
		m.domain.Fullscreen = !m.domain.Fullscreen
		return m, nil
	case "x":
		return m.openExternally()
	case "p":
		m.domain.Paused = !m.domain.Paused
		if m.domain.Paused {
			m.engine.Pause()
		} else {
			m.engine.Resume()
		}
		m.requestPersist()
		return m, nil
	case "tab":
		if m.domain.FocusPane == domain.SummaryPane {
			m.domain.FocusPane = domain.ResultPane
		} else {
			m.domain.FocusPane = domain.SummaryPane
		}
		return m, nil
	case "up":
		return m.moveCursorOrScroll(-1, 0)
	case "down":
		return m.moveCursorOrScroll(1, 0)
	case "left":
		return m.moveCursorOrScroll(0, -1)
	case "right":
		return m.moveCursorOrScroll(0, 1)
	case "pgup":
		return m.pageResult(-1)
	case "pgdown":
		return m.pageResult(1)
	case "y":
		m.lastNKeyWasRepeat = prevY
		out, cmd := m.copyToClipboard()
		if next, ok := out.(Model); ok {
			next.lastNKeyWasRepeat = true
			return next, cmd
		}
		return out, cmd
	case "/":
		m.filter.active = true
		m.filter.input.SetValue("")
		m.filter.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// moveCursorOrScroll moves the grid cursor when the summary pane has
// focus, or scrolls the result pane when it does, per §4.7's "arrows ...
// for navigation" covering both panes depending on tab focus.
func (m Model) moveCursorOrScroll(dRow, dCol int) (tea.Model, tea.Cmd) {
	if m.domain.FocusPane == domain.ResultPane {
		m.resultScroll += dRow
		if m.resultScroll < 0 {
			m.resultScroll = 0
		}
		return m, nil
	}
	m.domain = m.domain.MoveCursor(dRow, dCol)
	m.resultScroll = 0
	m.refocusEngine()
	m.requestPersist()
	return m, nil
}

func (m Model) pageResult(dir int) (tea.Model, tea.Cmd) {
	page := m.height
	if page <= 0 {
		page = 20
	}
	m.resultScroll += dir * page
	if m.resultScroll < 0 {
		m.resultScroll = 0
	}
	return m, nil
}

func (m *Model) refocusEngine() {
	e, ok := m.domain.FocusedEntry()
	toolName := ""
	if ok && e.Descriptor != nil {
		toolName = e.Descriptor.Name
	}
	r, ok := m.domain.Row(m.domain.Cursor.Row)
	if !ok {
		return
	}
	m.engine.SetFocus(r.Path, toolName, m.cursorDistance)
}

func (m Model) jumpToNextIssue(sameToolOnly bool) Model {
	if c, ok := m.domain.NextIssue(sameToolOnly); ok {
		m.domain.Cursor = c
		m.refocusEngine()
	}
	return m
}

func (m *Model) refreshFocused() {
	r, ok := m.domain.Row(m.domain.Cursor.Row)
	if !ok {
		return
	}
	e, ok := m.domain.FocusedEntry()
	if !ok || e.Descriptor == nil {
		return
	}
	m.engine.Enqueue(r.Path, e.Descriptor, e.SnapshotKey)
}

func (m *Model) refreshAllOfFocusedTool() {
	e, ok := m.domain.FocusedEntry()
	if !ok || e.Descriptor == nil {
		return
	}
	toolName := e.Descriptor.Name
	n := m.domain.RowCount()
	for i := 0; i < n; i++ {
		row, ok := m.domain.Row(i)
		if !ok {
			continue
		}
		idx := row.EntryForTool(toolName)
		if idx < 0 {
			continue
		}
		m.engine.Enqueue(row.Path, row.Entries[idx].Descriptor, row.Entries[idx].SnapshotKey)
	}
}

func (m Model) openEditor() (tea.Model, tea.Cmd) {
	r, ok := m.domain.Row(m.domain.Cursor.Row)
	if !ok {
		return m, nil
	}
	editor := m.editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		if m.log != nil {
			m.log.Warn("no editor configured: set $EDITOR, $VISUAL, or --editor")
		}
		return m, nil
	}
	abs := m.codebaseRoot + "/" + r.Path.String()
	c := exec.Command(editor, abs)
	return m, tea.ExecProcess(c, func(err error) tea.Msg {
		if err != nil && m.log != nil {
			m.log.Warn("editor exited with error: " + err.Error())
		}
		return nil
	})
}

func (m Model) openExternally() (tea.Model, tea.Cmd) {
	r, ok := m.domain.Row(m.domain.Cursor.Row)
	if !ok {
		return m, nil
	}
	abs := m.codebaseRoot + "/" + r.Path.String()
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if err := exec.Command(opener, abs).Start(); err != nil && m.log != nil {
		m.log.Warn("x: failed to open " + r.Path.String() + ": " + err.Error())
	}
	return m, nil
}

func (m Model) copyToClipboard() (tea.Model, tea.Cmd) {
	r, ok := m.domain.Row(m.domain.Cursor.Row)
	if !ok {
		return m, nil
	}
	e, ok := m.domain.FocusedEntry()
	if !ok {
		return m, nil
	}

	var err error
	var label string
	if m.lastNKeyWasRepeat {
		err = clipboard.CopyPath(r.Path.String())
		label = "copied @" + r.Path.String()
	} else if e.Handle.InMemory != nil {
		err = clipboard.CopyReportBody(e.Handle.InMemory.Body.String())
		label = "copied report body"
	} else {
		err = clipboard.CopyPath(r.Path.String())
		label = "copied @" + r.Path.String()
	}

	if err != nil {
		m.feedback = clipboardFeedback{message: "clipboard: " + err.Error(), until: time.Now().Add(feedbackDuration)}
	} else {
		m.feedback = clipboardFeedback{message: label, until: time.Now().Add(feedbackDuration)}
	}
	return m, clearFeedbackAfter(feedbackDuration)
}

func clearFeedbackAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearFeedbackMsg{} })
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.input.Blur()
		m.filter.active = false
		m.filter.input.SetValue("")
		m.filter.matches = nil
		return m, nil
	case "enter":
		m.filter.active = false
		m.filter.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter.input, cmd = m.filter.input.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter fuzzy-matches the input's current value against every
// row's path and narrows the visible grid, per SPEC_FULL.md's
// supplemented "/" filter.
func (m *Model) applyFilter() {
	query := m.filter.input.Value()
	if query == "" {
		m.filter.matches = nil
		return
	}
	n := m.domain.RowCount()
	source := make([]string, 0, n)
	paths := make([]domain.Path, 0, n)
	for i := 0; i < n; i++ {
		r, ok := m.domain.Row(i)
		if !ok {
			continue
		}
		source = append(source, r.Path.String())
		paths = append(paths, r.Path)
	}
	results := fuzzy.Find(query, source)
	matches := make(map[domain.Path]bool, len(results))
	for _, res := range results {
		matches[paths[res.Index]] = true
	}
	m.filter.matches = matches
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.moveCursorOrScroll(-1, 0)
	case tea.MouseButtonWheelDown:
		return m.moveCursorOrScroll(1, 0)
	}
	return m, nil
}

func (m Model) handleFsEvent(msg FsEventMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil // synchronizer closed; stop re-arming
	}
	ev := msg.Event
	switch ev.Kind {
	case fswatch.Removed:
		m.domain = m.domain.RemoveRow(ev.Path)
	default:
		row := m.registry.BuildRow(ev.Path, ev.Snapshot)
		if existing, ok := m.domain.RowByPath(ev.Path); ok {
			row = mergeInvalidated(existing, row)
		}
		m.domain = m.domain.UpsertRow(row)
		m.enqueueRow(row)
	}
	m.requestPersist()
	return m, waitForFsEvent(m.watcher)
}

// mergeInvalidated carries forward any still-resident in-memory bodies
// for Entries whose snapshot key is unchanged (the file was reported
// changed but its size, mtime, mode, inode and device all still match),
// while invalidating the
// rest back to Pending, per the Entry.Invalidate state transition.
func mergeInvalidated(existing, fresh domain.Row) domain.Row {
	for i := range fresh.Entries {
		toolName := ""
		if fresh.Entries[i].Descriptor != nil {
			toolName = fresh.Entries[i].Descriptor.Name
		}
		idx := existing.EntryForTool(toolName)
		if idx < 0 {
			continue
		}
		if existing.Entries[idx].SnapshotKey == fresh.Entries[i].SnapshotKey {
			fresh.Entries[i] = existing.Entries[idx]
			continue
		}
		fresh.Entries[i] = existing.Entries[idx].Invalidate(fresh.Entries[i].SnapshotKey)
	}
	return fresh
}

func (m Model) enqueueRow(row domain.Row) {
	for _, e := range row.Entries {
		if e.Status == domain.Pending {
			m.engine.Enqueue(row.Path, e.Descriptor, e.SnapshotKey)
		}
	}
}

func (m Model) handleJobResult(msg JobResultMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil
	}
	r := msg.Result
	row, ok := m.domain.RowByPath(r.Path)
	if ok {
		idx := row.EntryForTool(r.ToolName)
		if idx >= 0 {
			if applied, ok := row.Entries[idx].ApplyResult(r); ok {
				row.Entries[idx] = applied
				m.domain = m.domain.UpsertRow(row)
				if m.cache != nil {
					m.persistResult(row, idx, r)
				}
				m.requestPersist()
			}
		}
	}
	return m, waitForJobResult(m.engine)
}

// persistResult writes a terminal Result's body to the blob store,
// content-addressed on (path, tool, file content digest). The
// gob-serialized status.db aggregate itself is handed to the cache's own
// debounce timer by requestPersist, since it batches every row rather
// than writing on each individual completion.
func (m Model) persistResult(row domain.Row, idx int, r domain.Result) {
	if !r.Status.RequiresBody() {
		return
	}
	abs := filepath.Join(m.codebaseRoot, row.Path.String())
	contentDigest, err := cache.HashFile(abs)
	if err != nil {
		if m.log != nil {
			m.log.Warn("cache: could not hash " + row.Path.String() + " for blob write: " + err.Error())
		}
		return
	}
	digest := cache.BlobKey(row.Path, r.ToolName, contentDigest)
	if err := m.cache.WriteBlob(digest, []byte(r.Body.String())); err != nil {
		if m.log != nil {
			m.log.Error("cache: write blob failed: " + err.Error())
		}
		return // per §7: .tmp is cleaned up by WriteBlob/atomicWrite; in-memory Result remains
	}
}
