// Package app implements the Presenter and AppLoop (§4.7): a bubbletea
// Elm-architecture program that multiplexes keystrokes, filesystem
// events, and job completions into mutations of a domain.Model, then
// renders the summary grid and result pane as one diffed frame per tick.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/cache"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/engine"
	"github.com/connorleisz/monitor/internal/fswatch"
	"github.com/connorleisz/monitor/internal/registry"
	"github.com/connorleisz/monitor/internal/terminal"
)

// rowFilter holds the Presenter's fuzzy row filter state ("/" key,
// supplemented per SPEC_FULL.md DESIGN NOTES), editing its query with a
// bubbles/textinput.Model the same way the teacher's searchInput does.
type rowFilter struct {
	active  bool
	input   textinput.Model
	matches map[domain.Path]bool // nil means "no filter applied, show everything"
}

func newRowFilter() rowFilter {
	ti := textinput.New()
	ti.Placeholder = "filter paths..."
	ti.CharLimit = 200
	ti.Width = 40
	return rowFilter{input: ti}
}

// clipboardFeedback is a short-lived status line shown after a "y" copy,
// cleared on the next keystroke or tick boundary.
type clipboardFeedback struct {
	message string
	until   time.Time
}

// Model is the Presenter's bubbletea model: the domain grid plus every
// piece of UI-only state (panes, filters, transient banners) and handles
// to the services the AppLoop multiplexes.
type Model struct {
	domain domain.Model

	registry *registry.Registry
	engine   *engine.Engine
	cache    *cache.Cache
	watcher  *fswatch.Synchronizer
	log      *applog.Buffer

	codebaseRoot string
	editor       string
	capabilities terminal.Capabilities

	width, height int

	filter   rowFilter
	feedback clipboardFeedback

	resultScroll     int // vertical scroll offset of the result pane, in lines
	quitting         bool
	terminalTooSmall bool

	lastNKeyWasRepeat bool // tracks "y" pressed twice in a row for the @-path-copy variant
}

// minWidth/minHeight are the §7 "terminal too small" thresholds.
const (
	minWidth  = 10
	minHeight = 20
)

// NewModel assembles the Presenter's initial state from the already-open
// services main.go constructs (cache, engine, watcher, registry), plus
// the rows recovered from a warm cache (if any).
func NewModel(codebaseRoot, editor string, reg *registry.Registry, eng *engine.Engine, c *cache.Cache, w *fswatch.Synchronizer, log *applog.Buffer, initial domain.Model) Model {
	return Model{
		domain:       initial,
		registry:     reg,
		engine:       eng,
		cache:        c,
		watcher:      w,
		log:          log,
		codebaseRoot: codebaseRoot,
		editor:       editor,
		capabilities: terminal.Detect(),
		filter:       newRowFilter(),
	}
}

// Init starts the FS-event and job-completion listeners as bubbletea
// commands; keystrokes arrive through bubbletea's own input loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForFsEvent(m.watcher),
		waitForJobResult(m.engine),
	)
}

// visibleRows returns the domain rows in display order, filtered by the
// active row filter if one is set.
func (m Model) visibleRows() []domain.Row {
	n := m.domain.RowCount()
	rows := make([]domain.Row, 0, n)
	for i := 0; i < n; i++ {
		r, ok := m.domain.Row(i)
		if !ok {
			continue
		}
		if m.filter.matches != nil && !m.filter.matches[r.Path] {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func (m Model) cursorDistance(path domain.Path, toolName string) int {
	rows := m.visibleRows()
	targetRow, targetCol := -1, -1
	for i, row := range rows {
		if row.Path == path {
			targetRow = i
			targetCol = row.EntryForTool(toolName)
			break
		}
	}
	if targetRow < 0 {
		return 1 << 30 // not on the visible grid at all: lowest possible priority
	}
	dRow := m.domain.Cursor.Row - targetRow
	if dRow < 0 {
		dRow = -dRow
	}
	dCol := m.domain.Cursor.Col - targetCol
	if dCol < 0 {
		dCol = -dCol
	}
	return dRow + dCol
}
