package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/styledtext"
	"github.com/connorleisz/monitor/internal/ui/styles"
	"github.com/connorleisz/monitor/internal/widgets"
)

var feedbackStyle = lipgloss.NewStyle().Foreground(styles.Info)

const (
	toolColumnGutter = 1
	toolColumnWidth  = 10
	pathColumnWidth  = 28
	logPaneHeight    = 8
)

// View renders the current Model as a complete frame, per §4.7's
// "recompute layout, emit a diff-render" tick phase. bubbletea does its
// own terminal-level diffing against the returned string (Frame.Plain),
// so only the frame-to-frame identity matters here, not cursor
// addressing.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.terminalTooSmall {
		return fmt.Sprintf("terminal too small (need at least %dx%d)\n", minWidth, minHeight)
	}
	if m.width == 0 || m.height == 0 {
		return "" // no WindowSizeMsg yet
	}

	width, height := m.width, m.height
	chromeHeight := 0
	if m.domain.LogVisible {
		chromeHeight += logPaneHeight
	}

	body := widgets.View{
		First:       m.summaryWidget(),
		Second:      m.resultWidget(),
		FirstWeight: 1,
		SecondWeight: 1,
		Orientation: toWidgetsOrientation(m.domain.Orientation),
		Fullscreen:  m.domain.Fullscreen,
	}
	if m.domain.Fullscreen && m.domain.FocusPane == domain.ResultPane {
		body.First, body.Second = body.Second, body.First
	}

	frame := body.Render(width, height-chromeHeight)
	if m.domain.LogVisible {
		logFrame := m.logWidget().Render(width, logPaneHeight)
		frame = stackFrames(frame, logFrame)
	}

	out := frame.Plain(m.capabilities.TrueColor)
	if m.domain.HelpVisible {
		out = m.helpText() + "\n" + out
	}
	if m.filter.active {
		out = "/" + m.filter.input.View() + "\n" + out
	}
	if m.feedback.message != "" {
		out = feedbackStyle.Render(m.feedback.message) + "\n" + out
	}
	return out
}

func toWidgetsOrientation(o domain.Orientation) widgets.Orientation {
	if o == domain.Portrait {
		return widgets.Portrait
	}
	return widgets.Landscape
}

// summaryWidget builds the Table widget for the row×tool grid.
func (m Model) summaryWidget() widgets.Widget {
	rows := m.visibleRows()
	descriptors := m.registry.Descriptors()

	widths := make([]int, 0, len(descriptors)+1)
	widths = append(widths, pathColumnWidth)
	for range descriptors {
		widths = append(widths, toolColumnWidth)
	}

	tableRows := make([][]styledtext.StyledText, 0, len(rows))
	for _, r := range rows {
		line := make([]styledtext.StyledText, 0, len(widths))
		line = append(line, styledtext.New(r.Path.String(), styledtext.Style{}))
		for _, d := range descriptors {
			idx := r.EntryForTool(d.Name)
			if idx < 0 {
				line = append(line, styledtext.New("", styledtext.Style{}))
				continue
			}
			e := r.Entries[idx]
			line = append(line, styledtext.New(e.Status.String(), styledtext.Style{FG: styles.StatusColor(e.Status)}))
		}
		tableRows = append(tableRows, line)
	}

	cursorCol := m.domain.Cursor.Col + 1 // +1 for the leading path column
	return widgets.Table{
		Rows:         tableRows,
		ColumnWidths: widths,
		Gutter:       toolColumnGutter,
		CursorRow:    m.domain.Cursor.Row,
		CursorCol:    cursorCol,
		HasCursor:    m.domain.FocusPane == domain.SummaryPane,
	}
}

// resultWidget shows the focused Entry's report body in a scrollable
// Portal, per §4.2's Result pane.
func (m Model) resultWidget() widgets.Widget {
	e, ok := m.domain.FocusedEntry()
	var content styledtext.StyledText
	switch {
	case !ok:
		content = styledtext.New("(no entry selected)", styledtext.Style{})
	case e.Handle.InMemory != nil:
		content = e.Handle.InMemory.Body
	default:
		content = styledtext.New("("+e.Status.String()+")", styledtext.Style{})
	}

	lines := content.Lines()
	return widgets.Portal{
		Child:       widgets.Text{Content: content},
		ChildWidth:  widestLine(lines),
		ChildHeight: len(lines),
		OffsetY:     m.resultScroll,
	}
}

func widestLine(lines []styledtext.StyledText) int {
	w := 0
	for _, l := range lines {
		if n := l.Width(); n > w {
			w = n
		}
	}
	if w == 0 {
		w = 1
	}
	return w
}

func (m Model) logWidget() widgets.Widget {
	lines := m.log.Lines()
	var b strings.Builder
	start := 0
	if len(lines) > logPaneHeight {
		start = len(lines) - logPaneHeight
	}
	for i := start; i < len(lines); i++ {
		b.WriteString("[" + lines[i].Level.String() + "] " + lines[i].Message + "\n")
	}
	return widgets.Text{Content: styledtext.New(strings.TrimRight(b.String(), "\n"), styledtext.Style{})}
}

func (m Model) helpText() string {
	return strings.Join([]string{
		"h help  q quit  o/t orientation  l log  e edit  x open",
		"n/N next issue  s sort  r refresh  R refresh tool  f fullscreen",
		"y copy  / filter  p pause  tab focus  arrows/pgup/pgdn/wheel navigate",
	}, "\n")
}

// stackFrames concatenates two frames vertically, used to append the log
// pane below the main body without widgets.Column's weight-split sizing
// (the log pane's height is fixed, not proportional).
func stackFrames(top, bottom styledtext.Frame) styledtext.Frame {
	out := styledtext.Frame{Width: top.Width, Height: top.Height + bottom.Height}
	out.Cells = append(out.Cells, top.Cells...)
	out.Cells = append(out.Cells, bottom.Cells...)
	return out
}
