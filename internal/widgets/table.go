package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Table is the summary grid: a 2-D array of pre-rendered cell content
// with per-column widths and a fixed gutter between columns.
type Table struct {
	Rows         [][]styledtext.StyledText // Rows[r][c]
	ColumnWidths []int
	Gutter       int
	CellStyle    func(row, col int) styledtext.Style
	CursorRow, CursorCol int
	HasCursor    bool
}

// CellRect is the rectangle a (row, col) cell occupies, for mouse
// hit-testing against terminal coordinates.
type CellRect struct {
	X, Y, W, H int
}

// HitTest returns the (row, col) cell under terminal-relative coordinates
// (x, y), and whether one exists.
func (t Table) HitTest(x, y int) (row, col int, ok bool) {
	if y < 0 || y >= len(t.Rows) {
		return 0, 0, false
	}
	cx := 0
	for c, w := range t.ColumnWidths {
		if x >= cx && x < cx+w {
			return y, c, true
		}
		cx += w + t.Gutter
	}
	return 0, 0, false
}

// CellRects returns the rectangle for every cell, for callers building a
// hit-test index once per layout pass.
func (t Table) CellRects() [][]CellRect {
	out := make([][]CellRect, len(t.Rows))
	for r := range t.Rows {
		cx := 0
		row := make([]CellRect, len(t.ColumnWidths))
		for c, w := range t.ColumnWidths {
			row[c] = CellRect{X: cx, Y: r, W: w, H: 1}
			cx += w + t.Gutter
		}
		out[r] = row
	}
	return out
}

func (t Table) Render(width, height int) styledtext.Frame {
	f := styledtext.BlankFrame(width, height)
	for y := 0; y < height && y < len(t.Rows); y++ {
		x := 0
		for c, w := range t.ColumnWidths {
			style := styledtext.Style{}
			if t.CellStyle != nil {
				style = t.CellStyle(y, c)
			}
			if t.HasCursor && y == t.CursorRow && c == t.CursorCol {
				style.Reverse = true
			}
			var content styledtext.StyledText
			if c < len(t.Rows[y]) {
				content = t.Rows[y][c]
			}
			runs := clipRow(content, w, style)
			for dx := 0; dx < w && x+dx < width; dx++ {
				f.Cells[y][x+dx] = runs[dx]
			}
			x += w
			for g := 0; g < t.Gutter && x < width; g++ {
				f.Cells[y][x] = styledtext.Run{Ch: ' '}
				x++
			}
		}
	}
	return f
}
