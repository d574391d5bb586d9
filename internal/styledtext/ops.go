package styledtext

import "github.com/mattn/go-runewidth"

const tabStop = 8

// cellWidth returns the display width of a single rune, expanding tabs
// to the distance to the next multiple of tabStop from the given column.
func cellWidth(r rune, col int) int {
	if r == '\t' {
		return tabStop - (col % tabStop)
	}
	return runewidth.RuneWidth(r)
}

// Width measures t in monospaced display cells, expanding tabs to the
// next multiple of 8 as the spec requires.
func (t StyledText) Width() int {
	col := 0
	for _, r := range t.runs {
		col += cellWidth(r.Ch, col)
	}
	return col
}

// PadRight pads t with spaces in style to reach width display cells. If
// t is already at least that wide, it is returned unchanged.
func (t StyledText) PadRight(width int, style Style) StyledText {
	w := t.Width()
	if w >= width {
		return t
	}
	return Concat(t, New(spaces(width-w), style))
}

// PadLeft pads t on the left with spaces in style to reach width display
// cells.
func (t StyledText) PadLeft(width int, style Style) StyledText {
	w := t.Width()
	if w >= width {
		return t
	}
	return Concat(New(spaces(width-w), style), t)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Truncate clips t to at most width display cells, replacing the last
// cell with ellipsis (a single-width rune, typically '…') when the text
// had to be cut. Truncate is idempotent: truncating an already-truncated
// result to the same width is a no-op.
func (t StyledText) Truncate(width int, ellipsis rune) StyledText {
	if width <= 0 {
		return StyledText{}
	}
	if t.Width() <= width {
		return t
	}

	ellipsisWidth := runewidth.RuneWidth(ellipsis)
	budget := width - ellipsisWidth
	if budget < 0 {
		budget = 0
	}

	var out []Run
	col := 0
	var lastStyle Style
	for _, r := range t.runs {
		w := cellWidth(r.Ch, col)
		if col+w > budget {
			break
		}
		out = append(out, r)
		col += w
		lastStyle = r.Style
	}
	if ellipsisWidth > 0 {
		out = append(out, Run{Ch: ellipsis, Style: lastStyle})
	}
	return StyledText{runs: out}
}
