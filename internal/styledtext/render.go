package styledtext

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is a rectangular grid of Runs, one cell per display column — the
// form a widget layout pass produces and Render diffs against the
// previous frame.
type Frame struct {
	Width, Height int
	Cells         [][]Run // Cells[row][col]; len(Cells) == Height
}

// BlankFrame returns a Frame of the given size filled with spaces in the
// zero style.
func BlankFrame(width, height int) Frame {
	f := Frame{Width: width, Height: height, Cells: make([][]Run, height)}
	for y := range f.Cells {
		row := make([]Run, width)
		for x := range row {
			row[x] = Run{Ch: ' '}
		}
		f.Cells[y] = row
	}
	return f
}

// Render emits the minimum SGR and cursor-positioning sequences needed to
// transform prev into next on an ANSI/VT100 terminal. Runs of identical
// style are emitted together; style is reset between differing runs so
// no attribute leaks from one cell into the next. true24Bit selects
// 24-bit SGR color codes; when false, colors are quantized to the
// nearest of the 8 base colors for terminals without true-color support.
func Render(prev, next Frame, true24Bit bool) string {
	var b strings.Builder
	cur := Style{}
	styleSet := false
	cursorAt := -1 // linear index (row*width+col) of next expected write, or -1 if unknown

	for y := 0; y < next.Height; y++ {
		for x := 0; x < next.Width; x++ {
			var nr Run
			if y < len(next.Cells) && x < len(next.Cells[y]) {
				nr = next.Cells[y][x]
			} else {
				nr = Run{Ch: ' '}
			}

			var pr Run
			samePrev := y < len(prev.Cells) && x < len(prev.Cells[y])
			if samePrev {
				pr = prev.Cells[y][x]
			}
			if samePrev && pr.Ch == nr.Ch && pr.Style.Equal(nr.Style) {
				continue // unchanged cell: skip, cursor position becomes stale
			}

			want := y*next.Width + x
			if want != cursorAt {
				fmt.Fprintf(&b, "\x1b[%d;%dH", y+1, x+1)
			}

			if !styleSet || !cur.Equal(nr.Style) {
				b.WriteString(sgrReset())
				b.WriteString(sgrFor(nr.Style.Resolved(), true24Bit))
				cur = nr.Style
				styleSet = true
			}
			b.WriteRune(nr.Ch)
			cursorAt = want + 1
		}
	}
	if styleSet {
		b.WriteString(sgrReset())
	}
	return b.String()
}

// Plain renders a Frame as a complete, self-contained string (one line per
// row, joined by "\n", with no cursor-positioning escapes). This is what
// the Presenter's View() returns to bubbletea: bubbletea does its own
// line-level diffing against the terminal, so the content it receives
// must stand on its own rather than assume a previous frame the way
// Render's cell-level diff does.
func (f Frame) Plain(true24Bit bool) string {
	var b strings.Builder
	for y := 0; y < f.Height; y++ {
		cur := Style{}
		styleSet := false
		var row []Run
		if y < len(f.Cells) {
			row = f.Cells[y]
		}
		for x := 0; x < f.Width; x++ {
			var r Run
			if x < len(row) {
				r = row[x]
			} else {
				r = Run{Ch: ' '}
			}
			if !styleSet || !cur.Equal(r.Style) {
				if styleSet {
					b.WriteString(sgrReset())
				}
				b.WriteString(sgrFor(r.Style.Resolved(), true24Bit))
				cur = r.Style
				styleSet = true
			}
			b.WriteRune(r.Ch)
		}
		if styleSet {
			b.WriteString(sgrReset())
		}
		if y < f.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sgrReset() string { return "\x1b[0m" }

func sgrFor(s Style, true24Bit bool) string {
	if s.IsZero() {
		return ""
	}
	var codes []string
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Faint {
		codes = append(codes, "2")
	}
	if s.Italic {
		codes = append(codes, "3")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if !s.FG.IsDefault() {
		codes = append(codes, fgCodes(s.FG, true24Bit)...)
	}
	if !s.BG.IsDefault() {
		codes = append(codes, bgCodes(s.BG, true24Bit)...)
	}
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func fgCodes(c Color, true24Bit bool) []string {
	if true24Bit {
		return []string{"38", "2", itoa(c.R), itoa(c.G), itoa(c.B)}
	}
	return []string{itoa(30 + nearest8(c))}
}

func bgCodes(c Color, true24Bit bool) []string {
	if true24Bit {
		return []string{"48", "2", itoa(c.R), itoa(c.G), itoa(c.B)}
	}
	return []string{itoa(40 + nearest8(c))}
}

func itoa(v uint8) string { return strconv.Itoa(int(v)) }

// nearest8 quantizes a 24-bit color to the nearest of the 8 base ANSI
// colors, for the §6 truecolor-unsupported fallback.
func nearest8(c Color) int {
	r, g, b := c.R > 127, c.G > 127, c.B > 127
	n := 0
	if r {
		n |= 1
	}
	if g {
		n |= 2
	}
	if b {
		n |= 4
	}
	return n
}
