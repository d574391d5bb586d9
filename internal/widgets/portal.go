package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Portal is a scrollable viewport onto a larger child. It refuses to
// scroll past the child's bounds; the child is re-rendered at its full
// (unbounded) size on every call so Portal can clip an arbitrary offset
// out of it. Callers that size children expensively should cache the
// full render themselves — Portal itself does no caching, matching the
// "pure function from (tree, size) to cells" layout contract.
type Portal struct {
	Child      Widget
	ChildWidth, ChildHeight int // full size of the child's content
	OffsetX, OffsetY        int
}

// ScrollBy moves the offset by (dx, dy), clamped to the child bounds
// given a viewport of (viewW, viewH).
func (p Portal) ScrollBy(dx, dy, viewW, viewH int) Portal {
	p.OffsetX += dx
	p.OffsetY += dy
	return p.clamp(viewW, viewH)
}

// ScrollPage moves a full viewport height, up (-1) or down (+1).
func (p Portal) ScrollPage(dir, viewW, viewH int) Portal {
	return p.ScrollBy(0, dir*viewH, viewW, viewH)
}

// ScrollHome resets to the top.
func (p Portal) ScrollHome() Portal { p.OffsetY = 0; return p }

// ScrollEnd jumps to the bottom given a viewport height.
func (p Portal) ScrollEnd(viewH int) Portal {
	p.OffsetY = p.ChildHeight - viewH
	return p.clamp(p.ChildWidth, viewH)
}

func (p Portal) clamp(viewW, viewH int) Portal {
	maxY := p.ChildHeight - viewH
	if maxY < 0 {
		maxY = 0
	}
	maxX := p.ChildWidth - viewW
	if maxX < 0 {
		maxX = 0
	}
	if p.OffsetY < 0 {
		p.OffsetY = 0
	}
	if p.OffsetY > maxY {
		p.OffsetY = maxY
	}
	if p.OffsetX < 0 {
		p.OffsetX = 0
	}
	if p.OffsetX > maxX {
		p.OffsetX = maxX
	}
	return p
}

func (p Portal) Render(width, height int) styledtext.Frame {
	full := p.Child.Render(p.ChildWidth, p.ChildHeight)
	f := styledtext.BlankFrame(width, height)
	for y := 0; y < height; y++ {
		sy := y + p.OffsetY
		if sy < 0 || sy >= len(full.Cells) {
			continue
		}
		for x := 0; x < width; x++ {
			sx := x + p.OffsetX
			if sx < 0 || sx >= len(full.Cells[sy]) {
				continue
			}
			f.Cells[y][x] = full.Cells[sy][sx]
		}
	}
	return f
}
