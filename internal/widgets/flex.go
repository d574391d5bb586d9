package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Child is one element of a Row/Column: either a fixed size or a weight
// sharing the remaining space proportionally with other weighted
// children, matching the teacher's own fixed-vs-proportional pane
// sizing (contexTUI's split ratio between tree and preview panes).
type Child struct {
	Widget Widget
	Fixed  int // if > 0, this child gets exactly Fixed cells along the main axis
	Weight int // otherwise, shares remaining space proportional to Weight (default 1)
}

func sizes(children []Child, total int) []int {
	remaining := total
	out := make([]int, len(children))
	totalWeight := 0
	for i, c := range children {
		if c.Fixed > 0 {
			out[i] = c.Fixed
			remaining -= c.Fixed
		} else {
			w := c.Weight
			if w <= 0 {
				w = 1
			}
			totalWeight += w
		}
	}
	if remaining < 0 {
		remaining = 0
	}
	used := 0
	for i, c := range children {
		if c.Fixed > 0 {
			continue
		}
		w := c.Weight
		if w <= 0 {
			w = 1
		}
		share := remaining * w / maxInt(totalWeight, 1)
		out[i] = share
		used += share
	}
	// Give any leftover (rounding) cells to the last weighted child.
	if leftover := remaining - used; leftover > 0 {
		for i := len(children) - 1; i >= 0; i-- {
			if children[i].Fixed == 0 {
				out[i] += leftover
				break
			}
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Row lays children out left-to-right.
type Row struct {
	Children []Child
	Style    styledtext.Style
}

func (r Row) Render(width, height int) styledtext.Frame {
	f := styledtext.BlankFrame(width, height)
	widths := sizes(r.Children, width)
	x := 0
	for i, c := range r.Children {
		w := widths[i]
		sub := c.Widget.Render(w, height)
		for y := 0; y < height; y++ {
			for dx := 0; dx < w; dx++ {
				if y < len(sub.Cells) && dx < len(sub.Cells[y]) {
					f.Cells[y][x+dx] = sub.Cells[y][dx]
				}
			}
		}
		x += w
	}
	return f
}

// Column lays children out top-to-bottom.
type Column struct {
	Children []Child
	Style    styledtext.Style
}

func (c Column) Render(width, height int) styledtext.Frame {
	f := styledtext.BlankFrame(width, height)
	heights := sizes(c.Children, height)
	y := 0
	for i, child := range c.Children {
		h := heights[i]
		sub := child.Widget.Render(width, h)
		for dy := 0; dy < h; dy++ {
			if dy < len(sub.Cells) {
				f.Cells[y+dy] = sub.Cells[dy]
			}
		}
		y += h
	}
	return f
}
