package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Text renders a StyledText into a fixed-size rectangle, clipping lines
// that overflow width and padding/cropping the line count to height.
type Text struct {
	Content styledtext.StyledText
	Style   styledtext.Style // fill style for padding cells
}

func (t Text) Render(width, height int) styledtext.Frame {
	f := styledtext.BlankFrame(width, height)
	lines := t.Content.Lines()
	for y := 0; y < height; y++ {
		if y < len(lines) {
			f.Cells[y] = clipRow(lines[y], width, t.Style)
		} else {
			f.Cells[y] = blankRow(width, t.Style)
		}
	}
	return f
}
