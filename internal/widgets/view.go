package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Orientation selects whether View stacks its children side by side
// (Landscape) or top to bottom (Portrait).
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

// View shows two panes (summary + result) in landscape or portrait,
// with one of them able to take the full rectangle when focused
// fullscreen.
type View struct {
	First, Second Widget
	FirstWeight, SecondWeight int
	Orientation   Orientation
	Fullscreen    bool // if true, only First is shown at full size
}

func (v View) Render(width, height int) styledtext.Frame {
	if v.Fullscreen {
		return v.First.Render(width, height)
	}
	fw, sw := v.FirstWeight, v.SecondWeight
	if fw <= 0 {
		fw = 1
	}
	if sw <= 0 {
		sw = 1
	}
	children := []Child{
		{Widget: v.First, Weight: fw},
		{Widget: v.Second, Weight: sw},
	}
	if v.Orientation == Portrait {
		return Column{Children: children}.Render(width, height)
	}
	return Row{Children: children}.Render(width, height)
}
