// Package widgets provides layout primitives (Row, Column, Portal, Table,
// View) composed from internal/styledtext. Layout is a pure function
// from (widget tree, terminal size) to a 2-D array of styled cells;
// internal/app turns each frame into a string with Frame.Plain, and
// bubbletea diffs consecutive strings to produce terminal output.
package widgets

import "github.com/connorleisz/monitor/internal/styledtext"

// Widget is anything that can render itself into a fixed-size rectangle,
// clipping content that doesn't fit.
type Widget interface {
	Render(width, height int) styledtext.Frame
}

// blankRow returns width space cells in the given style.
func blankRow(width int, style styledtext.Style) []styledtext.Run {
	row := make([]styledtext.Run, width)
	for i := range row {
		row[i] = styledtext.Run{Ch: ' ', Style: style}
	}
	return row
}

// clipRow truncates or pads a rendered line to exactly width columns.
// Grid layout here treats one Run as one column (it does not special-
// case double-width runes the way a full terminal cell grid would);
// that is an accepted simplification for this widget layer.
func clipRow(line styledtext.StyledText, width int, style styledtext.Style) []styledtext.Run {
	padded := line.Truncate(width, '…').PadRight(width, style)
	runs := padded.Runs()
	if len(runs) > width {
		runs = runs[:width]
	}
	for len(runs) < width {
		runs = append(runs, styledtext.Run{Ch: ' ', Style: style})
	}
	return runs
}
