// Package styledtext is an immutable model of character-plus-style runs.
// It composes into the widgets in internal/widgets and is rendered as a
// diff against the terminal by Render in render.go. Isolating styled text
// from terminal I/O keeps every widget testable by plain string/value
// comparison and prevents style leakage between cells.
package styledtext

import "fmt"

// Color is a 24-bit RGB color, or the zero value meaning "terminal
// default" (the Default sentinel).
type Color struct {
	R, G, B uint8
	isSet   bool
}

// Default is the "use the terminal's default color" sentinel.
var Default = Color{}

// RGB constructs a set 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, isSet: true}
}

// IsDefault reports whether c is the Default sentinel.
func (c Color) IsDefault() bool { return !c.isSet }

// Equal reports whether two colors are the same (both default, or both
// set to the same RGB triple).
func (c Color) Equal(o Color) bool {
	if c.isSet != o.isSet {
		return false
	}
	if !c.isSet {
		return true
	}
	return c.R == o.R && c.G == o.G && c.B == o.B
}

func (c Color) String() string {
	if !c.isSet {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the full set of attributes a character-cell can carry.
type Style struct {
	FG        Color
	BG        Color
	Bold      bool
	Italic    bool
	Underline bool
	Faint     bool
	Reverse   bool
}

// Equal reports whether two styles render identically.
func (s Style) Equal(o Style) bool {
	return s.FG.Equal(o.FG) && s.BG.Equal(o.BG) &&
		s.Bold == o.Bold && s.Italic == o.Italic && s.Underline == o.Underline &&
		s.Faint == o.Faint && s.Reverse == o.Reverse
}

// Resolved applies Reverse by swapping FG/BG, the way a terminal would
// when painting the cell; widgets call this just before emitting SGR so
// Reverse never needs special-casing downstream.
func (s Style) Resolved() Style {
	if !s.Reverse {
		return s
	}
	r := s
	r.FG, r.BG = s.BG, s.FG
	r.Reverse = false
	return r
}

// IsZero reports whether s carries no attributes at all (the style a
// plain, unstyled cell has).
func (s Style) IsZero() bool {
	return s.Equal(Style{})
}
