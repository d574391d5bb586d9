// Package terminal detects host terminal capabilities needed by the
// render layer: whether 24-bit color is supported, falling back to the
// 8-color palette otherwise (§6). (Kitty graphics-protocol detection
// lived here in the teacher's file browser for its image preview pane;
// the monitor's Result pane shows tool output, not images, so that part
// was dropped — see DESIGN.md.)
package terminal

import (
	"os"
	"strings"
)

// Capabilities holds detected terminal capabilities.
type Capabilities struct {
	TrueColor bool
}

// Detect probes the terminal environment to determine capabilities.
func Detect() Capabilities {
	return Capabilities{TrueColor: detectTrueColor()}
}

// detectTrueColor checks if the terminal supports 24-bit color.
func detectTrueColor() bool {
	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return true
	}

	term := os.Getenv("TERM")
	return strings.Contains(term, "256color") || strings.Contains(term, "truecolor")
}
