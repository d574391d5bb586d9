package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/styledtext"
)

// Info is the feedback-banner color (the "y" copy confirmation, §4.7).
var Info = lipgloss.Color("75") // Blue - informational

// StatusColor maps an Entry's Status to the styledtext.Color its cell in
// the summary grid is painted with.
func StatusColor(s domain.Status) styledtext.Color {
	switch s {
	case domain.Pending:
		return styledtext.RGB(150, 150, 150) // faint gray
	case domain.Running:
		return styledtext.RGB(97, 175, 239) // Info blue
	case domain.Ok:
		return styledtext.RGB(135, 215, 95) // green (ANSI 113)
	case domain.Problem:
		return styledtext.RGB(255, 175, 0) // orange (ANSI 214)
	case domain.NotApplicable:
		return styledtext.RGB(98, 98, 98) // dim, deliberately quieter than Pending
	case domain.TimedOut:
		return styledtext.RGB(255, 175, 0) // same bucket as Problem
	case domain.Error:
		return styledtext.RGB(255, 0, 0) // red (ANSI 196)
	case domain.Paused:
		return styledtext.RGB(175, 135, 255) // purple
	default:
		return styledtext.Default
	}
}
