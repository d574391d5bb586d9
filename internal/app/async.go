package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/engine"
	"github.com/connorleisz/monitor/internal/fswatch"
)

// FsEventMsg carries one coalesced filesystem change, mirroring the
// teacher's own FsEventMsg/waitForFsEvent pair in internal/app/async.go.
type FsEventMsg struct {
	Event fswatch.Event
	ok    bool // false means the channel closed; the loop stops re-arming
}

// JobResultMsg carries one completed engine Result.
type JobResultMsg struct {
	Result domain.Result
	ok     bool
}

// waitForFsEvent blocks for the synchronizer's next event and returns it
// as a tea.Msg; the Update handler re-arms this after every delivery, the
// same one-shot-then-rearm idiom the teacher's async.go uses for its own
// blocking channel reads.
func waitForFsEvent(w *fswatch.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-w.Events()
		return FsEventMsg{Event: ev, ok: ok}
	}
}

// waitForJobResult blocks for the engine's next completed Result.
func waitForJobResult(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-e.Results()
		return JobResultMsg{Result: r, ok: ok}
	}
}

// clearFeedbackMsg clears the transient clipboard-copy banner.
type clearFeedbackMsg struct{}
