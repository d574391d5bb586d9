package fswatch

import "github.com/connorleisz/monitor/internal/domain"

// Kind tags the shape of an Event, per §4.4.
type Kind int

const (
	Added Kind = iota
	Modified
	Removed
)

// Event is one change the synchronizer has detected. A Moved(src, dst) is
// forwarded as Removed(src) followed by Added(dst), per §4.4, so Event
// never needs a src/dst pair of its own.
type Event struct {
	Kind     Kind
	Path     domain.Path
	Snapshot domain.FileSnapshot // zero for Removed
}
