package domain

import (
	"time"

	"github.com/connorleisz/monitor/internal/styledtext"
)

// Result is the outcome of running one tool against one file snapshot.
type Result struct {
	Path        Path
	ToolName    string
	SnapshotKey SnapshotKey
	Status      Status
	Body        styledtext.StyledText
	StartedAt   time.Time
	FinishedAt  time.Time
}
