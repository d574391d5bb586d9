package domain

// JobSpec is the message the engine sends a worker subprocess over the
// wire protocol in internal/wire: argv fully resolved ({abs}/{rel}
// substituted by the parent, which knows the codebase root), plus
// enough of the ToolDescriptor's classifier to let the worker classify
// the exit itself without needing the descriptor's unexported func
// fields (which can't cross a process boundary).
type JobSpec struct {
	JobID              uint64
	Path               string
	ToolName           string
	Argv               []string // Argv[0] is the program; nil/empty means a synthetic tool the engine handles in-process
	TimeoutS           int
	ClassifierKind     ClassifierKind
	ExitCodeTable      map[int]Status
	StdoutEmptyMeansOk bool
	SnapshotKey        SnapshotKey
}

// JobResult is what a worker sends back: the classified outcome plus the
// raw captured output, which the parent turns into a styled Result body
// (ANSI-interpreting it where the tool emits color).
type JobResult struct {
	JobID            uint64
	Status           Status
	Body             []byte
	StartedAtUnixNS  int64
	FinishedAtUnixNS int64
}
