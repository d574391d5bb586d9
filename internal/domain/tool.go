package domain

import "github.com/connorleisz/monitor/internal/styledtext"

// ClassifierKind tags which shape a ToolDescriptor's exit classifier
// takes, per the DESIGN NOTES instruction to make classifier variants
// explicit rather than duck-typed.
type ClassifierKind int

const (
	ClassifyExitCode ClassifierKind = iota
	ClassifyStdoutRegex
	ClassifyCustom
)

// Classification is the outcome of running a ToolDescriptor's classifier
// against a finished subprocess.
type Classification struct {
	Status Status
	Body   styledtext.StyledText
}

// ExitRun is everything a classifier needs to know about a finished
// subprocess invocation.
type ExitRun struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Crashed  bool // true if the process was signaled rather than exiting
}

// ToolDescriptor is static data registered at startup describing one
// analyzer.
type ToolDescriptor struct {
	Name      string
	Color     styledtext.Color
	Argv      ArgvTemplate
	TimeoutS  int
	Applicable func(path Path, snap FileSnapshot) bool

	ClassifierKind ClassifierKind
	// ExitCodeTable maps non-zero exit codes to a Status, used when
	// ClassifierKind == ClassifyExitCode. Exit 0 always maps to Ok and
	// is not looked up here; a non-zero code missing from the table is
	// Error.
	ExitCodeTable map[int]Status
	// StdoutEmptyMeansOk is set on ClassifyStdoutRegex descriptors. That
	// classifier matches no pattern: empty stdout is Ok and any stdout
	// is Problem, whether or not this flag is set.
	StdoutEmptyMeansOk bool
	// Classify is used when ClassifierKind == ClassifyCustom.
	Classify func(ExitRun) Classification

	// Version is the tool-version tag folded into SnapshotKey so a
	// tool upgrade invalidates old results even on an unchanged file.
	Version string
}

// ArgvTemplate describes how to build an argv for a given absolute file
// path; AbsPath and RelPath are substituted positionally by the caller.
type ArgvTemplate struct {
	Program string
	Args    []string // may contain the literal tokens "{abs}" and "{rel}"
}

// Build materializes the argv for a file, substituting {abs} and {rel}.
func (a ArgvTemplate) Build(abs, rel string) []string {
	out := make([]string, len(a.Args))
	for i, arg := range a.Args {
		switch arg {
		case "{abs}":
			out[i] = abs
		case "{rel}":
			out[i] = rel
		default:
			out[i] = arg
		}
	}
	return out
}

// ClassifyExit applies a descriptor's classifier to a finished run.
func (d ToolDescriptor) ClassifyExit(run ExitRun) Classification {
	switch d.ClassifierKind {
	case ClassifyCustom:
		return d.Classify(run)
	case ClassifyStdoutRegex:
		if run.Crashed {
			return Classification{Status: Error}
		}
		if d.StdoutEmptyMeansOk {
			if len(run.Stdout) == 0 {
				return Classification{Status: Ok}
			}
			return Classification{Status: Problem}
		}
		if len(run.Stdout) > 0 {
			return Classification{Status: Problem}
		}
		return Classification{Status: Ok}
	default: // ClassifyExitCode
		if run.Crashed {
			return Classification{Status: Error}
		}
		if run.ExitCode == 0 {
			return Classification{Status: Ok}
		}
		if s, ok := d.ExitCodeTable[run.ExitCode]; ok {
			return Classification{Status: s}
		}
		return Classification{Status: Error}
	}
}
