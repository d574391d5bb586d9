// Package registry maps a file to the ordered list of ToolDescriptors
// that apply — producing the Entries a Row needs. Applicability is
// decided by extension, plus the shebang line for shellcheck; the
// content-sniffer result (the `file` utility, see Sniff) does not
// affect which descriptors apply.
package registry

import (
	"os/exec"

	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/domain"
)

// Registry holds the tools available after startup elision.
type Registry struct {
	descriptors []*domain.ToolDescriptor
	repoRoot    string
}

// New builds a Registry for a codebase root, dropping any descriptor
// whose executable is not on $PATH (except the synthetic "contents" and
// "metadata" tools, which need no subprocess) and logging an Info line
// for each elision, per §4.5/§7.
func New(codebaseRoot string, log *applog.Buffer) *Registry {
	repoRoot := detectRepoRoot(codebaseRoot)
	all := builtinDescriptors(repoRoot)

	var kept []*domain.ToolDescriptor
	for _, d := range all {
		if d.Argv.Program == "" {
			kept = append(kept, d) // synthetic tool, no executable needed
			continue
		}
		if _, err := exec.LookPath(d.Argv.Program); err != nil {
			if log != nil {
				log.Info("tool elided: " + d.Name + " (" + d.Argv.Program + " not found on PATH)")
			}
			continue
		}
		kept = append(kept, d)
	}

	return &Registry{descriptors: kept, repoRoot: repoRoot}
}

// RepoRoot returns the detected git repository root, or "" if the
// codebase isn't a git repository.
func (r *Registry) RepoRoot() string { return r.repoRoot }

// Descriptors returns every registered descriptor, in registration
// order (the order Entries appear in within a Row).
func (r *Registry) Descriptors() []*domain.ToolDescriptor {
	return append([]*domain.ToolDescriptor(nil), r.descriptors...)
}

// Classify returns the descriptors applicable to path/snapshot, in
// registration order, as decided by each descriptor's Applicable
// predicate (extension, and for shellcheck also the shebang line). The
// `file` content sniffer is not consulted here.
func (r *Registry) Classify(path domain.Path, snap domain.FileSnapshot) []*domain.ToolDescriptor {
	var out []*domain.ToolDescriptor
	for _, d := range r.descriptors {
		if d.Applicable == nil || d.Applicable(path, snap) {
			out = append(out, d)
		}
	}
	return out
}

// Sniff classifies an extensionless file by shebang, falling back to
// the `file` utility, for display purposes only.
func (r *Registry) Sniff(path domain.Path) string {
	if !isShebangOrExtensionless(path) {
		return ""
	}
	if interp := shebangInterpreter(path.String()); interp != "" {
		return "shebang:" + interp
	}
	return sniffContent(path.String())
}

// BuildRow constructs a fresh Row for path/snapshot with one Pending (or
// NotApplicable) Entry per descriptor, per the invariant in §3.1: an
// Entry exists for every descriptor whose applicable_predicate holds.
func (r *Registry) BuildRow(path domain.Path, snap domain.FileSnapshot) domain.Row {
	entries := make([]domain.Entry, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		applies := d.Applicable == nil || d.Applicable(path, snap)
		status := domain.Pending
		if !applies {
			status = domain.NotApplicable
		}
		entries = append(entries, domain.Entry{
			Descriptor:  d,
			SnapshotKey: snap.Key(d.Version),
			Status:      status,
		})
	}
	return domain.Row{Path: path, Snapshot: snap, Entries: entries}
}
