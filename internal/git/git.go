// Package git provides the minimal repository-root detection the
// registry needs to build argv for the git_log/git_blame tool
// descriptors. The teacher's file browser built an entire git-status/
// diff/ahead-behind UI on top of this package; that UI is a VCS
// integration beyond running git as a described external tool, which is
// explicitly out of scope (see spec.md §1, §9), so it was removed —
// see DESIGN.md.
package git

import (
	"os/exec"
	"strings"
)

// IsRepo checks if the path is inside a git repository.
// Returns (isRepo, repoRoot).
func IsRepo(path string) (bool, string) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		return false, ""
	}
	return true, strings.TrimSpace(string(output))
}
