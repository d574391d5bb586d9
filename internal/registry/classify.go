package registry

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// shebangInterpreter reads the first line of path and, if it is a
// shebang ("#!/usr/bin/env python3" or "#!/bin/bash"), returns the base
// name of the interpreter ("python3", "bash"). Returns "" if there is no
// shebang or the file can't be read.
func shebangInterpreter(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 4096), 4096)
	if !sc.Scan() {
		return ""
	}
	line := sc.Text()
	if !strings.HasPrefix(line, "#!") {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return ""
	}
	// "#!/usr/bin/env python3" -> fields[0]=="/usr/bin/env", fields[1]=="python3"
	if filepath.Base(fields[0]) == "env" && len(fields) > 1 {
		return fields[1]
	}
	return filepath.Base(fields[0])
}

// sniffContent runs the `file` utility as a last-resort classifier for
// extensionless files with no recognizable shebang, per §4.5. It
// returns the description `file` prints (e.g. "ASCII text", "ELF
// 64-bit..."), or "" if the utility is unavailable or fails.
func sniffContent(path string) string {
	if _, err := exec.LookPath("file"); err != nil {
		return ""
	}
	out, err := exec.Command("file", "-b", path).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
