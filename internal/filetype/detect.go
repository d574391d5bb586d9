// Package filetype provides the lowest-level file classification signal:
// whether a file looks like text or binary, by sniffing its first bytes.
// The registry layers extension/shebang/content-sniffer classification
// on top of this. (The teacher's image-format table lived here to back
// an image preview pane the monitor's Result pane doesn't have — see
// DESIGN.md — and was dropped.)
package filetype

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind is the coarse classification of a file's contents.
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

// DetectKind determines whether path looks like text or binary by
// reading its first bytes.
func DetectKind(path string) Kind {
	if isBinaryFile(path) {
		return KindBinary
	}
	return KindText
}

// isBinaryFile checks if a file appears to be binary by looking for
// null bytes in the first 512 bytes, the same heuristic grep/git use.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}

// Ext returns the lowercased extension of path, including the leading
// dot, or "" if there is none.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func (k Kind) String() string {
	if k == KindBinary {
		return "Binary"
	}
	return "Text"
}
