// Package clipboard copies report bodies or paths to the system
// clipboard, backing the Presenter's "y" key. Adapted from the teacher's
// context-doc clipboard helper (atotto/clipboard + x/ansi.Strip), now
// serving report triage instead of doc curation.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
)

// ErrUnavailable indicates no clipboard utility was found on the host.
var ErrUnavailable = errors.New("clipboard unavailable - install xclip, xsel, or wl-clipboard")

// IsAvailable returns true if clipboard operations are supported.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// CopyPath copies a path to the clipboard with an "@" prefix, matching
// the convention an LLM context-paste expects.
func CopyPath(path string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll("@" + path)
}

// CopyReportBody copies a rendered report body, stripping any embedded
// ANSI escape sequences so the clipboard contents are plain text.
func CopyReportBody(body string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(ansi.Strip(body))
}
