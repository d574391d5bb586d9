package styledtext

import "strings"

// Run is one codepoint paired with its style.
type Run struct {
	Ch    rune
	Style Style
}

// StyledText is an immutable sequence of Runs. Every operation below
// returns a new value; none mutate the receiver or share its backing
// array with the result.
type StyledText struct {
	runs []Run
}

// New builds a StyledText where every rune of s carries the same style.
func New(s string, style Style) StyledText {
	runs := make([]Run, 0, len(s))
	for _, r := range s {
		runs = append(runs, Run{Ch: r, Style: style})
	}
	return StyledText{runs: runs}
}

// FromRuns builds a StyledText from a caller-owned Run slice, copying it
// so the result is independent of the caller's backing array.
func FromRuns(runs []Run) StyledText {
	cp := make([]Run, len(runs))
	copy(cp, runs)
	return StyledText{runs: cp}
}

// Runs returns a copy of the underlying runs; callers may not mutate the
// StyledText through it.
func (t StyledText) Runs() []Run {
	cp := make([]Run, len(t.runs))
	copy(cp, t.runs)
	return cp
}

// Len returns the number of runes (not display cells).
func (t StyledText) Len() int { return len(t.runs) }

// String renders the plain text, discarding style.
func (t StyledText) String() string {
	var b strings.Builder
	for _, r := range t.runs {
		b.WriteRune(r.Ch)
	}
	return b.String()
}

// Concat returns a new StyledText with o appended after t.
func Concat(t, o StyledText) StyledText {
	out := make([]Run, 0, len(t.runs)+len(o.runs))
	out = append(out, t.runs...)
	out = append(out, o.runs...)
	return StyledText{runs: out}
}

// Slice returns the half-open rune range [i, j). Out-of-range indices are
// clamped rather than panicking, since callers frequently slice against
// a cursor that may be one past the end.
func (t StyledText) Slice(i, j int) StyledText {
	if i < 0 {
		i = 0
	}
	if j > len(t.runs) {
		j = len(t.runs)
	}
	if i >= j {
		return StyledText{}
	}
	out := make([]Run, j-i)
	copy(out, t.runs[i:j])
	return StyledText{runs: out}
}

// Lines splits at LF, with CRLF collapsed to a single line break.
func (t StyledText) Lines() []StyledText {
	var lines []StyledText
	var cur []Run
	for i := 0; i < len(t.runs); i++ {
		r := t.runs[i]
		if r.Ch == '\n' {
			lines = append(lines, StyledText{runs: cur})
			cur = nil
			continue
		}
		if r.Ch == '\r' && i+1 < len(t.runs) && t.runs[i+1].Ch == '\n' {
			continue // collapse CR of CRLF; the following LF ends the line
		}
		cur = append(cur, r)
	}
	lines = append(lines, StyledText{runs: cur})
	return lines
}
