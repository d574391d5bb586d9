package styledtext

import "testing"

func TestConcatSlice(t *testing.T) {
	a := New("abc", Style{Bold: true})
	b := New("def", Style{})
	c := Concat(a, b)
	if c.String() != "abcdef" {
		t.Fatalf("got %q", c.String())
	}
	if got := c.Slice(2, 5).String(); got != "cde" {
		t.Fatalf("slice got %q", got)
	}
}

func TestSliceOutOfRangeClamped(t *testing.T) {
	a := New("abc", Style{})
	if got := a.Slice(-5, 100).String(); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := a.Slice(5, 10).String(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestLinesSplitsAndCollapsesCRLF(t *testing.T) {
	a := New("one\r\ntwo\nthree", Style{})
	lines := a.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].String() != "one" || lines[1].String() != "two" || lines[2].String() != "three" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestPadLeftRight(t *testing.T) {
	a := New("ab", Style{})
	if got := a.PadRight(5, Style{}).String(); got != "ab   " {
		t.Fatalf("padright got %q", got)
	}
	if got := a.PadLeft(5, Style{}).String(); got != "   ab" {
		t.Fatalf("padleft got %q", got)
	}
	// Already wide enough: no-op.
	if got := a.PadRight(1, Style{}).String(); got != "ab" {
		t.Fatalf("padright noop got %q", got)
	}
}

func TestTabExpandsToNextMultipleOf8(t *testing.T) {
	a := New("a\tb", Style{})
	if w := a.Width(); w != 9 { // 'a'(1) + tab to col 8 (7) + 'b'(1)
		t.Fatalf("expected width 9, got %d", w)
	}
}
