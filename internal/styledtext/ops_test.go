package styledtext

import "testing"

func TestTruncateIdempotent(t *testing.T) {
	cases := []struct {
		s string
		w int
	}{
		{"hello world", 5},
		{"hello world", 0},
		{"hello world", 100},
		{"", 3},
		{"日本語テキスト", 4},
	}
	for _, c := range cases {
		t1 := New(c.s, Style{}).Truncate(c.w, '…')
		t2 := t1.Truncate(c.w, '…')
		if t1.String() != t2.String() {
			t.Fatalf("not idempotent for %q width %d: %q vs %q", c.s, c.w, t1.String(), t2.String())
		}
		if t1.Width() > c.w {
			t.Fatalf("truncated width %d exceeds budget %d for %q", t1.Width(), c.w, c.s)
		}
	}
}

func TestTruncateShorterThanWidthUnchanged(t *testing.T) {
	a := New("hi", Style{})
	if got := a.Truncate(10, '…').String(); got != "hi" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateAddsEllipsis(t *testing.T) {
	a := New("hello world", Style{})
	got := a.Truncate(5, '…').String()
	if got != "hell…" {
		t.Fatalf("got %q", got)
	}
}
