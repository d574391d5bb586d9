package styledtext

import (
	"strings"
	"testing"
)

func frameFromText(rows []string) Frame {
	f := Frame{Width: len(rows[0]), Height: len(rows)}
	for _, row := range rows {
		var cells []Run
		for _, r := range row {
			cells = append(cells, Run{Ch: r})
		}
		f.Cells = append(f.Cells, cells)
	}
	return f
}

func TestRenderDeterministic(t *testing.T) {
	a := frameFromText([]string{"ab", "cd"})
	b := frameFromText([]string{"ax", "cd"})

	out1 := Render(a, b, true)
	out2 := Render(a, b, true)
	if out1 != out2 {
		t.Fatalf("render not deterministic:\n%q\n%q", out1, out2)
	}
}

func TestRenderSkipsUnchangedCells(t *testing.T) {
	a := frameFromText([]string{"abc"})
	b := frameFromText([]string{"abc"})
	out := Render(a, b, true)
	if out != "" {
		t.Fatalf("expected no output for identical frames, got %q", out)
	}
}

func TestFramePlainJoinsRowsWithNewlines(t *testing.T) {
	f := frameFromText([]string{"ab", "cd"})
	out := f.Plain(true)
	plain := stripSGR(out)
	if plain != "ab\ncd" {
		t.Fatalf("expected plain rows, got %q", plain)
	}
}

func stripSGR(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if r == 'm' {
				inEsc = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
