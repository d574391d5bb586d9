package styledtext

import "testing"

func TestParseANSIBoldRed(t *testing.T) {
	out := ParseANSI("\x1b[1;31mFAIL\x1b[0m", Style{})
	if out.String() != "FAIL" {
		t.Fatalf("got %q", out.String())
	}
	runs := out.Runs()
	if !runs[0].Style.Bold {
		t.Fatalf("expected bold run")
	}
	if runs[0].Style.FG.IsDefault() {
		t.Fatalf("expected set foreground")
	}
}

func TestParseANSITrueColor(t *testing.T) {
	out := ParseANSI("\x1b[38;2;10;20;30mX", Style{})
	runs := out.Runs()
	if runs[0].Style.FG != RGB(10, 20, 30) {
		t.Fatalf("got %v", runs[0].Style.FG)
	}
}

func TestParseANSIControlCharReplaced(t *testing.T) {
	out := ParseANSI("a\x07b", Style{})
	if out.String() != "a·b" {
		t.Fatalf("got %q", out.String())
	}
}

func TestParseANSIResetClearsStyle(t *testing.T) {
	out := ParseANSI("\x1b[1mbold\x1b[0mnormal", Style{})
	runs := out.Runs()
	if !runs[0].Style.Bold {
		t.Fatalf("expected first run bold")
	}
	if runs[len(runs)-1].Style.Bold {
		t.Fatalf("expected trailing run not bold")
	}
}
