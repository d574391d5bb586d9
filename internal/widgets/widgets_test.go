package widgets

import (
	"testing"

	"github.com/connorleisz/monitor/internal/styledtext"
)

func TestTextRenderClipsAndPads(t *testing.T) {
	w := Text{Content: styledtext.New("hi", styledtext.Style{})}
	f := w.Render(5, 2)
	if f.Width != 5 || f.Height != 2 {
		t.Fatalf("unexpected frame size %dx%d", f.Width, f.Height)
	}
	if string(f.Cells[0][0].Ch) != "h" || f.Cells[0][4].Ch != ' ' {
		t.Fatalf("unexpected row: %+v", f.Cells[0])
	}
}

func TestRowSplitsWidthByWeight(t *testing.T) {
	left := Text{Content: styledtext.New("L", styledtext.Style{})}
	right := Text{Content: styledtext.New("R", styledtext.Style{})}
	r := Row{Children: []Child{{Widget: left, Weight: 1}, {Widget: right, Weight: 1}}}
	f := r.Render(10, 1)
	if f.Cells[0][0].Ch != 'L' || f.Cells[0][5].Ch != 'R' {
		t.Fatalf("unexpected split: %+v", f.Cells[0])
	}
}

func TestPortalScrollClampsToChildBounds(t *testing.T) {
	child := Text{Content: styledtext.New("a\nb\nc\nd\ne", styledtext.Style{})}
	p := Portal{Child: child, ChildWidth: 5, ChildHeight: 5}
	p = p.ScrollBy(0, 100, 5, 2) // try to scroll way past the end
	if p.OffsetY != 3 {          // ChildHeight(5) - viewport(2)
		t.Fatalf("expected clamp to 3, got %d", p.OffsetY)
	}
	p = p.ScrollBy(0, -100, 5, 2)
	if p.OffsetY != 0 {
		t.Fatalf("expected clamp to 0, got %d", p.OffsetY)
	}
}

func TestTableHitTest(t *testing.T) {
	tb := Table{
		Rows:         [][]styledtext.StyledText{{styledtext.New("a", styledtext.Style{}), styledtext.New("b", styledtext.Style{})}},
		ColumnWidths: []int{3, 3},
		Gutter:       1,
	}
	row, col, ok := tb.HitTest(5, 0)
	if !ok || row != 0 || col != 1 {
		t.Fatalf("expected (0,1), got (%d,%d) ok=%v", row, col, ok)
	}
	_, _, ok = tb.HitTest(3, 0) // inside the gutter
	if ok {
		t.Fatalf("expected gutter coordinate to miss")
	}
}

func TestRenderDeterministicAcrossPasses(t *testing.T) {
	tree := View{
		First:  Text{Content: styledtext.New("summary", styledtext.Style{})},
		Second: Text{Content: styledtext.New("result", styledtext.Style{})},
	}
	a := tree.Render(20, 4)
	b := tree.Render(20, 4)
	for y := range a.Cells {
		for x := range a.Cells[y] {
			if a.Cells[y][x] != b.Cells[y][x] {
				t.Fatalf("render not deterministic at (%d,%d)", x, y)
			}
		}
	}
}
