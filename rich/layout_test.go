package rich

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/style"
	"github.com/sanity-io/litter"
)

const (
	cw = 10 // mdtest.CellWidth
	ch = 14 // mdtest.CellHeight
)

func layoutOf(t *testing.T, r *Renderer, doc string, width int, focus func(ast.NodeID) bool) (*document.Tree, *Layout) {
	t.Helper()
	tree := document.New()
	tree.Load(doc)
	id := tree.Blocks()[0]
	l := r.Layout(r.Emit(tree.Arena(), id, focus), width)
	if got, want := len(l.Anchors), tree.RuneLen(id); got != want {
		t.Fatalf("%q: %d anchors for %d runes", doc, got, want)
	}
	return tree, l
}

func points(anchors []cursor.Anchor) []image.Point {
	var out []image.Point
	for _, a := range anchors {
		out = append(out, a.Point)
	}
	return out
}

func TestLayoutAnchorsEveryRune(t *testing.T) {
	r := newTestRenderer()
	for _, doc := range coverageDocs {
		tree := document.New()
		tree.Load(doc)
		for _, id := range tree.Blocks() {
			for _, width := range []int{40, 200, 1000} {
				l := r.Layout(r.Emit(tree.Arena(), id, nil), width)
				if got, want := len(l.Anchors), tree.RuneLen(id); got != want {
					t.Errorf("doc %q block %v width %d: %d anchors, want %d\n%s",
						doc, id, width, got, want, litter.Sdump(l.Rows))
				}
				for i, a := range l.Anchors {
					if a.Height <= 0 {
						t.Errorf("doc %q block %v: anchor %d has height %d", doc, id, i, a.Height)
					}
				}
			}
		}
	}
}

func TestLayoutSingleRow(t *testing.T) {
	r := newTestRenderer()
	_, l := layoutOf(t, r, "ab cd\n", 1000, nil)

	want := []image.Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0}}
	if diff := cmp.Diff(want, points(l.Anchors)); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
	if got, want := l.Height, ch; got != want {
		t.Errorf("height %d, want %d", got, want)
	}
	if got, want := len(l.Rows), 1; got != want {
		t.Errorf("%d rows, want %d", got, want)
	}
}

func TestLayoutWraps(t *testing.T) {
	r := newTestRenderer()
	_, l := layoutOf(t, r, "aaa bbb ccc\n", 75, nil)

	if got, want := len(l.Rows), 2; got != want {
		t.Fatalf("%d rows, want %d: %s", got, want, litter.Sdump(l.Rows))
	}
	if got, want := l.Anchors[8].Point, image.Pt(0, ch); got != want {
		t.Errorf("first rune of second row at %v, want %v", got, want)
	}
	if got, want := l.Anchors[0].Height, ch; got != want {
		t.Errorf("first row pitch %d, want %d", got, want)
	}
	if got, want := l.Height, 2*ch; got != want {
		t.Errorf("height %d, want %d", got, want)
	}
}

func TestLayoutSoftBreakSpacing(t *testing.T) {
	r := newTestRenderer()
	_, l := layoutOf(t, r, "aa\nbb\n", 1000, nil)

	want := []cursor.Anchor{
		{Point: image.Pt(0, 0), Height: ch + softBreakSpace},
		{Point: image.Pt(10, 0), Height: ch + softBreakSpace},
		{Point: image.Pt(20, 0), Height: ch + softBreakSpace},
		{Point: image.Pt(0, ch+softBreakSpace), Height: ch},
		{Point: image.Pt(10, ch+softBreakSpace), Height: ch},
		{Point: image.Pt(20, ch+softBreakSpace), Height: ch},
	}
	if diff := cmp.Diff(want, l.Anchors); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
}

func TestLayoutHiddenMarkup(t *testing.T) {
	r := newTestRenderer()

	_, l := layoutOf(t, r, "**b** x\n", 1000, nil)
	want := []image.Point{{0, 0}, {0, 0}, {0, 0}, {10, 0}, {10, 0}, {10, 0}, {20, 0}, {30, 0}}
	if diff := cmp.Diff(want, points(l.Anchors)); diff != "" {
		t.Errorf("unfocused anchors (-want +got):\n%s", diff)
	}

	focus := func(ast.NodeID) bool { return true }
	_, l = layoutOf(t, r, "**b** x\n", 1000, focus)
	want = []image.Point{{0, 0}, {10, 0}, {20, 0}, {30, 0}, {40, 0}, {50, 0}, {60, 0}, {70, 0}}
	if diff := cmp.Diff(want, points(l.Anchors)); diff != "" {
		t.Errorf("focused anchors (-want +got):\n%s", diff)
	}
}

func TestLayoutHitTestInverse(t *testing.T) {
	centered, err := style.Parse([]byte("[paragraph]\ntext-align = \"center\"\n"))
	if err != nil {
		t.Fatal(err)
	}

	tt := []struct {
		name  string
		sheet *style.Sheet
		doc   string
	}{
		{"left", style.Default(), "one two three four\nfive six\n"},
		{"centered", centered, "one two three four\nfive six\n"},
		{"markup", style.Default(), "a **b** and `c` [d](e)\n"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRenderer(WithSheet(tc.sheet))
			_, l := layoutOf(t, r, tc.doc, 100, nil)
			for i, a := range l.Anchors {
				j, ok := cursor.HitTest(l.Anchors, a.Point)
				if !ok || l.Anchors[j].Point != a.Point {
					t.Errorf("anchor %d at %v hit %d at %v", i, a.Point, j, l.Anchors[j].Point)
				}
			}
		})
	}
}

func TestLayoutCentered(t *testing.T) {
	sheet, err := style.Parse([]byte("[paragraph]\ntext-align = \"center\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRenderer(WithSheet(sheet))
	_, l := layoutOf(t, r, "ab\n", 100, nil)

	want := []image.Point{{40, 0}, {50, 0}, {60, 0}}
	if diff := cmp.Diff(want, points(l.Anchors)); diff != "" {
		t.Errorf("anchors (-want +got):\n%s", diff)
	}
	if i, _ := cursor.HitTest(l.Anchors, image.Pt(45, 5)); i != 0 {
		t.Errorf("tie at 45 went to anchor %d, want 0", i)
	}
}

func TestLayoutBackgroundAndPadding(t *testing.T) {
	r := newTestRenderer()
	_, l := layoutOf(t, r, "```\ncode\n```\n", 400, nil)

	st := r.Sheet().Resolve("block_code", "")
	if len(l.Boxes) == 0 {
		t.Fatalf("no background box")
	}
	b := l.Boxes[0]
	if got, want := b.Color, st.Background; got != want {
		t.Errorf("box colour %v, want %v", got, want)
	}
	if got, want := b.Rect.Min, image.Pt(st.Indent, 0); got != want {
		t.Errorf("box origin %v, want %v", got, want)
	}
	// The first visible rune follows the hidden fence line.
	first := l.Anchors[4]
	if got, want := first.Point, image.Pt(st.Indent+st.Padding.Left, st.Padding.Top); got != want {
		t.Errorf("first code rune at %v, want %v", got, want)
	}
	if got, want := l.Height, st.Padding.Top+ch+st.Padding.Bottom; got != want {
		t.Errorf("height %d, want %d", got, want)
	}
}

func TestLayoutRowsTile(t *testing.T) {
	r := newTestRenderer()
	for _, doc := range coverageDocs {
		tree := document.New()
		tree.Load(doc)
		for _, id := range tree.Blocks() {
			l := r.Layout(r.Emit(tree.Arena(), id, nil), 120)
			for i := 0; i+1 < len(l.Rows); i++ {
				row := l.Rows[i]
				if row.End == row.First {
					continue
				}
				a := l.Anchors[row.First]
				if a.Y+a.Height != l.Rows[i+1].Y {
					t.Errorf("doc %q: row %d ends at %d, next starts at %d", doc, i, a.Y+a.Height, l.Rows[i+1].Y)
				}
			}
		}
	}
}

func TestFit(t *testing.T) {
	tt := []struct {
		w, h, max  int
		wantW, wantH int
	}{
		{10, 10, 100, 10, 10},
		{200, 100, 100, 100, 50},
		{0, 0, 100, 0, 0},
	}
	for _, tc := range tt {
		w, h := fit(tc.w, tc.h, tc.max)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("fit(%d, %d, %d) = %d, %d, want %d, %d", tc.w, tc.h, tc.max, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ab  cd e ", []string{"ab", "  ", "cd", " ", "e", " "}},
		{"  lead", []string{"  ", "lead"}},
		{"ab 日本", []string{"ab", " ", "日", "本"}},
		{"well-known", []string{"well-", "known"}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, words(tc.in)); diff != "" {
			t.Errorf("words(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestLayoutWrapsIdeographs(t *testing.T) {
	r := newTestRenderer()
	// Ideographs take two cells and may break between any two of them.
	_, l := layoutOf(t, r, "ab 日本語日本語\n", 12*cw, nil)

	if got, want := len(l.Rows), 2; got != want {
		t.Fatalf("%d rows, want %d: %s", got, want, litter.Sdump(l.Rows))
	}
	if got, want := l.Anchors[6].Point, image.Pt(9*cw, 0); got != want {
		t.Errorf("fourth ideograph at %v, want %v", got, want)
	}
	if got, want := l.Anchors[7].Point, image.Pt(0, ch); got != want {
		t.Errorf("first rune of second row at %v, want %v", got, want)
	}
}
