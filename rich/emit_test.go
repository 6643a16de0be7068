package rich

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/mdtest"
)

var coverageDocs = []string{
	"",
	"hello world\n",
	"# Title\n\nsome *emphasis* and **strong** text\n",
	"a paragraph\nthat continues\n",
	"> quoted\n> more\n",
	"- one\n- two\n  - nested\n- three\n",
	"1. first\n2. second\n",
	"```go\nfunc main() {}\n```\n",
	"```\nunclosed\n",
	"    indented code\n    more\n",
	"$$\nx^2 + y^2\n$$\n",
	"<div>\nhtml\n</div>\n",
	"---\n",
	"| a | b |\n|:--|--:|\n| 1 | 2 |\n| 3 | 4 |\n",
	"see [link](http://example.com) and <http://auto.example>\n",
	"an ![image](pic.png) inline\n",
	"inline $e=mc^2$ math\n",
	"`code` span\n",
	"\n\n\nafter blanks\n",
	"mixed **bold *and italic*** end\n",
	"unicode é and 日本語 text\n",
}

func newTestRenderer(opts ...Option) *Renderer {
	return New(append([]Option{WithFont(mdtest.NewFont(mdtest.CellWidth, mdtest.CellHeight))}, opts...)...)
}

func TestEmitCoversSource(t *testing.T) {
	r := newTestRenderer()
	focusAll := func(ast.NodeID) bool { return true }

	for _, doc := range coverageDocs {
		tree := document.New()
		tree.Load(doc)
		for _, id := range tree.Blocks() {
			want := tree.Text(id)
			for _, focus := range []func(ast.NodeID) bool{nil, focusAll} {
				ops := r.Emit(tree.Arena(), id, focus)
				if diff := cmp.Diff(want, Source(ops)); diff != "" {
					t.Errorf("doc %q block %v (focus %v): source mismatch (-want +got):\n%s", doc, id, focus != nil, diff)
				}
				if got, want := Runes(ops), tree.RuneLen(id); got != want {
					t.Errorf("doc %q block %v: Runes %d, want %d", doc, id, got, want)
				}
			}
		}
	}
}

func TestEmitHidesMarkup(t *testing.T) {
	r := newTestRenderer()
	tree := document.New()
	tree.Load("some **bold** text\n")
	id := tree.Blocks()[0]

	visible := func(ops []Op) string {
		var s string
		for _, o := range ops {
			if t, ok := o.(Text); ok {
				s += t.Text
			}
		}
		return s
	}

	if got, want := visible(r.Emit(tree.Arena(), id, nil)), "some bold text"; got != want {
		t.Errorf("unfocused visible text %q, want %q", got, want)
	}
	focus := func(ast.NodeID) bool { return true }
	if got, want := visible(r.Emit(tree.Arena(), id, focus)), "some **bold** text"; got != want {
		t.Errorf("focused visible text %q, want %q", got, want)
	}
}

func TestEmitStyles(t *testing.T) {
	r := newTestRenderer()
	tree := document.New()
	tree.Load("a **b *c***\n")
	ops := r.Emit(tree.Arena(), tree.Blocks()[0], nil)

	type want struct {
		Bold, Italic bool
	}
	got := map[string]want{}
	for _, o := range ops {
		if t, ok := o.(Text); ok {
			got[t.Text] = want{t.Style.Bold, t.Style.Italic}
		}
	}
	if diff := cmp.Diff(map[string]want{
		"a ": {false, false},
		"b ": {true, false},
		"c":  {true, true},
	}, got); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
}

func TestEmitListLabels(t *testing.T) {
	r := newTestRenderer()
	tree := document.New()
	tree.Load("- one\n- two\n\n3. three\n")

	var labels []string
	for _, id := range tree.Blocks() {
		for _, o := range r.Emit(tree.Arena(), id, nil) {
			if s, ok := o.(SerialNumber); ok {
				labels = append(labels, s.Label)
			}
		}
	}
	if diff := cmp.Diff([]string{"•", "•", "3."}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
}
