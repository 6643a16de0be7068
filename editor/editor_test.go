package editor

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/config"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/markdown"
	"github.com/rjkroege/mdedit/mdtest"
	"github.com/rjkroege/mdedit/rich"
	"github.com/rjkroege/mdedit/theme"
	"github.com/sanity-io/litter"
)

var screen = image.Rect(0, 0, 800, 600)

func newTestEditor(t *testing.T, rect image.Rectangle, text string, opts ...Option) (*Editor, draw.Display) {
	t.Helper()
	d := mdtest.NewDisplay(rect)
	r := rich.New(rich.WithFont(mdtest.NewFont(mdtest.CellWidth, mdtest.CellHeight)))
	e := New(d, r, rect, opts...)
	e.Load(text)
	e.Settle()
	t.Cleanup(e.Close)
	return e, d
}

func at(e *Editor, block, offset int) cursor.Address {
	return cursor.Address{Block: e.Document().ChildAt(block), Offset: offset}
}

func place(t *testing.T, e *Editor, addr cursor.Address) {
	t.Helper()
	if err := e.Cursor().Set(addr); err != nil {
		t.Fatal(err)
	}
	e.caretMoved()
}

func paragraphs(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "paragraph %d\n", i)
	}
	return sb.String()
}

func TestScenarioInsertWord(t *testing.T) {
	e, _ := newTestEditor(t, screen, "# Title\nHello")
	place(t, e, at(e, 1, 5))

	for _, r := range " World" {
		if err := e.Type(r); err != nil {
			t.Fatalf("typing %q: %v", r, err)
		}
	}
	tree := e.Document()
	if got := tree.Len(); got != 2 {
		t.Fatalf("got %d blocks, want 2: %s", got, litter.Sdump(tree.Blocks()))
	}
	if got, want := tree.Text(tree.ChildAt(1)), "Hello World\n"; got != want {
		t.Errorf("second block %q, want %q", got, want)
	}
	if got, want := e.Cursor().Address(), at(e, 1, 11); got != want {
		t.Errorf("cursor at %v, want %v", got, want)
	}
	if !e.Dirty() {
		t.Errorf("document not marked dirty")
	}
}

func TestScenarioBackspaceBlankLine(t *testing.T) {
	e, _ := newTestEditor(t, screen, "A\n\nB")
	place(t, e, at(e, 2, 0))

	if err := e.Backspace(); err != nil {
		t.Fatal(err)
	}
	tree := e.Document()
	for _, id := range tree.Blocks() {
		if tree.Arena().Kind(id) == ast.BlankLine {
			t.Errorf("blank line survived: %q", tree.ToMarkdown())
		}
	}
	text := []rune(tree.Text(e.Cursor().Block()))
	if got := string(text[:e.Cursor().Offset()]); got != "A\n" {
		t.Errorf("text before cursor %q, want the end of A", got)
	}
}

func TestScenarioEnterAtEnd(t *testing.T) {
	e, _ := newTestEditor(t, screen, "Hello\n\nNext\n")
	place(t, e, at(e, 0, 5))

	if err := e.Enter(); err != nil {
		t.Fatal(err)
	}
	tree := e.Document()
	if got := tree.Len(); got != 4 {
		t.Fatalf("got %d blocks, want 4", got)
	}
	p := tree.ChildAt(1)
	if k := tree.Arena().Kind(p); k != ast.Paragraph {
		t.Errorf("new block is %v, want paragraph", k)
	}
	if got, want := e.Cursor().Address(), (cursor.Address{Block: p}); got != want {
		t.Errorf("cursor at %v, want %v", got, want)
	}
	if e.Window().Find(p) == nil {
		t.Errorf("new paragraph not materialized")
	}
}

func TestScenarioScrollToMiddle(t *testing.T) {
	cfg := config.Default()
	cfg.Viewport.Grow = 150
	cfg.Viewport.EvictScreens = 1
	rect := image.Rect(0, 0, 400, 150+cfg.Margin.Top)
	e, _ := newTestEditor(t, rect, paragraphs(500), WithConfig(cfg))

	total := 0
	for _, id := range e.Document().Blocks() {
		total += e.Height(id)
	}
	e.Scroll(total / 2)
	e.Settle()

	w := e.Window()
	if got := w.Len(); got >= 30 {
		t.Errorf("%d blocks materialized, want fewer than 30", got)
	}
	if len(w.Visible()) == 0 {
		t.Errorf("nothing visible in the middle of the document")
	}
	mid := e.Document().Len() / 2
	if w.First() > mid+5 || w.First()+w.Len() < mid-5 {
		t.Errorf("run [%d, %d) far from the middle block %d", w.First(), w.First()+w.Len(), mid)
	}
}

func TestMaterializedIndependentOfLength(t *testing.T) {
	var counts []int
	for _, n := range []int{500, 5000} {
		e, _ := newTestEditor(t, screen, paragraphs(n))
		total := 0
		for _, id := range e.Document().Blocks() {
			total += e.Height(id)
		}
		e.Scroll(total / 2)
		e.Settle()
		counts = append(counts, e.Window().Len())
	}
	if counts[0] == 0 || counts[0] != counts[1] {
		t.Errorf("materialized %d blocks of 500 paragraphs and %d of 5000, want the same nonzero count",
			counts[0], counts[1])
	}
}

func TestWheelStep(t *testing.T) {
	t.Setenv("mousescrollsize", "")
	one, _ := newTestEditor(t, screen, paragraphs(200))
	one.Wheel(1)
	row := one.Window().Offset()
	if row <= 0 {
		t.Fatalf("offset %d after one click, want > 0", row)
	}

	cfg := config.Default()
	cfg.Viewport.Wheel = "3"
	three, _ := newTestEditor(t, screen, paragraphs(200), WithConfig(cfg))
	three.Wheel(1)
	if got, want := three.Window().Offset(), 3*row; got != want {
		t.Errorf("offset %d with a three row step, want %d", got, want)
	}

	t.Setenv("mousescrollsize", "50%")
	half, _ := newTestEditor(t, screen, paragraphs(200))
	half.Wheel(1)
	if got, want := half.Window().Offset(), (screen.Dy()-config.Default().Margin.Top)/2; got != want {
		t.Errorf("offset %d with $mousescrollsize=50%%, want %d", got, want)
	}
}

func TestScenarioCopyAcrossBlocks(t *testing.T) {
	e, d := newTestEditor(t, screen, "# zero\n# one\n# two\n# three\n# four\n# five\n")
	place(t, e, at(e, 3, 3))
	e.Cursor().SetSelectMode(cursor.Range)
	place(t, e, at(e, 5, 4))

	if err := e.Copy(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 100)
	n, _, err := d.ReadSnarf(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(buf[:n]), "hree\n# four\n# fi"; got != want {
		t.Errorf("clipboard %q, want %q", got, want)
	}
}

func TestCopyWithoutSelection(t *testing.T) {
	e, d := newTestEditor(t, screen, "text\n")
	d.WriteSnarf([]byte("old"))
	if err := e.Copy(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 10)
	n, _, _ := d.ReadSnarf(buf)
	if got := string(buf[:n]); got != "old" {
		t.Errorf("clipboard %q after an empty copy", got)
	}
}

func TestCutAndPaste(t *testing.T) {
	e, _ := newTestEditor(t, screen, "one two\n")
	place(t, e, at(e, 0, 3))
	e.Cursor().SetSelectMode(cursor.Range)
	place(t, e, at(e, 0, 7))

	if err := e.Cut(); err != nil {
		t.Fatal(err)
	}
	if got, want := e.Document().ToMarkdown(), "one\n"; got != want {
		t.Errorf("after cut %q, want %q", got, want)
	}
	place(t, e, at(e, 0, 3))
	if err := e.Paste(); err != nil {
		t.Fatal(err)
	}
	if got, want := e.Document().ToMarkdown(), "one two\n"; got != want {
		t.Errorf("after paste %q, want %q", got, want)
	}
	if got := e.Edits(); got != 2 {
		t.Errorf("Edits() = %d after a cut and a paste, want 2", got)
	}
}

func TestPasteFence(t *testing.T) {
	e, d := newTestEditor(t, screen, "a\n\nb\n\nc\n")
	if err := d.WriteSnarf([]byte("```\n")); err != nil {
		t.Fatal(err)
	}
	place(t, e, at(e, 2, 0))
	if err := e.Paste(); err != nil {
		t.Fatal(err)
	}
	doc := e.Document()
	if got, want := doc.ToMarkdown(), "a\n\n```\nb\n\nc\n"; got != want {
		t.Errorf("after paste %q, want %q", got, want)
	}
	if got, want := doc.Len(), 3; got != want {
		t.Fatalf("%d blocks, want %d", got, want)
	}
	if k := doc.Arena().Kind(doc.ChildAt(2)); k != ast.CodeBlock {
		t.Errorf("pasted fence made %v, want CodeBlock", k)
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	e, _ := newTestEditor(t, screen, "same\n")
	if err := e.Paste(); err != nil {
		t.Fatal(err)
	}
	if got := e.Document().ToMarkdown(); got != "same\n" || e.Dirty() {
		t.Errorf("empty paste changed the document: %q", got)
	}
}

func TestSelectAllAndType(t *testing.T) {
	e, _ := newTestEditor(t, screen, "# a\n\nb\n")
	e.SelectAll()
	if !e.Cursor().HasSelection() {
		t.Fatal("nothing selected")
	}
	if err := e.Type('z'); err != nil {
		t.Fatal(err)
	}
	if got, want := e.Document().ToMarkdown(), "z\n"; got != want {
		t.Errorf("document %q, want %q", got, want)
	}
}

func TestKey(t *testing.T) {
	e, _ := newTestEditor(t, screen, "ab\n")
	place(t, e, at(e, 0, 2))

	for _, r := range []rune{'c', draw.KeyLeft, keyBackspace, 'x', draw.KeyRight, keyEscape} {
		e.Key(r)
	}
	if got, want := e.Document().ToMarkdown(), "axc\n"; got != want {
		t.Errorf("document %q, want %q", got, want)
	}
	if got, want := e.Cursor().Offset(), 3; got != want {
		t.Errorf("cursor offset %d, want %d", got, want)
	}
}

func TestMoveAcrossBlocks(t *testing.T) {
	e, _ := newTestEditor(t, screen, "ab\n\ncd\n")
	place(t, e, at(e, 2, 0))

	if !e.Move(cursor.Left) {
		t.Fatal("caret did not move")
	}
	if got := e.Document().IndexOf(e.Cursor().Block()); got != 1 {
		t.Errorf("caret in block %d, want 1", got)
	}
	if !e.Move(cursor.Down) {
		t.Fatal("caret did not move down")
	}
	if got := e.Document().IndexOf(e.Cursor().Block()); got != 2 {
		t.Errorf("caret in block %d after moving down, want 2", got)
	}
}

func TestClickAndDrag(t *testing.T) {
	e, _ := newTestEditor(t, screen, "hello world\n")
	id := e.Document().ChildAt(0)

	pt, ok := e.CursorBase(id, 6)
	if !ok {
		t.Fatal("block not materialized")
	}
	if !e.Click(pt, false) {
		t.Fatal("click missed")
	}
	if got, want := e.Cursor().Address(), at(e, 0, 6); got != want {
		t.Errorf("caret at %v, want %v", got, want)
	}

	start, _ := e.CursorBase(id, 0)
	end, _ := e.CursorBase(id, 5)
	e.Click(start, false)
	e.Drag(end)
	if got, want := e.Cursor().SelectedText(), "hello"; got != want {
		t.Errorf("selected %q, want %q", got, want)
	}
}

func TestHostContract(t *testing.T) {
	e, _ := newTestEditor(t, screen, "# Title\n\nsome text\n\n- item\n")
	tree := e.Document()

	if got := e.Document(); got != tree {
		t.Fatalf("Document() changed")
	}
	prev := image.Rectangle{}
	for i, id := range tree.Blocks() {
		g, ok := e.GeometryOf(id)
		if !ok {
			t.Fatalf("block %d has no geometry", i)
		}
		if i > 0 && g.Min.Y != prev.Max.Y {
			t.Errorf("block %d starts at %d, previous ends at %d", i, g.Min.Y, prev.Max.Y)
		}
		prev = g
		if got, ok := e.ASTIn(g.Min); !ok || got != id {
			t.Errorf("ASTIn(%v) = %v, want block %d", g.Min, got, i)
		}
		bases := e.CursorBases(id)
		if got, want := len(bases), tree.RuneLen(id); got != want {
			t.Errorf("block %d: %d cursor bases, want %d", i, got, want)
		}
		for _, b := range bases {
			if !b.In(g) {
				t.Errorf("block %d: base %v outside %v", i, b, g)
				break
			}
		}
	}
	if _, ok := e.ASTIn(image.Pt(-1, -1)); ok {
		t.Errorf("point outside the editor hit a block")
	}
}

func TestCollapseMovesCaret(t *testing.T) {
	e, _ := newTestEditor(t, screen, "# A\none\n# B\ntwo\n")
	tree := e.Document()
	heading, body := tree.ChildAt(0), tree.ChildAt(1)
	place(t, e, at(e, 1, 1))

	if e.ToggleCollapse(body) {
		t.Errorf("collapsed a paragraph")
	}
	if !e.ToggleCollapse(heading) {
		t.Fatal("heading did not collapse")
	}
	if got := e.Cursor().Block(); got != heading {
		t.Errorf("caret in %v, want the heading", got)
	}
	if _, ok := e.GeometryOf(body); ok {
		t.Errorf("folded block has geometry")
	}

	// Moving the caret into the folded section opens it.
	e.jump(body, 0)
	if e.Window().Collapsed(heading) {
		t.Errorf("section still folded with the caret inside")
	}
}

func TestRedraw(t *testing.T) {
	e, d := newTestEditor(t, screen, "hello\n")
	d.(mdtest.GettableDrawOps).Clear()

	e.Redraw(d.ScreenImage())
	m := e.cfg.Margin
	tick := fmt.Sprintf("screen <- draw r: %v src: %s",
		image.Rect(m.Left, m.Top, m.Left+tickWidth, m.Top+mdtest.CellHeight), fillName(e, "tick"))
	if got := mdtest.Ops(d, tick); len(got) != 1 {
		t.Errorf("tick not drawn:\n%s", strings.Join(d.(mdtest.GettableDrawOps).DrawOps(), "\n"))
	}
	if got := mdtest.Ops(d, "string \"hello\""); len(got) != 1 {
		t.Errorf("text not painted: %q", got)
	}
	if got := mdtest.Ops(d, "screen <- draw"); len(got) < 3 {
		t.Errorf("want background, block and tick draws, got %q", got)
	}

	// A second redraw reuses the raster.
	d.(mdtest.GettableDrawOps).Clear()
	e.Redraw(d.ScreenImage())
	if got := mdtest.Ops(d, "string"); len(got) != 0 {
		t.Errorf("block painted again: %q", got)
	}
}

func TestRedrawSelection(t *testing.T) {
	e, d := newTestEditor(t, screen, "hello\n")
	e.SelectAll()
	d.(mdtest.GettableDrawOps).Clear()

	e.Redraw(d.ScreenImage())
	if got := mdtest.Ops(d, "src: "+fillName(e, "selection")); len(got) != 1 {
		t.Errorf("selection draws %q, want one row", got)
	}
	if got := mdtest.Ops(d, "src: "+fillName(e, "tick")); len(got) != 0 {
		t.Errorf("tick drawn over a selection: %q", got)
	}
}

func TestSelectionRects(t *testing.T) {
	row := func(y int, xs ...int) []cursor.Anchor {
		var out []cursor.Anchor
		for _, x := range xs {
			out = append(out, cursor.Anchor{Point: image.Pt(x, y), Height: 14})
		}
		return out
	}
	anchors := append(row(0, 0, 10, 20), row(14, 0, 10)...)

	got := selectionRects(anchors, 1, 4)
	want := []image.Rectangle{
		image.Rect(10, 0, 20+newlineMark, 14),
		image.Rect(0, 14, 10, 28),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selection rects (-want +got):\n%s", diff)
	}
	if got := selectionRects(anchors, 2, 2); got != nil {
		t.Errorf("empty range gave %v", got)
	}
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Doc\n\nbody\n"), 0644); err != nil {
		t.Fatal(err)
	}
	e, _ := newTestEditor(t, screen, "")
	if err := e.Open(path); err != nil {
		t.Fatal(err)
	}
	if got := e.Document().Len(); got != 3 {
		t.Errorf("%d blocks after open, want 3", got)
	}
	place(t, e, at(e, 2, 4))
	e.Type('!')
	if err := e.Save(""); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "# Doc\n\nbody!\n"; got != want {
		t.Errorf("saved %q, want %q", got, want)
	}
	if e.Dirty() {
		t.Errorf("dirty after save")
	}

	missing := filepath.Join(dir, "new.md")
	if err := e.Open(missing); err != nil {
		t.Fatalf("opening a new file: %v", err)
	}
	if got := e.Path(); got != missing {
		t.Errorf("path %q, want %q", got, missing)
	}
}

func TestSaveWithoutName(t *testing.T) {
	e, _ := newTestEditor(t, screen, "x\n")
	if err := e.Save(""); err == nil {
		t.Errorf("saved without a file name")
	}
}

// lossyParser loses text once broken is set.
type lossyParser struct {
	broken bool
}

func (p *lossyParser) Parse(a *ast.Arena, text string) []ast.NodeID {
	if p.broken {
		return []ast.NodeID{a.New(ast.Node{Kind: ast.Paragraph})}
	}
	return markdown.Parse(a, text)
}

func TestEditFailureKeepsDocument(t *testing.T) {
	p := &lossyParser{}
	e, _ := newTestEditor(t, screen, "first paragraph\n\nsecond\n", WithParser(p))
	place(t, e, at(e, 1, 0))
	before := e.Document().ToMarkdown()

	p.broken = true
	err := e.Type('y')
	if !errors.Is(err, document.ErrInvariant) {
		t.Fatalf("got error %v, want ErrInvariant", err)
	}
	if got := e.Document().ToMarkdown(); got != before {
		t.Errorf("document changed to %q", got)
	}
	if e.Dirty() {
		t.Errorf("failed edit marked the document dirty")
	}
}

func TestEditFailurePanicsInDebug(t *testing.T) {
	cfg := config.Default()
	cfg.Debug = true
	p := &lossyParser{}
	e, _ := newTestEditor(t, screen, "first paragraph\n\nsecond\n", WithParser(p), WithConfig(cfg))
	place(t, e, at(e, 1, 0))

	p.broken = true
	defer func() {
		if recover() == nil {
			t.Errorf("invariant violation did not panic")
		}
	}()
	e.Type('y')
}

func fillName(e *Editor, which string) string {
	p := theme.Current()
	c := p.Tick
	if which == "selection" {
		c = p.Selection
	}
	return fmt.Sprintf("%#08x,tiled", uint32(draw.FromRGBA(c)))
}
