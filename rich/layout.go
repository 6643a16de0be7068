package rich

import (
	"image"
	"image/color"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/style"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"
)

// Vertical spacing between rows.
const (
	softBreakSpace = 5
	hardBreakSpace = 10
)

// ItemKind says how an Item is painted.
type ItemKind uint8

const (
	ItemText ItemKind = iota
	ItemImage
	ItemRule
	ItemError
)

// Item is a positioned piece of a layout. Rect is relative to the top-left
// of the block.
type Item struct {
	Kind  ItemKind
	Rect  image.Rectangle
	Text  string
	Style style.Style
	Font  draw.Font
	Image image.Image
}

// Box is a rounded background rectangle, painted before any item.
type Box struct {
	Rect   image.Rectangle
	Radius int
	Color  color.NRGBA
}

// Row is one line of a layout. Its anchors are Anchors[First:End].
type Row struct {
	Y, Height  int
	First, End int
}

// Layout is a block placed within a width.
type Layout struct {
	Width, Height int

	Boxes   []Box
	Items   []Item
	Rows    []Row
	Anchors []cursor.Anchor
}

// piece is an item waiting for its row to be finished.
type piece struct {
	kind ItemKind
	x, w int
	h    int
	text string
	st   style.Style
	font draw.Font
	img  image.Image
}

type fragment struct {
	top, indent int
	st          style.Style
	boxes       int // index in Layout.Boxes where the fragment's own boxes go
}

type layouter struct {
	r     *Renderer
	width int
	out   *Layout

	frag  *fragment
	left  int // content bounds of the fragment
	right int
	align ast.Align

	y       int // top of the next row
	spacing int // space owed before the next row
	x       int // pen

	pieces  []piece
	anchors []int // x of each pending anchor, before alignment
	forced  int   // minimum height of the pending row
	xs      []int // per-row extents of the fragment
}

// Layout places ops within width pixels. Rows wrap at the fragment's right
// padding; soft breaks add 5 pixels between rows and hard breaks 10. Every
// markdown rune of the ops gets one anchor, placed after alignment so that
// centered and right aligned rows hit-test exactly. Each anchor's height
// extends to the top of the next row, so rows tile the block vertically.
func (r *Renderer) Layout(ops []Op, width int) *Layout {
	l := &layouter{r: r, width: width, out: &Layout{Width: width}}
	for _, o := range ops {
		l.op(o)
	}
	l.finish()
	return l.out
}

func (l *layouter) op(o Op) {
	if l.frag == nil {
		switch o.(type) {
		case Fragment:
		case Hidden:
			// Trailing markup such as a closing fence stays with the
			// last row.
			l.hidden(o.Source())
			return
		default:
			l.open(Fragment{Style: l.r.sheet.Resolve("root", "")})
		}
	}
	switch o := o.(type) {
	case Fragment:
		l.open(o)

	case Text:
		l.text(o.Text, o.Style)

	case Hidden:
		l.hidden(o.Text)

	case SoftBreak:
		l.hidden(o.Text[:1])
		l.force(l.lineHeight())
		l.endRow(softBreakSpace)
		l.hidden(o.Text[1:])

	case HardBreak:
		l.hidden(o.Text)
		l.force(l.lineHeight())
		l.endRow(0)
		l.close()

	case BlankLine:
		l.hidden(o.Text)
		l.force(l.r.fontFor(o.Style).Height())
		l.endRow(0)

	case Rule:
		l.hidden(o.Text)
		h := l.r.fontFor(o.Style).Height()
		l.place(piece{kind: ItemRule, w: l.right - l.x, h: h, st: o.Style}, false)

	case Image:
		l.image(o)

	case InlineMath:
		l.math(o.Text, o.TeX, o.Style, false)

	case BlockMath:
		l.math(o.Text, o.TeX, o.Style, true)

	case SerialNumber:
		l.hidden(o.Text)
		f := l.r.fontFor(o.Style)
		w := f.StringWidth(o.Label)
		l.place(piece{kind: ItemText, w: w, h: f.Height(), text: o.Label, st: o.Style, font: f}, false)
		l.x += f.StringWidth(" ")

	case Cell:
		if o.Cols > 0 {
			col := (l.right - l.left) / o.Cols
			if x := l.left + o.Col*col + o.Style.Padding.Left; x > l.x {
				l.x = x
			}
		}
		l.hidden(o.Text)
	}
}

func (l *layouter) lineHeight() int {
	return l.r.fontFor(l.frag.st).Height()
}

// open starts a fragment, closing the current one.
func (l *layouter) open(f Fragment) {
	if l.frag != nil {
		l.close()
	}
	pad := f.Style.Padding
	top := l.y + l.spacing
	l.frag = &fragment{top: top, indent: f.Indent, st: f.Style, boxes: len(l.out.Boxes)}
	l.left = f.Indent + pad.Left
	l.right = l.width - pad.Right
	if l.right <= l.left {
		l.right = l.left + 1
	}
	l.align = f.Style.Align
	l.y = top + pad.Top
	l.spacing = 0
	l.x = l.left
	for i := range l.anchors {
		l.anchors[i] = l.left
	}
	l.xs = l.xs[:0]
}

// close finishes the fragment's rows and computes its background.
func (l *layouter) close() {
	f := l.frag
	if f == nil {
		return
	}
	if len(l.pieces) > 0 || l.forced > 0 {
		l.endRow(0)
	}
	pad := f.st.Padding
	bottom := l.y + pad.Bottom
	extent := l.left
	for _, x := range l.xs {
		if x > extent {
			extent = x
		}
	}
	var own []Box
	r := image.Rect(f.indent, f.top, extent+pad.Right, bottom)
	if f.st.HasBackground() && !r.Empty() {
		own = append(own, Box{Rect: r, Radius: f.st.BorderRadius, Color: f.st.Background})
	}
	if f.st.BorderWidth > 0 && f.st.Color.A != 0 && f.st.Indent > 0 {
		bar := image.Rect(f.indent-f.st.Indent, f.top, f.indent-f.st.Indent+f.st.BorderWidth, bottom)
		own = append(own, Box{Rect: bar, Color: f.st.Color})
	}
	if len(own) > 0 {
		boxes := l.out.Boxes
		l.out.Boxes = append(append(append([]Box(nil), boxes[:f.boxes]...), own...), boxes[f.boxes:]...)
	}
	l.y = bottom
	l.spacing = hardBreakSpace
	l.frag = nil
}

// hidden anchors the runes of s at the pen without using space.
func (l *layouter) hidden(s string) {
	for range s {
		l.anchors = append(l.anchors, l.x)
	}
}

func (l *layouter) force(h int) {
	if h > l.forced {
		l.forced = h
	}
}

// place adds p at the pen, wrapping first when it does not fit and the row
// already holds something. Anchors for the runes of p are added when
// anchor is set.
func (l *layouter) place(p piece, anchor bool) {
	if p.kind != ItemText || !isSpace(p.text) {
		l.wrap(p.w)
	}
	p.x = l.x
	if anchor {
		x := l.x
		for _, r := range p.text {
			l.anchors = append(l.anchors, x)
			x += p.font.RunesWidth([]rune{r})
		}
	}
	l.pieces = append(l.pieces, p)
	l.x += p.w
}

// wrap ends the row when w more pixels do not fit on it.
func (l *layouter) wrap(w int) {
	if l.x+w > l.right && l.x > l.left && len(l.pieces) > 0 {
		l.endRow(0)
	}
}

// text places s word by word, wrapping at line break opportunities. A word
// wider than the whole row is broken between runes.
func (l *layouter) text(s string, st style.Style) {
	f := l.r.fontFor(st)
	for _, word := range words(s) {
		w := f.StringWidth(word)
		if w <= l.right-l.left || isSpace(word) {
			l.place(piece{kind: ItemText, w: w, h: f.Height(), text: word, st: st, font: f}, true)
			continue
		}
		for _, r := range word {
			rs := string(r)
			l.place(piece{kind: ItemText, w: f.StringWidth(rs), h: f.Height(), text: rs, st: st, font: f}, true)
		}
	}
}

func (l *layouter) image(o Image) {
	f := l.r.fontFor(o.Style)
	if l.r.images != nil {
		ci := l.r.images.Get(o.Dest)
		if ci.Err == nil {
			w, h := fit(ci.Width, ci.Height, l.right-l.left)
			l.wrap(w)
			l.hidden(o.Text)
			l.place(piece{kind: ItemImage, w: w, h: h, img: ci.Original, st: o.Style}, false)
			return
		}
		l.r.log.Debug("image placeholder", zap.String("dest", o.Dest), zap.Error(ci.Err))
	}
	alt := "[" + o.Alt + "]"
	l.wrap(f.StringWidth(alt))
	l.hidden(o.Text)
	l.place(piece{kind: ItemError, w: f.StringWidth(alt), h: f.Height(), text: alt, st: o.Style, font: f}, false)
}

// math typesets tex. Without a typesetter the source is laid out as text;
// a typesetting failure shows an error glyph.
func (l *layouter) math(src, tex string, st style.Style, block bool) {
	if block && (len(l.pieces) > 0 || l.forced > 0) {
		l.endRow(0)
	}
	f := l.r.fontFor(st)
	switch {
	case l.r.math == nil:
		if !block {
			l.text(src, st)
			return
		}
		lines := strings.SplitAfter(src, "\n")
		for i, line := range lines {
			if line == "" {
				continue
			}
			l.text(strings.TrimSuffix(line, "\n"), st)
			if strings.HasSuffix(line, "\n") {
				l.hidden("\n")
				l.force(f.Height())
				if i < len(lines)-2 {
					l.endRow(softBreakSpace)
				} else {
					l.endRow(0)
				}
			}
		}
		return
	}

	img, err := l.r.math.Render(tex, st.FontSize)
	p := piece{kind: ItemError, w: f.StringWidth(errorGlyph), h: f.Height(), text: errorGlyph, st: st, font: f}
	if err != nil {
		l.r.log.Debug("math error", zap.String("tex", tex), zap.Error(err))
	} else {
		b := img.Bounds()
		w, h := fit(b.Dx(), b.Dy(), l.right-l.left)
		p = piece{kind: ItemImage, w: w, h: h, img: img, st: st}
	}
	l.wrap(p.w)
	l.hidden(src)
	l.place(p, false)
	if block {
		l.endRow(0)
	}
}

// endRow finishes the pending row and leaves space before the next one.
// A row holding only hidden runes is carried into the next row.
func (l *layouter) endRow(space int) {
	if len(l.pieces) == 0 && l.forced == 0 {
		for i := range l.anchors {
			l.anchors[i] = l.left
		}
		l.x = l.left
		return
	}

	h := l.forced
	for _, p := range l.pieces {
		if p.h > h {
			h = p.h
		}
	}
	off := 0
	switch l.align {
	case ast.AlignCenter:
		off = (l.right - l.x) / 2
	case ast.AlignRight:
		off = l.right - l.x
	}
	if off < 0 {
		off = 0
	}

	for _, p := range l.pieces {
		y := l.y + h - p.h
		it := Item{
			Kind:  p.kind,
			Rect:  image.Rect(p.x+off, y, p.x+off+p.w, y+p.h),
			Text:  p.text,
			Style: p.st,
			Font:  p.font,
			Image: p.img,
		}
		if p.kind == ItemRule {
			mid := l.y + h/2
			bw := p.st.BorderWidth
			if bw < 1 {
				bw = 1
			}
			it.Rect = image.Rect(p.x+off, mid-bw/2, p.x+off+p.w, mid-bw/2+bw)
		}
		l.out.Items = append(l.out.Items, it)
		if p.kind == ItemText && p.st.HasBackground() && p.st.Background != l.frag.st.Background {
			l.out.Boxes = append(l.out.Boxes, Box{Rect: it.Rect, Radius: p.st.BorderRadius, Color: p.st.Background})
		}
	}

	row := Row{Y: l.y, Height: h, First: len(l.out.Anchors)}
	for _, x := range l.anchors {
		l.out.Anchors = append(l.out.Anchors, cursor.Anchor{Point: image.Pt(x+off, l.y), Height: h})
	}
	row.End = len(l.out.Anchors)
	l.out.Rows = append(l.out.Rows, row)
	l.xs = append(l.xs, l.x+off)

	l.y += h + space
	l.x = l.left
	l.pieces = l.pieces[:0]
	l.anchors = l.anchors[:0]
	l.forced = 0
}

// finish closes the last fragment, places runes that never reached a row
// and stretches anchor heights to tile the block.
func (l *layouter) finish() {
	if l.frag != nil {
		l.close()
	}
	out := l.out
	if len(l.anchors) > 0 {
		if n := len(out.Rows); n > 0 {
			last := &out.Rows[n-1]
			pt := image.Pt(0, last.Y)
			if last.End > last.First {
				pt = out.Anchors[last.End-1].Point
			}
			for range l.anchors {
				out.Anchors = append(out.Anchors, cursor.Anchor{Point: pt, Height: last.Height})
			}
			last.End = len(out.Anchors)
		} else {
			h := l.r.LineHeight()
			out.Rows = append(out.Rows, Row{Y: 0, Height: h, First: 0, End: len(l.anchors)})
			for range l.anchors {
				out.Anchors = append(out.Anchors, cursor.Anchor{Point: image.Pt(0, 0), Height: h})
			}
			if l.y < h {
				l.y = h
			}
		}
		l.anchors = nil
	}
	out.Height = l.y

	for i, row := range out.Rows {
		bottom := out.Height
		if i+1 < len(out.Rows) {
			bottom = out.Rows[i+1].Y
		}
		for j := row.First; j < row.End; j++ {
			out.Anchors[j].Height = bottom - out.Anchors[j].Y
		}
	}
}

// fit scales w by h down to at most maxw wide, keeping the aspect ratio.
func fit(w, h, maxw int) (int, int) {
	if w <= maxw || w == 0 {
		return w, h
	}
	return maxw, h * maxw / w
}

// words splits s at its line break opportunities (UAX #14). The spaces
// ending a segment become a word of their own so that they may hang past
// the right margin.
func words(s string) []string {
	var out []string
	state := -1
	for s != "" {
		var seg string
		seg, s, _, state = uniseg.FirstLineSegmentInString(s, state)
		body := strings.TrimRightFunc(seg, unicode.IsSpace)
		if body != "" {
			out = append(out, body)
		}
		if len(body) < len(seg) {
			out = append(out, seg[len(body):])
		}
	}
	return out
}

func rune0(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isSpace(s string) bool {
	return s != "" && unicode.IsSpace(rune0(s))
}
