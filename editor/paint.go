package editor

import (
	"image"
	"image/color"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/theme"
	"go.uber.org/zap"
)

const (
	tickWidth   = 2
	newlineMark = 6 // width of a selected line end
	foldMark    = 6
)

// Redraw paints the visible blocks, the selection and the tick into dst.
func (e *Editor) Redraw(dst draw.Image) {
	p := theme.Current()
	if bg := e.fill(p.Background); bg != nil {
		dst.Draw(e.rect, bg, nil, image.ZP)
	}
	for _, en := range e.win.Visible() {
		o := e.origin(en)
		block := image.Rect(o.X, o.Y, o.X+e.contentWidth(), o.Y+en.Height).Intersect(e.rect)
		if block.Empty() {
			continue
		}
		img, err := e.win.Raster(en)
		if err != nil {
			e.log.Warn("cannot rasterize block", zap.Stringer("block", en.Block), zap.Error(err))
			if c := e.fill(p.Placeholder); c != nil {
				dst.Border(block, 1, c, image.ZP)
			}
			continue
		}
		r := image.Rect(o.X, o.Y, o.X+img.R().Dx(), o.Y+img.R().Dy()).Intersect(e.rect)
		dst.Draw(r, img, nil, img.R().Min.Add(r.Min.Sub(o)))
		if e.win.Collapsed(en.Block) {
			e.paintFold(dst, o)
		}
	}
	e.paintSelection(dst)
	e.paintTick(dst)
}

// paintFold marks a collapsed heading in the left margin.
func (e *Editor) paintFold(dst draw.Image, o image.Point) {
	c := e.fill(theme.Current().Fold)
	if c == nil {
		return
	}
	h := e.r.LineHeight()
	x := o.X - foldMark - 2
	r := image.Rect(x, o.Y+(h-foldMark)/2, x+foldMark, o.Y+(h+foldMark)/2).Intersect(e.rect)
	dst.Draw(r, c, nil, image.ZP)
}

// paintSelection shades the selected runes of the visible blocks.
func (e *Editor) paintSelection(dst draw.Image) {
	start, end := e.cur.SelectedRange()
	if start == end {
		return
	}
	p := theme.Current()
	c := e.fill(p.Selection)
	if c == nil {
		return
	}
	si, ei := e.tree.IndexOf(start.Block), e.tree.IndexOf(end.Block)
	for _, en := range e.win.Visible() {
		i := e.tree.IndexOf(en.Block)
		if i < si || i > ei {
			continue
		}
		anchors := e.cache.Anchors(en.Block)
		lo, hi := 0, len(anchors)
		if en.Block == start.Block {
			lo = start.Offset
		}
		if en.Block == end.Block && end.Offset < hi {
			hi = end.Offset
		}
		o := e.origin(en)
		for _, r := range selectionRects(anchors, lo, hi) {
			if r = r.Add(o).Intersect(e.rect); !r.Empty() {
				dst.Draw(r, c, nil, image.ZP)
			}
		}
	}
}

// selectionRects merges the slots of anchors lo to hi into one rectangle
// per row. A rune's slot runs to the next anchor on its row; the last rune
// of a row gets a narrow mark.
func selectionRects(anchors []cursor.Anchor, lo, hi int) []image.Rectangle {
	var out []image.Rectangle
	var cur image.Rectangle
	for i := lo; i < hi && i < len(anchors); i++ {
		a := anchors[i]
		right := a.X + newlineMark
		if i+1 < len(anchors) && anchors[i+1].Y == a.Y && anchors[i+1].X >= a.X {
			right = anchors[i+1].X
		}
		r := image.Rect(a.X, a.Y, right, a.Y+a.Height)
		switch {
		case cur.Empty():
			cur = r
		case r.Min.Y == cur.Min.Y:
			cur = cur.Union(r)
		default:
			out = append(out, cur)
			cur = r
		}
	}
	if !cur.Empty() {
		out = append(out, cur)
	}
	return out
}

// paintTick draws the caret when there is no selection.
func (e *Editor) paintTick(dst draw.Image) {
	if e.cur.HasSelection() {
		return
	}
	pt, ok := e.CursorBase(e.cur.Block(), e.cur.Offset())
	if !ok {
		return
	}
	a, _ := e.caretAnchor()
	h := a.Height
	if lh := e.r.LineHeight(); h > lh {
		h = lh
	}
	if e.cur.Offset() >= e.tree.RuneLen(e.cur.Block()) && e.cur.Offset() > 0 {
		// After the final newline the tick sits at the end of the last row.
		pt.X += newlineMark
	}
	c := e.fill(theme.Current().Tick)
	if c == nil {
		return
	}
	r := image.Rect(pt.X, pt.Y, pt.X+tickWidth, pt.Y+h).Intersect(e.rect)
	if !r.Empty() {
		dst.Draw(r, c, nil, image.ZP)
	}
}

// fill returns a replicated image of c, allocating it on first use.
func (e *Editor) fill(c color.NRGBA) draw.Image {
	if c.A == 0 {
		return nil
	}
	if img, ok := e.fills[c]; ok {
		return img
	}
	img, err := draw.Fill(e.display, c)
	if err != nil {
		e.log.Warn("cannot allocate colour", zap.Any("color", c), zap.Error(err))
		return nil
	}
	e.fills[c] = img
	return img
}

// Blocks returns the visible top-level blocks, top to bottom.
func (e *Editor) Blocks() []ast.NodeID {
	var out []ast.NodeID
	for _, en := range e.win.Visible() {
		out = append(out, en.Block)
	}
	return out
}
