package editor

import (
	"image"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
)

// CursorBases returns the screen position of every caret anchor of block
// id, one per rune of its markdown. It returns nil when the block is not
// materialized.
func (e *Editor) CursorBases(id ast.NodeID) []image.Point {
	en := e.win.Find(id)
	if en == nil {
		return nil
	}
	o := e.origin(en)
	anchors := e.cache.Anchors(id)
	out := make([]image.Point, len(anchors))
	for i, a := range anchors {
		out[i] = a.Add(o)
	}
	return out
}

// CursorBase returns the screen position of the caret anchor before rune
// offset of block id. Offsets at the end of the block give the last
// anchor.
func (e *Editor) CursorBase(id ast.NodeID, offset int) (image.Point, bool) {
	bases := e.CursorBases(id)
	if len(bases) == 0 {
		return image.Point{}, false
	}
	switch {
	case offset < 0:
		offset = 0
	case offset >= len(bases):
		offset = len(bases) - 1
	}
	return bases[offset], true
}

// GeometryOf returns the screen rectangle of block id, including the
// spacing below it.
func (e *Editor) GeometryOf(id ast.NodeID) (image.Rectangle, bool) {
	en := e.win.Find(id)
	if en == nil || en.Height == 0 {
		return image.Rectangle{}, false
	}
	o := e.origin(en)
	return image.Rect(o.X, o.Y, o.X+e.contentWidth(), o.Y+en.Height), true
}

// ASTIn returns the top-level block at screen point pt.
func (e *Editor) ASTIn(pt image.Point) (ast.NodeID, bool) {
	if !pt.In(e.rect) {
		return ast.Nil, false
	}
	en, ok := e.win.EntryAt(pt.Y - e.rect.Min.Y - e.cfg.Margin.Top)
	if !ok {
		return ast.Nil, false
	}
	return en.Block, true
}

// AddressAt returns the caret address nearest screen point pt.
func (e *Editor) AddressAt(pt image.Point) (cursor.Address, bool) {
	id, ok := e.ASTIn(pt)
	if !ok {
		return cursor.Address{}, false
	}
	en := e.win.Find(id)
	i, ok := cursor.HitTest(e.cache.Anchors(id), pt.Sub(e.origin(en)))
	if !ok {
		return cursor.Address{}, false
	}
	return cursor.Address{Block: id, Offset: i}, true
}
