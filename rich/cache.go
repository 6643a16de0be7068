package rich

import (
	"errors"
	"fmt"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/document"
	"go.uber.org/zap"
)

// ErrNoAnchors is returned when a layout does not anchor every rune of its
// block.
var ErrNoAnchors = errors.New("layout anchors do not cover block")

// BlockSpacing is the space between consecutive blocks.
const BlockSpacing = hardBreakSpace

var (
	_ cursor.Geometry        = (*Cache)(nil)
	_ document.BlockObserver = (*Cache)(nil)
)

// Cache memoizes the ops and layout of each top-level block. An entry is
// valid while the block's version, the width and the caret position within
// the block are unchanged.
type Cache struct {
	tree  *document.Tree
	r     *Renderer
	width int
	log   *zap.Logger

	caretBlock  ast.NodeID
	caretOffset int
	focus       func(ast.NodeID) bool

	entries map[ast.NodeID]*entry

	// Misses counts layouts computed rather than found.
	Misses int
}

type entry struct {
	width   int
	version uint64
	caret   int
	ops     []Op
	layout  *Layout
}

// NewCache returns a cache laying out blocks of tree with r. It registers
// itself with tree to forget replaced blocks.
func NewCache(tree *document.Tree, r *Renderer, width int) *Cache {
	c := &Cache{
		tree:    tree,
		r:       r,
		width:   width,
		log:     r.log,
		entries: make(map[ast.NodeID]*entry),
	}
	tree.AddObserver(c)
	return c
}

// SetWidth changes the layout width. Entries of another width are redone
// when next asked for.
func (c *Cache) SetWidth(w int) { c.width = w }

// Width returns the layout width.
func (c *Cache) Width() int { return c.width }

// SetCaret records where the caret is. focus reports whether the caret is
// inside a node and decides which markup of the caret's block is shown.
func (c *Cache) SetCaret(block ast.NodeID, offset int, focus func(ast.NodeID) bool) {
	c.caretBlock = block
	c.caretOffset = offset
	c.focus = focus
}

func (c *Cache) caretIn(id ast.NodeID) int {
	if id == c.caretBlock && c.focus != nil {
		return c.caretOffset
	}
	return -1
}

// Layout returns the layout of block id, computing it when the cached one
// is stale.
func (c *Cache) Layout(id ast.NodeID) (*Layout, error) {
	caret := c.caretIn(id)
	version := c.tree.Version(id)
	if e, ok := c.entries[id]; ok && e.width == c.width && e.version == version && e.caret == caret {
		return e.layout, nil
	}
	c.Misses++

	var focus func(ast.NodeID) bool
	if caret >= 0 {
		focus = c.focus
	}
	ops := c.r.Emit(c.tree.Arena(), id, focus)
	l := c.r.Layout(ops, c.width)
	if got, want := len(l.Anchors), c.tree.RuneLen(id); got != want {
		c.log.Error("anchor count mismatch", zap.Stringer("block", id), zap.Int("anchors", got), zap.Int("runes", want))
		return l, fmt.Errorf("block %v: %d anchors for %d runes: %w", id, got, want, ErrNoAnchors)
	}
	c.entries[id] = &entry{width: c.width, version: version, caret: caret, ops: ops, layout: l}
	return l, nil
}

// Ops returns the ops of block id.
func (c *Cache) Ops(id ast.NodeID) []Op {
	if _, err := c.Layout(id); err != nil {
		return nil
	}
	return c.entries[id].ops
}

// Height implements cursor.Geometry.
func (c *Cache) Height(id ast.NodeID) int {
	l, err := c.Layout(id)
	if err != nil {
		return c.r.LineHeight() + BlockSpacing
	}
	return l.Height + BlockSpacing
}

// Anchors implements cursor.Geometry.
func (c *Cache) Anchors(id ast.NodeID) []cursor.Anchor {
	l, err := c.Layout(id)
	if err != nil {
		return nil
	}
	return l.Anchors
}

// Invalidate drops the layout of id and bumps its version so that other
// holders of the block's rendering notice.
func (c *Cache) Invalidate(id ast.NodeID) {
	delete(c.entries, id)
	c.tree.Touch(id)
}

// Forget drops the entry of id.
func (c *Cache) Forget(id ast.NodeID) {
	delete(c.entries, id)
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int { return len(c.entries) }

// Spliced implements document.BlockObserver.
func (c *Cache) Spliced(start int, removed, added []ast.NodeID) {
	for _, id := range removed {
		delete(c.entries, id)
	}
}
