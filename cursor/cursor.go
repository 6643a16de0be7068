package cursor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/document"
	"go.uber.org/zap"
)

// Cursor is the single caret of an editor. Its address always names a top
// level block of the tree it was created for.
type Cursor struct {
	tree *document.Tree
	geom Geometry
	log  *zap.Logger

	at     Address
	anchor Address
	mode   Mode
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithLogger sets the logger used to report failed edits.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cursor) {
		c.log = l
	}
}

// WithGeometry sets the source of layout information used for vertical
// movement and hit-testing.
func WithGeometry(g Geometry) Option {
	return func(c *Cursor) {
		c.geom = g
	}
}

// New returns a cursor at the start of the first block of tree.
func New(tree *document.Tree, opts ...Option) *Cursor {
	c := &Cursor{
		tree: tree,
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.at = Address{Block: tree.ChildAt(0)}
	c.anchor = c.at
	return c
}

// SetGeometry replaces the geometry source.
func (c *Cursor) SetGeometry(g Geometry) { c.geom = g }

// Tree returns the document the cursor addresses.
func (c *Cursor) Tree() *document.Tree { return c.tree }

// Address returns the caret position.
func (c *Cursor) Address() Address { return c.at }

// Block returns the block holding the caret.
func (c *Cursor) Block() ast.NodeID { return c.at.Block }

// Offset returns the caret's rune offset into its block.
func (c *Cursor) Offset() int { return c.at.Offset }

// Mode returns the selection mode.
func (c *Cursor) Mode() Mode { return c.mode }

// Set moves the caret to addr. Offsets outside the block are clamped. In
// Range mode the anchor stays put, extending the selection.
func (c *Cursor) Set(addr Address) error {
	if !c.tree.IsTop(addr.Block) {
		return fmt.Errorf("set %v: %w", addr, ErrNotTopLevel)
	}
	n := c.tree.RuneLen(addr.Block)
	switch {
	case addr.Offset < 0:
		addr.Offset = 0
	case addr.Offset > n:
		addr.Offset = n
	}
	c.at = addr
	if c.mode == Single {
		c.anchor = c.at
	}
	return nil
}

// SetPos moves the caret to offset relative to the start of its block.
// Offsets past the block continue into the following blocks and negative
// offsets into the preceding ones; the ends of the document clamp.
func (c *Cursor) SetPos(offset int) {
	c.revalidate()
	id, off := c.tree.Seek(c.at.Block, offset)
	c.at = Address{Block: id, Offset: off}
	if c.mode == Single {
		c.anchor = c.at
	}
}

// SetSelectMode switches between a point and a selection. Entering Range
// takes the current position as the fixed end of the selection.
func (c *Cursor) SetSelectMode(m Mode) {
	c.mode = m
	c.anchor = c.at
}

// SelectAll selects the whole document.
func (c *Cursor) SelectAll() {
	first := c.tree.ChildAt(0)
	last := c.tree.ChildAt(c.tree.Len() - 1)
	c.mode = Range
	c.anchor = Address{Block: first}
	c.at = Address{Block: last, Offset: c.tree.RuneLen(last)}
}

// SelectedRange returns the selection ordered by document position. In
// Single mode both ends are the caret.
func (c *Cursor) SelectedRange() (Address, Address) {
	c.revalidate()
	if c.mode == Single {
		return c.at, c.at
	}
	if c.Less(c.anchor, c.at) {
		return c.anchor, c.at
	}
	return c.at, c.anchor
}

// HasSelection reports whether a non-empty range is selected.
func (c *Cursor) HasSelection() bool {
	start, end := c.SelectedRange()
	return start != end
}

// Less orders addresses by block index and then offset.
func (c *Cursor) Less(a, b Address) bool {
	ia, ib := c.tree.IndexOf(a.Block), c.tree.IndexOf(b.Block)
	if ia != ib {
		return ia < ib
	}
	return a.Offset < b.Offset
}

// IsIn reports whether the caret is inside node id. The caret's block must
// be id or contain it, and the serialization of id must occur in the
// block's text within len(id) runes of the caret. The test is approximate
// when the same text occurs twice close to the caret.
func (c *Cursor) IsIn(id ast.NodeID) bool {
	a := c.tree.Arena()
	if !a.Valid(id) || !a.Valid(c.at.Block) || !a.IsChild(id, c.at.Block) {
		return false
	}
	block := []rune(c.tree.Text(c.at.Block))
	sub := a.ToMarkdown(id)
	n := utf8.RuneCountInString(sub)
	lo := c.at.Offset - n
	if lo < 0 {
		lo = 0
	}
	hi := c.at.Offset + n
	if hi > len(block) {
		hi = len(block)
	}
	if lo >= hi {
		return false
	}
	return strings.Contains(string(block[lo:hi]), sub)
}

// revalidate moves the caret to the nearest surviving block when its
// block has been replaced behind the cursor's back.
func (c *Cursor) revalidate() {
	if !c.tree.IsTop(c.at.Block) {
		c.at = Address{Block: c.tree.ChildAt(0)}
		c.log.Debug("cursor block vanished", zap.Stringer("block", c.at.Block))
	}
	if !c.tree.IsTop(c.anchor.Block) {
		c.anchor = c.at
	}
}
