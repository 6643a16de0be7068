package cursor

import (
	"image"

	"github.com/rivo/uniseg"
)

// lineMargin is added to vertical moves so the target point lands inside
// the neighboring row rather than on its edge.
const lineMargin = 2

// Move moves the caret. Left and Right step one grapheme cluster and stop
// at the ends of the block. Up and Down move one row by hit-testing a point
// above or below the caret, which crosses into neighboring blocks. Mouse
// hit-tests hint, given relative to the caret's anchor. It reports whether
// the caret moved.
func (c *Cursor) Move(dir Direction, hint image.Point) bool {
	c.revalidate()
	old := c.at
	switch dir {
	case Left, Right:
		bounds := graphemeBounds(c.tree.Text(c.at.Block))
		c.at.Offset = step(bounds, c.at.Offset, dir == Right)

	case Up, Down:
		a, ok := c.anchorOf(c.at)
		if !ok {
			return false
		}
		delta := image.Pt(0, -lineMargin)
		if dir == Down {
			delta.Y = a.Height + lineMargin
			if lastRow(c.geom.Anchors(c.at.Block), a) {
				// Step over the spacing below the block.
				delta.Y = c.geom.Height(c.at.Block) - a.Y + lineMargin
			}
		}
		addr, ok := c.CoordinateToAddress(delta)
		if !ok {
			return false
		}
		c.at = addr

	case Mouse:
		addr, ok := c.CoordinateToAddress(hint)
		if !ok {
			return false
		}
		c.at = addr
	}
	if c.mode == Single {
		c.anchor = c.at
	}
	return c.at != old
}

// CoordinateToAddress returns the address under the point delta, given
// relative to the caret's anchor. Blocks above or below the caret's block
// are searched by accumulating their heights. It returns false when the
// point lies beyond either end of the document or no geometry is set.
func (c *Cursor) CoordinateToAddress(delta image.Point) (Address, bool) {
	c.revalidate()
	origin, ok := c.anchorOf(c.at)
	if !ok {
		return Address{}, false
	}
	block := c.at.Block
	pt := origin.Point.Add(delta)

	for pt.Y < 0 {
		block = c.tree.Up(block)
		if block.IsNil() {
			return Address{}, false
		}
		pt.Y += c.geom.Height(block)
	}
	for pt.Y >= c.geom.Height(block) {
		pt.Y -= c.geom.Height(block)
		block = c.tree.Down(block)
		if block.IsNil() {
			return Address{}, false
		}
	}
	off, ok := HitTest(c.geom.Anchors(block), pt)
	if !ok {
		return Address{}, false
	}
	return Address{Block: block, Offset: off}, true
}

// AddressToCoordinate returns the anchor of addr relative to the caret's
// anchor, the inverse of CoordinateToAddress. Offsets at the end of a block
// map to its last rune.
func (c *Cursor) AddressToCoordinate(addr Address) (image.Point, bool) {
	c.revalidate()
	origin, ok := c.anchorOf(c.at)
	if !ok {
		return image.Point{}, false
	}
	a, ok := c.anchorOf(addr)
	if !ok {
		return image.Point{}, false
	}
	y := 0
	from, to := c.tree.IndexOf(c.at.Block), c.tree.IndexOf(addr.Block)
	if from < 0 || to < 0 {
		return image.Point{}, false
	}
	blocks := c.tree.Blocks()
	for i := to; i < from; i++ {
		y -= c.geom.Height(blocks[i])
	}
	for i := from; i < to; i++ {
		y += c.geom.Height(blocks[i])
	}
	return image.Pt(a.X, a.Y+y).Sub(origin.Point), true
}

func (c *Cursor) anchorOf(addr Address) (Anchor, bool) {
	if c.geom == nil || !c.tree.IsTop(addr.Block) {
		return Anchor{}, false
	}
	anchors := c.geom.Anchors(addr.Block)
	if len(anchors) == 0 {
		return Anchor{}, false
	}
	i := addr.Offset
	switch {
	case i < 0:
		i = 0
	case i >= len(anchors):
		i = len(anchors) - 1
	}
	return anchors[i], true
}

// lastRow reports whether no anchor lies on a row below a.
func lastRow(anchors []Anchor, a Anchor) bool {
	for _, b := range anchors {
		if b.Y > a.Y {
			return false
		}
	}
	return true
}

// HitTest returns the index of the anchor nearest pt. The row is the one
// whose vertical span holds pt.Y, or else the last row starting above it.
// Within the row the anchor with the nearest X wins; ties go to the left.
func HitTest(anchors []Anchor, pt image.Point) (int, bool) {
	if len(anchors) == 0 {
		return 0, false
	}
	row := anchors[0].Y
	for _, a := range anchors {
		if pt.Y >= a.Y && pt.Y < a.Y+a.Height {
			row = a.Y
			break
		}
		if pt.Y >= a.Y {
			row = a.Y
		}
	}

	best, bestDist := -1, 0
	for i, a := range anchors {
		if a.Y != row {
			continue
		}
		d := a.X - pt.X
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist || (d == bestDist && a.X < anchors[best].X) {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// graphemeBounds returns the rune offsets at which grapheme clusters of
// text begin, followed by the rune length of text.
func graphemeBounds(text string) []int {
	var bounds []int
	n := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		bounds = append(bounds, n)
		n += len(g.Runes())
	}
	return append(bounds, n)
}

// step moves offset to the next or previous cluster boundary. The result
// stays within the block and before its final newline.
func step(bounds []int, offset int, forward bool) int {
	last := bounds[len(bounds)-1] - 1
	if last < 0 {
		return 0
	}
	if forward {
		for _, b := range bounds {
			if b > offset {
				if b > last {
					return last
				}
				return b
			}
		}
		return last
	}
	for i := len(bounds) - 1; i >= 0; i-- {
		if bounds[i] < offset {
			return bounds[i]
		}
	}
	return 0
}
