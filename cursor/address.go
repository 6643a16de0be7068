// Package cursor implements the editor caret: a two-level address (top
// level block, rune offset into its markdown), selections, movement and
// hit-testing, and the edit primitives that route text changes through
// the document reconciler.
package cursor

import (
	"errors"
	"fmt"
	"image"

	"github.com/rjkroege/mdedit/ast"
)

// ErrNotTopLevel reports an address whose block is not a top-level block
// of the document.
var ErrNotTopLevel = errors.New("cursor: not a top-level block")

// Address names the position before rune Offset of the serialization of
// the top-level block Block.
type Address struct {
	Block  ast.NodeID
	Offset int
}

func (a Address) String() string {
	return fmt.Sprintf("%v+%d", a.Block, a.Offset)
}

// Mode is the selection mode.
type Mode int

const (
	Single Mode = iota // the cursor is a point
	Range              // the cursor extends a selection from its anchor
)

// Direction is a cursor movement.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	Mouse
)

var directionNames = [...]string{"left", "right", "up", "down", "mouse"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Anchor is the position immediately before one rune of a laid out block,
// relative to the block's top-left corner: the top-left of the rune's slot
// and the height of the row holding it.
type Anchor struct {
	image.Point
	Height int
}

// Geometry supplies the laid out shape of blocks.
type Geometry interface {
	// Height returns the rendered height of block id, including its
	// spacing to the next block.
	Height(id ast.NodeID) int

	// Anchors returns one anchor per rune of the serialization of id.
	Anchors(id ast.NodeID) []Anchor
}
