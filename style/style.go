// Package style loads the style sheet that controls how markdown nodes are
// drawn. A sheet is a TOML document whose tables are selectors:
//
//	[root]
//	font-size = 20
//	color = "#24292f"
//
//	["h1, h2"]
//	font-weight = "bold"
//
//	["table_row:nth-child(2n)"]
//	background-color = "rgb(246, 248, 250)"
//
// A selector is a node kind name (or h1 to h6 for headings), optionally
// followed by a pseudo-class: hidden for markup shown around the node under
// the cursor, nth-child(an+b), odd or even.
package style

import (
	"image/color"

	"github.com/rjkroege/mdedit/ast"
)

// Padding is space around a block's background, in pixels.
type Padding struct {
	Top, Right, Bottom, Left int
}

// Style is the resolved set of properties for one selector.
type Style struct {
	FontSize   int
	FontFamily string
	Italic     bool
	Bold       bool

	Color      color.NRGBA
	Background color.NRGBA

	BorderWidth  int
	BorderRadius int
	Padding      Padding
	Indent       int
	Align        ast.Align
}

// HasBackground reports whether the style paints a background box.
func (s Style) HasBackground() bool {
	return s.Background.A != 0
}

// FontKey names the font the style needs. Styles with the same key share a
// font.
type FontKey struct {
	Family string
	Size   int
	Bold   bool
	Italic bool
}

// Font returns the key of the style's font.
func (s Style) Font() FontKey {
	return FontKey{Family: s.FontFamily, Size: s.FontSize, Bold: s.Bold, Italic: s.Italic}
}

// Selector returns the selector name for a node: the kind name, or h1 to h6
// for headings.
func Selector(a *ast.Arena, id ast.NodeID) string {
	if a.Kind(id) == ast.Heading {
		n := a.Node(id).Level
		if n < 1 {
			n = 1
		}
		if n > 6 {
			n = 6
		}
		return "h" + string(rune('0'+n))
	}
	return a.Kind(id).String()
}
