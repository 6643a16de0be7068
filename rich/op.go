package rich

import (
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/style"
)

// Op is one render instruction produced by Emit. The set of Op types is
// closed: Text, Hidden, SoftBreak, HardBreak, BlankLine, Rule, Image,
// InlineMath, BlockMath, SerialNumber, Cell and Fragment. Every op except
// Fragment covers a run of the block's markdown, so the ops of a block
// together account for each of its runes exactly once.
type Op interface {
	// Source returns the markdown the op stands for.
	Source() string
	op()
}

// Text is visible text in a style.
type Text struct {
	Text  string
	Style style.Style
}

// Hidden is markup that takes no space. Its runes are anchored at the pen.
type Hidden struct {
	Text string
}

// SoftBreak ends a row inside a fragment. Text is the newline followed by
// any continuation prefix, which is hidden at the start of the next row.
type SoftBreak struct {
	Text string
}

// HardBreak ends the current fragment.
type HardBreak struct {
	Text string
}

// BlankLine is an empty row.
type BlankLine struct {
	Text  string
	Style style.Style
}

// Rule is a horizontal line across the fragment. Its text is hidden.
type Rule struct {
	Text  string
	Style style.Style
}

// Image is an inline picture loaded from Dest, with Alt shown when it
// cannot be loaded.
type Image struct {
	Text  string
	Dest  string
	Alt   string
	Style style.Style
}

// InlineMath is a TeX expression typeset inside a row.
type InlineMath struct {
	Text  string
	TeX   string
	Style style.Style
}

// BlockMath is a TeX display expression. It occupies whole rows.
type BlockMath struct {
	Text  string
	TeX   string
	Style style.Style
}

// SerialNumber is a list item marker drawn as Label.
type SerialNumber struct {
	Text  string
	Label string
	Style style.Style
}

// Cell moves the pen to the start of column Col of Cols. Text is the cell
// marker, which is hidden.
type Cell struct {
	Text  string
	Col   int
	Cols  int
	Align ast.Align
	Style style.Style
}

// Fragment starts a new fragment: a run of rows sharing an indentation
// and a background.
type Fragment struct {
	Indent int
	Style  style.Style
}

func (o Text) Source() string         { return o.Text }
func (o Hidden) Source() string       { return o.Text }
func (o SoftBreak) Source() string    { return o.Text }
func (o HardBreak) Source() string    { return o.Text }
func (o BlankLine) Source() string    { return o.Text }
func (o Rule) Source() string         { return o.Text }
func (o Image) Source() string        { return o.Text }
func (o InlineMath) Source() string   { return o.Text }
func (o BlockMath) Source() string    { return o.Text }
func (o SerialNumber) Source() string { return o.Text }
func (o Cell) Source() string         { return o.Text }
func (o Fragment) Source() string     { return "" }

func (Text) op()         {}
func (Hidden) op()       {}
func (SoftBreak) op()    {}
func (HardBreak) op()    {}
func (BlankLine) op()    {}
func (Rule) op()         {}
func (Image) op()        {}
func (InlineMath) op()   {}
func (BlockMath) op()    {}
func (SerialNumber) op() {}
func (Cell) op()         {}
func (Fragment) op()     {}

// Runes returns the number of markdown runes covered by ops.
func Runes(ops []Op) int {
	n := 0
	for _, o := range ops {
		n += utf8.RuneCountInString(o.Source())
	}
	return n
}

// Source concatenates the markdown covered by ops.
func Source(ops []Op) string {
	var b []byte
	for _, o := range ops {
		b = append(b, o.Source()...)
	}
	return string(b)
}
