// Package ast holds the markdown syntax tree. Nodes live in an Arena and
// refer to their parent and children by NodeID, so upward links never form
// pointer cycles and stale references can be detected after a node is freed.
package ast

import "fmt"

// Kind identifies the type of a node.
type Kind uint8

const (
	Document Kind = iota

	// Blocks.
	Heading
	Paragraph
	BlankLine
	ThematicBreak
	CodeBlock
	MathBlock
	HTMLBlock
	BlockQuote
	List
	ListItem
	Table
	TableRow
	TableCell

	// Inlines.
	Text
	Strong
	Emphasis
	CodeSpan
	Link
	Image
	InlineMath
	SoftBreak

	numKinds
)

var kindNames = [numKinds]string{
	Document:      "document",
	Heading:       "heading",
	Paragraph:     "paragraph",
	BlankLine:     "blank_line",
	ThematicBreak: "thematic_break",
	CodeBlock:     "block_code",
	MathBlock:     "block_math",
	HTMLBlock:     "block_html",
	BlockQuote:    "block_quote",
	List:          "list",
	ListItem:      "list_item",
	Table:         "table",
	TableRow:      "table_row",
	TableCell:     "table_cell",
	Text:          "text",
	Strong:        "strong",
	Emphasis:      "emphasis",
	CodeSpan:      "codespan",
	Link:          "link",
	Image:         "image",
	InlineMath:    "inline_math",
	SoftBreak:     "softbreak",
}

// String returns the name used for the kind in style sheets and dumps.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// KindByName is the inverse of Kind.String.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsBlock reports whether nodes of kind k may appear at the top level.
func (k Kind) IsBlock() bool {
	return k >= Heading && k <= Table
}

// Align is the alignment of a table column.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Node is a single tree node. Which fields are meaningful depends on Kind:
//
//	Heading      Level, Marker ("## ")
//	BlankLine    Literal (whitespace on the line)
//	ThematicBreak Literal (the rule line)
//	CodeBlock    Fenced, Info (opening line), Literal (body), Close (closing line)
//	MathBlock    Info, Literal, Close
//	HTMLBlock    Literal (raw lines)
//	BlockQuote   Marker (first line prefix)
//	List         Ordered, Start, Level (nesting depth)
//	ListItem     Marker (indent, bullet or number, space)
//	Table        Literal (delimiter row), Align
//	TableRow     Literal (text after the last cell)
//	TableCell    Marker (pipe and padding before the content)
//	Text         Literal
//	Strong, Emphasis Marker (delimiter run)
//	CodeSpan     Marker (backtick run), Literal
//	Link         Dest, Auto
//	Image        Literal (alt text), Dest
//	InlineMath   Literal
//	SoftBreak    Literal (the line break and any continuation prefix)
//
// Every block serializes to text ending in a newline.
type Node struct {
	Kind    Kind
	Level   int
	Marker  string
	Literal string
	Info    string
	Close   string
	Dest    string
	Fenced  bool
	Ordered bool
	Start   int
	Auto    bool
	Align   []Align

	parent   NodeID
	children []NodeID
	gen      uint32
	live     bool
}

// NodeID refers to a node in an Arena. The zero NodeID refers to nothing.
type NodeID struct {
	idx int32
	gen uint32
}

// Nil is the NodeID that refers to no node.
var Nil NodeID

// IsNil reports whether id is the zero NodeID.
func (id NodeID) IsNil() bool { return id.gen == 0 }

func (id NodeID) String() string {
	if id.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("#%d.%d", id.idx, id.gen)
}
