package rich

import (
	"strings"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/style"
)

// listIndent is the extra indentation of each level of list nesting.
const listIndent = 24

// Emit walks block once and returns its ops. focus reports whether the
// caret is inside a node; the markup of such nodes is shown in the node's
// hidden style instead of being hidden. A nil focus hides all markup.
func (r *Renderer) Emit(a *ast.Arena, block ast.NodeID, focus func(ast.NodeID) bool) []Op {
	if focus == nil {
		focus = func(ast.NodeID) bool { return false }
	}
	e := &emitter{a: a, sheet: r.sheet, focus: focus, root: r.sheet.Resolve("root", "")}
	e.block(block)
	return e.ops
}

type emitter struct {
	a     *ast.Arena
	sheet *style.Sheet
	focus func(ast.NodeID) bool
	root  style.Style
	ops   []Op
}

func (e *emitter) emit(o Op) {
	if o.Source() == "" {
		if _, ok := o.(Fragment); !ok {
			return
		}
	}
	e.ops = append(e.ops, o)
}

func (e *emitter) style(id ast.NodeID, pseudo string) style.Style {
	return e.sheet.ResolveNode(e.a, id, pseudo)
}

// markup emits delimiter text belonging to id.
func (e *emitter) markup(id ast.NodeID, text string) {
	if e.focus(id) {
		e.emit(Text{Text: text, Style: e.style(id, "hidden")})
		return
	}
	e.emit(Hidden{Text: text})
}

func (e *emitter) block(id ast.NodeID) {
	n := e.a.Node(id)
	st := e.style(id, "")
	switch n.Kind {
	case ast.Paragraph:
		e.emit(Fragment{Indent: st.Indent, Style: st})
		e.inlines(id, st)
		e.emit(HardBreak{Text: "\n"})

	case ast.Heading, ast.BlockQuote:
		e.emit(Fragment{Indent: st.Indent, Style: st})
		e.markup(id, n.Marker)
		e.inlines(id, st)
		e.emit(HardBreak{Text: "\n"})

	case ast.BlankLine:
		e.emit(Fragment{Indent: st.Indent, Style: st})
		e.emit(BlankLine{Text: n.Literal + "\n", Style: st})

	case ast.ThematicBreak:
		e.emit(Fragment{Indent: st.Indent, Style: st})
		if e.focus(id) {
			e.emit(Text{Text: n.Literal, Style: e.style(id, "hidden")})
		} else {
			e.emit(Rule{Text: n.Literal, Style: st})
		}
		e.emit(HardBreak{Text: "\n"})

	case ast.CodeBlock, ast.MathBlock, ast.HTMLBlock:
		e.literal(id, st)

	case ast.List:
		for _, item := range e.a.Children(id) {
			e.listItem(item, n.Level)
		}

	case ast.Table:
		e.table(id, st)

	default:
		e.emit(Fragment{Indent: st.Indent, Style: st})
		e.emit(Text{Text: strings.TrimSuffix(e.a.ToMarkdown(id), "\n"), Style: st})
		e.emit(HardBreak{Text: "\n"})
	}
}

type segment struct {
	text    string
	visible bool
}

// literal emits code, math and HTML blocks line by line. Fence lines are
// hidden unless the caret is in the block.
func (e *emitter) literal(id ast.NodeID, st style.Style) {
	n := e.a.Node(id)
	focused := e.focus(id)
	fenced := n.Kind == ast.MathBlock || (n.Kind == ast.CodeBlock && n.Fenced)
	e.emit(Fragment{Indent: st.Indent, Style: st})

	if n.Kind == ast.MathBlock && !focused {
		e.emit(Hidden{Text: n.Info + "\n"})
		e.emit(BlockMath{Text: n.Literal, TeX: strings.TrimSuffix(n.Literal, "\n"), Style: st})
		if n.Close != "" {
			e.emit(Hidden{Text: n.Close + "\n"})
		}
		return
	}

	var segs []segment
	if fenced {
		segs = append(segs, segment{n.Info, focused})
	}
	for _, line := range strings.SplitAfter(n.Literal, "\n") {
		if line != "" {
			segs = append(segs, segment{strings.TrimSuffix(line, "\n"), true})
		}
	}
	if fenced && n.Close != "" {
		segs = append(segs, segment{n.Close, focused})
	}

	last := -1
	for i, s := range segs {
		if s.visible {
			last = i
		}
	}
	for i, s := range segs {
		if !s.visible {
			e.emit(Hidden{Text: s.text + "\n"})
			continue
		}
		e.emit(Text{Text: s.text, Style: st})
		if i == last {
			e.emit(HardBreak{Text: "\n"})
		} else {
			e.emit(SoftBreak{Text: "\n"})
		}
	}
}

func (e *emitter) listItem(id ast.NodeID, depth int) {
	n := e.a.Node(id)
	st := e.style(id, style.NthChild(e.a.ChildIndex(id)+1))
	e.emit(Fragment{Indent: st.Indent + depth*listIndent, Style: st})
	if e.focus(id) {
		e.emit(Text{Text: n.Marker, Style: e.style(id, "hidden")})
	} else {
		e.emit(SerialNumber{Text: n.Marker, Label: label(n.Marker), Style: st})
	}

	ended := false
	for _, c := range e.a.Children(id) {
		if e.a.Kind(c) == ast.List {
			if !ended {
				e.emit(HardBreak{Text: "\n"})
				ended = true
			}
			e.block(c)
			continue
		}
		e.inline(c, st)
	}
	if !ended {
		e.emit(HardBreak{Text: "\n"})
	}
}

// label returns how a list marker is drawn: a bullet for unordered items
// and the number for ordered ones.
func label(marker string) string {
	m := strings.TrimSpace(marker)
	switch m {
	case "-", "*", "+":
		return "•"
	}
	return m
}

func (e *emitter) table(id ast.NodeID, tst style.Style) {
	n := e.a.Node(id)
	focused := e.focus(id)
	rows := e.a.Children(id)
	cols := 0
	if len(rows) > 0 {
		cols = len(e.a.Children(rows[0]))
	}

	for i, row := range rows {
		rst := e.style(row, style.NthChild(i+1))
		e.emit(Fragment{Indent: tst.Indent, Style: rst})
		if focused {
			e.emit(Text{Text: strings.TrimSuffix(e.a.ToMarkdown(row), "\n"), Style: e.style(id, "hidden")})
		} else {
			for j, cell := range e.a.Children(row) {
				cst := e.style(cell, "")
				c := Cell{Text: e.a.Node(cell).Marker, Col: j, Cols: cols, Style: cst}
				if j < len(n.Align) {
					c.Align = n.Align[j]
				}
				e.emit(c)
				e.inlines(cell, rst)
			}
			e.emit(Hidden{Text: e.a.Node(row).Literal})
		}
		e.emit(HardBreak{Text: "\n"})

		if i == 0 {
			if focused {
				e.emit(Fragment{Indent: tst.Indent, Style: rst})
				e.emit(Text{Text: n.Literal, Style: e.style(id, "hidden")})
				e.emit(HardBreak{Text: "\n"})
			} else {
				e.emit(Hidden{Text: n.Literal + "\n"})
			}
		}
	}
}

func (e *emitter) inlines(parent ast.NodeID, base style.Style) {
	for _, c := range e.a.Children(parent) {
		e.inline(c, base)
	}
}

func (e *emitter) inline(id ast.NodeID, base style.Style) {
	n := e.a.Node(id)
	switch n.Kind {
	case ast.Text:
		e.emit(Text{Text: n.Literal, Style: base})

	case ast.SoftBreak:
		e.emit(SoftBreak{Text: n.Literal})

	case ast.Strong, ast.Emphasis:
		st := e.derive(base, id)
		e.markup(id, n.Marker)
		e.inlines(id, st)
		e.markup(id, n.Marker)

	case ast.CodeSpan:
		st := e.derive(base, id)
		e.markup(id, n.Marker)
		e.emit(Text{Text: n.Literal, Style: st})
		e.markup(id, n.Marker)

	case ast.Link:
		st := e.derive(base, id)
		if n.Auto {
			e.markup(id, "<")
			e.emit(Text{Text: n.Dest, Style: st})
			e.markup(id, ">")
			return
		}
		e.markup(id, "[")
		e.inlines(id, st)
		e.markup(id, "]("+n.Dest+")")

	case ast.Image:
		if e.focus(id) {
			e.emit(Text{Text: e.a.ToMarkdown(id), Style: e.style(id, "hidden")})
			return
		}
		e.emit(Image{Text: e.a.ToMarkdown(id), Dest: n.Dest, Alt: n.Literal, Style: e.derive(base, id)})

	case ast.InlineMath:
		st := e.derive(base, id)
		if e.focus(id) {
			e.markup(id, "$")
			e.emit(Text{Text: n.Literal, Style: st})
			e.markup(id, "$")
			return
		}
		e.emit(InlineMath{Text: "$" + n.Literal + "$", TeX: n.Literal, Style: st})

	default:
		e.emit(Text{Text: e.a.ToMarkdown(id), Style: base})
	}
}

// derive returns the style of inline node id nested in text styled base.
// Font size, color and family are inherited unless the node's rule sets
// them; bold and italic accumulate.
func (e *emitter) derive(base style.Style, id ast.NodeID) style.Style {
	st := e.style(id, "")
	if st.FontSize == e.root.FontSize {
		st.FontSize = base.FontSize
	}
	if st.Color == e.root.Color {
		st.Color = base.Color
	}
	if st.FontFamily == e.root.FontFamily {
		st.FontFamily = base.FontFamily
	}
	st.Bold = st.Bold || base.Bold
	st.Italic = st.Italic || base.Italic
	st.Align = base.Align
	return st
}
