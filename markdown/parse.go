// Package markdown parses markdown source into ast nodes. The parser is
// deterministic and total: any text produces a block list, and serializing
// the blocks reproduces the text (with a trailing newline added when the
// text lacks one).
package markdown

import (
	"strings"

	"github.com/rjkroege/mdedit/ast"
)

// Parser implements the parse step of document reconciliation.
type Parser struct{}

// Parse parses text into top-level blocks allocated in a.
func (Parser) Parse(a *ast.Arena, text string) []ast.NodeID {
	return Parse(a, text)
}

// Parse parses text into top-level blocks allocated in a.
func Parse(a *ast.Arena, text string) []ast.NodeID {
	lines := splitLines(text)
	for i := range lines {
		lines[i] = chomp(lines[i])
	}
	b := &blockParser{a: a, lines: lines}
	var blocks []ast.NodeID
	for b.i < len(b.lines) {
		blocks = append(blocks, b.block())
	}
	return blocks
}

type blockParser struct {
	a     *ast.Arena
	lines []string
	i     int
}

// joinLines joins lines with newlines and terminates the result with one.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (b *blockParser) block() ast.NodeID {
	line := b.lines[b.i]

	if isBlank(line) {
		b.i++
		return b.a.New(ast.Node{Kind: ast.BlankLine, Literal: line})
	}
	if isIndentedCodeLine(line) {
		return b.indentedCode()
	}
	if c, n, ok := fenceOpen(line); ok {
		return b.fenced(ast.CodeBlock, func(s string) bool { return isFenceClose(s, c, n) })
	}
	if isMathFence(line) {
		return b.fenced(ast.MathBlock, isMathFence)
	}
	if level := headingLevel(line); level > 0 {
		b.i++
		return b.heading(line, level)
	}
	if isHorizontalRule(line) {
		b.i++
		return b.a.New(ast.Node{Kind: ast.ThematicBreak, Literal: line})
	}
	if b.tableStart(b.i) {
		return b.table()
	}
	if _, ok := quotePrefix(line); ok {
		return b.quote()
	}
	if isListItem(line) {
		return b.list()
	}
	if isHTMLBlockStart(line) {
		return b.html()
	}
	return b.paragraph()
}

// interrupts reports whether line i ends a paragraph.
func (b *blockParser) interrupts(i int) bool {
	line := b.lines[i]
	switch {
	case isBlank(line), isFenceDelimiter(line), isMathFence(line),
		headingLevel(line) > 0, isHorizontalRule(line), isListItem(line),
		b.tableStart(i):
		return true
	}
	_, ok := quotePrefix(line)
	return ok
}

func (b *blockParser) tableStart(i int) bool {
	return isTableRow(b.lines[i]) && i+1 < len(b.lines) && isTableSeparatorRow(b.lines[i+1])
}

// appendInline parses one line of inline content into parent.
func (b *blockParser) appendInline(parent ast.NodeID, text string) {
	for _, c := range parseInline(b.a, text, false) {
		b.a.Append(parent, c)
	}
}

func (b *blockParser) appendBreak(parent ast.NodeID, brk string) {
	b.a.Append(parent, b.a.New(ast.Node{Kind: ast.SoftBreak, Literal: brk}))
}

func (b *blockParser) heading(line string, level int) ast.NodeID {
	marker, content := headingMarker(line)
	h := b.a.New(ast.Node{Kind: ast.Heading, Level: level, Marker: marker})
	b.appendInline(h, content)
	return h
}

func (b *blockParser) fenced(kind ast.Kind, closes func(string) bool) ast.NodeID {
	open := b.lines[b.i]
	start := b.i + 1
	j := start
	for j < len(b.lines) && !closes(b.lines[j]) {
		j++
	}
	n := ast.Node{
		Kind:    kind,
		Fenced:  true,
		Info:    open,
		Literal: joinLines(b.lines[start:j]),
	}
	if j < len(b.lines) {
		n.Close = b.lines[j]
		j++
	}
	b.i = j
	return b.a.New(n)
}

func (b *blockParser) indentedCode() ast.NodeID {
	start := b.i
	for b.i < len(b.lines) && isIndentedCodeLine(b.lines[b.i]) {
		b.i++
	}
	return b.a.New(ast.Node{Kind: ast.CodeBlock, Literal: joinLines(b.lines[start:b.i])})
}

func (b *blockParser) html() ast.NodeID {
	start := b.i
	for b.i < len(b.lines) && !isBlank(b.lines[b.i]) {
		b.i++
	}
	return b.a.New(ast.Node{Kind: ast.HTMLBlock, Literal: joinLines(b.lines[start:b.i])})
}

func (b *blockParser) paragraph() ast.NodeID {
	p := b.a.New(ast.Node{Kind: ast.Paragraph})
	b.appendInline(p, b.lines[b.i])
	b.i++
	for b.i < len(b.lines) && !b.interrupts(b.i) {
		b.appendBreak(p, "\n")
		b.appendInline(p, b.lines[b.i])
		b.i++
	}
	return p
}

func (b *blockParser) quote() ast.NodeID {
	prefix, _ := quotePrefix(b.lines[b.i])
	q := b.a.New(ast.Node{Kind: ast.BlockQuote, Marker: prefix})
	b.appendInline(q, b.lines[b.i][len(prefix):])
	b.i++
	for b.i < len(b.lines) {
		prefix, ok := quotePrefix(b.lines[b.i])
		if !ok {
			break
		}
		b.appendBreak(q, "\n"+prefix)
		b.appendInline(q, b.lines[b.i][len(prefix):])
		b.i++
	}
	return q
}

func (b *blockParser) table() ast.NodeID {
	sep := b.lines[b.i+1]
	t := b.a.New(ast.Node{Kind: ast.Table, Literal: sep, Align: parseAlign(splitCells(sep))})
	b.a.Append(t, b.tableRow(b.lines[b.i]))
	b.i += 2
	for b.i < len(b.lines) && isTableRow(b.lines[b.i]) {
		b.a.Append(t, b.tableRow(b.lines[b.i]))
		b.i++
	}
	return t
}

func (b *blockParser) tableRow(line string) ast.NodeID {
	cells, tail := tableRow(line)
	row := b.a.New(ast.Node{Kind: ast.TableRow, Literal: tail})
	for _, c := range cells {
		cell := b.a.New(ast.Node{Kind: ast.TableCell, Marker: c.marker})
		b.appendInline(cell, c.text)
		b.a.Append(row, cell)
	}
	return row
}

// list consumes a run of list lines: items and the indented continuation
// lines that follow them. A blank line ends the run.
func (b *blockParser) list() ast.NodeID {
	end := b.i + 1
	for end < len(b.lines) {
		line := b.lines[end]
		if isBlank(line) || (!isListItem(line) && indentOf(line) == 0) {
			break
		}
		end++
	}
	id, n := b.buildList(b.lines[b.i:end], 0)
	b.i += n
	return id
}

// buildList builds one list from lines, which must start with an item. It
// stops at an item of a different list type at the same level and returns
// the number of lines consumed.
func (b *blockParser) buildList(lines []string, depth int) (ast.NodeID, int) {
	first, _ := parseListMarker(lines[0])
	start := first.number
	if !first.ordered {
		start = 0
	}
	list := b.a.New(ast.Node{Kind: ast.List, Ordered: first.ordered, Start: start, Level: depth})

	k := 0
	for k < len(lines) && isListItem(lines[k]) {
		m, _ := parseListMarker(lines[k])
		if k > 0 && (m.ordered != first.ordered || m.delim != first.delim) {
			break
		}
		item := b.a.New(ast.Node{Kind: ast.ListItem, Marker: m.prefix})
		b.appendInline(item, lines[k][len(m.prefix):])
		contentCol := columns(m.prefix)
		if len(m.prefix) == len(strings.TrimRight(m.prefix, " \t")) {
			contentCol++
		}
		k++

		for k < len(lines) && !isListItem(lines[k]) {
			ws := leadingSpace(lines[k])
			b.appendBreak(item, "\n"+ws)
			b.appendInline(item, lines[k][len(ws):])
			k++
		}

		nest := k
		for k < len(lines) {
			if isListItem(lines[k]) {
				if mm, _ := parseListMarker(lines[k]); mm.indent < contentCol {
					break
				}
			}
			k++
		}
		for s := nest; s < k; {
			sub, n := b.buildList(lines[s:k], depth+1)
			b.a.Append(item, sub)
			s += n
		}
		b.a.Append(list, item)
	}
	return list, k
}
