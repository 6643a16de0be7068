package ast

import (
	"strings"
	"unicode/utf8"
)

// ToMarkdown serializes the subtree rooted at id back to markdown source.
// Serializing every top-level block in order reproduces the document.
func (a *Arena) ToMarkdown(id NodeID) string {
	var sb strings.Builder
	a.writeMarkdown(&sb, id)
	return sb.String()
}

// Len returns the length in runes of ToMarkdown(id).
func (a *Arena) Len(id NodeID) int {
	return utf8.RuneCountInString(a.ToMarkdown(id))
}

func (a *Arena) writeChildren(sb *strings.Builder, id NodeID) {
	for _, c := range a.Children(id) {
		a.writeMarkdown(sb, c)
	}
}

func (a *Arena) writeMarkdown(sb *strings.Builder, id NodeID) {
	n := a.Node(id)
	switch n.Kind {
	case Document, List:
		a.writeChildren(sb, id)

	case TableCell:
		sb.WriteString(n.Marker)
		a.writeChildren(sb, id)

	case Heading, BlockQuote:
		sb.WriteString(n.Marker)
		a.writeChildren(sb, id)
		sb.WriteByte('\n')

	case Paragraph:
		a.writeChildren(sb, id)
		sb.WriteByte('\n')

	case BlankLine, ThematicBreak:
		sb.WriteString(n.Literal)
		sb.WriteByte('\n')

	case CodeBlock, MathBlock:
		if n.Kind == MathBlock || n.Fenced {
			sb.WriteString(n.Info)
			sb.WriteByte('\n')
			sb.WriteString(n.Literal)
			if n.Close != "" {
				sb.WriteString(n.Close)
				sb.WriteByte('\n')
			}
			return
		}
		sb.WriteString(n.Literal)

	case HTMLBlock:
		sb.WriteString(n.Literal)

	case ListItem:
		sb.WriteString(n.Marker)
		ended := false
		for _, c := range a.Children(id) {
			if a.Kind(c) == List && !ended {
				sb.WriteByte('\n')
				ended = true
			}
			a.writeMarkdown(sb, c)
		}
		if !ended {
			sb.WriteByte('\n')
		}

	case Table:
		for i, row := range a.Children(id) {
			a.writeMarkdown(sb, row)
			if i == 0 {
				sb.WriteString(n.Literal)
				sb.WriteByte('\n')
			}
		}

	case TableRow:
		a.writeChildren(sb, id)
		sb.WriteString(n.Literal)
		sb.WriteByte('\n')

	case Text, SoftBreak:
		sb.WriteString(n.Literal)

	case Strong, Emphasis:
		sb.WriteString(n.Marker)
		a.writeChildren(sb, id)
		sb.WriteString(n.Marker)

	case CodeSpan:
		sb.WriteString(n.Marker)
		sb.WriteString(n.Literal)
		sb.WriteString(n.Marker)

	case Link:
		if n.Auto {
			sb.WriteByte('<')
			sb.WriteString(n.Dest)
			sb.WriteByte('>')
			return
		}
		sb.WriteByte('[')
		a.writeChildren(sb, id)
		sb.WriteString("](")
		sb.WriteString(n.Dest)
		sb.WriteByte(')')

	case Image:
		sb.WriteString("![")
		sb.WriteString(n.Literal)
		sb.WriteString("](")
		sb.WriteString(n.Dest)
		sb.WriteByte(')')

	case InlineMath:
		sb.WriteByte('$')
		sb.WriteString(n.Literal)
		sb.WriteByte('$')
	}
}

// PlainText returns the visible text of id's subtree with all markup
// removed. Soft breaks become spaces.
func (a *Arena) PlainText(id NodeID) string {
	var sb strings.Builder
	a.Walk(id, func(c NodeID) bool {
		n := a.Node(c)
		switch n.Kind {
		case Text, CodeSpan, InlineMath:
			sb.WriteString(n.Literal)
		case Image:
			sb.WriteString(n.Literal)
		case SoftBreak:
			sb.WriteByte(' ')
		case Link:
			if n.Auto {
				sb.WriteString(n.Dest)
			}
		}
		return true
	})
	return sb.String()
}
