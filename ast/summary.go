package ast

import (
	"fmt"
	"strings"
)

// Summary returns an indented outline of id's subtree, one node per line,
// for logs and test failures.
func (a *Arena) Summary(id NodeID) string {
	var sb strings.Builder
	a.summary(&sb, id, 0)
	return sb.String()
}

func (a *Arena) summary(sb *strings.Builder, id NodeID, depth int) {
	n := a.Node(id)
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Kind.String())
	switch n.Kind {
	case Heading:
		fmt.Fprintf(sb, " level=%d", n.Level)
	case List:
		fmt.Fprintf(sb, " ordered=%t depth=%d", n.Ordered, n.Level)
	case ListItem, TableCell, Strong, Emphasis, BlockQuote:
		fmt.Fprintf(sb, " marker=%q", n.Marker)
	case Link, Image:
		fmt.Fprintf(sb, " dest=%q", n.Dest)
	}
	switch n.Kind {
	case Text, CodeSpan, InlineMath, SoftBreak, BlankLine, CodeBlock, MathBlock, HTMLBlock, Image:
		fmt.Fprintf(sb, " %q", n.Literal)
	}
	sb.WriteByte('\n')
	for _, c := range n.children {
		a.summary(sb, c, depth+1)
	}
}
