package ast

import (
	"fmt"
	"html"
	"strings"
)

// ToHTML renders the subtree rooted at id as an HTML fragment.
func (a *Arena) ToHTML(id NodeID) string {
	var sb strings.Builder
	a.writeHTML(&sb, id)
	return sb.String()
}

var alignAttr = [...]string{
	AlignNone:   "",
	AlignLeft:   ` style="text-align:left"`,
	AlignCenter: ` style="text-align:center"`,
	AlignRight:  ` style="text-align:right"`,
}

func (a *Arena) writeHTMLChildren(sb *strings.Builder, id NodeID) {
	for _, c := range a.Children(id) {
		a.writeHTML(sb, c)
	}
}

func (a *Arena) writeHTML(sb *strings.Builder, id NodeID) {
	n := a.Node(id)
	esc := html.EscapeString
	switch n.Kind {
	case Document:
		a.writeHTMLChildren(sb, id)
	case Heading:
		fmt.Fprintf(sb, "<h%d>", n.Level)
		a.writeHTMLChildren(sb, id)
		fmt.Fprintf(sb, "</h%d>\n", n.Level)
	case Paragraph:
		sb.WriteString("<p>")
		a.writeHTMLChildren(sb, id)
		sb.WriteString("</p>\n")
	case BlankLine:
	case ThematicBreak:
		sb.WriteString("<hr />\n")
	case CodeBlock:
		if lang := n.Lang(); lang != "" {
			fmt.Fprintf(sb, "<pre><code class=\"language-%s\">", esc(lang))
		} else {
			sb.WriteString("<pre><code>")
		}
		sb.WriteString(esc(n.Code()))
		sb.WriteString("</code></pre>\n")
	case MathBlock:
		sb.WriteString("<div class=\"math\">$$\n")
		sb.WriteString(esc(n.Literal))
		sb.WriteString("$$</div>\n")
	case HTMLBlock:
		sb.WriteString(n.Literal)
	case BlockQuote:
		sb.WriteString("<blockquote><p>")
		a.writeHTMLChildren(sb, id)
		sb.WriteString("</p></blockquote>\n")
	case List:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		if n.Ordered && n.Start != 1 {
			fmt.Fprintf(sb, "<%s start=\"%d\">\n", tag, n.Start)
		} else {
			fmt.Fprintf(sb, "<%s>\n", tag)
		}
		a.writeHTMLChildren(sb, id)
		fmt.Fprintf(sb, "</%s>\n", tag)
	case ListItem:
		sb.WriteString("<li>")
		a.writeHTMLChildren(sb, id)
		sb.WriteString("</li>\n")
	case Table:
		sb.WriteString("<table>\n")
		for i, row := range a.Children(id) {
			cell := "td"
			if i == 0 {
				cell = "th"
			}
			sb.WriteString("<tr>")
			for j, c := range a.Children(row) {
				attr := ""
				if j < len(n.Align) {
					attr = alignAttr[n.Align[j]]
				}
				fmt.Fprintf(sb, "<%s%s>", cell, attr)
				a.writeHTMLChildren(sb, c)
				fmt.Fprintf(sb, "</%s>", cell)
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</table>\n")
	case Text:
		sb.WriteString(esc(n.Literal))
	case SoftBreak:
		sb.WriteByte('\n')
	case Strong:
		sb.WriteString("<strong>")
		a.writeHTMLChildren(sb, id)
		sb.WriteString("</strong>")
	case Emphasis:
		sb.WriteString("<em>")
		a.writeHTMLChildren(sb, id)
		sb.WriteString("</em>")
	case CodeSpan:
		fmt.Fprintf(sb, "<code>%s</code>", esc(n.Literal))
	case Link:
		fmt.Fprintf(sb, "<a href=\"%s\">", esc(n.URL()))
		if n.Auto {
			sb.WriteString(esc(n.Dest))
		} else {
			a.writeHTMLChildren(sb, id)
		}
		sb.WriteString("</a>")
	case Image:
		fmt.Fprintf(sb, "<img src=\"%s\" alt=\"%s\" />", esc(n.URL()), esc(n.Literal))
	case InlineMath:
		fmt.Fprintf(sb, "<span class=\"math\">$%s$</span>", esc(n.Literal))
	}
}

// Lang returns the info string word of a fenced code block.
func (n *Node) Lang() string {
	info := strings.TrimLeft(n.Info, " `~")
	if f := strings.Fields(info); len(f) > 0 {
		return f[0]
	}
	return ""
}

// Code returns the body of a code block without indentation or fences.
func (n *Node) Code() string {
	if n.Fenced {
		return n.Literal
	}
	var sb strings.Builder
	for _, line := range strings.SplitAfter(n.Literal, "\n") {
		switch {
		case strings.HasPrefix(line, "    "):
			line = line[4:]
		case strings.HasPrefix(line, "\t"):
			line = line[1:]
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// URL returns the destination of a link or image without any title.
func (n *Node) URL() string {
	dest := strings.TrimSpace(n.Dest)
	if strings.HasPrefix(dest, "<") {
		if i := strings.IndexByte(dest, '>'); i > 0 {
			return dest[1:i]
		}
	}
	if i := strings.IndexAny(dest, " \t"); i >= 0 {
		return dest[:i]
	}
	return dest
}

// Title returns the quoted title of a link or image destination, if any.
func (n *Node) Title() string {
	dest := strings.TrimSpace(n.Dest)
	i := strings.IndexAny(dest, " \t")
	if i < 0 {
		return ""
	}
	t := strings.TrimSpace(dest[i:])
	if len(t) >= 2 && (t[0] == '"' || t[0] == '\'') && t[len(t)-1] == t[0] {
		return t[1 : len(t)-1]
	}
	return ""
}
