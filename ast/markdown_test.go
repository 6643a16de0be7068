package ast

import (
	"strings"
	"testing"
)

func TestToMarkdownBlocks(t *testing.T) {
	a := NewArena()

	heading := a.New(Node{Kind: Heading, Level: 2, Marker: "## "})
	a.Append(heading, a.New(Node{Kind: Text, Literal: "Title"}))

	para := a.New(Node{Kind: Paragraph})
	a.Append(para, a.New(Node{Kind: Text, Literal: "one "}))
	strong := a.New(Node{Kind: Strong, Marker: "**"})
	a.Append(strong, a.New(Node{Kind: Text, Literal: "two"}))
	a.Append(para, strong)
	a.Append(para, a.New(Node{Kind: SoftBreak, Literal: "\n"}))
	a.Append(para, a.New(Node{Kind: CodeSpan, Marker: "`", Literal: "x"}))
	a.Append(para, a.New(Node{Kind: InlineMath, Literal: "y^2"}))

	code := a.New(Node{Kind: CodeBlock, Fenced: true, Info: "```go", Literal: "x := 1\n", Close: "```"})
	open := a.New(Node{Kind: CodeBlock, Fenced: true, Info: "~~~", Literal: "tail\n"})
	math := a.New(Node{Kind: MathBlock, Info: "$$", Literal: "a+b\n", Close: "$$"})
	blank := a.New(Node{Kind: BlankLine})

	list := a.New(Node{Kind: List})
	item := a.New(Node{Kind: ListItem, Marker: "- "})
	a.Append(item, a.New(Node{Kind: Text, Literal: "top"}))
	nested := a.New(Node{Kind: List, Level: 1, Ordered: true, Start: 1})
	sub := a.New(Node{Kind: ListItem, Marker: "    1. "})
	a.Append(sub, a.New(Node{Kind: Text, Literal: "sub"}))
	a.Append(nested, sub)
	a.Append(item, nested)
	a.Append(list, item)

	link := a.New(Node{Kind: Paragraph})
	l := a.New(Node{Kind: Link, Dest: "http://x.org \"t\""})
	a.Append(l, a.New(Node{Kind: Text, Literal: "x"}))
	a.Append(link, l)
	a.Append(link, a.New(Node{Kind: Text, Literal: " "}))
	a.Append(link, a.New(Node{Kind: Link, Auto: true, Dest: "http://y.org"}))
	a.Append(link, a.New(Node{Kind: Image, Literal: "alt", Dest: "a.png"}))

	tests := []struct {
		name string
		id   NodeID
		want string
	}{
		{"heading", heading, "## Title\n"},
		{"paragraph", para, "one **two**\n`x`$y^2$\n"},
		{"fenced", code, "```go\nx := 1\n```\n"},
		{"unclosed fence", open, "~~~\ntail\n"},
		{"math", math, "$$\na+b\n$$\n"},
		{"blank", blank, "\n"},
		{"nested list", list, "- top\n    1. sub\n"},
		{"links", link, "[x](http://x.org \"t\") <http://y.org>![alt](a.png)\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.ToMarkdown(tc.id)
			if got != tc.want {
				t.Errorf("ToMarkdown = %q, want %q\n%s", got, tc.want, a.Summary(tc.id))
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("block serialization %q lacks trailing newline", got)
			}
			if n := a.Len(tc.id); n != len([]rune(tc.want)) {
				t.Errorf("Len = %d, want %d", n, len([]rune(tc.want)))
			}
		})
	}
}

func TestToMarkdownTable(t *testing.T) {
	a := NewArena()
	table := a.New(Node{Kind: Table, Literal: "|---|:-:|", Align: []Align{AlignNone, AlignCenter}})
	for _, cells := range [][2]string{{"a", "b"}, {"1", "2"}} {
		row := a.New(Node{Kind: TableRow, Literal: " |"})
		for i, c := range cells {
			marker := "| "
			if i > 0 {
				marker = " | "
			}
			cell := a.New(Node{Kind: TableCell, Marker: marker})
			a.Append(cell, a.New(Node{Kind: Text, Literal: c}))
			a.Append(row, cell)
		}
		a.Append(table, row)
	}
	want := "| a | b |\n|---|:-:|\n| 1 | 2 |\n"
	if got := a.ToMarkdown(table); got != want {
		t.Errorf("ToMarkdown = %q, want %q", got, want)
	}
	html := a.ToHTML(table)
	if !strings.Contains(html, `<th style="text-align:center">b</th>`) {
		t.Errorf("ToHTML missing aligned header cell:\n%s", html)
	}
}

func TestNodeURLAndTitle(t *testing.T) {
	tests := []struct {
		dest, url, title string
	}{
		{"a.png", "a.png", ""},
		{"a.png \"big\"", "a.png", "big"},
		{"<a b.png>", "a b.png", ""},
		{" x.org 'y' ", "x.org", "y"},
	}
	for _, tc := range tests {
		n := &Node{Kind: Link, Dest: tc.dest}
		if got := n.URL(); got != tc.url {
			t.Errorf("URL(%q) = %q, want %q", tc.dest, got, tc.url)
		}
		if got := n.Title(); got != tc.title {
			t.Errorf("Title(%q) = %q, want %q", tc.dest, got, tc.title)
		}
	}
}

func TestToHTMLEscapes(t *testing.T) {
	a := NewArena()
	p := a.New(Node{Kind: Paragraph})
	a.Append(p, a.New(Node{Kind: Text, Literal: "a < b"}))
	em := a.New(Node{Kind: Emphasis, Marker: "*"})
	a.Append(em, a.New(Node{Kind: Text, Literal: "c"}))
	a.Append(p, em)
	if got, want := a.ToHTML(p), "<p>a &lt; b<em>c</em></p>\n"; got != want {
		t.Errorf("ToHTML = %q, want %q", got, want)
	}
	if got, want := a.PlainText(p), "a < bc"; got != want {
		t.Errorf("PlainText = %q, want %q", got, want)
	}
}
