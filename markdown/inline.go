package markdown

import (
	"strings"

	"github.com/rjkroege/mdedit/ast"
)

// parseInline parses a single line of inline markup (code spans, math,
// images, links, autolinks, strong and emphasis) into arena nodes. Every
// byte of text ends up in exactly one node so the result serializes back
// to text unchanged.
//
// noLinks disables link and image recognition; it is set while parsing a
// link label to prevent nested links.
func parseInline(a *ast.Arena, text string, noLinks bool) []ast.NodeID {
	var out []ast.NodeID
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			out = append(out, a.New(ast.Node{Kind: ast.Text, Literal: plain.String()}))
			plain.Reset()
		}
	}
	emit := func(id ast.NodeID) {
		flushPlain()
		out = append(out, id)
	}
	// Bracket partners are found once per call.
	var match []int
	brackets := func() []int {
		if match == nil {
			match = matchBrackets(text)
		}
		return match
	}

	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && isPunct(text[i+1]):
			plain.WriteString(text[i : i+2])
			i += 2
			continue

		case c == '`':
			n := runLen(text, i, '`')
			if j := findCodeClose(text, i+n, n); j >= 0 {
				emit(a.New(ast.Node{Kind: ast.CodeSpan, Marker: text[i : i+n], Literal: text[i+n : j]}))
				i = j + n
				continue
			}
			plain.WriteString(text[i : i+n])
			i += n
			continue

		case c == '$':
			if j, ok := inlineMathEnd(text, i); ok {
				emit(a.New(ast.Node{Kind: ast.InlineMath, Literal: text[i+1 : j]}))
				i = j + 1
				continue
			}

		case c == '!' && !noLinks && i+1 < len(text) && text[i+1] == '[':
			if alt, dest, end, ok := linkParts(text, i+1, brackets()); ok {
				emit(a.New(ast.Node{Kind: ast.Image, Literal: alt, Dest: dest}))
				i = end
				continue
			}

		case c == '[' && !noLinks:
			if label, dest, end, ok := linkParts(text, i, brackets()); ok {
				children := parseInline(a, label, true)
				link := a.New(ast.Node{Kind: ast.Link, Dest: dest})
				for _, ch := range children {
					a.Append(link, ch)
				}
				emit(link)
				i = end
				continue
			}

		case c == '<':
			if dest, end, ok := autolink(text, i); ok {
				emit(a.New(ast.Node{Kind: ast.Link, Auto: true, Dest: dest}))
				i = end
				continue
			}

		case c == '*' || c == '_':
			n := runLen(text, i, c)
			if id, end, ok := emphasis(a, text, i, n, noLinks); ok {
				emit(id)
				i = end
				continue
			}
			plain.WriteString(text[i : i+n])
			i += n
			continue
		}
		plain.WriteByte(c)
		i++
	}
	flushPlain()
	return out
}

// runLen counts the run of c starting at text[i].
func runLen(text string, i int, c byte) int {
	n := 0
	for i+n < len(text) && text[i+n] == c {
		n++
	}
	return n
}

// findCodeClose returns the start of the next backtick run of exactly n at
// or after from, or -1.
func findCodeClose(text string, from, n int) int {
	for j := from; j < len(text); {
		if text[j] == '`' {
			m := runLen(text, j, '`')
			if m == n {
				return j
			}
			j += m
			continue
		}
		j++
	}
	return -1
}

// inlineMathEnd finds the closing $ of inline math opened at text[i]. The
// content must be non-empty, must not start or end with a space, and the
// closing $ must not be followed by a digit (so "$5 and $6" stays text).
func inlineMathEnd(text string, i int) (int, bool) {
	if i+1 >= len(text) || text[i+1] == '$' || text[i+1] == ' ' {
		return 0, false
	}
	for j := i + 2; j < len(text); j++ {
		switch {
		case text[j] == '\\':
			j++
		case text[j] == '$':
			if text[j-1] == ' ' {
				continue
			}
			if j+1 < len(text) && isDigit(text[j+1]) {
				continue
			}
			return j, true
		}
	}
	return 0, false
}

// linkParts parses [label](dest) starting at the '[' at text[i]. It
// returns the label, the raw destination and the index after ')'. match
// holds the bracket partners of text.
func linkParts(text string, i int, match []int) (label, dest string, end int, ok bool) {
	closeBracket := match[i]
	if closeBracket < 0 || closeBracket+1 >= len(text) || text[closeBracket+1] != '(' {
		return "", "", 0, false
	}
	closeParen := match[closeBracket+1]
	if closeParen < 0 {
		return "", "", 0, false
	}
	return text[i+1 : closeBracket], text[closeBracket+2 : closeParen], closeParen + 1, true
}

// matchBrackets pairs every '[' and '(' of text with the ']' or ')' that
// closes it. Escaped characters never pair; openers without a partner map
// to -1.
func matchBrackets(text string) []int {
	match := make([]int, len(text))
	var squares, rounds []int
	for j := 0; j < len(text); j++ {
		match[j] = -1
		switch text[j] {
		case '\\':
			if j+1 < len(text) {
				j++
				match[j] = -1
			}
		case '[':
			squares = append(squares, j)
		case '(':
			rounds = append(rounds, j)
		case ']':
			if n := len(squares); n > 0 {
				match[squares[n-1]] = j
				squares = squares[:n-1]
			}
		case ')':
			if n := len(rounds); n > 0 {
				match[rounds[n-1]] = j
				rounds = rounds[:n-1]
			}
		}
	}
	return match
}

// autolink parses <scheme:...> or <user@host> at text[i].
func autolink(text string, i int) (string, int, bool) {
	j := strings.IndexByte(text[i+1:], '>')
	if j <= 0 {
		return "", 0, false
	}
	content := text[i+1 : i+1+j]
	if strings.ContainsAny(content, " \t<") {
		return "", 0, false
	}
	if colon := strings.IndexByte(content, ':'); colon >= 2 {
		for k := 0; k < colon; k++ {
			if !isAlpha(content[k]) && !(k > 0 && (isDigit(content[k]) || strings.IndexByte("+.-", content[k]) >= 0)) {
				return "", 0, false
			}
		}
		return content, i + j + 2, true
	}
	if at := strings.IndexByte(content, '@'); at > 0 && at < len(content)-1 && strings.Contains(content[at:], ".") {
		return content, i + j + 2, true
	}
	return "", 0, false
}

// emphasis tries to parse strong or emphasis opened by the run of n c's at
// text[i]. Strong (two delimiters) is tried before emphasis (one).
func emphasis(a *ast.Arena, text string, i, n int, noLinks bool) (ast.NodeID, int, bool) {
	c := text[i]
	if i+n >= len(text) || isSpace(text[i+n]) {
		return ast.Nil, 0, false
	}
	if c == '_' && i > 0 && isAlnum(text[i-1]) {
		return ast.Nil, 0, false
	}
	for _, m := range []int{2, 1} {
		if m > n {
			continue
		}
		start := i + m
		closeAt := findEmphasisClose(text, start, c, m)
		if closeAt < 0 {
			continue
		}
		kind := ast.Emphasis
		if m == 2 {
			kind = ast.Strong
		}
		children := parseInline(a, text[start:closeAt], noLinks)
		id := a.New(ast.Node{Kind: kind, Marker: text[i : i+m]})
		for _, ch := range children {
			a.Append(id, ch)
		}
		return id, closeAt + m, true
	}
	return ast.Nil, 0, false
}

// findEmphasisClose finds where a closing delimiter of m c's begins. A
// closing run must follow a non-space character and have length m or 3
// (so *** can close both emphasis and strong).
func findEmphasisClose(text string, start int, c byte, m int) int {
	for j := start + 1; j < len(text); {
		switch text[j] {
		case '\\':
			j += 2
			continue
		case '`':
			n := runLen(text, j, '`')
			if k := findCodeClose(text, j+n, n); k >= 0 {
				j = k + n
				continue
			}
			j += n
			continue
		case c:
			r := runLen(text, j, c)
			if (r == m || r == 3) && !isSpace(text[j-1]) {
				end := j + r
				if c == '_' && end < len(text) && isAlnum(text[end]) {
					j = end
					continue
				}
				return end - m
			}
			j += r
			continue
		}
		j++
	}
	return -1
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) || c >= 0x80 }

func isPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
