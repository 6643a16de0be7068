package markdown

import (
	"strings"

	"github.com/rjkroege/mdedit/ast"
)

// splitLines splits text into lines, each keeping its trailing newline.
// A final line without a newline is kept as is.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// chomp removes one trailing newline.
func chomp(line string) string {
	return strings.TrimSuffix(line, "\n")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// indentOf returns the number of leading spaces, counting a tab as four.
func indentOf(s string) int {
	n := 0
	for _, c := range s {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// columns returns the display width of s, counting a tab as four.
func columns(s string) int {
	n := 0
	for _, c := range s {
		if c == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

// leadingSpace returns the run of spaces and tabs that starts s.
func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// headingLevel returns the ATX heading level of line, or 0.
func headingLevel(line string) int {
	if indentOf(line) > 3 {
		return 0
	}
	s := strings.TrimLeft(line, " ")
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level < len(s) && s[level] != ' ' && s[level] != '\t' && s[level] != '\r' {
		return 0
	}
	return level
}

// headingMarker splits a heading line into its marker (indent, hashes and
// following spaces) and its content.
func headingMarker(line string) (string, string) {
	s := strings.TrimLeft(line, " ")
	i := len(line) - len(s)
	for i < len(line) && line[i] == '#' {
		i++
	}
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i], line[i:]
}

// fenceOpen reports whether line opens a fenced code block and returns the
// fence character and run length.
func fenceOpen(line string) (byte, int, bool) {
	if indentOf(line) > 3 {
		return 0, 0, false
	}
	s := strings.TrimLeft(line, " ")
	if len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return 0, 0, false
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	if c == '`' && strings.IndexByte(s[n:], '`') >= 0 {
		return 0, 0, false
	}
	return c, n, true
}

// isFenceClose reports whether line closes a fence opened with n c's.
func isFenceClose(line string, c byte, n int) bool {
	if indentOf(line) > 3 {
		return false
	}
	s := strings.TrimSpace(line)
	if len(s) < n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}

// isFenceDelimiter reports whether line opens or closes a code fence.
func isFenceDelimiter(line string) bool {
	_, _, ok := fenceOpen(line)
	return ok
}

// isMathFence reports whether line is a lone $$ delimiter.
func isMathFence(line string) bool {
	return indentOf(line) <= 3 && strings.TrimSpace(line) == "$$"
}

// isHorizontalRule reports whether line is a thematic break: three or more
// of the same -, * or _ with optional spaces between.
func isHorizontalRule(line string) bool {
	if indentOf(line) > 3 {
		return false
	}
	var c byte
	n := 0
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; ch {
		case ' ', '\t', '\r':
		case '-', '*', '_':
			if c != 0 && ch != c {
				return false
			}
			c = ch
			n++
		default:
			return false
		}
	}
	return n >= 3
}

// listMarker describes a list item line.
type listMarker struct {
	indent  int    // columns before the bullet
	prefix  string // indent, bullet and following spaces
	ordered bool
	delim   byte // '-', '*', '+' for bullets; '.' or ')' for ordered
	number  int
}

// parseListMarker recognises bullet and ordered list item lines.
func parseListMarker(line string) (listMarker, bool) {
	lead := leadingSpace(line)
	s := line[len(lead):]
	m := listMarker{indent: indentOf(line)}
	i := 0
	switch {
	case len(s) > 0 && (s[0] == '-' || s[0] == '*' || s[0] == '+'):
		m.delim = s[0]
		i = 1
	default:
		for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
			m.number = m.number*10 + int(s[i]-'0')
			i++
		}
		if i == 0 || i >= len(s) || (s[i] != '.' && s[i] != ')') {
			return listMarker{}, false
		}
		m.ordered = true
		m.delim = s[i]
		i++
	}
	if i < len(s) && s[i] != ' ' && s[i] != '\t' && s[i] != '\r' {
		return listMarker{}, false
	}
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	m.prefix = lead + s[:i]
	return m, true
}

// isUnorderedListItem reports whether line starts a bullet list item.
func isUnorderedListItem(line string) bool {
	m, ok := parseListMarker(line)
	return ok && !m.ordered && !isHorizontalRule(line)
}

// isOrderedListItem reports whether line starts a numbered list item.
func isOrderedListItem(line string) bool {
	m, ok := parseListMarker(line)
	return ok && m.ordered
}

func isListItem(line string) bool {
	return isUnorderedListItem(line) || isOrderedListItem(line)
}

// isIndentedCodeLine reports whether line belongs to an indented code block.
func isIndentedCodeLine(line string) bool {
	return !isBlank(line) && indentOf(line) >= 4
}

// quotePrefix returns the block quote marker of line: up to three spaces,
// '>' and one optional space.
func quotePrefix(line string) (string, bool) {
	if indentOf(line) > 3 {
		return "", false
	}
	lead := leadingSpace(line)
	s := line[len(lead):]
	if !strings.HasPrefix(s, ">") {
		return "", false
	}
	n := len(lead) + 1
	if n < len(line) && line[n] == ' ' {
		n++
	}
	return line[:n], true
}

// isHTMLBlockStart reports whether line opens a raw HTML block.
func isHTMLBlockStart(line string) bool {
	if indentOf(line) > 3 {
		return false
	}
	s := strings.TrimLeft(line, " ")
	if strings.HasPrefix(s, "<!--") {
		return true
	}
	if len(s) < 2 || s[0] != '<' {
		return false
	}
	i := 1
	if s[i] == '/' {
		i++
	}
	start := i
	for i < len(s) && (isAlpha(s[i]) || (i > start && (isDigit(s[i]) || s[i] == '-'))) {
		i++
	}
	if i == start {
		return false
	}
	return i == len(s) || s[i] == '>' || s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || strings.HasPrefix(s[i:], "/>")
}

// isTableRow reports whether line could be a table row: non-blank and
// containing an unescaped pipe.
func isTableRow(line string) bool {
	return !isBlank(line) && len(pipePositions(line)) > 0
}

// isTableSeparatorRow reports whether line is a table delimiter row such as
// |---|:--:|.
func isTableSeparatorRow(line string) bool {
	if !isTableRow(line) {
		return false
	}
	cells := 0
	for _, c := range splitCells(chomp(line)) {
		s := strings.TrimSpace(c.text)
		s = strings.TrimPrefix(s, ":")
		s = strings.TrimSuffix(s, ":")
		if s == "" || strings.Trim(s, "-") != "" {
			return false
		}
		cells++
	}
	return cells > 0
}

// pipePositions returns the byte offsets of unescaped pipes in line,
// ignoring pipes inside code spans.
func pipePositions(line string) []int {
	var pos []int
	inCode := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '`':
			inCode = !inCode
		case '|':
			if !inCode {
				pos = append(pos, i)
			}
		}
	}
	return pos
}

// rowCell is one cell of a table row: marker is everything between the
// previous cell's text and this one's (whitespace and the pipe), text is
// the trimmed content.
type rowCell struct {
	marker string
	text   string
}

// splitCells splits a table row into cells, dropping the tail.
func splitCells(line string) []rowCell {
	cells, _ := tableRow(line)
	return cells
}

// tableRow decomposes a row so that concatenating every marker and text,
// followed by tail, reproduces line exactly.
func tableRow(line string) ([]rowCell, string) {
	pipes := pipePositions(line)
	lead := leadingSpace(line)
	leadingPipe := len(pipes) > 0 && pipes[0] == len(lead)

	// Region boundaries: each region is the text between two pipes.
	var bounds []int
	if leadingPipe {
		bounds = pipes
	} else {
		bounds = append([]int{len(lead) - 1}, pipes...)
	}

	var cells []rowCell
	pending := lead
	for k, b := range bounds {
		start := b + 1
		end := len(line)
		if k+1 < len(bounds) {
			end = bounds[k+1]
		}
		raw := line[start:end]
		last := k+1 == len(bounds)
		if last && isBlank(raw) && k > 0 {
			// Trailing pipe: what follows it belongs to the tail.
			return cells, pending + line[b:]
		}
		pipe := ""
		if b >= len(lead) {
			pipe = "|"
		}
		if isBlank(raw) {
			cells = append(cells, rowCell{marker: pending + pipe + raw})
			pending = ""
			continue
		}
		trimmedLeft := strings.TrimLeft(raw, " \t")
		text := strings.TrimRight(trimmedLeft, " \t\r")
		cells = append(cells, rowCell{
			marker: pending + pipe + raw[:len(raw)-len(trimmedLeft)],
			text:   text,
		})
		pending = trimmedLeft[len(text):]
	}
	return cells, pending
}

// parseAlign reads column alignments from a delimiter row.
func parseAlign(cells []rowCell) []ast.Align {
	out := make([]ast.Align, len(cells))
	for i, c := range cells {
		s := strings.TrimSpace(c.text)
		left := strings.HasPrefix(s, ":")
		right := strings.HasSuffix(s, ":")
		switch {
		case left && right:
			out[i] = ast.AlignCenter
		case left:
			out[i] = ast.AlignLeft
		case right:
			out[i] = ast.AlignRight
		}
	}
	return out
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
