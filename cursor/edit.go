package cursor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/markdown"
	"go.uber.org/zap"
)

// Insert replaces the selection, or inserts at the caret, with text.
func (c *Cursor) Insert(text string) error {
	return c.SwapSelectionContent(text)
}

// SwapSelectionContent replaces the selected text with text and leaves the
// caret after it in Single mode.
func (c *Cursor) SwapSelectionContent(text string) error {
	start, end := c.SelectedRange()
	if start == end && text == "" {
		return nil
	}
	if err := c.swap(start, end, text); err != nil {
		return err
	}
	c.SetSelectMode(Single)
	return nil
}

// Replace is SwapSelectionContent for text that may reshape blocks beyond
// the selection's neighbors, such as a paste. The edit goes through the
// document-wide path, which re-parses everything after a fence line.
func (c *Cursor) Replace(text string) error {
	c.revalidate()
	start, end := c.SelectedRange()
	if start == end && text == "" {
		return nil
	}
	from, to := c.tree.Pos(start.Block, start.Offset), c.tree.Pos(end.Block, end.Offset)
	if from < 0 || to < 0 {
		return fmt.Errorf("replace %v..%v: %w", start, end, ErrNotTopLevel)
	}
	res, err := c.tree.Edit(markdown.EditRecord{Pos: from, OldLen: to - from}, text)
	if err != nil {
		c.log.Error("edit aborted",
			zap.Stringer("start", start),
			zap.Stringer("end", end),
			zap.Error(err))
		return err
	}
	id, off := c.tree.SeekIndex(res.Start, res.InsertOffset+utf8.RuneCountInString(text))
	c.at = Address{Block: id, Offset: off}
	c.SetSelectMode(Single)
	return nil
}

// Pop deletes the n runes before the caret, continuing into preceding
// blocks when the caret's block holds fewer.
func (c *Cursor) Pop(n int) error {
	if n <= 0 {
		return nil
	}
	c.revalidate()
	idx := c.tree.IndexOf(c.at.Block)
	blocks := c.tree.Blocks()
	avail, from := c.at.Offset, c.at.Block
	for n > avail && idx > 0 {
		idx--
		from = blocks[idx]
		avail += c.tree.RuneLen(from)
	}
	start := Address{Block: from, Offset: avail - n}
	if start.Offset < 0 {
		start.Offset = 0
	}
	if start == c.at {
		return nil
	}
	if err := c.swap(start, c.at, ""); err != nil {
		return err
	}
	c.SetSelectMode(Single)
	return nil
}

// Return breaks the line at the caret. At the end of a block's text it
// opens a new empty paragraph after the block instead of inserting a
// newline.
func (c *Cursor) Return() error {
	c.revalidate()
	if c.HasSelection() {
		return c.SwapSelectionContent("\n")
	}
	text := []rune(c.tree.Text(c.at.Block))
	if c.at.Offset < len(text) && string(text[c.at.Offset:]) == "\n" {
		a := c.tree.Arena()
		p := a.New(ast.Node{Kind: ast.Paragraph})
		if err := c.tree.Insert(p, c.tree.IndexOf(c.at.Block)+1); err != nil {
			a.Free(p)
			return err
		}
		c.at = Address{Block: p}
		c.SetSelectMode(Single)
		return nil
	}
	return c.Insert("\n")
}

// SelectedText returns the selected part of the document's markdown.
func (c *Cursor) SelectedText() string {
	start, end := c.SelectedRange()
	if start == end {
		return ""
	}
	first := []rune(c.tree.Text(start.Block))
	if start.Block == end.Block {
		return string(first[clamp(start.Offset, len(first)):clamp(end.Offset, len(first))])
	}
	var sb strings.Builder
	sb.WriteString(string(first[clamp(start.Offset, len(first)):]))
	blocks := c.tree.Blocks()
	for i := c.tree.IndexOf(start.Block) + 1; i < c.tree.IndexOf(end.Block); i++ {
		sb.WriteString(c.tree.Text(blocks[i]))
	}
	last := []rune(c.tree.Text(end.Block))
	sb.WriteString(string(last[:clamp(end.Offset, len(last))]))
	return sb.String()
}

// swap replaces the text between start and end with text through the
// reconciler and relocates the caret to the end of the inserted text.
func (c *Cursor) swap(start, end Address, text string) error {
	si, ei := c.tree.IndexOf(start.Block), c.tree.IndexOf(end.Block)
	if si < 0 || ei < 0 {
		return fmt.Errorf("swap %v..%v: %w", start, end, ErrNotTopLevel)
	}
	head := []rune(c.tree.Text(start.Block))
	tail := []rune(c.tree.Text(end.Block))
	s, e := clamp(start.Offset, len(head)), clamp(end.Offset, len(tail))
	newText := string(head[:s]) + text + string(tail[e:])

	res, err := c.tree.ReparseRange(si, ei+1, newText)
	if err != nil {
		c.log.Error("edit aborted",
			zap.Stringer("start", start),
			zap.Stringer("end", end),
			zap.Error(err))
		return err
	}
	id, off := c.tree.SeekIndex(res.Start, res.InsertOffset+s+utf8.RuneCountInString(text))
	c.at = Address{Block: id, Offset: off}
	c.anchor = c.at
	return nil
}

func clamp(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i > n:
		return n
	}
	return i
}
