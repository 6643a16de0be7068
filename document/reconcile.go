package document

import (
	"fmt"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/markdown"
	"go.uber.org/zap"
)

// Result describes where the text of a reconciled edit landed.
type Result struct {
	// Blocks are the new blocks from the one holding the start of the
	// edited text onwards. Carry-over copies of unchanged neighbors are
	// not included.
	Blocks []ast.NodeID

	// Start is the tree index of Blocks[0], or of the block that follows
	// the edit when Blocks is empty.
	Start int

	// InsertOffset is the rune offset into the concatenated serialization
	// of Blocks where the edited text begins.
	InsertOffset int
}

// candidate is a freshly parsed block that is not yet in the tree.
type candidate struct {
	id   ast.NodeID
	text string
	n    int
}

// ReparseRange replaces the blocks [start, end) with the blocks parsed
// from newText. The window is widened by one neighbor on each side that
// exists so constructs spanning a block boundary re-form correctly. A
// neighbor whose text comes back unchanged keeps its identity.
//
// The result is computed before the tree is modified. On error the tree
// is unchanged.
func (t *Tree) ReparseRange(start, end int, newText string) (Result, error) {
	blocks := t.Blocks()
	if start < 0 || end > len(blocks) || start > end {
		return Result{}, fmt.Errorf("reparse [%d,%d) of %d blocks: %w", start, end, len(blocks), ErrOutOfRange)
	}

	isUp := start > 0
	isDown := end < len(blocks)
	lo, hi := start, end
	var upText string
	if isUp {
		lo--
		upText = t.Text(blocks[lo])
	}
	if isDown {
		hi++
	}
	upLen := utf8.RuneCountInString(upText)

	fresh := t.parse(upText, newText, blocks[end:hi])

	// An unterminated fence swallows everything after it, so the window
	// has to reach the end of the document.
	if hi < len(blocks) && len(fresh) > 0 && unterminated(t.arena.Node(fresh[len(fresh)-1].id)) {
		t.discard(fresh)
		hi = len(blocks)
		fresh = t.parse(upText, newText, blocks[end:hi])
		t.log.Debug("fence reaches end of document", zap.Int("start", start))
	}

	// Place the start of the edited text in the fresh blocks.
	lead, offset := 0, 0
	keepUp := false
	switch {
	case !isUp:
	case len(fresh) > 0 && fresh[0].n > upLen:
		offset = upLen
	case len(fresh) > 0 && fresh[0].text == upText:
		keepUp = true
	default:
		acc, found := 0, false
		for k, c := range fresh {
			if acc+c.n > upLen {
				lead, offset, found = k, upLen-acc, true
				break
			}
			acc += c.n
		}
		if !found && acc == upLen && newText == "" && !isDown {
			lead, found = len(fresh), true
		}
		if !found {
			t.discard(fresh)
			err := fmt.Errorf("reparse [%d,%d): %d runes of fresh blocks cannot hold offset %d: %w",
				start, end, acc, upLen, ErrInvariant)
			t.log.Error("reconcile", zap.Error(err))
			return Result{}, err
		}
	}
	if keepUp {
		t.arena.Free(fresh[0].id)
		fresh = fresh[1:]
		lo++
	}

	// Drop unchanged trailing neighbors, keeping their identity.
	minKeep := lead
	if offset > 0 {
		minKeep = lead + 1
	}
	for len(fresh) > minKeep && hi > end {
		last := fresh[len(fresh)-1]
		if last.text != t.Text(blocks[hi-1]) {
			break
		}
		t.arena.Free(last.id)
		fresh = fresh[:len(fresh)-1]
		hi--
	}

	ids := make([]ast.NodeID, len(fresh))
	for i, c := range fresh {
		ids[i] = c.id
	}
	if err := t.Splice(lo, hi, ids); err != nil {
		t.discard(fresh)
		return Result{}, err
	}
	res := Result{
		Blocks:       ids[lead:],
		Start:        lo + lead,
		InsertOffset: offset,
	}
	t.log.Debug("reparse",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("window.lo", lo),
		zap.Int("window.hi", hi),
		zap.Int("fresh", len(ids)),
		zap.Int("insertOffset", offset))
	return res, nil
}

// Edit applies a rune-position edit to the whole document: the OldLen runes
// at rec.Pos are replaced with text. Only the blocks the edit touches and
// their neighbors are re-parsed unless the edit touches a fence line or
// text brings one in. The result's InsertOffset is where text begins.
func (t *Tree) Edit(rec markdown.EditRecord, text string) (Result, error) {
	blocks := t.Blocks()
	bi := t.index()
	if rec.Pos < 0 || rec.OldLen < 0 || rec.Pos+rec.OldLen > bi.Len() {
		return Result{}, fmt.Errorf("edit at %d+%d of %d runes: %w", rec.Pos, rec.OldLen, bi.Len(), ErrOutOfRange)
	}
	rec.NewLen = utf8.RuneCountInString(text)
	start, end := bi.AffectedRange([]markdown.EditRecord{rec})
	if start < 0 || markdown.OpensFence(text) {
		start, end = 0, len(blocks)
	}

	var old []rune
	for _, id := range blocks[start:end] {
		old = append(old, []rune(t.Text(id))...)
	}
	base := bi.Blocks[start].SourceRuneStart
	from := rec.Pos - base
	to := from + rec.OldLen
	newText := string(old[:from]) + text + string(old[to:])
	res, err := t.ReparseRange(start, end, newText)
	if err != nil {
		return res, err
	}
	res.InsertOffset += from
	return res, nil
}

// Pos returns the document rune position of offset in block id, or -1 when
// id is not a top-level block. Offsets clamp to the block.
func (t *Tree) Pos(id ast.NodeID, offset int) int {
	i := t.IndexOf(id)
	if i < 0 {
		return -1
	}
	pos := 0
	for _, b := range t.Blocks()[:i] {
		pos += t.RuneLen(b)
	}
	switch n := t.RuneLen(id); {
	case offset < 0:
		offset = 0
	case offset > n:
		offset = n
	}
	return pos + offset
}

// index builds the block index from the cached block lengths.
func (t *Tree) index() *markdown.BlockIndex {
	return markdown.IndexBlocks(t.arena, t.Blocks(), t.RuneLen)
}

func (t *Tree) parse(upText, newText string, down []ast.NodeID) []candidate {
	src := upText + newText
	for _, id := range down {
		src += t.Text(id)
	}
	ids := t.parser.Parse(t.arena, src)
	out := make([]candidate, len(ids))
	for i, id := range ids {
		text := t.arena.ToMarkdown(id)
		out[i] = candidate{id: id, text: text, n: utf8.RuneCountInString(text)}
	}
	return out
}

func (t *Tree) discard(fresh []candidate) {
	for _, c := range fresh {
		t.arena.Free(c.id)
	}
}

func unterminated(n *ast.Node) bool {
	return n.Fenced && n.Close == ""
}
