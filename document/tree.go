// Package document holds the top-level block list of a markdown document
// and reconciles it with edits by re-parsing only the neighborhood of the
// changed blocks.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/markdown"
	"go.uber.org/zap"
)

// Parser turns text into top-level blocks allocated in an arena. It must be
// deterministic and accept any text.
type Parser interface {
	Parse(a *ast.Arena, text string) []ast.NodeID
}

// block is what the tree remembers about each top-level block. Blocks are
// never mutated in place, so the serialization is computed once.
type block struct {
	version uint64
	text    string
	n       int // rune length of text
}

// Tree is the ordered list of top-level blocks of one document.
type Tree struct {
	arena     *ast.Arena
	root      ast.NodeID
	parser    Parser
	log       *zap.Logger
	blocks    map[ast.NodeID]*block
	clock     uint64
	observers []BlockObserver
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used to report mutations and failures.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tree) {
		t.log = l
	}
}

// WithParser replaces the markdown parser.
func WithParser(p Parser) Option {
	return func(t *Tree) {
		t.parser = p
	}
}

// New returns a tree holding the empty document.
func New(opts ...Option) *Tree {
	t := &Tree{
		arena:  ast.NewArena(),
		parser: markdown.Parser{},
		log:    zap.NewNop(),
		blocks: make(map[ast.NodeID]*block),
	}
	for _, o := range opts {
		o(t)
	}
	t.root = t.arena.New(ast.Node{Kind: ast.Document})
	t.Load("")
	return t
}

// Arena returns the arena owning every node of the document.
func (t *Tree) Arena() *ast.Arena { return t.arena }

// Root returns the document node.
func (t *Tree) Root() ast.NodeID { return t.root }

// Load replaces the whole document with the blocks parsed from text.
func (t *Tree) Load(text string) {
	fresh := t.parser.Parse(t.arena, text)
	t.Splice(0, t.Len(), fresh)
	t.log.Debug("load", zap.Int("runes", utf8.RuneCountInString(text)), zap.Int("blocks", t.Len()))
}

// Blocks returns the top-level blocks in order. The slice must not be
// modified and is invalidated by the next mutation.
func (t *Tree) Blocks() []ast.NodeID {
	return t.arena.Children(t.root)
}

// Len returns the number of top-level blocks. It is never zero: an empty
// document holds a single blank line.
func (t *Tree) Len() int {
	return len(t.arena.Children(t.root))
}

// IsTop reports whether id is a live top-level block of t.
func (t *Tree) IsTop(id ast.NodeID) bool {
	return t.arena.Valid(id) && t.arena.Parent(id) == t.root
}

// IndexOf returns the index of the top-level block id, or -1.
func (t *Tree) IndexOf(id ast.NodeID) int {
	if !t.IsTop(id) {
		return -1
	}
	return t.arena.ChildIndex(id)
}

// ChildAt returns the block at index i, clamping i to the first or last
// block.
func (t *Tree) ChildAt(i int) ast.NodeID {
	blocks := t.Blocks()
	switch {
	case len(blocks) == 0:
		return ast.Nil
	case i < 0:
		i = 0
	case i >= len(blocks):
		i = len(blocks) - 1
	}
	return blocks[i]
}

// Up returns the block before id, or ast.Nil for the first block.
func (t *Tree) Up(id ast.NodeID) ast.NodeID {
	i := t.IndexOf(id)
	if i <= 0 {
		return ast.Nil
	}
	return t.Blocks()[i-1]
}

// Down returns the block after id, or ast.Nil for the last block.
func (t *Tree) Down(id ast.NodeID) ast.NodeID {
	i := t.IndexOf(id)
	blocks := t.Blocks()
	if i < 0 || i+1 >= len(blocks) {
		return ast.Nil
	}
	return blocks[i+1]
}

// Text returns the markdown serialization of the top-level block id.
func (t *Tree) Text(id ast.NodeID) string {
	if b, ok := t.blocks[id]; ok {
		return b.text
	}
	return t.arena.ToMarkdown(id)
}

// RuneLen returns the rune length of Text(id).
func (t *Tree) RuneLen(id ast.NodeID) int {
	if b, ok := t.blocks[id]; ok {
		return b.n
	}
	return t.arena.Len(id)
}

// Version returns the content version of a top-level block. Versions
// strictly increase over the life of the tree, so a block that was
// replaced or touched never reports an earlier version again.
func (t *Tree) Version(id ast.NodeID) uint64 {
	if b, ok := t.blocks[id]; ok {
		return b.version
	}
	return 0
}

// Touch bumps the version of id without changing its content, for callers
// whose rendering of the block depends on state outside the tree.
func (t *Tree) Touch(id ast.NodeID) {
	if b, ok := t.blocks[id]; ok {
		t.clock++
		b.version = t.clock
	}
}

// ToMarkdown serializes the whole document.
func (t *Tree) ToMarkdown() string {
	var sb strings.Builder
	for _, id := range t.Blocks() {
		sb.WriteString(t.Text(id))
	}
	return sb.String()
}

// Offset returns the rune position of the start of block id in the
// document, or -1 if id is not a top-level block.
func (t *Tree) Offset(id ast.NodeID) int {
	if !t.IsTop(id) {
		return -1
	}
	pos := 0
	for _, b := range t.Blocks() {
		if b == id {
			return pos
		}
		pos += t.RuneLen(b)
	}
	return -1
}

// Seek resolves offset relative to the start of block id, spilling into
// following blocks when offset reaches past the end of id and into
// preceding blocks when it is negative. Positions beyond the document clamp
// to the start of the first block or the last rune of the last block. A
// result offset is always less than the length of its block, so it names a
// rune of that block.
func (t *Tree) Seek(id ast.NodeID, offset int) (ast.NodeID, int) {
	return t.SeekIndex(t.IndexOf(id), offset)
}

// SeekIndex is Seek with the starting block given by index. An index past
// the last block starts from the end of the document.
func (t *Tree) SeekIndex(i, offset int) (ast.NodeID, int) {
	blocks := t.Blocks()
	if i >= len(blocks) {
		last := blocks[len(blocks)-1]
		return last, t.RuneLen(last) - 1
	}
	if i < 0 {
		i = 0
	}
	if offset >= 0 {
		for _, b := range blocks[i:] {
			n := t.RuneLen(b)
			if offset < n {
				return b, offset
			}
			offset -= n
		}
		last := blocks[len(blocks)-1]
		return last, t.RuneLen(last) - 1
	}
	for j := i - 1; j >= 0; j-- {
		offset += t.RuneLen(blocks[j])
		if offset >= 0 {
			return blocks[j], offset
		}
	}
	return blocks[0], 0
}

// Splice replaces the blocks [start, end) with fresh, freeing the replaced
// subtrees. The fresh blocks must be detached nodes of t's arena.
func (t *Tree) Splice(start, end int, fresh []ast.NodeID) error {
	if start < 0 || end > t.Len() || start > end {
		return fmt.Errorf("splice [%d,%d) of %d blocks: %w", start, end, t.Len(), ErrOutOfRange)
	}
	removed := append([]ast.NodeID(nil), t.Blocks()[start:end]...)
	t.arena.ReplaceChildren(t.root, start, end, fresh)
	for _, id := range fresh {
		t.remember(id)
	}
	for _, id := range removed {
		delete(t.blocks, id)
		t.arena.Free(id)
	}
	added := fresh
	if t.Len() == 0 {
		empty := t.arena.New(ast.Node{Kind: ast.BlankLine})
		t.arena.Append(t.root, empty)
		t.remember(empty)
		added = append(append([]ast.NodeID(nil), fresh...), empty)
	}
	t.log.Debug("splice",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Int("added", len(added)),
		zap.Int("blocks", t.Len()))
	t.notify(start, removed, added)
	return nil
}

// Insert places the detached block id at index, shifting later blocks down.
func (t *Tree) Insert(id ast.NodeID, index int) error {
	if index < 0 || index > t.Len() {
		return fmt.Errorf("insert at %d of %d blocks: %w", index, t.Len(), ErrOutOfRange)
	}
	if !t.arena.Valid(id) || !t.arena.Parent(id).IsNil() {
		return fmt.Errorf("insert %v: not a detached node: %w", id, ErrInvariant)
	}
	return t.Splice(index, index, []ast.NodeID{id})
}

func (t *Tree) remember(id ast.NodeID) {
	t.clock++
	text := t.arena.ToMarkdown(id)
	t.blocks[id] = &block{
		version: t.clock,
		text:    text,
		n:       utf8.RuneCountInString(text),
	}
}
