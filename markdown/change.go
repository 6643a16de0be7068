package markdown

import (
	"sort"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
)

// EditRecord describes a single edit operation on the source text.
type EditRecord struct {
	Pos    int // rune position in source where edit occurred
	OldLen int // runes removed (0 for pure insert)
	NewLen int // runes inserted (0 for pure delete)
}

// BlockInfo records the source extent of a top-level block.
type BlockInfo struct {
	SourceRuneStart int // first rune position in source
	SourceRuneEnd   int // last rune position in source (exclusive)
	OpenEnd         int // end of the opening fence line, fenced blocks only
	CloseStart      int // start of the closing fence line, or SourceRuneEnd
	Type            ast.Kind
	Fenced          bool
}

// BlockIndex maps source positions to top-level blocks.
type BlockIndex struct {
	Blocks []BlockInfo
}

// NewBlockIndex records the extents of blocks, which must be the complete
// top-level block list of a document in order.
func NewBlockIndex(a *ast.Arena, blocks []ast.NodeID) *BlockIndex {
	return IndexBlocks(a, blocks, a.Len)
}

// IndexBlocks is NewBlockIndex for callers that already know the rune
// length of each block.
func IndexBlocks(a *ast.Arena, blocks []ast.NodeID, length func(ast.NodeID) int) *BlockIndex {
	bi := &BlockIndex{Blocks: make([]BlockInfo, 0, len(blocks))}
	pos := 0
	for _, id := range blocks {
		n := a.Node(id)
		size := length(id)
		info := BlockInfo{
			SourceRuneStart: pos,
			SourceRuneEnd:   pos + size,
			CloseStart:      pos + size,
			Type:            n.Kind,
			Fenced:          n.Fenced,
		}
		if n.Fenced {
			info.OpenEnd = pos + utf8.RuneCountInString(n.Info) + 1
			if n.Close != "" {
				info.CloseStart = info.SourceRuneEnd - utf8.RuneCountInString(n.Close) - 1
			}
		}
		bi.Blocks = append(bi.Blocks, info)
		pos += size
	}
	return bi
}

// Len returns the rune length of the indexed document.
func (bi *BlockIndex) Len() int {
	if len(bi.Blocks) == 0 {
		return 0
	}
	return bi.Blocks[len(bi.Blocks)-1].SourceRuneEnd
}

// AffectedRange returns the range of blocks that must be re-parsed
// given the edits. Returns (startBlock, endBlock) indices into
// BlockIndex.Blocks, or (-1, -1) if a full re-parse is needed.
func (bi *BlockIndex) AffectedRange(edits []EditRecord) (int, int) {
	if len(edits) == 0 || len(bi.Blocks) == 0 {
		return 0, 0
	}

	// Coalesce edits into a single source rune range [editStart, editEnd)
	// of the old source.
	editStart := edits[0].Pos
	editEnd := edits[0].Pos + edits[0].OldLen
	if editEnd < editStart {
		editEnd = editStart
	}
	for _, e := range edits[1:] {
		if e.Pos < editStart {
			editStart = e.Pos
		}
		end := e.Pos + e.OldLen
		if end < e.Pos {
			end = e.Pos
		}
		if end > editEnd {
			editEnd = end
		}
	}

	// A pure insert still belongs to the block containing editStart.
	if editEnd == editStart {
		editEnd = editStart + 1
	}

	startBlock := sort.Search(len(bi.Blocks), func(i int) bool {
		return bi.Blocks[i].SourceRuneEnd > editStart
	})
	endBlock := sort.Search(len(bi.Blocks), func(i int) bool {
		return bi.Blocks[i].SourceRuneStart >= editEnd
	})
	if startBlock >= len(bi.Blocks) {
		startBlock = len(bi.Blocks) - 1
	}
	if endBlock <= startBlock {
		endBlock = startBlock + 1
	}

	// Touching a fence line can swallow or release everything after it.
	for i := startBlock; i < endBlock; i++ {
		b := &bi.Blocks[i]
		if !b.Fenced {
			continue
		}
		if editStart < b.OpenEnd && editEnd > b.SourceRuneStart {
			return -1, -1
		}
		if b.CloseStart < b.SourceRuneEnd && editEnd > b.CloseStart && editStart < b.SourceRuneEnd {
			return -1, -1
		}
	}
	return startBlock, endBlock
}

// OpensFence reports whether text holds a code or math fence delimiter
// line. Inserting one can swallow or release every block after it.
func OpensFence(text string) bool {
	for _, line := range splitLines(text) {
		if isFenceDelimiter(line) || isMathFence(line) {
			return true
		}
	}
	return false
}
