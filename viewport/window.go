// Package viewport keeps the blocks near the visible part of a document
// materialized. The materialized entries always form one contiguous run of
// the document's top-level blocks; entries that scroll far out of view go
// back to a pool for reuse.
package viewport

import (
	"image"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/draw"
	"go.uber.org/zap"
)

// Default margins around the visible range.
const (
	DefaultGrowMargin   = 300 // pixels materialized beyond each edge
	DefaultEvictScreens = 2   // viewport heights kept before evicting
)

// Source supplies what the window shows for a block.
type Source interface {
	// Height returns the height of block id including its spacing.
	Height(id ast.NodeID) int

	// Stamp identifies the current rendering of id. A raster is redrawn
	// when the stamp changes.
	Stamp(id ast.NodeID) any

	// Rasterize draws block id into a new image.
	Rasterize(id ast.NodeID) (draw.Image, error)
}

// Entry is a materialized block.
type Entry struct {
	Block    ast.NodeID
	Up, Down *Entry
	Y        int // top, relative to the first entry
	Height   int
	Raster   draw.Image

	stamp any
}

// Window is the run of materialized blocks and the scroll position over
// it. All methods must be called from one goroutine.
type Window struct {
	tree *document.Tree
	src  Source
	log  *zap.Logger

	width, height int
	grow          int
	evictScreens  int
	lineHeight    int
	wheel         WheelStep

	entries []*Entry
	pool    []*Entry
	first   int // tree index of entries[0]
	offset  int // viewport top, relative to entries[0]

	collapsed  map[ast.NodeID]bool
	folded     map[ast.NodeID]bool
	foldsStale bool // a splice happened while a section was collapsed

	// Materialized counts blocks materialized over the window's life.
	Materialized int
	// Refolds counts recomputations of the folded sections.
	Refolds int
}

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Window) {
		w.log = l
	}
}

// WithMargins sets the growth margin in pixels and the eviction margin in
// viewport heights.
func WithMargins(grow, evictScreens int) Option {
	return func(w *Window) {
		w.grow = grow
		w.evictScreens = evictScreens
	}
}

// WithLineHeight sets the row height used to size wheel scrolls.
func WithLineHeight(h int) Option {
	return func(w *Window) {
		w.lineHeight = h
	}
}

// WithWheelStep sets how far one wheel click scrolls.
func WithWheelStep(s WheelStep) Option {
	return func(w *Window) {
		w.wheel = s
	}
}

// New returns an empty window over tree. It registers itself with tree to
// follow edits.
func New(tree *document.Tree, src Source, width, height int, opts ...Option) *Window {
	w := &Window{
		tree:         tree,
		src:          src,
		log:          zap.NewNop(),
		width:        width,
		height:       height,
		grow:         DefaultGrowMargin,
		evictScreens: DefaultEvictScreens,
		lineHeight:   16,
		wheel:        DefaultWheelStep,
		collapsed:    make(map[ast.NodeID]bool),
		folded:       make(map[ast.NodeID]bool),
	}
	for _, o := range opts {
		o(w)
	}
	tree.AddObserver(w)
	return w
}

// Size returns the viewport size.
func (w *Window) Size() image.Point { return image.Pt(w.width, w.height) }

// Entries returns the materialized run in document order.
func (w *Window) Entries() []*Entry { return w.entries }

// Len returns the number of materialized blocks.
func (w *Window) Len() int { return len(w.entries) }

// Offset returns the viewport top relative to the first entry.
func (w *Window) Offset() int { return w.offset }

// First returns the tree index of the first materialized block.
func (w *Window) First() int { return w.first }

// ScreenY returns the top of e in viewport coordinates.
func (w *Window) ScreenY(e *Entry) int { return e.Y - w.offset }

func (w *Window) evictMargin() int {
	m := w.evictScreens * w.height
	if m < w.grow {
		m = w.grow
	}
	return m
}

// acquire takes an entry from the pool for block id.
func (w *Window) acquire(id ast.NodeID) *Entry {
	var e *Entry
	if n := len(w.pool); n > 0 {
		e = w.pool[n-1]
		w.pool = w.pool[:n-1]
	} else {
		e = &Entry{}
	}
	e.Block = id
	e.Height = w.heightOf(id)
	w.Materialized++
	return e
}

// release detaches e and returns it to the pool.
func (w *Window) release(e *Entry) {
	if e.Raster != nil {
		e.Raster.Free()
	}
	*e = Entry{}
	w.pool = append(w.pool, e)
}

// Pooled returns the number of entries waiting for reuse.
func (w *Window) Pooled() int { return len(w.pool) }

func (w *Window) heightOf(id ast.NodeID) int {
	if w.folded[id] {
		return 0
	}
	return w.src.Height(id)
}

func (w *Window) bottom() int {
	if len(w.entries) == 0 {
		return 0
	}
	last := w.entries[len(w.entries)-1]
	return last.Y + last.Height
}

// Update materializes at most budget blocks to cover the viewport and its
// margins, evicts entries beyond the eviction margin and lays the run out.
// It reports whether more work remains.
func (w *Window) Update(budget int) bool {
	if w.tree.Len() == 0 {
		return false
	}
	if len(w.entries) == 0 {
		w.first = 0
		w.offset = 0
		w.entries = append(w.entries, w.acquire(w.tree.ChildAt(0)))
		budget--
	}
	w.LayoutPass()
	w.clamp()

	// Grow upward, keeping the viewport still.
	for w.offset < w.grow && w.first > 0 && budget > 0 {
		w.first--
		e := w.acquire(w.tree.ChildAt(w.first))
		w.entries = append([]*Entry{e}, w.entries...)
		w.offset += e.Height
		budget--
		w.LayoutPass()
	}

	// Grow downward.
	for w.bottom() < w.offset+w.height+w.grow && w.first+len(w.entries) < w.tree.Len() && budget > 0 {
		w.entries = append(w.entries, w.acquire(w.tree.ChildAt(w.first+len(w.entries))))
		budget--
		w.LayoutPass()
	}

	w.evict()
	w.clamp()

	more := (w.offset < w.grow && w.first > 0) ||
		(w.bottom() < w.offset+w.height+w.grow && w.first+len(w.entries) < w.tree.Len())
	w.log.Debug("viewport update",
		zap.Int("first", w.first),
		zap.Int("entries", len(w.entries)),
		zap.Int("offset", w.offset),
		zap.Bool("more", more))
	return more
}

// evict returns entries beyond the eviction margin to the pool. Entries
// that overlap the viewport are kept.
func (w *Window) evict() {
	m := w.evictMargin()
	n := 0
	for n < len(w.entries)-1 {
		e := w.entries[n]
		if e.Y+e.Height >= w.offset-m {
			break
		}
		n++
	}
	if n > 0 {
		shift := w.entries[n].Y
		for _, e := range w.entries[:n] {
			w.release(e)
		}
		w.entries = append(w.entries[:0], w.entries[n:]...)
		w.first += n
		w.offset -= shift
		w.LayoutPass()
	}

	end := len(w.entries)
	for end > 1 && w.entries[end-1].Y > w.offset+w.height+m {
		end--
	}
	for _, e := range w.entries[end:] {
		w.release(e)
	}
	w.entries = w.entries[:end]
	if end > 0 {
		w.entries[end-1].Down = nil
	}
}

// clamp keeps the scroll position within the document where its ends are
// materialized.
func (w *Window) clamp() {
	if w.first == 0 && w.offset < 0 {
		w.offset = 0
	}
	if w.first+len(w.entries) == w.tree.Len() {
		if limit := w.bottom() - w.height; w.offset > limit {
			w.offset = limit
		}
		if w.first == 0 && w.offset < 0 {
			w.offset = 0
		}
	}
}

// LayoutPass links the entries and recomputes every position from the
// first entry down in one pass.
func (w *Window) LayoutPass() {
	y := 0
	var up *Entry
	for _, e := range w.entries {
		e.Up = up
		if up != nil {
			up.Down = e
		}
		e.Down = nil
		e.Y = y
		y += e.Height
		up = e
	}
}

// Scroll moves the viewport down by dy pixels, or up when dy is negative.
// Blocks are materialized by the next Update.
func (w *Window) Scroll(dy int) {
	w.offset += dy
	w.clamp()
}

// Wheel scrolls by n wheel clicks, down when n is positive.
func (w *Window) Wheel(n int) {
	w.Scroll(n * w.wheel.Pixels(w.height, w.lineHeight))
}

// Resize changes the viewport size. Heights are recomputed since they
// depend on the width.
func (w *Window) Resize(width, height int) {
	w.width, w.height = width, height
	for _, e := range w.entries {
		e.Height = w.heightOf(e.Block)
		if e.Raster != nil {
			e.Raster.Free()
			e.Raster = nil
		}
	}
	w.LayoutPass()
	w.clamp()
}

// Spliced implements document.BlockObserver by tracking the index of the
// first materialized block.
func (w *Window) Spliced(start int, removed, added []ast.NodeID) {
	switch {
	case start+len(removed) <= w.first:
		w.first += len(added) - len(removed)
	case start < w.first:
		w.first = start
	}
	if len(w.collapsed) > 0 {
		w.foldsStale = true
	}
}

// Sync rebuilds the run after the tree changed. Entries for surviving
// blocks keep their rasters; others are recycled.
func (w *Window) Sync() {
	n := w.tree.Len()
	if len(w.entries) == 0 {
		return
	}
	old := make(map[ast.NodeID]*Entry, len(w.entries))
	for _, e := range w.entries {
		old[e.Block] = e
	}
	count := len(w.entries)
	if w.first > n-1 {
		w.first = n - 1
	}
	if w.first < 0 {
		w.first = 0
	}
	if w.first+count > n {
		count = n - w.first
	}
	if w.foldsStale {
		w.refold()
	}

	run := make([]*Entry, 0, count)
	for i := w.first; i < w.first+count; i++ {
		id := w.tree.ChildAt(i)
		if e, ok := old[id]; ok {
			delete(old, id)
			e.Height = w.heightOf(id)
			run = append(run, e)
			continue
		}
		run = append(run, w.acquire(id))
	}
	for _, e := range old {
		w.release(e)
	}
	w.entries = run
	w.LayoutPass()
	w.clamp()
}

// Reset discards the run so that the next Update starts from the top of
// the document.
func (w *Window) Reset() {
	for _, e := range w.entries {
		w.release(e)
	}
	w.entries = nil
	w.first = 0
	w.offset = 0
	w.refold()
}

// Reveal scrolls so that the rows y0 to y1 of block id are visible. A block
// outside the run restarts the run at it.
func (w *Window) Reveal(id ast.NodeID, y0, y1 int) {
	e := w.Find(id)
	if e == nil {
		idx := w.tree.IndexOf(id)
		if idx < 0 {
			return
		}
		for _, e := range w.entries {
			w.release(e)
		}
		w.first = idx
		w.entries = []*Entry{w.acquire(id)}
		w.offset = 0
		w.LayoutPass()
		return
	}
	top, bottom := e.Y+y0, e.Y+y1
	switch {
	case top < w.offset:
		w.offset = top
	case bottom > w.offset+w.height:
		w.offset = bottom - w.height
	}
	w.clamp()
}

// Find returns the entry of block id, or nil when it is not materialized.
func (w *Window) Find(id ast.NodeID) *Entry {
	for _, e := range w.entries {
		if e.Block == id {
			return e
		}
	}
	return nil
}

// Visible returns the entries overlapping the viewport.
func (w *Window) Visible() []*Entry {
	var out []*Entry
	for _, e := range w.entries {
		if e.Height == 0 {
			continue
		}
		if e.Y+e.Height > w.offset && e.Y < w.offset+w.height {
			out = append(out, e)
		}
	}
	return out
}

// EntryAt returns the visible entry at viewport row y. Points below the
// last entry resolve to it.
func (w *Window) EntryAt(y int) (*Entry, bool) {
	var last *Entry
	for _, e := range w.entries {
		if e.Height == 0 {
			continue
		}
		top := e.Y - w.offset
		if y < top+e.Height {
			return e, true
		}
		last = e
	}
	return last, last != nil
}

// Raster returns the raster of e, drawing it when the block's rendering
// changed since it was last drawn.
func (w *Window) Raster(e *Entry) (draw.Image, error) {
	stamp := w.src.Stamp(e.Block)
	if e.Raster != nil && e.stamp == stamp {
		return e.Raster, nil
	}
	if e.Raster != nil {
		e.Raster.Free()
		e.Raster = nil
	}
	img, err := w.src.Rasterize(e.Block)
	if err != nil {
		return nil, err
	}
	e.Raster, e.stamp = img, stamp
	return img, nil
}

// Collapse folds or unfolds the section under heading id: the blocks after
// it up to the next heading of the same or a higher level. It reports
// whether id is a heading.
func (w *Window) Collapse(id ast.NodeID) bool {
	a := w.tree.Arena()
	if !a.Valid(id) || a.Kind(id) != ast.Heading {
		return false
	}
	if w.collapsed[id] {
		delete(w.collapsed, id)
	} else {
		w.collapsed[id] = true
	}
	w.refold()
	for _, e := range w.entries {
		e.Height = w.heightOf(e.Block)
	}
	w.LayoutPass()
	w.clamp()
	return true
}

// Collapsed reports whether heading id is folded.
func (w *Window) Collapsed(id ast.NodeID) bool { return w.collapsed[id] }

// Folded reports whether block id is hidden inside a folded section.
func (w *Window) Folded(id ast.NodeID) bool { return w.folded[id] }

// refold recomputes which blocks are hidden. Only the sections of
// collapsed headings are scanned.
func (w *Window) refold() {
	w.foldsStale = false
	clear(w.folded)
	if len(w.collapsed) == 0 {
		return
	}
	w.Refolds++
	a := w.tree.Arena()
	blocks := w.tree.Blocks()
	for id := range w.collapsed {
		i := w.tree.IndexOf(id)
		if i < 0 || a.Kind(id) != ast.Heading {
			delete(w.collapsed, id)
			continue
		}
		level := a.Node(id).Level
		for _, b := range blocks[i+1:] {
			if a.Kind(b) == ast.Heading && a.Node(b).Level <= level {
				break
			}
			w.folded[b] = true
		}
	}
}
