// Package editor ties the document, the caret, the layout cache and the
// viewport window into an editor that a window-system shell can drive. It
// exposes the calls a shell needs to paint, hit-test and scroll, and one
// method per user action.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/config"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/rich"
	"github.com/rjkroege/mdedit/theme"
	"github.com/rjkroege/mdedit/viewport"
	"go.uber.org/zap"
)

var _ viewport.Source = (*Editor)(nil)

// Editor is one markdown document open in a rectangle of a display. Its
// methods must be called from a single goroutine.
type Editor struct {
	cfg     *config.Config
	log     *zap.Logger
	display draw.Display
	r       *rich.Renderer
	images  *rich.ImageCache

	tree  *document.Tree
	cache *rich.Cache
	cur   *cursor.Cursor
	win   *viewport.Window
	deb   *viewport.Debouncer
	mouse MouseState

	rect  image.Rectangle
	path  string
	dirty bool
	edits int

	fills map[color.NRGBA]draw.Image

	treeOpts []document.Option
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger handed to every component.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		e.log = l
	}
}

// WithConfig sets the settings. Without it the defaults are used.
func WithConfig(c *config.Config) Option {
	return func(e *Editor) {
		e.cfg = c
	}
}

// WithImageCache names the cache the renderer loads images through so
// that relative image paths follow the open file.
func WithImageCache(c *rich.ImageCache) Option {
	return func(e *Editor) {
		e.images = c
	}
}

// WithParser replaces the markdown parser.
func WithParser(p document.Parser) Option {
	return func(e *Editor) {
		e.treeOpts = append(e.treeOpts, document.WithParser(p))
	}
}

// New returns an editor over an empty document, painting into rect of d
// with r.
func New(d draw.Display, r *rich.Renderer, rect image.Rectangle, opts ...Option) *Editor {
	e := &Editor{
		cfg:     config.Default(),
		log:     zap.NewNop(),
		display: d,
		r:       r,
		rect:    rect,
		fills:   make(map[color.NRGBA]draw.Image),
	}
	for _, o := range opts {
		o(e)
	}

	e.tree = document.New(append([]document.Option{document.WithLogger(e.log.Named("document"))}, e.treeOpts...)...)
	e.cache = rich.NewCache(e.tree, r, e.contentWidth())
	e.cur = cursor.New(e.tree,
		cursor.WithLogger(e.log.Named("cursor")),
		cursor.WithGeometry(e.cache))
	vp := e.cfg.Viewport
	e.win = viewport.New(e.tree, e, e.contentWidth(), e.viewHeight(),
		viewport.WithLogger(e.log.Named("viewport")),
		viewport.WithMargins(vp.Grow, vp.EvictScreens),
		viewport.WithLineHeight(r.LineHeight()),
		viewport.WithWheelStep(e.wheelStep()))
	e.deb = viewport.NewDebouncer(e.cfg.Debounce(), vp.Batch)
	e.caretMoved()
	return e
}

// Document returns the document being edited.
func (e *Editor) Document() *document.Tree { return e.tree }

// Cursor returns the caret.
func (e *Editor) Cursor() *cursor.Cursor { return e.cur }

// Window returns the viewport window.
func (e *Editor) Window() *viewport.Window { return e.win }

// Updates returns the channel on which the editor asks for Tick to be
// called.
func (e *Editor) Updates() <-chan struct{} { return e.deb.C }

// Path returns the file the document was read from.
func (e *Editor) Path() string { return e.path }

// Dirty reports whether the document changed since it was read or saved.
func (e *Editor) Dirty() bool { return e.dirty }

// Edits counts the edits applied over the editor's life.
func (e *Editor) Edits() int { return e.edits }

// Rect returns the rectangle the editor paints into.
func (e *Editor) Rect() image.Rectangle { return e.rect }

func (e *Editor) contentWidth() int {
	w := e.rect.Dx() - e.cfg.Margin.Left - e.cfg.Margin.Right
	if w < 1 {
		w = 1
	}
	return w
}

func (e *Editor) viewHeight() int {
	h := e.rect.Dy() - e.cfg.Margin.Top
	if h < 1 {
		h = 1
	}
	return h
}

// wheelStep reads the wheel scroll distance from the configuration, or
// from $mousescrollsize as acme does. A malformed step scrolls one row.
func (e *Editor) wheelStep() viewport.WheelStep {
	src, s := "config", e.cfg.Viewport.Wheel
	if s == "" {
		src, s = "$mousescrollsize", os.Getenv("mousescrollsize")
	}
	step, err := viewport.ParseWheelStep(s)
	if err != nil {
		e.log.Warn("ignoring wheel step", zap.String("source", src), zap.Error(err))
		return viewport.DefaultWheelStep
	}
	return step
}

// origin returns the screen position of the top-left of entry en.
func (e *Editor) origin(en *viewport.Entry) image.Point {
	return image.Pt(e.rect.Min.X+e.cfg.Margin.Left, e.rect.Min.Y+e.cfg.Margin.Top+e.win.ScreenY(en))
}

// Height implements viewport.Source.
func (e *Editor) Height(id ast.NodeID) int { return e.cache.Height(id) }

// Stamp implements viewport.Source. A block's layout is replaced whenever
// its text, the width or the caret inside it changes.
func (e *Editor) Stamp(id ast.NodeID) any {
	l, _ := e.cache.Layout(id)
	return l
}

// Rasterize implements viewport.Source.
func (e *Editor) Rasterize(id ast.NodeID) (draw.Image, error) {
	l, err := e.cache.Layout(id)
	if err != nil {
		return nil, err
	}
	return e.r.Rasterize(e.display, l, theme.Current().Background)
}

// Tick materializes the next batch of blocks. It reports whether more
// work remains, in which case another update has been requested.
func (e *Editor) Tick() bool {
	more := e.win.Update(e.deb.Batch)
	if more {
		e.deb.Request()
	}
	return more
}

// Settle runs Tick until the window covers the viewport.
func (e *Editor) Settle() {
	for e.win.Update(e.deb.Batch) {
	}
}

// Close releases the images held by the editor.
func (e *Editor) Close() {
	e.deb.Stop()
	e.tree.DelObserver(e.win)
	e.tree.DelObserver(e.cache)
	e.win.Reset()
	for c, img := range e.fills {
		img.Free()
		delete(e.fills, c)
	}
}

// Open replaces the document with the contents of path. A missing file
// opens an empty document that Save will create.
func (e *Editor) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if e.images != nil {
		e.images.SetBasePath(path)
	}
	e.load(string(data))
	e.path = path
	e.log.Info("opened", zap.String("path", path), zap.Int("blocks", e.tree.Len()))
	return nil
}

// Load replaces the document with text.
func (e *Editor) Load(text string) { e.load(text) }

func (e *Editor) load(text string) {
	e.tree.Load(text)
	e.win.Reset()
	e.cur.SetSelectMode(cursor.Single)
	if err := e.cur.Set(cursor.Address{Block: e.tree.ChildAt(0)}); err != nil {
		e.log.Error("cannot place caret", zap.Error(err))
	}
	e.dirty = false
	e.caretMoved()
}

// Save writes the document to path, or to the file it was read from when
// path is empty.
func (e *Editor) Save(path string) error {
	if path == "" {
		path = e.path
	}
	if path == "" {
		return errors.New("save: no file name")
	}
	if err := os.WriteFile(path, []byte(e.tree.ToMarkdown()), 0644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	e.path = path
	e.dirty = false
	e.log.Info("saved", zap.String("path", path))
	return nil
}

// caretMoved brings the cache and the window up to date after the caret
// moved: layouts of the blocks it left and entered change, and the caret
// is scrolled into view.
func (e *Editor) caretMoved() {
	e.unfold()
	e.cache.SetCaret(e.cur.Block(), e.cur.Offset(), e.cur.IsIn)
	e.win.Sync()
	e.reveal()
	e.deb.Request()
}

// edited records the outcome of an edit. Failures leave the document as
// it was.
func (e *Editor) edited(op string, err error) error {
	if err != nil {
		e.fail(op, err)
		return err
	}
	e.dirty = true
	e.edits++
	e.caretMoved()
	return nil
}

func (e *Editor) fail(op string, err error) {
	if e.cfg.Debug && errors.Is(err, document.ErrInvariant) {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	e.log.Error("edit failed", zap.String("op", op), zap.Error(err))
}

// reveal scrolls the caret's row into view. A block outside the window
// restarts the run at it, after which its rows can be placed.
func (e *Editor) reveal() {
	id := e.cur.Block()
	y0, y1 := 0, e.cache.Height(id)
	if a, ok := e.caretAnchor(); ok {
		y0, y1 = a.Y, a.Y+a.Height
	}
	materialized := e.win.Find(id) != nil
	e.win.Reveal(id, y0, y1)
	if !materialized {
		e.win.Reveal(id, y0, y1)
	}
}

// caretAnchor returns the anchor of the caret within its block.
func (e *Editor) caretAnchor() (cursor.Anchor, bool) {
	anchors := e.cache.Anchors(e.cur.Block())
	if len(anchors) == 0 {
		return cursor.Anchor{}, false
	}
	i := e.cur.Offset()
	if i >= len(anchors) {
		i = len(anchors) - 1
	}
	return anchors[i], true
}
