// Package mdtest contains test doubles for the drawing layer: a display that
// records draw operations and a font with fixed cell metrics.
package mdtest

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/rjkroege/mdedit/draw"
)

var _ = draw.Display((*mockDisplay)(nil))

// Cell metrics of the default mock font. Recorded ops are easier to read
// when positions are multiples of these.
const (
	CellWidth  = 10
	CellHeight = 14
)

// GettableDrawOps display implementations can provide a list of the
// executed draw ops.
type GettableDrawOps interface {
	DrawOps() []string
	Clear()

	// LiveImages returns the number of allocated images not yet freed.
	LiveImages() int
}

// mockDisplay implements draw.Display.
type mockDisplay struct {
	mu       sync.Mutex
	snarfbuf []byte
	drawops  []string
	live     int

	screenimage draw.Image
}

// NewDisplay returns a mock draw.Display whose screen image covers r.
func NewDisplay(r image.Rectangle) draw.Display {
	md := &mockDisplay{}
	md.screenimage = &mockImage{d: md, n: "screen", c: draw.Notacolor, r: r}
	return md
}

func (d *mockDisplay) ScreenImage() draw.Image { return d.screenimage }

func (d *mockDisplay) White() draw.Image {
	return &mockImage{d: d, n: "white", c: draw.White, repl: true, r: image.Rect(0, 0, 1, 1)}
}

func (d *mockDisplay) Black() draw.Image {
	return &mockImage{d: d, n: "black", c: draw.Black, repl: true, r: image.Rect(0, 0, 1, 1)}
}

func (d *mockDisplay) Transparent() draw.Image {
	return &mockImage{d: d, n: "transparent", c: draw.Transparent, repl: true, r: image.Rect(0, 0, 1, 1)}
}

func (d *mockDisplay) InitKeyboard() *draw.Keyboardctl { return &draw.Keyboardctl{} }
func (d *mockDisplay) InitMouse() *draw.Mousectl       { return &draw.Mousectl{} }

// OpenFont returns the cell font regardless of name.
func (d *mockDisplay) OpenFont(name string) (draw.Font, error) {
	return NewFont(CellWidth, CellHeight), nil
}

func (d *mockDisplay) AllocImage(r image.Rectangle, pix draw.Pix, repl bool, val draw.Color) (draw.Image, error) {
	d.mu.Lock()
	d.live++
	d.mu.Unlock()
	return &mockImage{d: d, r: r, c: val, repl: repl}, nil
}

func (d *mockDisplay) Attach(ref int) error { return nil }
func (d *mockDisplay) Flush() error         { return nil }

// ReadSnarf reads the snarf buffer into buf, returning the number of bytes
// read, the total size of the snarf buffer and an error if buf is too short.
func (d *mockDisplay) ReadSnarf(buf []byte) (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := copy(buf, d.snarfbuf)
	if n < len(d.snarfbuf) {
		return n, len(d.snarfbuf), errors.New("short read")
	}
	return n, n, nil
}

// WriteSnarf writes the data to the snarf buffer.
func (d *mockDisplay) WriteSnarf(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.snarfbuf = make([]byte, len(data))
	copy(d.snarfbuf, data)
	return nil
}

func (d *mockDisplay) DrawOps() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.drawops...)
}

func (d *mockDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawops = nil
}

func (d *mockDisplay) LiveImages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func (d *mockDisplay) record(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawops = append(d.drawops, op)
}

var _ = draw.Image((*mockImage)(nil))

// mockImage implements draw.Image.
type mockImage struct {
	r     image.Rectangle
	d     *mockDisplay
	n     string
	c     draw.Color
	repl  bool
	freed bool
}

// NewImage returns a named mock draw.Image with the given bounds.
func NewImage(display draw.Display, name string, r image.Rectangle) draw.Image {
	return &mockImage{d: display.(*mockDisplay), n: name, c: draw.Notacolor, r: r}
}

func (i *mockImage) Display() draw.Display { return i.d }
func (i *mockImage) Pix() draw.Pix         { return draw.RGBA32 }
func (i *mockImage) R() image.Rectangle    { return i.r }

// N returns a readable name for the image: its given name or its colour.
func (i *mockImage) N() string {
	name := i.n
	if name == "" {
		name = fmt.Sprintf("%#08x", uint32(i.c))
	}
	if i.repl {
		name += ",tiled"
	}
	return name
}

func nameOf(img draw.Image) string {
	if m, ok := img.(*mockImage); ok {
		return m.N()
	}
	return "nil"
}

func (i *mockImage) Draw(r image.Rectangle, src, mask draw.Image, p1 image.Point) {
	i.d.record(fmt.Sprintf("%s <- draw r: %v src: %s mask: %s p1: %v",
		i.N(), r, nameOf(src), nameOf(mask), p1))
}

func (i *mockImage) Border(r image.Rectangle, n int, color draw.Image, sp image.Point) {
	i.d.record(fmt.Sprintf("%s <- border r: %v thick: %d color: %s", i.N(), r, n, nameOf(color)))
}

func (i *mockImage) Bytes(pt image.Point, src draw.Image, sp image.Point, f draw.Font, b []byte) image.Point {
	i.d.record(fmt.Sprintf("%s <- string %q atpoint: %v fill: %s", i.N(), string(b), pt, nameOf(src)))
	return pt.Add(image.Pt(f.BytesWidth(b), 0))
}

func (i *mockImage) Free() error {
	if i.freed {
		return errors.New("double free of " + i.N())
	}
	i.freed = true
	i.d.mu.Lock()
	i.d.live--
	i.d.mu.Unlock()
	return nil
}

func (i *mockImage) Load(r image.Rectangle, data []byte) (int, error) {
	i.d.record(fmt.Sprintf("%s <- load r: %v bytes: %d", i.N(), r, len(data)))
	return len(data), nil
}

var _ = draw.Font((*mockFont)(nil))

// mockFont implements draw.Font with fixed cell metrics. Wide runes (CJK,
// most emoji) occupy two cells; zero-width runes occupy none.
type mockFont struct {
	width, height int
	name          string
}

// NewFont returns a draw.Font measuring width pixels per cell and height
// pixels per line.
func NewFont(width, height int) draw.Font {
	return &mockFont{
		width:  width,
		height: height,
		name:   fmt.Sprintf("mock/%dx%d", width, height),
	}
}

func (f *mockFont) Name() string             { return f.name }
func (f *mockFont) Height() int              { return f.height }
func (f *mockFont) BytesWidth(b []byte) int  { return f.StringWidth(string(b)) }
func (f *mockFont) RunesWidth(r []rune) int  { return f.StringWidth(string(r)) }
func (f *mockFont) StringWidth(s string) int { return f.width * cells(s) }

// cellCondition ignores the locale so that ambiguous-width runes always
// measure one cell.
var cellCondition = &runewidth.Condition{EastAsianWidth: false}

func cells(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
			continue
		}
		n += cellCondition.RuneWidth(r)
	}
	return n
}

// Ops filters recorded draw ops down to those containing substr.
func Ops(d draw.Display, substr string) []string {
	var out []string
	for _, op := range d.(GettableDrawOps).DrawOps() {
		if strings.Contains(op, substr) {
			out = append(out, op)
		}
	}
	return out
}
