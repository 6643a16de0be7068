// Package draw wraps the Plan 9 style drawing library behind interfaces so
// that the editor can be driven by a real display or by a mock in tests.
package draw

import (
	"image"
	"image/color"
)

// Display is the subset of a drawing connection that the editor needs:
// allocating images and fonts, the clipboard (snarf buffer) and input.
type Display interface {
	ScreenImage() Image
	White() Image
	Black() Image
	Transparent() Image

	InitKeyboard() *Keyboardctl
	InitMouse() *Mousectl
	OpenFont(name string) (Font, error)
	AllocImage(r image.Rectangle, pix Pix, repl bool, val Color) (Image, error)
	Attach(ref int) error
	Flush() error
	ReadSnarf(buf []byte) (int, int, error)
	WriteSnarf(data []byte) error
}

// Image is a rectangle of pixels that can be drawn into and drawn from.
type Image interface {
	Display() Display
	Pix() Pix
	R() image.Rectangle

	Draw(r image.Rectangle, src, mask Image, p1 image.Point)
	Border(r image.Rectangle, n int, color Image, sp image.Point)
	Bytes(pt image.Point, src Image, sp image.Point, f Font, b []byte) image.Point
	Free() error
	Load(r image.Rectangle, data []byte) (int, error)
}

// Font measures and names a loaded font. Layout only ever measures; painting
// goes through Image.Bytes.
type Font interface {
	Name() string
	Height() int
	BytesWidth(b []byte) int
	RunesWidth(r []rune) int
	StringWidth(s string) int
}

// conn is a Display backed by a live drawing connection.
type conn struct {
	*drawDisplay
}

var _ = Display((*conn)(nil))

func (d *conn) ScreenImage() Image { return &canvas{d.drawDisplay.ScreenImage} }
func (d *conn) White() Image       { return &canvas{d.drawDisplay.White} }
func (d *conn) Black() Image       { return &canvas{d.drawDisplay.Black} }
func (d *conn) Transparent() Image { return &canvas{d.drawDisplay.Transparent} }

func (d *conn) OpenFont(name string) (Font, error) {
	f, err := d.drawDisplay.OpenFont(name)
	if err != nil {
		return nil, err
	}
	return &face{f}, nil
}

func (d *conn) AllocImage(r image.Rectangle, pix Pix, repl bool, val Color) (Image, error) {
	i, err := d.drawDisplay.AllocImage(r, pix, repl, val)
	if err != nil {
		return nil, err
	}
	return &canvas{i}, nil
}

// canvas is an Image allocated on a conn.
type canvas struct {
	*drawImage
}

var _ = Image((*canvas)(nil))

func (dst *canvas) Display() Display   { return &conn{dst.drawImage.Display} }
func (dst *canvas) Pix() Pix           { return dst.drawImage.Pix }
func (dst *canvas) R() image.Rectangle { return dst.drawImage.R }

func (dst *canvas) Draw(r image.Rectangle, src, mask Image, p1 image.Point) {
	dst.drawImage.Draw(r, unwrap(src), unwrap(mask), p1)
}

func (dst *canvas) Border(r image.Rectangle, n int, color Image, sp image.Point) {
	dst.drawImage.Border(r, n, unwrap(color), sp)
}

func (dst *canvas) Bytes(pt image.Point, src Image, sp image.Point, f Font, b []byte) image.Point {
	return dst.drawImage.Bytes(pt, unwrap(src), sp, f.(*face).drawFont, b)
}

func (dst *canvas) Load(r image.Rectangle, data []byte) (int, error) {
	return dst.drawImage.Load(r, data)
}

func unwrap(i Image) *drawImage {
	if i == nil {
		return nil
	}
	return i.(*canvas).drawImage
}

type face struct {
	*drawFont
}

func (f *face) Name() string { return f.drawFont.Name }
func (f *face) Height() int  { return f.drawFont.Height }

// WithAlpha premultiplies c by alpha.
func WithAlpha(c Color, alpha uint8) Color {
	r := uint32(c >> 24)
	g := uint32(c>>16) & 0xFF
	b := uint32(c>>8) & 0xFF
	r = (r * uint32(alpha)) / 255
	g = (g * uint32(alpha)) / 255
	b = (b * uint32(alpha)) / 255
	return Color(r<<24 | g<<16 | b<<8 | uint32(alpha))
}

// FromRGBA converts a Go color to the packed RRGGBBAA form used by AllocImage.
func FromRGBA(c color.Color) Color {
	if c == nil {
		return Transparent
	}
	r, g, b, a := c.RGBA()
	return Color(uint32(r>>8)<<24 | uint32(g>>8)<<16 | uint32(b>>8)<<8 | uint32(a>>8))
}

// Fill allocates a replicated 1x1 image of colour c, suitable as a draw source.
func Fill(d Display, c color.Color) (Image, error) {
	return d.AllocImage(image.Rect(0, 0, 1, 1), d.ScreenImage().Pix(), true, FromRGBA(c))
}
