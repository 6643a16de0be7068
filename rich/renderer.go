// Package rich turns markdown blocks into positioned, styled pieces and
// paints them. Emit walks a block once and produces a flat list of ops;
// Layout places the ops within a width and records one anchor per markdown
// rune; Paint draws a layout. Cache memoizes layouts per block.
package rich

import (
	"image/color"
	"strings"
	"sync"

	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/style"
	"go.uber.org/zap"
)

// Renderer holds what emitting, layout and painting share: fonts, the
// style sheet, the image cache and the math typesetter.
type Renderer struct {
	fonts  fontSet
	sheet  *style.Sheet
	images *ImageCache
	math   MathRenderer
	log    *zap.Logger

	mu     sync.Mutex
	colors map[color.NRGBA]draw.Image
}

// New returns a renderer. WithFont must be among opts.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		sheet:  style.Default(),
		log:    zap.NewNop(),
		colors: make(map[color.NRGBA]draw.Image),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Sheet returns the style sheet in use.
func (r *Renderer) Sheet() *style.Sheet { return r.sheet }

// LineHeight returns the height of a row of body text.
func (r *Renderer) LineHeight() int {
	return r.fontFor(r.sheet.Resolve("paragraph", "")).Height()
}

type fontSet struct {
	regular    draw.Font
	bold       draw.Font
	italic     draw.Font
	boldItalic draw.Font
	code       draw.Font
	scaled     map[int]draw.Font
}

// fontFor returns the font for a style, falling back to the regular font
// when a variant is missing. A scaled font for the style's size takes
// precedence since heading layout needs its metrics.
func (r *Renderer) fontFor(st style.Style) draw.Font {
	f := &r.fonts
	if sf, ok := f.scaled[st.FontSize]; ok {
		return sf
	}
	if strings.Contains(st.FontFamily, "mono") && f.code != nil {
		return f.code
	}
	switch {
	case st.Bold && st.Italic:
		if f.boldItalic != nil {
			return f.boldItalic
		}
	case st.Bold:
		if f.bold != nil {
			return f.bold
		}
	case st.Italic:
		if f.italic != nil {
			return f.italic
		}
	}
	return f.regular
}
