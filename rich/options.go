package rich

import (
	"github.com/rjkroege/mdedit/draw"
	"github.com/rjkroege/mdedit/style"
	"go.uber.org/zap"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithFont sets the regular body font. It is required.
func WithFont(f draw.Font) Option {
	return func(r *Renderer) {
		r.fonts.regular = f
	}
}

// WithBoldFont sets the bold font variant.
func WithBoldFont(f draw.Font) Option {
	return func(r *Renderer) {
		r.fonts.bold = f
	}
}

// WithItalicFont sets the italic font variant.
func WithItalicFont(f draw.Font) Option {
	return func(r *Renderer) {
		r.fonts.italic = f
	}
}

// WithBoldItalicFont sets the bold-italic font variant.
func WithBoldItalicFont(f draw.Font) Option {
	return func(r *Renderer) {
		r.fonts.boldItalic = f
	}
}

// WithCodeFont sets the monospace font used when a style's font family is
// "mono".
func WithCodeFont(f draw.Font) Option {
	return func(r *Renderer) {
		r.fonts.code = f
	}
}

// WithScaledFont sets the font used for styles whose font size is size
// pixels, such as headings.
func WithScaledFont(size int, f draw.Font) Option {
	return func(r *Renderer) {
		if r.fonts.scaled == nil {
			r.fonts.scaled = make(map[int]draw.Font)
		}
		r.fonts.scaled[size] = f
	}
}

// WithSheet sets the style sheet. The built-in sheet is used otherwise.
func WithSheet(s *style.Sheet) Option {
	return func(r *Renderer) {
		r.sheet = s
	}
}

// WithImageCache sets the cache that images are loaded through. Without
// one, images show their alt text.
func WithImageCache(c *ImageCache) Option {
	return func(r *Renderer) {
		r.images = c
	}
}

// WithMathRenderer sets the typesetter for math. Without one, math is
// shown as its TeX source.
func WithMathRenderer(m MathRenderer) Option {
	return func(r *Renderer) {
		r.math = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}
