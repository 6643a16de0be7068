package rich

import "image"

// errorGlyph stands in for math that failed to typeset.
const errorGlyph = "⚠"

// MathRenderer typesets TeX. Render returns the expression drawn at the
// given font size in pixels.
type MathRenderer interface {
	Render(tex string, size int) (image.Image, error)
}

// MathRendererFunc adapts a function to MathRenderer.
type MathRendererFunc func(tex string, size int) (image.Image, error)

func (f MathRendererFunc) Render(tex string, size int) (image.Image, error) {
	return f(tex, size)
}
