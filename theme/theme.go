// Package theme holds the editor's chrome colours: the page background,
// the selection, the tick and placeholders. Text colours come from the
// style sheet.
package theme

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rjkroege/mdedit/draw"
)

type Palette struct {
	Background  color.NRGBA
	Text        color.NRGBA
	Selection   color.NRGBA
	Tick        color.NRGBA
	Placeholder color.NRGBA
	Fold        color.NRGBA
}

var (
	darkMode bool
	current  = lightPalette
)

var lightPalette = Palette{
	Background:  color.NRGBA{0xff, 0xff, 0xff, 0xff},
	Text:        color.NRGBA{0x24, 0x29, 0x2f, 0xff},
	Selection:   color.NRGBA{0xb6, 0xd6, 0xfd, 0x80},
	Tick:        color.NRGBA{0x00, 0x00, 0x00, 0xff},
	Placeholder: color.NRGBA{0xcf, 0x22, 0x2e, 0xff},
	Fold:        color.NRGBA{0x57, 0x60, 0x6a, 0xff},
}

var darkPalette = Palette{
	Background:  color.NRGBA{0x22, 0x22, 0x22, 0xff},
	Text:        color.NRGBA{0xee, 0xee, 0xee, 0xff},
	Selection:   color.NRGBA{0x44, 0x44, 0x88, 0x80},
	Tick:        color.NRGBA{0xff, 0xff, 0xff, 0xff},
	Placeholder: color.NRGBA{0xff, 0x7b, 0x72, 0xff},
	Fold:        color.NRGBA{0x88, 0x88, 0x88, 0xff},
}

// SetDarkMode selects between the light and dark palettes.
func SetDarkMode(enabled bool) {
	darkMode = enabled
	if enabled {
		current = darkPalette
	} else {
		current = lightPalette
	}
}

// IsDarkMode reports the current mode.
func IsDarkMode() bool { return darkMode }

// Current returns the active colour palette.
func Current() Palette { return current }

// Dim returns c blended toward the background by t, for secondary marks
// such as the fold indicator of a collapsed heading.
func (p Palette) Dim(c color.NRGBA, t float64) color.NRGBA {
	a := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	b := colorful.Color{R: float64(p.Background.R) / 255, G: float64(p.Background.G) / 255, B: float64(p.Background.B) / 255}
	r, g, bl := a.BlendLab(b, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: c.A}
}

// Color converts c to the drawing library's packed form.
func Color(c color.NRGBA) draw.Color {
	return draw.FromRGBA(c)
}
