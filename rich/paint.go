package rich

import (
	"image"
	"image/color"

	"github.com/rjkroege/mdedit/draw"
	"go.uber.org/zap"
)

// errorColor marks images and math that could not be shown.
var errorColor = color.NRGBA{R: 0xcf, G: 0x22, B: 0x2e, A: 0xff}

// Paint draws l into dst with the block's top-left corner at at.
func (r *Renderer) Paint(dst draw.Image, l *Layout, at image.Point) {
	d := dst.Display()
	for _, b := range l.Boxes {
		src := r.fill(d, b.Color)
		if src == nil {
			continue
		}
		for _, s := range roundRect(b.Rect.Add(at), b.Radius) {
			dst.Draw(s, src, nil, image.ZP)
		}
	}

	for _, it := range l.Items {
		rect := it.Rect.Add(at)
		switch it.Kind {
		case ItemText:
			if src := r.fill(d, it.Style.Color); src != nil {
				dst.Bytes(rect.Min, src, image.ZP, it.Font, []byte(it.Text))
			}

		case ItemRule:
			if src := r.fill(d, it.Style.Color); src != nil {
				dst.Draw(rect, src, nil, image.ZP)
			}

		case ItemImage:
			img, err := upload(d, it.Image, rect.Dx(), rect.Dy())
			if err != nil {
				r.log.Debug("image upload failed", zap.Error(err))
				r.placeholder(dst, rect)
				continue
			}
			dst.Draw(rect, img, nil, image.ZP)
			img.Free()

		case ItemError:
			r.placeholder(dst, rect)
			if src := r.fill(d, errorColor); src != nil {
				dst.Bytes(rect.Min, src, image.ZP, it.Font, []byte(it.Text))
			}
		}
	}
}

// placeholder outlines rect in the error colour.
func (r *Renderer) placeholder(dst draw.Image, rect image.Rectangle) {
	src := r.fill(dst.Display(), errorColor)
	if src == nil {
		return
	}
	dst.Border(rect, 1, src, image.ZP)
}

// Rasterize paints l into a new image of its own size over bg. The caller
// frees the result.
func (r *Renderer) Rasterize(d draw.Display, l *Layout, bg color.Color) (draw.Image, error) {
	h := l.Height
	if h < 1 {
		h = 1
	}
	img, err := d.AllocImage(image.Rect(0, 0, l.Width, h), d.ScreenImage().Pix(), false, draw.FromRGBA(bg))
	if err != nil {
		return nil, err
	}
	r.Paint(img, l, image.ZP)
	return img, nil
}

// fill returns a replicated image of c, allocating it on first use.
func (r *Renderer) fill(d draw.Display, c color.NRGBA) draw.Image {
	if c.A == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.colors[c]; ok {
		return img
	}
	img, err := draw.Fill(d, c)
	if err != nil {
		r.log.Warn("cannot allocate colour", zap.Any("color", c), zap.Error(err))
		return nil
	}
	r.colors[c] = img
	return img
}

// Close frees the colour images held by r.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c, img := range r.colors {
		img.Free()
		delete(r.colors, c)
	}
}
