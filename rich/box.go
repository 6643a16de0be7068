package rich

import (
	"image"
	"math"
)

// roundRect covers r minus its rounded corners with horizontal strips. Rows
// of the same width are merged so a plain rectangle is a single strip.
func roundRect(r image.Rectangle, radius int) []image.Rectangle {
	if r.Empty() {
		return nil
	}
	if half := min(r.Dx(), r.Dy()) / 2; radius > half {
		radius = half
	}
	if radius <= 0 {
		return []image.Rectangle{r}
	}

	var out []image.Rectangle
	add := func(y0, y1, in int) {
		s := image.Rect(r.Min.X+in, y0, r.Max.X-in, y1)
		if n := len(out); n > 0 && out[n-1].Min.X == s.Min.X && out[n-1].Max.X == s.Max.X && out[n-1].Max.Y == s.Min.Y {
			out[n-1].Max.Y = s.Max.Y
			return
		}
		out = append(out, s)
	}
	for i := 0; i < radius; i++ {
		add(r.Min.Y+i, r.Min.Y+i+1, inset(radius, i))
	}
	add(r.Min.Y+radius, r.Max.Y-radius, 0)
	for i := radius - 1; i >= 0; i-- {
		add(r.Max.Y-i-1, r.Max.Y-i, inset(radius, i))
	}
	return out
}

// inset returns how far row i of a corner of the given radius is indented,
// sampling the circle at the middle of the row.
func inset(radius, i int) int {
	dy := float64(radius) - float64(i) - 0.5
	dx := math.Sqrt(float64(radius*radius) - dy*dy)
	return radius - int(math.Round(dx))
}
