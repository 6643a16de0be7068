package rich

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rjkroege/mdedit/document"
	"github.com/rjkroege/mdedit/mdtest"
)

func TestPaintText(t *testing.T) {
	d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
	r := newTestRenderer()
	_, l := layoutOf(t, r, "ab **c**\n", 400, nil)

	r.Paint(d.ScreenImage(), l, image.Pt(5, 100))
	got := mdtest.Ops(d, "string")
	want := []string{
		`screen <- string "ab" atpoint: (5,100) fill: 0x24292fff,tiled`,
		`screen <- string " " atpoint: (25,100) fill: 0x24292fff,tiled`,
		`screen <- string "c" atpoint: (35,100) fill: 0x24292fff,tiled`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("string ops (-want +got):\n%s", diff)
	}
}

func TestPaintBackgroundBeforeText(t *testing.T) {
	d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
	r := newTestRenderer()
	_, l := layoutOf(t, r, "```\nx\n```\n", 400, nil)

	r.Paint(d.ScreenImage(), l, image.ZP)
	ops := d.(mdtest.GettableDrawOps).DrawOps()
	firstDraw, firstString := -1, -1
	for i, op := range ops {
		if firstDraw < 0 && strings.Contains(op, "<- draw") {
			firstDraw = i
		}
		if firstString < 0 && strings.Contains(op, "<- string") {
			firstString = i
		}
	}
	if firstDraw < 0 || firstString < 0 || firstDraw > firstString {
		t.Errorf("background not painted before text:\n%s", strings.Join(ops, "\n"))
	}
}

func TestPaintRule(t *testing.T) {
	d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
	r := newTestRenderer()
	_, l := layoutOf(t, r, "---\n", 200, nil)

	if len(l.Items) != 1 || l.Items[0].Kind != ItemRule {
		t.Fatalf("items %+v, want one rule", l.Items)
	}
	if got, want := l.Items[0].Rect.Dx(), 200; got != want {
		t.Errorf("rule width %d, want %d", got, want)
	}
	r.Paint(d.ScreenImage(), l, image.ZP)
	if got := mdtest.Ops(d, "<- draw"); len(got) != 1 {
		t.Errorf("rule draw ops %q, want one", got)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLayoutImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "pic.png"), 30, 20)
	cache := NewImageCache(8)
	cache.SetBasePath(filepath.Join(dir, "doc.md"))
	r := newTestRenderer(WithImageCache(cache))

	_, l := layoutOf(t, r, "![alt](pic.png)\n", 400, nil)
	if len(l.Items) != 1 || l.Items[0].Kind != ItemImage {
		t.Fatalf("items %+v, want one image", l.Items)
	}
	if got, want := l.Items[0].Rect, image.Rect(0, 0, 30, 20); got != want {
		t.Errorf("image rect %v, want %v", got, want)
	}
	if got, want := l.Height, 20; got != want {
		t.Errorf("height %d, want %d", got, want)
	}

	d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
	r.Paint(d.ScreenImage(), l, image.ZP)
	if got := mdtest.Ops(d, "load r: (0,0)-(30,20) bytes: 2400"); len(got) != 1 {
		t.Errorf("load ops %q, want one 30x20 load", got)
	}
	if got := d.(mdtest.GettableDrawOps).LiveImages(); got != 0 {
		t.Errorf("%d live images after painting, want 0", got)
	}
}

func TestLayoutImageScaled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wide.png"), 400, 100)
	cache := NewImageCache(8)
	cache.SetBasePath(filepath.Join(dir, "doc.md"))
	r := newTestRenderer(WithImageCache(cache))

	_, l := layoutOf(t, r, "![w](wide.png)\n", 200, nil)
	if got, want := l.Items[0].Rect, image.Rect(0, 0, 200, 50); got != want {
		t.Errorf("scaled rect %v, want %v", got, want)
	}
}

func TestLayoutImagePlaceholder(t *testing.T) {
	cache := NewImageCache(8)
	cache.SetBasePath(filepath.Join(t.TempDir(), "doc.md"))
	r := newTestRenderer(WithImageCache(cache))

	for _, doc := range []string{"![missing](nope.png)\n", "![remote](https://example.com/x.png)\n"} {
		_, l := layoutOf(t, r, doc, 400, nil)
		if len(l.Items) != 1 || l.Items[0].Kind != ItemError {
			t.Fatalf("%q: items %+v, want one placeholder", doc, l.Items)
		}

		d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
		r.Close()
		r.Paint(d.ScreenImage(), l, image.ZP)
		if got := mdtest.Ops(d, "border"); len(got) != 1 {
			t.Errorf("%q: border ops %q, want one", doc, got)
		}
		if got := mdtest.Ops(d, "string \"["); len(got) != 1 {
			t.Errorf("%q: alt text ops %q, want one", doc, got)
		}
	}
}

func TestLayoutMath(t *testing.T) {
	tt := []struct {
		name   string
		render MathRendererFunc
		kind   ItemKind
	}{
		{"ok", func(tex string, size int) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 30, 20)), nil
		}, ItemImage},
		{"error", func(tex string, size int) (image.Image, error) {
			return nil, errors.New("bad tex")
		}, ItemError},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRenderer(WithMathRenderer(tc.render))
			for _, doc := range []string{"x $a^2$ y\n", "$$\na^2\n$$\n"} {
				tree := document.New()
				tree.Load(doc)
				id := tree.Blocks()[0]
				l := r.Layout(r.Emit(tree.Arena(), id, nil), 400)
				if got, want := len(l.Anchors), tree.RuneLen(id); got != want {
					t.Errorf("%q: %d anchors, want %d", doc, got, want)
				}
				found := false
				for _, it := range l.Items {
					if it.Kind == tc.kind {
						found = true
					}
				}
				if !found {
					t.Errorf("%q: no item of kind %d in %+v", doc, tc.kind, l.Items)
				}
			}
		})
	}
}

func TestRasterize(t *testing.T) {
	d := mdtest.NewDisplay(image.Rect(0, 0, 800, 600))
	r := newTestRenderer()
	_, l := layoutOf(t, r, "hi\n", 100, nil)

	img, err := r.Rasterize(d, l, color.White)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := img.R(), image.Rect(0, 0, 100, ch); got != want {
		t.Errorf("raster bounds %v, want %v", got, want)
	}
	if got := mdtest.Ops(d, "string \"hi\" atpoint: (0,0)"); len(got) != 1 {
		t.Errorf("text not painted into raster: %q", d.(mdtest.GettableDrawOps).DrawOps())
	}
	img.Free()
}

func TestRoundRect(t *testing.T) {
	r := image.Rect(0, 0, 20, 10)
	if diff := cmp.Diff([]image.Rectangle{r}, roundRect(r, 0)); diff != "" {
		t.Errorf("square (-want +got):\n%s", diff)
	}

	strips := roundRect(r, 4)
	area := 0
	for i, s := range strips {
		if !s.In(r) {
			t.Errorf("strip %v outside %v", s, r)
		}
		if i > 0 && s.Min.Y != strips[i-1].Max.Y {
			t.Errorf("strip %v does not follow %v", s, strips[i-1])
		}
		area += s.Dx() * s.Dy()
	}
	if area >= 200 || area < 180 {
		t.Errorf("rounded area %d, want a little less than 200", area)
	}
	if strips[0].Min.Y != 0 || strips[len(strips)-1].Max.Y != 10 {
		t.Errorf("strips %v do not span the rectangle", strips)
	}
	if roundRect(image.Rectangle{}, 3) != nil {
		t.Errorf("empty rectangle produced strips")
	}
}

func TestConvertToPlan9(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	data, err := ConvertToPlan9(img)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xff, 0x30, 0x20, 0x10}, data); diff != "" {
		t.Errorf("pixel bytes (-want +got):\n%s", diff)
	}
	if _, err := ConvertToPlan9(nil); err == nil {
		t.Errorf("nil image converted")
	}
}
