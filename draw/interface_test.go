package draw

import (
	"image/color"
	"reflect"
	"testing"
)

// TestImageLoadSignature checks that Image.Load keeps the signature that
// the image painter relies on for uploading decoded pixels.
func TestImageLoadSignature(t *testing.T) {
	imageType := reflect.TypeOf((*Image)(nil)).Elem()
	m, ok := imageType.MethodByName("Load")
	if !ok {
		t.Fatal("Image interface does not have Load method")
	}
	mt := m.Type
	if mt.NumIn() != 2 || mt.NumOut() != 2 {
		t.Fatalf("Load has %d params and %d results, want 2 and 2", mt.NumIn(), mt.NumOut())
	}
	if got := mt.In(0).String(); got != "image.Rectangle" {
		t.Errorf("Load first param is %s, want image.Rectangle", got)
	}
	if mt.In(1).Kind() != reflect.Slice || mt.In(1).Elem().Kind() != reflect.Uint8 {
		t.Errorf("Load second param is %s, want []byte", mt.In(1))
	}
}

func TestFromRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want Color
	}{
		{"nil", nil, Transparent},
		{"red", color.RGBA{R: 0xff, A: 0xff}, 0xff0000ff},
		{"grey", color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}, 0x101010ff},
		{"gray16", color.Gray16{Y: 0xffff}, 0xffffffff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromRGBA(tc.in); got != tc.want {
				t.Errorf("FromRGBA(%v) = %#x, want %#x", tc.in, uint32(got), uint32(tc.want))
			}
		})
	}
}

func TestWithAlpha(t *testing.T) {
	if got, want := WithAlpha(0xff0000ff, 0x80), Color(0x80000080); got != want {
		t.Errorf("WithAlpha = %#x, want %#x", uint32(got), uint32(want))
	}
}
