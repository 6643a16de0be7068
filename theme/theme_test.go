package theme

import (
	"image/color"
	"testing"
)

func TestSetDarkMode(t *testing.T) {
	defer SetDarkMode(false)

	SetDarkMode(true)
	if !IsDarkMode() || Current() != darkPalette {
		t.Errorf("dark mode not selected")
	}
	SetDarkMode(false)
	if IsDarkMode() || Current() != lightPalette {
		t.Errorf("light mode not selected")
	}
}

func TestDim(t *testing.T) {
	p := lightPalette
	c := color.NRGBA{0, 0, 0, 0xff}

	if got := p.Dim(c, 0); got != c {
		t.Errorf("Dim(0) = %v, want %v", got, c)
	}
	if got := p.Dim(c, 1); got != p.Background {
		t.Errorf("Dim(1) = %v, want %v", got, p.Background)
	}
	mid := p.Dim(c, 0.5)
	if mid.R == 0 || mid.R == 0xff || mid.A != 0xff {
		t.Errorf("Dim(0.5) = %v, want a grey", mid)
	}
}
