package viewport

import (
	"testing"

	"github.com/rjkroege/mdedit/document"
)

func TestParseWheelStep(t *testing.T) {
	tt := []struct {
		s    string
		want WheelStep
		bad  bool
	}{
		{s: "", want: DefaultWheelStep},
		{s: " 3 ", want: WheelStep{Rows: 3}},
		{s: "17", want: WheelStep{Rows: 17}},
		{s: "25%", want: WheelStep{Percent: 25}},
		{s: "150%", want: WheelStep{Percent: 100}},
		{s: "0", bad: true},
		{s: "-3", bad: true},
		{s: "three", bad: true},
		{s: "%", bad: true},
		{s: "0%", bad: true},
		{s: "-5%", bad: true},
		{s: "half%", bad: true},
	}
	for _, tc := range tt {
		got, err := ParseWheelStep(tc.s)
		if tc.bad {
			if err == nil {
				t.Errorf("ParseWheelStep(%q) = %+v, want an error", tc.s, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWheelStep(%q) failed: %v", tc.s, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseWheelStep(%q) = %+v, want %+v", tc.s, got, tc.want)
		}
	}
}

func TestWheelStepPixels(t *testing.T) {
	tt := []struct {
		step       WheelStep
		height, lh int
		want       int
	}{
		{WheelStep{Rows: 1}, 560, 14, 14},
		{WheelStep{Rows: 3}, 560, 14, 42},
		{WheelStep{Percent: 50}, 560, 14, 280},
		{WheelStep{Percent: 1}, 560, 14, 14},
		{WheelStep{Percent: 100}, 560, 14, 560},
		{WheelStep{Rows: 2}, 560, 0, 2},
		{WheelStep{}, 560, 14, 14},
	}
	for _, tc := range tt {
		if got := tc.step.Pixels(tc.height, tc.lh); got != tc.want {
			t.Errorf("%+v over %d pixels with %d pixel rows is %d pixels, want %d",
				tc.step, tc.height, tc.lh, got, tc.want)
		}
	}
}

func TestWheel(t *testing.T) {
	tree := document.New()
	tree.Load(paragraphs(100))
	w := New(tree, newFixedSource(), 400, 150,
		WithLineHeight(10),
		WithWheelStep(WheelStep{Percent: 50}))
	settle(t, w)

	w.Wheel(2)
	if got, want := w.Offset(), 150; got != want {
		t.Errorf("offset %d after two half-screen clicks, want %d", got, want)
	}
	w.Wheel(-5)
	if got := w.Offset(); got != 0 {
		t.Errorf("offset %d after wheeling above the top, want 0", got)
	}
}
