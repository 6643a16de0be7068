package editor

import (
	"image"
	"testing"

	"github.com/rjkroege/mdedit/draw"
)

func TestClassify(t *testing.T) {
	type event struct {
		pt      image.Point
		buttons int
		want    Gesture
		button  int
	}
	tests := []struct {
		name   string
		events []event
	}{
		{"click", []event{
			{image.Pt(10, 10), button1, Press, button1},
			{image.Pt(10, 10), 0, Release, button1},
		}},
		{"jitter is not a drag", []event{
			{image.Pt(10, 10), button1, Press, button1},
			{image.Pt(11, 11), button1, Idle, button1},
		}},
		{"drag", []event{
			{image.Pt(10, 10), button1, Press, button1},
			{image.Pt(20, 10), button1, DragTo, button1},
			{image.Pt(11, 10), button1, DragTo, button1},
			{image.Pt(11, 10), 0, Release, button1},
		}},
		{"chord", []event{
			{image.Pt(0, 0), button1, Press, button1},
			{image.Pt(0, 0), button1 | button2, Idle, button1 | button2},
			{image.Pt(0, 0), 0, Release, button1 | button2},
		}},
		{"wheel", []event{
			{image.Pt(0, 0), wheelUp, WheelUp, 0},
			{image.Pt(0, 0), wheelDown, WheelDown, 0},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ms MouseState
			for i, ev := range tc.events {
				g, b := ms.Classify(draw.Mouse{Point: ev.pt, Buttons: ev.buttons})
				if g != ev.want || b != ev.button {
					t.Errorf("event %d: got (%v, %d), want (%v, %d)", i, g, b, ev.want, ev.button)
				}
			}
		})
	}
}

func TestMouseWheelScrolls(t *testing.T) {
	e, _ := newTestEditor(t, screen, paragraphs(200))
	if !e.Mouse(draw.Mouse{Buttons: wheelDown}) {
		t.Fatal("wheel event ignored")
	}
	if e.Window().Offset() <= 0 {
		t.Errorf("offset %d after wheel down, want > 0", e.Window().Offset())
	}
}
