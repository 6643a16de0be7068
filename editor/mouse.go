package editor

import (
	"image"

	"github.com/rjkroege/mdedit/draw"
)

// Mouse buttons as reported in draw.Mouse.Buttons.
const (
	button1    = 1 << 0
	button2    = 1 << 1
	button3    = 1 << 2
	wheelUp    = 1 << 3
	wheelDown  = 1 << 4
	chordMask  = button1 | button2 | button3
	dragThresh = 3 // pixels before a press becomes a drag
)

// MouseState remembers the previous mouse event so that a stream of
// events can be split into presses, drags and releases.
type MouseState struct {
	buttons int
	press   image.Point
	moved   bool
}

// Gesture classifies one mouse event.
type Gesture int

const (
	Idle Gesture = iota
	Press
	DragTo
	Release
	WheelUp
	WheelDown
)

// Classify returns what m means given the events before it, and the
// button the gesture concerns.
func (ms *MouseState) Classify(m draw.Mouse) (Gesture, int) {
	prev := ms.buttons
	ms.buttons = m.Buttons & chordMask
	switch {
	case m.Buttons&wheelUp != 0:
		return WheelUp, 0
	case m.Buttons&wheelDown != 0:
		return WheelDown, 0
	}
	now := m.Buttons & chordMask
	switch {
	case prev == 0 && now != 0:
		ms.press, ms.moved = m.Point, false
		return Press, now
	case prev != 0 && now == 0:
		return Release, prev
	case now != 0:
		d := m.Point.Sub(ms.press)
		if !ms.moved && d.X*d.X+d.Y*d.Y < dragThresh*dragThresh {
			return Idle, now
		}
		ms.moved = true
		return DragTo, now
	}
	return Idle, 0
}

// Clear forgets the button state, as after the window lost focus.
func (ms *MouseState) Clear() {
	*ms = MouseState{}
}

// Mouse handles one mouse event: button 1 places the caret and drags a
// selection, button 3 on a heading folds its section and the wheel
// scrolls. It reports whether anything changed.
func (e *Editor) Mouse(m draw.Mouse) bool {
	g, b := e.mouse.Classify(m)
	switch g {
	case WheelUp:
		e.Wheel(-1)
		return true
	case WheelDown:
		e.Wheel(1)
		return true
	case Press:
		switch b {
		case button1:
			return e.Click(m.Point, false)
		case button1 | button2, button2:
			return e.Click(m.Point, true)
		}
	case DragTo:
		if b&button1 != 0 {
			return e.Drag(m.Point)
		}
	case Release:
		if b == button3 {
			if id, ok := e.ASTIn(m.Point); ok {
				return e.ToggleCollapse(id)
			}
		}
	}
	return false
}
