package editor

import (
	"image"
	"unicode/utf8"

	"github.com/rjkroege/mdedit/ast"
	"github.com/rjkroege/mdedit/cursor"
	"github.com/rjkroege/mdedit/draw"
	"go.uber.org/zap"
)

// maxSnarf bounds a paste.
const maxSnarf = 100 * 1024

// Control characters the keyboard delivers for editing commands.
const (
	keyBackspace = 0x08
	keyDelete    = 0x7f
	keyEscape    = 0x1b
	ctrlA        = 0x01
	ctrlC        = 0x03
	ctrlS        = 0x13
	ctrlV        = 0x16
	ctrlX        = 0x18

	// Function keys occupy the Unicode private use area.
	keyFnFirst = 0xf000
	keyFnLast  = 0xf8ff
)

// Type inserts r at the caret, replacing the selection.
func (e *Editor) Type(r rune) error {
	return e.edited("type", e.cur.Insert(string(r)))
}

// Backspace deletes the selection, or the rune before the caret.
func (e *Editor) Backspace() error {
	if e.cur.HasSelection() {
		return e.edited("backspace", e.cur.SwapSelectionContent(""))
	}
	return e.edited("backspace", e.cur.Pop(1))
}

// Enter breaks the line at the caret.
func (e *Editor) Enter() error {
	return e.edited("enter", e.cur.Return())
}

// Move moves the caret and collapses the selection. Left and Right
// continue into neighboring blocks at the ends of a block.
func (e *Editor) Move(dir cursor.Direction) bool {
	e.cur.SetSelectMode(cursor.Single)
	return e.step(dir)
}

// Extend moves the caret while keeping the other end of the selection.
func (e *Editor) Extend(dir cursor.Direction) bool {
	if e.cur.Mode() != cursor.Range {
		e.cur.SetSelectMode(cursor.Range)
	}
	return e.step(dir)
}

func (e *Editor) step(dir cursor.Direction) bool {
	before := e.cur.Address()
	if !e.cur.Move(dir, image.Point{}) {
		switch dir {
		case cursor.Left:
			e.cur.SetPos(e.cur.Offset() - 1)
		case cursor.Right:
			e.cur.SetPos(e.cur.Offset() + 1)
		}
	}
	if e.cur.Address() == before {
		return false
	}
	e.caretMoved()
	return true
}

// Click places the caret at screen point pt. With extend the selection
// runs from its fixed end to pt.
func (e *Editor) Click(pt image.Point, extend bool) bool {
	addr, ok := e.AddressAt(pt)
	if !ok {
		return false
	}
	if extend {
		if e.cur.Mode() != cursor.Range {
			e.cur.SetSelectMode(cursor.Range)
		}
	} else {
		e.cur.SetSelectMode(cursor.Single)
	}
	if err := e.cur.Set(addr); err != nil {
		e.log.Warn("click", zap.Error(err))
		return false
	}
	e.caretMoved()
	return true
}

// Drag extends the selection to screen point pt.
func (e *Editor) Drag(pt image.Point) bool {
	return e.Click(pt, true)
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() {
	e.cur.SelectAll()
	e.caretMoved()
}

// Copy puts the selection on the clipboard. It does nothing without a
// selection.
func (e *Editor) Copy() error {
	text := e.cur.SelectedText()
	if text == "" {
		return nil
	}
	return e.display.WriteSnarf([]byte(text))
}

// Cut copies the selection to the clipboard and deletes it.
func (e *Editor) Cut() error {
	if !e.cur.HasSelection() {
		return nil
	}
	if err := e.Copy(); err != nil {
		return err
	}
	return e.edited("cut", e.cur.SwapSelectionContent(""))
}

// Paste replaces the selection with the clipboard contents. An empty
// clipboard changes nothing.
func (e *Editor) Paste() error {
	b := make([]byte, maxSnarf)
	n, _, err := e.display.ReadSnarf(b)
	if err != nil && n == 0 {
		return err
	}
	if n == 0 {
		return nil
	}
	text := string(b[:n])
	if !utf8.ValidString(text) {
		text = string([]rune(text))
	}
	return e.edited("paste", e.cur.Replace(text))
}

// Scroll moves the view down by dy pixels.
func (e *Editor) Scroll(dy int) {
	e.win.Scroll(dy)
	e.deb.Request()
}

// Wheel scrolls by n mouse wheel clicks.
func (e *Editor) Wheel(n int) {
	e.win.Wheel(n)
	e.deb.Request()
}

// Resize moves the editor to rect. Every layout depends on the width, so
// all rasters are redrawn.
func (e *Editor) Resize(rect image.Rectangle) {
	e.rect = rect
	e.cache.SetWidth(e.contentWidth())
	e.win.Resize(e.contentWidth(), e.viewHeight())
	e.reveal()
	e.deb.Request()
}

// ToggleCollapse folds or unfolds the section under heading id. Folding
// the section holding the caret moves the caret to the heading.
func (e *Editor) ToggleCollapse(id ast.NodeID) bool {
	if !e.win.Collapse(id) {
		return false
	}
	if e.win.Folded(e.cur.Block()) {
		e.cur.SetSelectMode(cursor.Single)
		if err := e.cur.Set(cursor.Address{Block: id}); err != nil {
			e.log.Warn("collapse", zap.Error(err))
		}
		e.caretMoved()
	}
	e.deb.Request()
	return true
}

// unfold opens every folded section hiding the caret.
func (e *Editor) unfold() {
	for e.win.Folded(e.cur.Block()) {
		found := false
		for i := e.tree.IndexOf(e.cur.Block()) - 1; i >= 0; i-- {
			if id := e.tree.ChildAt(i); e.win.Collapsed(id) {
				e.win.Collapse(id)
				found = true
				break
			}
		}
		if !found {
			return
		}
	}
}

// Key handles one keystroke. It reports whether anything changed.
func (e *Editor) Key(r rune) bool {
	switch r {
	case draw.KeyLeft:
		return e.Move(cursor.Left)
	case draw.KeyRight:
		return e.Move(cursor.Right)
	case draw.KeyUp:
		return e.Move(cursor.Up)
	case draw.KeyDown:
		return e.Move(cursor.Down)
	case draw.KeyHome:
		return e.jump(e.tree.ChildAt(0), 0)
	case draw.KeyEnd:
		last := e.tree.ChildAt(e.tree.Len() - 1)
		return e.jump(last, e.tree.RuneLen(last))
	case draw.KeyPageUp:
		e.Scroll(-e.viewHeight() * 3 / 4)
		return true
	case draw.KeyPageDown:
		e.Scroll(e.viewHeight() * 3 / 4)
		return true
	case keyBackspace:
		return e.Backspace() == nil
	case '\n', '\r':
		return e.Enter() == nil
	case ctrlA, draw.KeyCmd + 'a':
		e.SelectAll()
		return true
	case ctrlC, draw.KeyCmd + 'c':
		e.logErr("copy", e.Copy())
		return false
	case ctrlX, draw.KeyCmd + 'x':
		return e.Cut() == nil
	case ctrlV, draw.KeyCmd + 'v':
		return e.Paste() == nil
	case ctrlS, draw.KeyCmd + 's':
		e.logErr("save", e.Save(""))
		return false
	case keyDelete, keyEscape:
		return false
	}
	if r < ' ' && r != '\t' {
		return false
	}
	if r >= keyFnFirst && r <= keyFnLast {
		return false
	}
	return e.Type(r) == nil
}

// jump moves the caret to offset of block id.
func (e *Editor) jump(id ast.NodeID, offset int) bool {
	e.cur.SetSelectMode(cursor.Single)
	if err := e.cur.Set(cursor.Address{Block: id, Offset: offset}); err != nil {
		e.log.Warn("jump", zap.Error(err))
		return false
	}
	e.caretMoved()
	return true
}

func (e *Editor) logErr(op string, err error) {
	if err != nil {
		e.log.Warn(op, zap.Error(err))
	}
}
