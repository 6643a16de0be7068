package document

import "github.com/rjkroege/mdedit/ast"

// BlockObserver implementations can register themselves with a Tree to be
// notified of every change to its top-level block list.
type BlockObserver interface {
	// Spliced informs the implementer that the blocks removed, which
	// started at index start, were replaced by added. The removed ids have
	// already been freed and must not be dereferenced.
	Spliced(start int, removed, added []ast.NodeID)
}

// AddObserver registers o for notifications.
func (t *Tree) AddObserver(o BlockObserver) {
	t.observers = append(t.observers, o)
}

// DelObserver removes o. It returns false if o was not registered.
func (t *Tree) DelObserver(o BlockObserver) bool {
	for i, x := range t.observers {
		if x == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Tree) notify(start int, removed, added []ast.NodeID) {
	for _, o := range t.observers {
		o.Spliced(start, removed, added)
	}
}
