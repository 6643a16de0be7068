package ast

import "fmt"

// Arena owns every node of a document. Nodes are created with New and
// released with Free; freed slots are reused under a new generation.
type Arena struct {
	nodes []Node
	free  []int32
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// New adds a copy of n to the arena and returns its id. The copy starts
// detached, with no parent and no children.
func (a *Arena) New(n Node) NodeID {
	n.parent = Nil
	n.children = nil
	n.live = true

	if k := len(a.free); k > 0 {
		idx := a.free[k-1]
		a.free = a.free[:k-1]
		n.gen = a.nodes[idx].gen + 1
		a.nodes[idx] = n
		return NodeID{idx: idx, gen: n.gen}
	}
	n.gen = 1
	a.nodes = append(a.nodes, n)
	return NodeID{idx: int32(len(a.nodes) - 1), gen: 1}
}

// Valid reports whether id refers to a live node.
func (a *Arena) Valid(id NodeID) bool {
	if id.IsNil() || int(id.idx) >= len(a.nodes) {
		return false
	}
	n := &a.nodes[id.idx]
	return n.live && n.gen == id.gen
}

// Node returns the node for id. The pointer stays valid until the next call
// to New. Node panics if id is not valid.
func (a *Arena) Node(id NodeID) *Node {
	if !a.Valid(id) {
		panic(fmt.Sprintf("ast: stale or nil node %v", id))
	}
	return &a.nodes[id.idx]
}

// Kind returns the kind of id.
func (a *Arena) Kind(id NodeID) Kind { return a.Node(id).Kind }

// Parent returns the parent of id, or Nil for a detached node.
func (a *Arena) Parent(id NodeID) NodeID { return a.Node(id).parent }

// Children returns the children of id. The slice must not be modified.
func (a *Arena) Children(id NodeID) []NodeID { return a.Node(id).children }

// Append adds child as the last child of parent.
func (a *Arena) Append(parent, child NodeID) {
	c := a.Node(child)
	if !c.parent.IsNil() {
		panic(fmt.Sprintf("ast: %v already has parent %v", child, c.parent))
	}
	c.parent = parent
	p := a.Node(parent)
	p.children = append(p.children, child)
}

// ChildIndex returns the position of id among its parent's children, or -1
// for a detached node.
func (a *Arena) ChildIndex(id NodeID) int {
	parent := a.Parent(id)
	if parent.IsNil() {
		return -1
	}
	for i, c := range a.Children(parent) {
		if c == id {
			return i
		}
	}
	panic(fmt.Sprintf("ast: %v missing from children of %v", id, parent))
}

// ReplaceChildren replaces parent's children [start, end) with repl. The
// removed children are detached but not freed.
func (a *Arena) ReplaceChildren(parent NodeID, start, end int, repl []NodeID) {
	p := a.Node(parent)
	old := p.children
	if start < 0 || end > len(old) || start > end {
		panic(fmt.Sprintf("ast: bad child range [%d,%d) of %d", start, end, len(old)))
	}
	for _, c := range old[start:end] {
		a.nodes[c.idx].parent = Nil
	}
	for _, c := range repl {
		n := a.Node(c)
		if !n.parent.IsNil() {
			panic(fmt.Sprintf("ast: %v already has parent %v", c, n.parent))
		}
		n.parent = parent
	}
	children := make([]NodeID, 0, len(old)-(end-start)+len(repl))
	children = append(children, old[:start]...)
	children = append(children, repl...)
	children = append(children, old[end:]...)
	p.children = children
}

// Detach removes id from its parent's children.
func (a *Arena) Detach(id NodeID) {
	parent := a.Parent(id)
	if parent.IsNil() {
		return
	}
	i := a.ChildIndex(id)
	a.ReplaceChildren(parent, i, i+1, nil)
}

// Free detaches id and releases it and its whole subtree.
func (a *Arena) Free(id NodeID) {
	a.Detach(id)
	a.free1(id)
}

func (a *Arena) free1(id NodeID) {
	n := a.Node(id)
	children := n.children
	n.children = nil
	n.live = false
	n.parent = Nil
	a.free = append(a.free, id.idx)
	for _, c := range children {
		a.free1(c)
	}
}

// Live returns the number of live nodes.
func (a *Arena) Live() int {
	return len(a.nodes) - len(a.free)
}

// IsChild reports whether id is ancestor or lies in ancestor's subtree.
func (a *Arena) IsChild(id, ancestor NodeID) bool {
	for !id.IsNil() {
		if id == ancestor {
			return true
		}
		id = a.Parent(id)
	}
	return false
}

// IsParent reports whether ancestor is id or one of its ancestors.
func (a *Arena) IsParent(ancestor, id NodeID) bool {
	return a.IsChild(id, ancestor)
}

// Top returns the ancestor of id that is a direct child of a node without
// a parent, that is, the top-level block containing id.
func (a *Arena) Top(id NodeID) NodeID {
	for {
		p := a.Parent(id)
		if p.IsNil() || a.Parent(p).IsNil() {
			return id
		}
		id = p
	}
}

// Walk visits id and its descendants in document order. Returning false
// from fn skips the children of that node.
func (a *Arena) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range a.Children(id) {
		a.Walk(c, fn)
	}
}
