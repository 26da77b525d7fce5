package bounds

import "github.com/gazed/physics/geom"

// Filter decides whether a subtree's bounds are worth descending into.
// Per the original's documented contract on FilteredTreeIterator: "If the
// filter returns true for some bound, then it must also return true for
// any bound fully encompassing the first bound" — i.e. Filter must be
// monotone with respect to AABB.Contains. A non-monotone filter can cause
// the iterator to silently skip matching leaves, since internal nodes are
// pruned based on the same test applied to their (larger) bounds.
type Filter interface {
	Test(b geom.AABB) bool
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(b geom.AABB) bool

func (f FilterFunc) Test(b geom.AABB) bool { return f(b) }

type stackEntry struct {
	node  int32
	index int
}

// FilteredIterator walks a Tree depth-first, descending only into subtrees
// whose bounds pass the Filter, and yielding every leaf object that does.
// Its stack is a fixed [MaxHeight]stackEntry array (no iterator-time
// allocation), mirroring TreeIterBase's fixed-size stack.
type FilteredIterator struct {
	t      *Tree
	filter Filter
	stack  [MaxHeight]stackEntry
	top    int // index of the top-of-stack entry; -1 when exhausted
}

// Iter returns a FilteredIterator starting at the tree's root.
func (t *Tree) Iter(filter Filter) *FilteredIterator {
	it := &FilteredIterator{t: t, filter: filter}
	if t.root == nilIndex {
		it.top = -1
		return it
	}
	it.stack[0] = stackEntry{node: t.root, index: 0}
	it.top = 0
	if !filter.Test(t.nodes[t.root].bounds) {
		it.top = -1
	}
	it.delveToLeaf()
	return it
}

// delveToLeaf advances from the current top-of-stack position down to the
// next leaf that passes the filter, or exhausts the iterator (top = -1) if
// none remains reachable.
func (it *FilteredIterator) delveToLeaf() {
	for it.top >= 0 {
		e := &it.stack[it.top]
		n := &it.t.nodes[e.node]
		if n.isLeaf {
			return
		}
		if e.index >= n.count {
			it.rise()
			continue
		}
		child := n.children[e.index]
		e.index++
		cb := it.t.nodes[child].bounds
		if !it.filter.Test(cb) {
			continue
		}
		it.top++
		it.stack[it.top] = stackEntry{node: child, index: 0}
	}
}

// rise pops the current frame off the stack; the caller continues with the
// parent frame below it, if any.
func (it *FilteredIterator) rise() {
	it.top--
}

// Next advances the iterator and reports whether a leaf is available.
func (it *FilteredIterator) Next() bool {
	if it.top < 0 {
		return false
	}
	// Consume the current leaf frame and look for the next one.
	it.top--
	it.delveToLeaf()
	return it.top >= 0
}

// Value returns the object and bounds at the iterator's current position.
// Only valid immediately after a call to Next (or the first call, for the
// first leaf) that returned true — callers normally write:
//
//	for it := tree.Iter(f); ; {
//	    obj, bounds, ok := it.Value()
//	    if !ok { break }
//	    ... use obj, bounds ...
//	    if !it.Next() { break }
//	}
func (it *FilteredIterator) Value() (object any, b geom.AABB, ok bool) {
	if it.top < 0 {
		return nil, geom.AABB{}, false
	}
	e := it.stack[it.top]
	n := it.t.nodes[e.node]
	return n.object, n.bounds, true
}
