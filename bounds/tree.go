// Package bounds implements the dynamic AABB bounding volume hierarchy used
// by the physics core's broad phase: BoundsTree. Grounded directly on the
// original engine's engine/datastructures/boundsTree.h, since nothing in
// the Go example pack implements a dynamic (insert/remove/reshape) AABB
// tree — the fanout cap, collapse-on-removal rule, and filtered-iterator
// contract below are ported from that header rather than adapted from any
// Go source.
package bounds

import (
	"fmt"

	"github.com/gazed/physics/geom"
)

// MaxBranches is the maximum number of children an internal node may hold
// before a new insertion forces a split. Matches the original's
// MAX_BRANCHES.
const MaxBranches = 4

// MaxHeight bounds the depth of the tree and, correspondingly, the size of
// the iteration stack: Add panics if a leaf would end up MaxHeight or more
// levels below the root. Matches the original's MAX_HEIGHT.
const MaxHeight = 64

const nilIndex int32 = -1

// Handle identifies a leaf previously returned by Tree.Add. It stays valid
// (and stable) across Remove/Update/ImproveStructure calls on other leaves;
// it is invalidated only by removing the object it names.
type Handle int32

type node struct {
	bounds   geom.AABB
	parent   int32
	isLeaf   bool
	object   any // only set on leaves
	children [MaxBranches]int32
	count    int
}

// Tree is a dynamic AABB tree: an arena of nodes addressed by stable
// integer index (Handle), rather than the original's pointer-owning
// TreeNode union — Go has no placement-new, so the arena-plus-free-list
// is the natural way to get the same "leaf address survives reshaping
// elsewhere in the tree" property the original gets from its union.
type Tree struct {
	nodes []node
	free  []int32
	root  int32
}

// New returns an empty BoundsTree.
func New() *Tree {
	return &Tree{root: nilIndex}
}

// Len returns the number of leaves (objects) currently in the tree.
func (t *Tree) Len() int {
	n := 0
	t.walkLeaves(t.root, func(int32) { n++ })
	return n
}

func (t *Tree) walkLeaves(i int32, f func(int32)) {
	if i == nilIndex {
		return
	}
	n := &t.nodes[i]
	if n.isLeaf {
		f(i)
		return
	}
	for c := 0; c < n.count; c++ {
		t.walkLeaves(n.children[c], f)
	}
}

func (t *Tree) alloc(n node) int32 {
	if len(t.free) > 0 {
		i := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[i] = n
		return i
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func (t *Tree) release(i int32) {
	t.nodes[i] = node{}
	t.free = append(t.free, i)
}

// Add inserts object with the given bounds and returns a stable handle.
func (t *Tree) Add(bounds geom.AABB, object any) Handle {
	leaf := t.alloc(node{bounds: bounds, isLeaf: true, object: object, parent: nilIndex})
	if t.root == nilIndex {
		t.root = leaf
		return Handle(leaf)
	}
	t.root = t.insert(t.root, leaf)
	t.fixParents(t.root, nilIndex)
	depth := 0
	for p := t.nodes[leaf].parent; p != nilIndex; p = t.nodes[p].parent {
		depth++
	}
	if depth >= MaxHeight {
		panic(fmt.Errorf("bounds: leaf depth %d exceeds the MaxHeight %d limit", depth, MaxHeight))
	}
	return Handle(leaf)
}

func (t *Tree) fixParents(i, parent int32) {
	n := &t.nodes[i]
	n.parent = parent
	if !n.isLeaf {
		for c := 0; c < n.count; c++ {
			t.fixParents(n.children[c], i)
		}
	}
}

// insert walks from node i down to the cheapest attachment point for leaf,
// growing bounds on the way back up. Mirrors the original's add()/
// addToSubTrees() cost-driven placement, generalized to Go's arena indices.
func (t *Tree) insert(i, leaf int32) int32 {
	n := &t.nodes[i]
	if n.isLeaf {
		// Two leaves colliding at this slot: both become children of a new
		// internal node that takes this slot.
		return t.alloc(node{
			bounds:   n.bounds.Union(t.nodes[leaf].bounds),
			isLeaf:   false,
			children: [MaxBranches]int32{i, leaf},
			count:    2,
		})
	}

	leafBounds := t.nodes[leaf].bounds
	directCost := n.bounds.Union(leafBounds).Cost()

	bestChild, bestCost := -1, 0.0
	for c := 0; c < n.count; c++ {
		child := &t.nodes[n.children[c]]
		cost := child.bounds.Union(leafBounds).Cost()
		if bestChild == -1 || cost < bestCost {
			bestChild, bestCost = c, cost
		}
	}

	if n.count < MaxBranches && directCost <= bestCost {
		n.children[n.count] = leaf
		n.count++
		n.bounds = n.bounds.Union(leafBounds)
		return i
	}

	child := t.insert(n.children[bestChild], leaf)
	n = &t.nodes[i] // the recursive insert may have grown t.nodes
	n.children[bestChild] = child
	n.bounds = n.bounds.Union(leafBounds)
	return i
}

// Remove deletes the leaf named by h from the tree. Per the original's
// remove(): the slot is filled by swapping in the node's last child, and if
// that collapses the parent to a single remaining child, the parent is
// replaced in place by that child (so a chain of single-child internal
// nodes never accumulates).
func (t *Tree) Remove(h Handle) {
	leaf := int32(h)
	parent := t.nodes[leaf].parent
	t.release(leaf)

	if parent == nilIndex {
		t.root = nilIndex
		return
	}

	pn := &t.nodes[parent]
	idx := -1
	for c := 0; c < pn.count; c++ {
		if pn.children[c] == leaf {
			idx = c
			break
		}
	}
	if idx == -1 {
		panic(fmt.Errorf("bounds: remove handle %d not found under its recorded parent", h))
	}
	pn.count--
	if idx != pn.count {
		pn.children[idx] = pn.children[pn.count]
	}
	pn.children[pn.count] = nilIndex

	if pn.count == 1 {
		onlyChild := pn.children[0]
		grandparent := pn.parent
		t.release(parent)
		t.nodes[onlyChild].parent = grandparent
		if grandparent == nilIndex {
			t.root = onlyChild
		} else {
			gn := &t.nodes[grandparent]
			for c := 0; c < gn.count; c++ {
				if gn.children[c] == parent {
					gn.children[c] = onlyChild
					break
				}
			}
			t.recalculateBoundsUp(grandparent)
		}
		return
	}
	t.recalculateBoundsUp(parent)
}

func (t *Tree) recalculateBoundsUp(i int32) {
	for i != nilIndex {
		n := &t.nodes[i]
		b := t.nodes[n.children[0]].bounds
		for c := 1; c < n.count; c++ {
			b = b.Union(t.nodes[n.children[c]].bounds)
		}
		n.bounds = b
		i = n.parent
	}
}

// Update changes the bounds recorded for the object at h, for example after
// a tick's integration has moved it, and rebalances ancestors' bounds. If
// the new bounds no longer fit comfortably (i.e. would force rebalancing
// anyway), the caller should prefer Remove+Add, which this does not do
// automatically — matching recalculateBounds's original "caller decides
// when to also call improveStructure" split of concerns.
func (t *Tree) Update(h Handle, bounds geom.AABB) {
	leaf := int32(h)
	t.nodes[leaf].bounds = bounds
	t.recalculateBoundsUp(t.nodes[leaf].parent)
}

// Object returns the object stored at handle h.
func (t *Tree) Object(h Handle) any {
	return t.nodes[int32(h)].object
}

// Bounds returns the current bounds stored at handle h.
func (t *Tree) Bounds(h Handle) geom.AABB {
	return t.nodes[int32(h)].bounds
}

// ImproveStructure performs one pass of local tree surgery aimed at
// reducing total node cost (the SAH-like heuristic in AABB.Cost), without
// changing the set of leaves. One bottom-up pass over the internal nodes is
// made per call — matching the original's improveStructure, which is called
// incrementally rather than run to convergence every tick.
func (t *Tree) ImproveStructure() {
	if t.root == nilIndex || t.nodes[t.root].isLeaf {
		return
	}
	t.improve(t.root)
}

func (t *Tree) improve(i int32) {
	n := &t.nodes[i]
	for c := 0; c < n.count; c++ {
		ci := n.children[c]
		if !t.nodes[ci].isLeaf {
			t.improve(ci)
		}
	}
	// Try swapping pairs of children between this node's immediate
	// grandchildren if it reduces total bounds cost, a local analogue of
	// the original's rotation-based improveStructure.
	for a := 0; a < n.count; a++ {
		an := &t.nodes[n.children[a]]
		if an.isLeaf {
			continue
		}
		for b := 0; b < n.count; b++ {
			if a == b {
				continue
			}
			bn := &t.nodes[n.children[b]]
			if bn.isLeaf {
				continue
			}
			for ai := 0; ai < an.count && an.count > 2 && bn.count < MaxBranches; ai++ {
				current := an.bounds.Cost() + bn.bounds.Cost()
				moved := t.nodes[an.children[ai]].bounds
				withoutA := unionAllExcept(t, an, ai)
				withB := bn.bounds.Union(moved)
				if withoutA.Cost()+withB.Cost() < current {
					// Move child ai from an to bn.
					childIdx := an.children[ai]
					an.children[ai] = an.children[an.count-1]
					an.count--
					an.bounds = withoutA
					bn.children[bn.count] = childIdx
					bn.count++
					bn.bounds = withB
					t.nodes[childIdx].parent = n.children[b]
					break
				}
			}
		}
	}
}

func unionAllExcept(t *Tree, n *node, except int) geom.AABB {
	var b geom.AABB
	first := true
	for c := 0; c < n.count; c++ {
		if c == except {
			continue
		}
		if first {
			b = t.nodes[n.children[c]].bounds
			first = false
		} else {
			b = b.Union(t.nodes[n.children[c]].bounds)
		}
	}
	return b
}
