package phy

import (
	"github.com/gazed/physics/bounds"
	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
	"github.com/gazed/physics/phy/narrow"
)

// Contact is the single deepest-point contact the base spec's §4.7 names:
// one world-space position on each Part, the separating normal (pointing
// from A towards B), and the penetration depth along it. The richer
// Sutherland-Hodgman multi-point manifold the teacher's clipping.go builds
// is not ported — see DESIGN.md.
type Contact struct {
	PartA, PartB       *Part
	PositionOnA        lin.V3
	PositionOnB        lin.V3
	Normal             lin.V3
	Depth              float64
}

// partSupporter adapts a Part's (Shape, CFrame) pair to narrow.Supporter,
// so GJK/EPA never need to know about Part or its owning Physical.
type partSupporter struct{ part *Part }

func (s partSupporter) WorldSupport(dir lin.V3) lin.V3 {
	rot := lin.NewM3().SetQ(s.part.CFrame.Rot)
	rotT := lin.NewM3().Transpose(rot)
	var localDir lin.V3
	localDir.MultMv(rotT, &dir)
	_, point := s.part.Shape.SupportPoint(localDir)
	return *s.part.CFrame.App(&point)
}

// worldBounds returns the world-space AABB of part, conservatively built by
// transforming its local AABB's eight corners through CFrame. Used as the
// BoundsTree leaf bounds and the broad-phase overlap test.
func worldBounds(part *Part) geom.AABB {
	local := part.Shape.LocalBounds()
	corners := [8]lin.V3{
		{X: local.Min.X, Y: local.Min.Y, Z: local.Min.Z},
		{X: local.Min.X, Y: local.Min.Y, Z: local.Max.Z},
		{X: local.Min.X, Y: local.Max.Y, Z: local.Min.Z},
		{X: local.Min.X, Y: local.Max.Y, Z: local.Max.Z},
		{X: local.Max.X, Y: local.Min.Y, Z: local.Min.Z},
		{X: local.Max.X, Y: local.Min.Y, Z: local.Max.Z},
		{X: local.Max.X, Y: local.Max.Y, Z: local.Min.Z},
		{X: local.Max.X, Y: local.Max.Y, Z: local.Max.Z},
	}
	world := part.CFrame.App(&corners[0])
	out := geom.AABB{Min: *world, Max: *world}
	for i := 1; i < len(corners); i++ {
		w := part.CFrame.App(&corners[i])
		out = out.Union(geom.AABB{Min: *w, Max: *w})
	}
	return out
}

// broadPhasePairs culls the full set of Part pairs down to those whose
// world AABBs overlap, using tree as the acceleration structure. Each leaf
// queries the tree for overlapping bounds and keeps only candidates whose
// ID sorts after its own, so every unordered pair is produced exactly once.
func broadPhasePairs(tree *bounds.Tree, parts []*Part) [][2]*Part {
	var pairs [][2]*Part
	for _, p := range parts {
		bound := worldBounds(p)
		filter := bounds.FilterFunc(func(b geom.AABB) bool { return b.Overlaps(bound) })
		for it := tree.Iter(filter); ; {
			obj, _, ok := it.Value()
			if !ok {
				break
			}
			cand := obj.(*Part)
			if cand != p && p.ID.String() < cand.ID.String() {
				pairs = append(pairs, [2]*Part{p, cand})
			}
			if !it.Next() {
				break
			}
		}
	}
	return pairs
}

// narrowPhase runs GJK/EPA between a and b, returning the deepest-point
// Contact and true if they intersect. tele accumulates the per-tick GJK/EPA
// counters named in §4.7/§5 (a World-owned value, never a process-wide
// static).
func narrowPhase(a, b *Part, tele *Telemetry) (Contact, bool) {
	sa, sb := partSupporter{a}, partSupporter{b}
	simplex, hit := narrow.Intersects(sa, sb)
	if !hit {
		tele.GJKNoCollides++
		return Contact{}, false
	}
	tele.GJKCollides++

	normal, depth, ok := narrow.EPA(sa, sb, simplex)
	if !ok {
		// Non-convergence within the iteration cap: per §7's Numerical
		// error class, treat the pair as non-colliding this tick.
		tele.GJKNoCollides++
		return Contact{}, false
	}
	tele.EPA++

	// EPA yields only the separating normal/depth from the Minkowski
	// polytope, not witness points on each shape, so the two contact
	// positions are recovered the same way the teacher's epa.go leaves to
	// its caller: the support point of each shape along the normal that
	// points away from it.
	var negNormal lin.V3
	negNormal.Scale(&normal, -1)
	onA := sa.WorldSupport(normal)
	onB := sb.WorldSupport(negNormal)

	return Contact{
		PartA: a, PartB: b,
		PositionOnA: onA, PositionOnB: onB,
		Normal: normal, Depth: depth,
	}, true
}

// collide runs the full broad+narrow pipeline over every Part pair the
// BoundsTree can produce, returning every contact found this tick.
func collide(tree *bounds.Tree, parts []*Part, tele *Telemetry) []Contact {
	var contacts []Contact
	for _, pair := range broadPhasePairs(tree, parts) {
		if c, ok := narrowPhase(pair[0], pair[1], tele); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// Telemetry is the per-tick "tick telemetry" value named in the base
// spec's design notes §9: statistics counters owned by a World (not
// process-wide statics), written only by the simulation thread and read
// with relaxed semantics by observers per §5.
type Telemetry struct {
	GJKCollides    uint64
	GJKNoCollides  uint64
	EPA            uint64
	NumericalWarns uint64
}
