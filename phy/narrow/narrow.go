// Package narrow implements the narrow-phase collision routines used by the
// physics core: GJK intersection testing and EPA penetration-depth/normal
// recovery, both operating on a Minkowski-difference support function.
//
// Ported near-verbatim from gazed/vu's physics/gjk.go, physics/epa.go, and
// physics/support.go — that package itself ported a public-domain raw-
// physics implementation, and its GJK/EPA math is unchanged by anything in
// this rework. What changes here is the Supporter abstraction: the teacher
// supports only its own collider union; this package's Supporter is any
// pair of (world transform, geom.Shape), so it works for box/sphere/
// cylinder/polyhedron alike without a collider-specific switch.
package narrow

import (
	"github.com/gazed/physics/math/lin"
)

// Supporter is the minimum a narrow-phase query needs from a positioned
// shape: its support point in world space along an arbitrary direction.
type Supporter interface {
	// WorldSupport returns the point of this shape farthest along dir (a
	// world-space direction), expressed in world space.
	WorldSupport(dir lin.V3) lin.V3
}

func supportOfMinkowskiDifference(a, b Supporter, dir lin.V3) lin.V3 {
	var neg lin.V3
	neg.Scale(&dir, -1)
	sa := a.WorldSupport(dir)
	sb := b.WorldSupport(neg)
	var out lin.V3
	out.Sub(&sa, &sb)
	return out
}
