// Package geom provides the convex shape library used by the physics core:
// box, sphere, cylinder, and polyhedron shape classes, each exposing a
// support function, bounds, volume, center of mass, and inertia tensor.
//
// Grounded on gazed/vu's physics/collider.go and physics/shape.go (support-
// mapping convex colliders with closed-form inertia) and generalized to the
// ShapeClass/Shape split described in the original Physics3D engine's
// engine/geometry/shape.h.
package geom

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// AABB is an axis-aligned bounding box. Used both for shape-local bounds
// and world-space Part bounds fed into the BoundsTree.
type AABB struct {
	Min, Max lin.V3
}

// Center returns the midpoint of the box.
func (b AABB) Center() lin.V3 {
	return lin.V3{
		X: (b.Min.X + b.Max.X) * 0.5,
		Y: (b.Min.Y + b.Max.Y) * 0.5,
		Z: (b.Min.Z + b.Max.Z) * 0.5,
	}
}

// Extent returns the half-widths of the box along each axis.
func (b AABB) Extent() lin.V3 {
	return lin.V3{
		X: (b.Max.X - b.Min.X) * 0.5,
		Y: (b.Max.Y - b.Min.Y) * 0.5,
		Z: (b.Max.Z - b.Min.Z) * 0.5,
	}
}

// Union returns the smallest AABB enclosing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: lin.V3{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: lin.V3{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Contains returns true if o is fully enclosed by b.
func (b AABB) Contains(o AABB) bool {
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y && b.Min.Z <= o.Min.Z &&
		b.Max.X >= o.Max.X && b.Max.Y >= o.Max.Y && b.Max.Z >= o.Max.Z
}

// Overlaps returns true if b and o share any volume.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Cost is the surface area of the box, the metric used by BoundsTree
// insertion and structure improvement (bigger box, bigger cost).
func (b AABB) Cost() float64 {
	e := b.Extent()
	ex, ey, ez := e.X*2, e.Y*2, e.Z*2
	return 2 * (ex*ey + ey*ez + ez*ex)
}

// Expand grows b by a fixed margin on every axis. Used for "loose" bounds
// that tolerate small motion without forcing a tree update every tick.
func (b AABB) Expand(margin float64) AABB {
	return AABB{
		Min: lin.V3{X: b.Min.X - margin, Y: b.Min.Y - margin, Z: b.Min.Z - margin},
		Max: lin.V3{X: b.Max.X + margin, Y: b.Max.Y + margin, Z: b.Max.Z + margin},
	}
}
