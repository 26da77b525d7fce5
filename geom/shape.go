package geom

import "github.com/gazed/physics/math/lin"

// Shape pairs an immutable ShapeClass with a per-instance (width, height,
// depth) scale, matching the base spec's data model: "Shape = (class,
// scale)". Many Parts in a world can reference the same ShapeClass with
// different scales without any per-Part geometry duplication.
type Shape struct {
	Class ShapeClass
	W, H, D float64
}

// NewShape returns a Shape of the given class with full dimensions w,h,d.
func NewShape(class ShapeClass, w, h, d float64) Shape {
	return Shape{Class: class, W: w, H: h, D: d}
}

// NewCube returns a cube Shape with the given full side length.
func NewCube(side float64) Shape {
	return Shape{Class: CubeClass, W: side, H: side, D: side}
}

// NewSphere returns a sphere Shape with the given diameter.
func NewSphere(diameter float64) Shape {
	return Shape{Class: SphereClass, W: diameter, H: diameter, D: diameter}
}

// NewCylinder returns a cylinder Shape with the given diameter and height.
func NewCylinder(diameter, height float64) Shape {
	return Shape{Class: CylinderClass, W: diameter, H: height, D: diameter}
}

func (s Shape) scale() lin.V3 {
	return lin.V3{X: s.W, Y: s.H, Z: s.D}
}

// SupportPoint returns the vertex index (class-specific, -1 if not
// applicable) and the shape-local point farthest along dir.
func (s Shape) SupportPoint(dir lin.V3) (int, lin.V3) {
	return s.Class.SupportPoint(s.scale(), dir)
}

// LocalBounds returns the shape-local AABB of s.
func (s Shape) LocalBounds() AABB {
	return s.Class.LocalBounds(s.scale())
}

// MaxRadiusSq returns the squared radius of the smallest sphere centered at
// center (in shape-local space) that encloses s. Used to build Part's
// circumscribing sphere for the broad phase / BoundsTree margin.
func (s Shape) MaxRadiusSq(center lin.V3) float64 {
	return s.Class.MaxRadiusSq(s.scale(), center)
}

// Volume returns the volume of s.
func (s Shape) Volume() float64 {
	return s.Class.Volume(s.scale())
}

// LocalCenterOfMass returns the shape-local center of mass of s.
func (s Shape) LocalCenterOfMass() lin.V3 {
	return s.Class.LocalCenterOfMass(s.scale())
}

// LocalInertia returns the inertia tensor of s with the given mass, about
// its local center of mass.
func (s Shape) LocalInertia(mass float64) lin.SymmetricMat3 {
	return s.Class.LocalInertia(mass, s.scale())
}

// AsPolyhedron returns a triangulation of s at its actual (scaled) size.
func (s Shape) AsPolyhedron() Polyhedron {
	return s.Class.AsPolyhedron(s.scale())
}

// ContainsPoint reports whether shape-local point p lies within s.
func (s Shape) ContainsPoint(p lin.V3) bool {
	return s.Class.ContainsPoint(s.scale(), p)
}

// Tag returns the shape class's stable serialization tag.
func (s Shape) Tag() uint32 {
	return s.Class.Tag()
}
