package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/math/lin"
)

func TestCubeSupportPoint(t *testing.T) {
	s := NewCube(2)
	_, p := s.SupportPoint(lin.V3{X: 1, Y: 1, Z: 1})
	assert.InDelta(t, 1.0, p.X, 1e-9)
	assert.InDelta(t, 1.0, p.Y, 1e-9)
	assert.InDelta(t, 1.0, p.Z, 1e-9)
}

func TestCubeVolumeAndInertia(t *testing.T) {
	s := NewCube(2)
	assert.InDelta(t, 8.0, s.Volume(), 1e-9)

	inertia := s.LocalInertia(6)
	// unit cube side 2: Ixx = m/12*(h^2+d^2) = 6/12*(4+4) = 4
	assert.InDelta(t, 4.0, inertia.Xx, 1e-9)
	assert.InDelta(t, 4.0, inertia.Yy, 1e-9)
	assert.InDelta(t, 4.0, inertia.Zz, 1e-9)
}

func TestCubeLocalBounds(t *testing.T) {
	s := NewCube(2)
	b := s.LocalBounds()
	assert.InDelta(t, -1.0, b.Min.X, 1e-9)
	assert.InDelta(t, 1.0, b.Max.X, 1e-9)
}

func TestSphereContainsPoint(t *testing.T) {
	s := NewSphere(2)
	assert.True(t, s.ContainsPoint(lin.V3{X: 0.5, Y: 0, Z: 0}))
	assert.False(t, s.ContainsPoint(lin.V3{X: 1.5, Y: 0, Z: 0}))
}

func TestSphereSupportPointIsOnBoundary(t *testing.T) {
	s := NewSphere(2)
	_, p := s.SupportPoint(lin.V3{X: 1, Y: 0, Z: 0})
	assert.InDelta(t, 1.0, p.X, 1e-9)
	assert.InDelta(t, 0.0, p.Y, 1e-9)
}

func TestSphereVolume(t *testing.T) {
	s := NewSphere(2)
	// radius 1 sphere: volume = 4/3*pi
	assert.InDelta(t, 4.18879, s.Volume(), 1e-3)
}

func TestCylinderSupportPointTop(t *testing.T) {
	s := NewCylinder(2, 4)
	_, p := s.SupportPoint(lin.V3{X: 0, Y: 1, Z: 0})
	assert.InDelta(t, 2.0, p.Y, 1e-9)
}

func TestCylinderContainsPoint(t *testing.T) {
	s := NewCylinder(2, 4)
	assert.True(t, s.ContainsPoint(lin.V3{X: 0, Y: 0, Z: 0}))
	assert.False(t, s.ContainsPoint(lin.V3{X: 0, Y: 3, Z: 0}))
}

func TestAABBOverlaps(t *testing.T) {
	a := AABB{Min: lin.V3{X: -1, Y: -1, Z: -1}, Max: lin.V3{X: 1, Y: 1, Z: 1}}
	b := AABB{Min: lin.V3{X: 0.5, Y: 0.5, Z: 0.5}, Max: lin.V3{X: 2, Y: 2, Z: 2}}
	c := AABB{Min: lin.V3{X: 5, Y: 5, Z: 5}, Max: lin.V3{X: 6, Y: 6, Z: 6}}
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestAABBUnionContains(t *testing.T) {
	a := AABB{Min: lin.V3{X: -1, Y: -1, Z: -1}, Max: lin.V3{X: 1, Y: 1, Z: 1}}
	b := AABB{Min: lin.V3{X: 2, Y: 2, Z: 2}, Max: lin.V3{X: 3, Y: 3, Z: 3}}
	u := a.Union(b)
	assert.True(t, u.Contains(a))
	assert.True(t, u.Contains(b))
}

func TestPolyhedronShapeClassBoxLikeCube(t *testing.T) {
	verts := []lin.V3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	tris := []Triangle{
		{0, 1, 2}, {0, 2, 3},
		{4, 6, 5}, {4, 7, 6},
		{0, 4, 5}, {0, 5, 1},
		{3, 2, 6}, {3, 6, 7},
		{0, 3, 7}, {0, 7, 4},
		{1, 5, 6}, {1, 6, 2},
	}
	class, tag := NewPolyhedronShapeClass(verts, tris)
	assert.NotZero(t, tag)
	s := NewShape(class, 2, 2, 2)
	assert.InDelta(t, 8.0, s.Volume(), 0.2)
}
