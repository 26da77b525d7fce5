package narrow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/math/lin"
)

// testSphere is a minimal Supporter used only to exercise GJK/EPA without
// pulling in the geom/phy packages.
type testSphere struct {
	center lin.V3
	radius float64
}

func (s testSphere) WorldSupport(dir lin.V3) lin.V3 {
	var unit lin.V3
	unit.Set(&dir)
	if unit.Len() > lin.Epsilon {
		unit.Unit()
	}
	var p lin.V3
	p.Scale(&unit, s.radius)
	p.Add(&p, &s.center)
	return p
}

func TestIntersectsOverlappingSpheres(t *testing.T) {
	a := testSphere{center: lin.V3{X: 0, Y: 0, Z: 0}, radius: 1}
	b := testSphere{center: lin.V3{X: 1, Y: 0, Z: 0}, radius: 1}
	_, hit := Intersects(a, b)
	assert.True(t, hit)
}

func TestIntersectsSeparatedSpheres(t *testing.T) {
	a := testSphere{center: lin.V3{X: 0, Y: 0, Z: 0}, radius: 1}
	b := testSphere{center: lin.V3{X: 10, Y: 0, Z: 0}, radius: 1}
	_, hit := Intersects(a, b)
	assert.False(t, hit)
}

func TestEPARecoversPenetrationDepth(t *testing.T) {
	a := testSphere{center: lin.V3{X: 0, Y: 0, Z: 0}, radius: 1}
	b := testSphere{center: lin.V3{X: 1.5, Y: 0, Z: 0}, radius: 1}
	s, hit := Intersects(a, b)
	assert.True(t, hit)

	normal, depth, ok := EPA(a, b, s)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, depth, 0.05)
	assert.Greater(t, normal.Len(), 0.0)
}
