package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func TestEffectiveMassIsInfiniteForTerrainPart(t *testing.T) {
	m := effectiveMass(nil, lin.V3{}, lin.V3{X: 1})
	assert.Equal(t, lin.Large, m)
	assert.Equal(t, 0.0, invOrZero(m))
}

func TestResolveContactsStopsPenetratingBodies(t *testing.T) {
	// Two cubes resting into each other along X with some overlap: after
	// resolution, the closing velocity along the contact normal must be
	// non-negative (the solver only pushes apart, never pulls together).
	a := NewPart(geom.NewCube(1), 1, 0.5, 0)
	b := NewPart(geom.NewCube(1), 1, 0.5, 0)
	physA := a.EnsureHasParent()
	physB := b.EnsureHasParent()

	physA.ApplyImpulseAtCenterOfMass(lin.V3{X: 1})
	physB.ApplyImpulseAtCenterOfMass(lin.V3{X: -1})

	contact := Contact{
		PartA: a, PartB: b,
		PositionOnA: lin.V3{X: 0.5, Y: 0, Z: 0},
		PositionOnB: lin.V3{X: -0.5, Y: 0, Z: 0},
		Normal:      lin.V3{X: 1, Y: 0, Z: 0},
		Depth:       0.1,
	}

	resolveContacts([]Contact{contact}, defaultSolverInfo)

	velA := physA.GetVelocityOfPoint(contact.PositionOnA)
	velB := physB.GetVelocityOfPoint(contact.PositionOnB)
	var relVel lin.V3
	relVel.Sub(&velB, &velA)
	assert.GreaterOrEqual(t, relVel.Dot(&contact.Normal), -1e-6)
}

func TestSolveNormalConstraintNeverPulls(t *testing.T) {
	sc := &contactConstraint{normal: lin.V3{X: 1}, normalEffMass: 1}
	// Already separating: the normal constraint must not add a pulling
	// (negative) impulse.
	solveNormalConstraint(sc)
	assert.GreaterOrEqual(t, sc.appliedNormalImpulse, 0.0)
}
