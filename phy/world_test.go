package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func TestAddTerrainPartRejectsAlreadyAttachedPart(t *testing.T) {
	world := NewWorld(lin.V3{})
	part := NewPart(geom.NewCube(1), 1, 0.5, 0)
	part.EnsureHasParent()

	assert.Panics(t, func() { world.AddTerrainPart(part) })
}

func TestRemovePartReportsMisuseForUnknownPart(t *testing.T) {
	world := NewWorld(lin.V3{})
	part := NewPart(geom.NewCube(1), 1, 0.5, 0)

	err := world.RemovePart(part)
	assert.Error(t, err)
}

func TestAllPartsIncludesTerrainAndSimulated(t *testing.T) {
	world := NewWorld(lin.V3{})
	box := NewPart(geom.NewCube(1), 1, 0.5, 0)
	world.AddPart(box)

	ground := NewPart(geom.NewCube(100), 0, 1, 0)
	world.AddTerrainPart(ground)

	all := world.AllParts()
	assert.Len(t, all, 2)
}

func TestBallConstraintRopeStaysWithinTolerance(t *testing.T) {
	// Scenario 4: three cubes linked at +-2 along z by BallConstraints;
	// the distance between consecutive attach points should stay close to
	// zero (the constraint's whole point) across many ticks.
	world := NewWorld(lin.V3{X: 0, Y: -10, Z: 0})

	a := NewPart(geom.NewCube(1), 1, 0.5, 0)
	b := NewPart(geom.NewCube(1), 1, 0.5, 0)
	c := NewPart(geom.NewCube(1), 1, 0.5, 0)
	frameAt(a, 0, 0, -2)
	frameAt(b, 0, 0, 0)
	frameAt(c, 0, 0, 2)

	physA := world.AddPart(a)
	physB := world.AddPart(b)
	physC := world.AddPart(c)

	world.AddConstraintGroup(&ConstraintGroup{
		Constraints: []PhysicalConstraint{
			{PhysA: physA, PhysB: physB, Constraint: &BallConstraint{AttachA: lin.V3{Z: 1}, AttachB: lin.V3{Z: -1}}},
			{PhysA: physB, PhysB: physC, Constraint: &BallConstraint{AttachA: lin.V3{Z: 1}, AttachB: lin.V3{Z: -1}}},
		},
	})

	for i := 0; i < 1000; i++ {
		world.tick(1.0 / 120)
	}

	pointOnA := localToWorld(physA, lin.V3{Z: 1})
	pointOnB := localToWorld(physB, lin.V3{Z: -1})
	var gap lin.V3
	gap.Sub(&pointOnB, &pointOnA)
	assert.InDelta(t, 0.0, gap.Len(), 0.05)
}

func frameAt(part *Part, x, y, z float64) {
	frame := lin.NewT()
	frame.SetLoc(x, y, z)
	part.SetCFrame(frame)
}
