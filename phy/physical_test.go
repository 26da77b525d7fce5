package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func TestEnsureHasParentCreatesRootPhysical(t *testing.T) {
	part := NewPart(geom.NewCube(1), 1, 0.5, 0)
	phys := part.EnsureHasParent()
	assert.True(t, phys.IsRoot())
	assert.Equal(t, phys, phys.Root())
	assert.InDelta(t, 1.0, phys.TotalMass, 1e-9)
}

func TestAttachAggregatesMass(t *testing.T) {
	main := NewPart(geom.NewCube(1), 1, 0.5, 0)
	wing := NewPart(geom.NewCube(1), 1, 0.5, 0)
	attach := lin.NewT()
	attach.SetLoc(1, 0, 0)
	err := main.Attach(wing, attach)
	assert.NoError(t, err)

	phys := main.Physical()
	assert.InDelta(t, 2.0, phys.TotalMass, 1e-9)
}

func TestApplyForceAtCenterOfMassAccelerates(t *testing.T) {
	part := NewPart(geom.NewCube(1), 1, 0.5, 0)
	phys := part.EnsureHasParent()

	phys.ApplyForceAtCenterOfMass(lin.V3{X: 0, Y: -10, Z: 0})
	phys.Update(1.0 / 120)

	assert.InDelta(t, -10.0/120, phys.Motion.Velocity.Y, 1e-9)
}

func TestFreeFallMatchesConstantAcceleration(t *testing.T) {
	// Scenario 1: box(1x1x1, density 1) at (0,10,0), gravity (0,-10,0).
	// After 1s at dt=1/120: y ~= 5.0, vy ~= -10.0.
	world := NewWorld(lin.V3{X: 0, Y: -10, Z: 0})
	box := NewPart(geom.NewCube(1), 1, 0.5, 0.2)
	frame := lin.NewT()
	frame.SetLoc(0, 10, 0)
	box.SetCFrame(frame)
	phys := world.AddPart(box)

	for i := 0; i < 120; i++ {
		world.tick(1.0 / 120)
	}

	assert.InDelta(t, 5.0, phys.CFrame.Loc.Y, 0.01)
	assert.InDelta(t, -10.0, phys.Motion.Velocity.Y, 0.01)
}

func TestChildFrameRelativeToParentFollowsMotor(t *testing.T) {
	// Scenario 2: cylinder main + cylinder child on a ConstantSpeedMotor(1.0).
	// Steady-state angular velocity of the child relative to main is exactly
	// (0,0,1.0).
	world := NewWorld(lin.V3{})
	main := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)

	childPhys, err := main.AttachWithConstraint(child, NewMotorConstraint(1.0), lin.NewT(), lin.NewT())
	assert.NoError(t, err)
	world.AddPart(main)

	for i := 0; i < 20; i++ {
		world.tick(0.05)
	}

	rel := childPhys.ParentConstraint().RelativeMotion()
	assert.InDelta(t, 1.0, rel.AngularVelocity.Z, 1e-9)
}
