package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func TestCountPhysicalsMatchesTreeSize(t *testing.T) {
	main := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	childPhys, err := main.AttachWithConstraint(child, NewMotorConstraint(2.0), lin.NewT(), lin.NewT())
	require.NoError(t, err)

	assert.Equal(t, 2, CountPhysicals(childPhys.Root()))
}

func TestComputeInertiaDerivativesSingleBodyMatchesMotion(t *testing.T) {
	part := NewPart(geom.NewCube(1), 1, 0.5, 0)
	phys := part.EnsureHasParent()
	phys.Motion.Velocity = lin.V3{X: 1, Y: 2, Z: 3}
	phys.Motion.AngularVelocity = lin.V3{X: 0, Y: 0.5, Z: 0}

	scratch := NewInertiaDerivativeScratch(phys)
	deriv := phys.ComputeInertiaDerivatives(scratch)

	com := phys.WorldCenterOfMass()
	assert.InDelta(t, com.X, deriv.CenterOfMass.X, 1e-9)
	assert.InDelta(t, com.Y, deriv.CenterOfMass.Y, 1e-9)
	assert.InDelta(t, com.Z, deriv.CenterOfMass.Z, 1e-9)
	assert.InDelta(t, 1.0, deriv.CenterOfMassVelocity.X, 1e-9)
	assert.InDelta(t, 0.5, deriv.AngularVelocity.Y, 1e-9)

	// A single rigid body (no children) has no joint motion to contribute
	// internal angular momentum.
	assert.InDelta(t, 0.0, deriv.InternalAngularMomentum.LenSqr(), 1e-9)
}

func TestComputeInertiaDerivativesArticulatedMotorHasInternalMomentum(t *testing.T) {
	main := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	childPhys, err := main.AttachWithConstraint(child, NewMotorConstraint(2.0), lin.NewT(), lin.NewT())
	require.NoError(t, err)
	root := childPhys.Root()

	scratch := NewInertiaDerivativeScratch(root)
	deriv := root.ComputeInertiaDerivatives(scratch)

	com := root.WorldCenterOfMass()
	assert.InDelta(t, com.X, deriv.CenterOfMass.X, 1e-6)
	assert.InDelta(t, com.Y, deriv.CenterOfMass.Y, 1e-6)
	assert.InDelta(t, com.Z, deriv.CenterOfMass.Z, 1e-6)

	// The motor spins the child relative to main, so the child's angular
	// velocity differs from the root's and the subtree carries nonzero
	// internal angular momentum due to joint motion.
	assert.Greater(t, deriv.InternalAngularMomentum.LenSqr(), 0.0)
}

func TestComputeInertiaDerivativesPanicsOnUndersizedScratch(t *testing.T) {
	main := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	childPhys, err := main.AttachWithConstraint(child, NewMotorConstraint(1.0), lin.NewT(), lin.NewT())
	require.NoError(t, err)
	root := childPhys.Root()

	assert.Panics(t, func() {
		root.ComputeInertiaDerivatives(make(InertiaDerivativeScratch, 1))
	})
}

func TestPistonAccelerationMatchesVelocityDerivative(t *testing.T) {
	p := NewPistonConstraint(0, 1, 2.0)
	p.currentStepInPeriod = 0.3

	const h = 1e-6
	v0 := p.velocity()
	p.currentStepInPeriod += h
	v1 := p.velocity()
	p.currentStepInPeriod -= h

	numeric := (v1 - v0) / h
	assert.InDelta(t, numeric, p.acceleration(), 1e-4)
}

func TestPistonRelativeMotionPopulatesLinearAcceleration(t *testing.T) {
	p := NewPistonConstraint(0, 2, 1.0)
	p.currentStepInPeriod = 0.1

	rel := p.RelativeMotion()
	assert.InDelta(t, p.acceleration(), rel.LinearAcceleration.Z, 1e-9)
}
