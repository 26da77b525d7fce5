package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
	"github.com/gazed/physics/phy"
)

func TestRoundTripFreeBodyAndTerrain(t *testing.T) {
	world := phy.NewWorld(lin.V3{X: 0, Y: -10, Z: 0})

	box := phy.NewPart(geom.NewCube(1), 1, 0.5, 0.2)
	frame := lin.NewT()
	frame.SetLoc(0, 10, 0)
	box.SetCFrame(frame)
	phys := world.AddPart(box)
	phys.Motion.Velocity = lin.V3{X: 1, Y: 2, Z: 3}

	ground := phy.NewPart(geom.NewCube(100), 0, 1, 0)
	world.AddTerrainPart(ground)

	var buf bytes.Buffer
	require.NoError(t, Write(world, &buf))

	loaded, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, world.Age, loaded.Age)
	require.Len(t, loaded.Physicals(), 1)
	require.Len(t, loaded.Terrain(), 1)

	loadedPhys := loaded.Physicals()[0]
	assert.InDelta(t, 0.0, loadedPhys.CFrame.Loc.X, 1e-9)
	assert.InDelta(t, 10.0, loadedPhys.CFrame.Loc.Y, 1e-9)
	assert.InDelta(t, 1.0, loadedPhys.Motion.Velocity.X, 1e-9)
	assert.InDelta(t, 3.0, loadedPhys.Motion.Velocity.Z, 1e-9)
}

func TestRoundTripArticulatedMotor(t *testing.T) {
	world := phy.NewWorld(lin.V3{})

	main := phy.NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := phy.NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	motor := phy.NewMotorConstraint(1.5)
	motor.CurrentAngle = 0.75

	_, err := main.AttachWithConstraint(child, motor, lin.NewT(), lin.NewT())
	require.NoError(t, err)
	world.AddPart(main)

	var buf bytes.Buffer
	require.NoError(t, Write(world, &buf))

	loaded, err := Read(&buf)
	require.NoError(t, err)

	root := loaded.Physicals()[0]
	require.Len(t, root.Children, 1)
	loadedChild := root.Children[0]

	motorConstraint, ok := loadedChild.ParentConstraint().(*phy.ConstantSpeedMotorConstraint)
	require.True(t, ok)
	assert.InDelta(t, 1.5, motorConstraint.Speed, 1e-9)
	assert.InDelta(t, 0.75, motorConstraint.CurrentAngle, 1e-9)
}

func TestRoundTripRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, buf.WriteByte(0xFF))
	require.NoError(t, buf.WriteByte(0xFF))
	require.NoError(t, buf.WriteByte(0xFF))
	require.NoError(t, buf.WriteByte(0xFF))

	_, err := Read(&buf)
	assert.Error(t, err)
}
