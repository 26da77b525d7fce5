package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func TestTickerDrainsWholeStepsOnly(t *testing.T) {
	world := NewWorld(lin.V3{})
	ticker := NewTicker(world, 100) // dt = 0.01

	world.Age = 0
	ticker.RunTick(0.035) // 3 whole steps, 0.005s left over
	assert.Equal(t, uint64(3), world.Age)

	ticker.RunTick(0.005) // completes the 4th step
	assert.Equal(t, uint64(4), world.Age)
}

func TestTickerClampsToSkipThreshold(t *testing.T) {
	world := NewWorld(lin.V3{})
	ticker := NewTicker(world, 100, WithTickSkipThreshold(0.05)) // dt = 0.01

	ticker.RunTick(10.0) // far beyond the threshold; excess is discarded
	assert.Equal(t, uint64(5), world.Age)
}

func TestTickerStopSkipsTicks(t *testing.T) {
	world := NewWorld(lin.V3{})
	ticker := NewTicker(world, 100)
	ticker.Stop()

	ticker.RunTick(1.0) // paused: a single step, the 1.0s backlog is skipped
	assert.Equal(t, uint64(1), world.Age)
	assert.True(t, ticker.IsPaused())
}

func TestTickerSpeedScalesElapsedTime(t *testing.T) {
	world := NewWorld(lin.V3{})
	ticker := NewTicker(world, 100) // dt = 0.01
	ticker.SetSpeed(2.0)

	ticker.RunTick(0.01) // scaled to 0.02s of sim time: 2 steps
	assert.Equal(t, uint64(2), world.Age)
	assert.Equal(t, 2.0, ticker.GetSpeed())
}

func TestRunTickIntegratesAFreeFallingPart(t *testing.T) {
	world := NewWorld(lin.V3{X: 0, Y: -10, Z: 0})
	box := NewPart(geom.NewCube(1), 1, 0.5, 0)
	phys := world.AddPart(box)

	ticker := NewTicker(world, 120)
	ticker.RunTick(1.0) // clamped to the 0.2s default skip threshold: 24 steps

	assert.InDelta(t, -2.0, phys.Motion.Velocity.Y, 0.1)
}
