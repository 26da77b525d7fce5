package phy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/bounds"
	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func cubeAt(x, y, z float64) *Part {
	p := NewPart(geom.NewCube(1), 1, 0.5, 0.2)
	frame := lin.NewT()
	frame.SetLoc(x, y, z)
	p.SetCFrame(frame)
	return p
}

func TestWorldBoundsMatchesLocalAABBTranslated(t *testing.T) {
	part := cubeAt(5, 0, 0)
	box := worldBounds(part)
	assert.InDelta(t, 4.5, box.Min.X, 1e-9)
	assert.InDelta(t, 5.5, box.Max.X, 1e-9)
}

func TestNarrowPhaseDetectsOverlappingCubes(t *testing.T) {
	a := cubeAt(0, 0, 0)
	b := cubeAt(0.5, 0, 0)
	var tele Telemetry

	contact, hit := narrowPhase(a, b, &tele)
	assert.True(t, hit)
	assert.InDelta(t, 0.5, contact.Depth, 1e-6)
	assert.Equal(t, uint64(1), tele.GJKCollides)
	assert.Equal(t, uint64(1), tele.EPA)
}

func TestNarrowPhaseMissesSeparatedCubes(t *testing.T) {
	a := cubeAt(0, 0, 0)
	b := cubeAt(10, 0, 0)
	var tele Telemetry

	_, hit := narrowPhase(a, b, &tele)
	assert.False(t, hit)
	assert.Equal(t, uint64(1), tele.GJKNoCollides)
}

func TestBroadPhasePairsFindsOnlyOverlappingLeaves(t *testing.T) {
	tree := bounds.New()
	near1 := cubeAt(0, 0, 0)
	near2 := cubeAt(0.5, 0, 0)
	far := cubeAt(100, 0, 0)

	for _, p := range []*Part{near1, near2, far} {
		tree.Add(worldBounds(p), p)
	}

	pairs := broadPhasePairs(tree, []*Part{near1, near2, far})
	assert.Len(t, pairs, 1)
}

func TestCollideProducesOneContactForTwoOverlappingParts(t *testing.T) {
	tree := bounds.New()
	a := cubeAt(0, 0, 0)
	b := cubeAt(0.5, 0, 0)
	tree.Add(worldBounds(a), a)
	tree.Add(worldBounds(b), b)

	var tele Telemetry
	contacts := collide(tree, []*Part{a, b}, &tele)
	assert.Len(t, contacts, 1)
}
