package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.AABB {
	return geom.AABB{
		Min: lin.V3{X: minX, Y: minY, Z: minZ},
		Max: lin.V3{X: maxX, Y: maxY, Z: maxZ},
	}
}

func TestAddAndLen(t *testing.T) {
	tr := New()
	assert.Equal(t, 0, tr.Len())
	h1 := tr.Add(box(0, 0, 0, 1, 1, 1), "a")
	h2 := tr.Add(box(5, 5, 5, 6, 6, 6), "b")
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, "a", tr.Object(h1))
	assert.Equal(t, "b", tr.Object(h2))
}

func TestRemoveCollapsesToSingleChild(t *testing.T) {
	tr := New()
	h1 := tr.Add(box(0, 0, 0, 1, 1, 1), "a")
	h2 := tr.Add(box(1, 1, 1, 2, 2, 2), "b")
	_ = tr.Add(box(10, 10, 10, 11, 11, 11), "c")
	tr.Remove(h2)
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, "a", tr.Object(h1))
}

func TestRemoveAllEmptiesTree(t *testing.T) {
	tr := New()
	h := tr.Add(box(0, 0, 0, 1, 1, 1), "only")
	tr.Remove(h)
	assert.Equal(t, 0, tr.Len())
}

func TestUpdateChangesBounds(t *testing.T) {
	tr := New()
	h := tr.Add(box(0, 0, 0, 1, 1, 1), "a")
	tr.Update(h, box(100, 100, 100, 101, 101, 101))
	b := tr.Bounds(h)
	assert.InDelta(t, 100.0, b.Min.X, 1e-9)
}

func TestFilteredIteratorFindsOverlapping(t *testing.T) {
	tr := New()
	tr.Add(box(0, 0, 0, 1, 1, 1), "near")
	tr.Add(box(50, 50, 50, 51, 51, 51), "far")

	query := box(-1, -1, -1, 2, 2, 2)
	found := map[string]bool{}
	for it := tr.Iter(FilterFunc(func(b geom.AABB) bool { return b.Overlaps(query) })); ; {
		obj, _, ok := it.Value()
		if !ok {
			break
		}
		found[obj.(string)] = true
		if !it.Next() {
			break
		}
	}
	assert.True(t, found["near"])
	assert.False(t, found["far"])
}

func TestFilteredIteratorEmptyTree(t *testing.T) {
	tr := New()
	it := tr.Iter(FilterFunc(func(geom.AABB) bool { return true }))
	_, _, ok := it.Value()
	assert.False(t, ok)
}

func TestImproveStructureIsStable(t *testing.T) {
	tr := New()
	for i := 0; i < 20; i++ {
		f := float64(i)
		tr.Add(box(f, 0, 0, f+1, 1, 1), i)
	}
	before := tr.Len()
	tr.ImproveStructure()
	assert.Equal(t, before, tr.Len())
}
