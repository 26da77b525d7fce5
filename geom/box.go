package geom

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// boxClass is the builtin box ShapeClass. A Shape built from boxClass with
// scale (w,h,d) is a rectangular prism of those full dimensions centered on
// the origin, matching the original engine's CubeClass.
type boxClass struct{}

// CubeClass is the process-wide box ShapeClass singleton.
var CubeClass ShapeClass = boxClass{}

func (boxClass) Kind() ClassKind { return KindBox }
func (boxClass) Tag() uint32     { return tagCube }

// boxCorner returns the i'th corner (i in [0,8)) as a ±0.5 octant sign.
func boxCorner(i int) (sx, sy, sz float64) {
	sx = -0.5
	if i&1 != 0 {
		sx = 0.5
	}
	sy = -0.5
	if i&2 != 0 {
		sy = 0.5
	}
	sz = -0.5
	if i&4 != 0 {
		sz = 0.5
	}
	return
}

func (boxClass) SupportPoint(scale lin.V3, dir lin.V3) (int, lin.V3) {
	index := 0
	if dir.X >= 0 {
		index |= 1
	}
	if dir.Y >= 0 {
		index |= 2
	}
	if dir.Z >= 0 {
		index |= 4
	}
	sx, sy, sz := boxCorner(index)
	return index, lin.V3{X: sx * scale.X, Y: sy * scale.Y, Z: sz * scale.Z}
}

func (boxClass) LocalBounds(scale lin.V3) AABB {
	hx, hy, hz := scale.X*0.5, scale.Y*0.5, scale.Z*0.5
	return AABB{Min: lin.V3{X: -hx, Y: -hy, Z: -hz}, Max: lin.V3{X: hx, Y: hy, Z: hz}}
}

func (boxClass) MaxRadiusSq(scale lin.V3, center lin.V3) float64 {
	best := 0.0
	for i := 0; i < 8; i++ {
		sx, sy, sz := boxCorner(i)
		dx := sx*scale.X - center.X
		dy := sy*scale.Y - center.Y
		dz := sz*scale.Z - center.Z
		d := dx*dx + dy*dy + dz*dz
		if d > best {
			best = d
		}
	}
	return best
}

func (boxClass) Volume(scale lin.V3) float64 {
	return scale.X * scale.Y * scale.Z
}

func (boxClass) LocalCenterOfMass(scale lin.V3) lin.V3 {
	return lin.V3{}
}

func (boxClass) LocalInertia(mass float64, scale lin.V3) lin.SymmetricMat3 {
	w2, h2, d2 := scale.X*scale.X, scale.Y*scale.Y, scale.Z*scale.Z
	k := mass / 12
	return lin.SymmetricMat3{
		Xx: k * (h2 + d2),
		Yy: k * (w2 + d2),
		Zz: k * (w2 + h2),
	}
}

func (boxClass) AsPolyhedron(scale lin.V3) Polyhedron {
	verts := make([]lin.V3, 8)
	for i := 0; i < 8; i++ {
		sx, sy, sz := boxCorner(i)
		verts[i] = lin.V3{X: sx * scale.X, Y: sy * scale.Y, Z: sz * scale.Z}
	}
	// Corner indices follow the sign-bit encoding: bit0=+X, bit1=+Y, bit2=+Z.
	tris := []Triangle{
		{0, 1, 3}, {0, 3, 2}, // -Z face
		{4, 6, 7}, {4, 7, 5}, // +Z face
		{0, 4, 5}, {0, 5, 1}, // -Y face
		{2, 3, 7}, {2, 7, 6}, // +Y face
		{0, 2, 6}, {0, 6, 4}, // -X face
		{1, 5, 7}, {1, 7, 3}, // +X face
	}
	return Polyhedron{Vertices: verts, Triangles: tris}
}

func (boxClass) ContainsPoint(scale lin.V3, p lin.V3) bool {
	return math.Abs(p.X) <= scale.X*0.5 && math.Abs(p.Y) <= scale.Y*0.5 && math.Abs(p.Z) <= scale.Z*0.5
}
