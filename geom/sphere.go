package geom

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// sphereClass is the builtin sphere ShapeClass. A Shape built from
// sphereClass with a uniform scale (w,h,d equal) is a sphere of that
// diameter; a non-uniform scale yields an axis-aligned ellipsoid, matching
// the original engine's SphereClass generalized to the Shape (class, scale)
// split — the base spec allows non-uniform scale on any class, and an
// ellipsoid is the only sound reading of "scaled sphere".
type sphereClass struct{}

// SphereClass is the process-wide sphere ShapeClass singleton.
var SphereClass ShapeClass = sphereClass{}

func (sphereClass) Kind() ClassKind { return KindSphere }
func (sphereClass) Tag() uint32     { return tagSphere }

func semiAxes(scale lin.V3) (a, b, c float64) {
	return scale.X * 0.5, scale.Y * 0.5, scale.Z * 0.5
}

func (sphereClass) SupportPoint(scale lin.V3, dir lin.V3) (int, lin.V3) {
	a, b, c := semiAxes(scale)
	// Support mapping of an ellipsoid {x : (x/a)^2+(y/b)^2+(z/c)^2<=1} in
	// direction d is E^2 d / |E d|, where E = diag(a,b,c).
	ex, ey, ez := a*a*dir.X, b*b*dir.Y, c*c*dir.Z
	denom := math.Sqrt(a*a*dir.X*dir.X + b*b*dir.Y*dir.Y + c*c*dir.Z*dir.Z)
	if denom < lin.Epsilon {
		return -1, lin.V3{X: a, Y: 0, Z: 0}
	}
	return -1, lin.V3{X: ex / denom, Y: ey / denom, Z: ez / denom}
}

func (sphereClass) LocalBounds(scale lin.V3) AABB {
	a, b, c := semiAxes(scale)
	return AABB{Min: lin.V3{X: -a, Y: -b, Z: -c}, Max: lin.V3{X: a, Y: b, Z: c}}
}

func (sphereClass) MaxRadiusSq(scale lin.V3, center lin.V3) float64 {
	a, b, c := semiAxes(scale)
	maxSemi := math.Max(a, math.Max(b, c))
	offset := math.Sqrt(center.X*center.X + center.Y*center.Y + center.Z*center.Z)
	r := maxSemi + offset
	return r * r
}

func (sphereClass) Volume(scale lin.V3) float64 {
	a, b, c := semiAxes(scale)
	return (4.0 / 3.0) * math.Pi * a * b * c
}

func (sphereClass) LocalCenterOfMass(scale lin.V3) lin.V3 {
	return lin.V3{}
}

func (sphereClass) LocalInertia(mass float64, scale lin.V3) lin.SymmetricMat3 {
	a, b, c := semiAxes(scale)
	a2, b2, c2 := a*a, b*b, c*c
	k := mass / 5
	return lin.SymmetricMat3{
		Xx: k * (b2 + c2),
		Yy: k * (a2 + c2),
		Zz: k * (a2 + b2),
	}
}

// sphereLatBands/Segs control the coarseness of the UV-sphere mesh used for
// AsPolyhedron. Only used for manifold fallback and debug/render hand-off,
// never for the narrow phase, so a coarse mesh is sufficient.
const (
	sphereLatBands = 8
	sphereLongSegs = 12
)

func (sphereClass) AsPolyhedron(scale lin.V3) Polyhedron {
	a, b, c := semiAxes(scale)
	var verts []lin.V3
	for lat := 0; lat <= sphereLatBands; lat++ {
		theta := math.Pi * float64(lat) / float64(sphereLatBands)
		st, ct := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= sphereLongSegs; lon++ {
			phi := 2 * math.Pi * float64(lon) / float64(sphereLongSegs)
			sp, cp := math.Sin(phi), math.Cos(phi)
			verts = append(verts, lin.V3{X: a * st * cp, Y: b * ct, Z: c * st * sp})
		}
	}
	var tris []Triangle
	stride := sphereLongSegs + 1
	for lat := 0; lat < sphereLatBands; lat++ {
		for lon := 0; lon < sphereLongSegs; lon++ {
			i0 := lat*stride + lon
			i1 := i0 + stride
			tris = append(tris, Triangle{i0, i1, i0 + 1})
			tris = append(tris, Triangle{i0 + 1, i1, i1 + 1})
		}
	}
	return Polyhedron{Vertices: verts, Triangles: tris}
}

func (sphereClass) ContainsPoint(scale lin.V3, p lin.V3) bool {
	a, b, c := semiAxes(scale)
	if a < lin.Epsilon || b < lin.Epsilon || c < lin.Epsilon {
		return false
	}
	nx, ny, nz := p.X/a, p.Y/b, p.Z/c
	return nx*nx+ny*ny+nz*nz <= 1
}
