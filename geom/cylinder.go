package geom

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// cylinderClass is the builtin cylinder ShapeClass: a (possibly elliptical,
// under non-uniform scale) cylinder whose axis runs along local Y, radii
// along X and Z given by scale.X/2 and scale.Z/2, and height given by
// scale.Y. Matches the original engine's CylinderClass.
type cylinderClass struct{}

// CylinderClass is the process-wide cylinder ShapeClass singleton.
var CylinderClass ShapeClass = cylinderClass{}

func (cylinderClass) Kind() ClassKind { return KindCylinder }
func (cylinderClass) Tag() uint32     { return tagCylinder }

func cylinderDims(scale lin.V3) (rx, rz, halfH float64) {
	return scale.X * 0.5, scale.Z * 0.5, scale.Y * 0.5
}

func (cylinderClass) SupportPoint(scale lin.V3, dir lin.V3) (int, lin.V3) {
	rx, rz, halfH := cylinderDims(scale)
	horizLen := math.Sqrt(dir.X*dir.X + dir.Z*dir.Z)
	var px, pz float64
	if horizLen > lin.Epsilon {
		// Support of the ellipse {(x/rx)^2+(z/rz)^2<=1} in direction (dx,dz).
		ex, ez := rx*rx*dir.X, rz*rz*dir.Z
		denom := math.Sqrt(rx*rx*dir.X*dir.X + rz*rz*dir.Z*dir.Z)
		if denom > lin.Epsilon {
			px, pz = ex/denom, ez/denom
		}
	}
	py := -halfH
	if dir.Y >= 0 {
		py = halfH
	}
	return -1, lin.V3{X: px, Y: py, Z: pz}
}

func (cylinderClass) LocalBounds(scale lin.V3) AABB {
	rx, rz, halfH := cylinderDims(scale)
	return AABB{Min: lin.V3{X: -rx, Y: -halfH, Z: -rz}, Max: lin.V3{X: rx, Y: halfH, Z: rz}}
}

func (cylinderClass) MaxRadiusSq(scale lin.V3, center lin.V3) float64 {
	rx, rz, halfH := cylinderDims(scale)
	rimRadius := math.Max(rx, rz)
	corner := math.Sqrt(rimRadius*rimRadius + halfH*halfH)
	offset := math.Sqrt(center.X*center.X + center.Y*center.Y + center.Z*center.Z)
	r := corner + offset
	return r * r
}

func (cylinderClass) Volume(scale lin.V3) float64 {
	rx, rz, halfH := cylinderDims(scale)
	return math.Pi * rx * rz * (2 * halfH)
}

func (cylinderClass) LocalCenterOfMass(scale lin.V3) lin.V3 {
	return lin.V3{}
}

func (cylinderClass) LocalInertia(mass float64, scale lin.V3) lin.SymmetricMat3 {
	rx, rz, halfH := cylinderDims(scale)
	h := 2 * halfH
	rx2, rz2, h2 := rx*rx, rz*rz, h*h
	return lin.SymmetricMat3{
		Xx: mass * (3*rz2 + h2) / 12,
		Yy: mass * (rx2 + rz2) / 4,
		Zz: mass * (3*rx2 + h2) / 12,
	}
}

const cylinderSegs = 16

func (cylinderClass) AsPolyhedron(scale lin.V3) Polyhedron {
	rx, rz, halfH := cylinderDims(scale)
	verts := make([]lin.V3, 0, cylinderSegs*2+2)
	for i := 0; i < cylinderSegs; i++ {
		a := 2 * math.Pi * float64(i) / float64(cylinderSegs)
		x, z := rx*math.Cos(a), rz*math.Sin(a)
		verts = append(verts, lin.V3{X: x, Y: -halfH, Z: z})
	}
	for i := 0; i < cylinderSegs; i++ {
		a := 2 * math.Pi * float64(i) / float64(cylinderSegs)
		x, z := rx*math.Cos(a), rz*math.Sin(a)
		verts = append(verts, lin.V3{X: x, Y: halfH, Z: z})
	}
	bottomCenter := len(verts)
	verts = append(verts, lin.V3{X: 0, Y: -halfH, Z: 0})
	topCenter := len(verts)
	verts = append(verts, lin.V3{X: 0, Y: halfH, Z: 0})

	var tris []Triangle
	for i := 0; i < cylinderSegs; i++ {
		j := (i + 1) % cylinderSegs
		// side quad, two triangles
		tris = append(tris, Triangle{i, j, cylinderSegs + j})
		tris = append(tris, Triangle{i, cylinderSegs + j, cylinderSegs + i})
		// bottom fan (wound like the sides, so FaceNormal gives +Y, inward)
		tris = append(tris, Triangle{bottomCenter, j, i})
		// top fan (wound like the sides, so FaceNormal gives -Y, inward)
		tris = append(tris, Triangle{topCenter, cylinderSegs + i, cylinderSegs + j})
	}
	return Polyhedron{Vertices: verts, Triangles: tris}
}

func (cylinderClass) ContainsPoint(scale lin.V3, p lin.V3) bool {
	rx, rz, halfH := cylinderDims(scale)
	if math.Abs(p.Y) > halfH || rx < lin.Epsilon || rz < lin.Epsilon {
		return false
	}
	nx, nz := p.X/rx, p.Z/rz
	return nx*nx+nz*nz <= 1
}
