package geom

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// PolyhedronShapeClass is a host-defined convex hull, normalized so its
// vertices fit within the [-0.5,0.5]^3 unit box — a Shape's (w,h,d) scale
// then stretches it per axis exactly like the builtin box. Grounded on the
// original engine's PolyhedronShapeClass/deserializePolyhedronShapeClass:
// the wire format is a flat vertex list plus a triangle index list.
type PolyhedronShapeClass struct {
	tag  uint32
	mesh Polyhedron
}

// NewPolyhedronShapeClass builds a polyhedron class from a convex vertex
// hull and its triangulation, both already expressed in the class's own
// unnormalized coordinates, and registers it with the global registry,
// returning the usable class and its serialization tag. verts/tris are
// copied so later caller mutation cannot corrupt the registered class.
func NewPolyhedronShapeClass(verts []lin.V3, tris []Triangle) (*PolyhedronShapeClass, uint32) {
	normVerts := normalizeToUnitBox(verts)
	mesh := Polyhedron{
		Vertices:  normVerts,
		Triangles: append([]Triangle(nil), tris...),
	}
	pc := &PolyhedronShapeClass{mesh: mesh}
	pc.tag = RegisterShapeClass(pc)
	return pc, pc.tag
}

func normalizeToUnitBox(verts []lin.V3) []lin.V3 {
	if len(verts) == 0 {
		return nil
	}
	min, max := verts[0], verts[0]
	for _, v := range verts[1:] {
		min.X, max.X = math.Min(min.X, v.X), math.Max(max.X, v.X)
		min.Y, max.Y = math.Min(min.Y, v.Y), math.Max(max.Y, v.Y)
		min.Z, max.Z = math.Min(min.Z, v.Z), math.Max(max.Z, v.Z)
	}
	cx, cy, cz := (min.X+max.X)/2, (min.Y+max.Y)/2, (min.Z+max.Z)/2
	ex, ey, ez := max.X-min.X, max.Y-min.Y, max.Z-min.Z
	if ex < lin.Epsilon {
		ex = 1
	}
	if ey < lin.Epsilon {
		ey = 1
	}
	if ez < lin.Epsilon {
		ez = 1
	}
	out := make([]lin.V3, len(verts))
	for i, v := range verts {
		out[i] = lin.V3{X: (v.X - cx) / ex, Y: (v.Y - cy) / ey, Z: (v.Z - cz) / ez}
	}
	return out
}

func (pc *PolyhedronShapeClass) Kind() ClassKind { return KindPolyhedron }
func (pc *PolyhedronShapeClass) Tag() uint32     { return pc.tag }

func scalePoint(v lin.V3, scale lin.V3) lin.V3 {
	return lin.V3{X: v.X * scale.X, Y: v.Y * scale.Y, Z: v.Z * scale.Z}
}

func (pc *PolyhedronShapeClass) SupportPoint(scale lin.V3, dir lin.V3) (int, lin.V3) {
	best := -1
	bestDot := math.Inf(-1)
	var bestPt lin.V3
	for i, v := range pc.mesh.Vertices {
		p := scalePoint(v, scale)
		d := p.X*dir.X + p.Y*dir.Y + p.Z*dir.Z
		if d > bestDot {
			bestDot, best, bestPt = d, i, p
		}
	}
	return best, bestPt
}

func (pc *PolyhedronShapeClass) LocalBounds(scale lin.V3) AABB {
	if len(pc.mesh.Vertices) == 0 {
		return AABB{}
	}
	min := scalePoint(pc.mesh.Vertices[0], scale)
	max := min
	for _, v := range pc.mesh.Vertices[1:] {
		p := scalePoint(v, scale)
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	return AABB{Min: min, Max: max}
}

func (pc *PolyhedronShapeClass) MaxRadiusSq(scale lin.V3, center lin.V3) float64 {
	best := 0.0
	for _, v := range pc.mesh.Vertices {
		p := scalePoint(v, scale)
		dx, dy, dz := p.X-center.X, p.Y-center.Y, p.Z-center.Z
		d := dx*dx + dy*dy + dz*dz
		if d > best {
			best = d
		}
	}
	return best
}

// massProperties sums the volume, center of mass and inertia contributions
// of the signed tetrahedra (origin, a, b, c) formed by each triangle. Ported from the polyhedron mass integration used by
// convex-hull colliders in the teacher's collider.go, generalized from a
// single mesh-wide call to scaled-on-demand evaluation.
func massProperties(verts []lin.V3, tris []Triangle) (volume float64, com lin.V3, inertia lin.SymmetricMat3) {
	for _, t := range tris {
		a, b, c := verts[t.A], verts[t.B], verts[t.C]
		// signed volume of tetrahedron (origin,a,b,c) * 6
		det := a.X*(b.Y*c.Z-b.Z*c.Y) - a.Y*(b.X*c.Z-b.Z*c.X) + a.Z*(b.X*c.Y-b.Y*c.X)
		vol6 := det
		volume += vol6 / 6

		cx := (a.X + b.X + c.X) / 4
		cy := (a.Y + b.Y + c.Y) / 4
		cz := (a.Z + b.Z + c.Z) / 4
		com.X += vol6 / 6 * cx
		com.Y += vol6 / 6 * cy
		com.Z += vol6 / 6 * cz

		// Approximate covariance contribution using the tet's four points
		// (origin,a,b,c) — sufficiently accurate for a coarse convex hull's
		// inertia and avoids a full canonical-tetrahedron quadrature here.
		pts := [4]lin.V3{{}, a, b, c}
		for _, p := range pts {
			w := vol6 / 6 / 4
			inertia.Xx += w * (p.Y*p.Y + p.Z*p.Z)
			inertia.Yy += w * (p.X*p.X + p.Z*p.Z)
			inertia.Zz += w * (p.X*p.X + p.Y*p.Y)
			inertia.Xy -= w * p.X * p.Y
			inertia.Xz -= w * p.X * p.Z
			inertia.Yz -= w * p.Y * p.Z
		}
	}
	if volume < 0 {
		// Winding was inward-facing; flip the sign on every accumulated term.
		volume = -volume
		com.X, com.Y, com.Z = -com.X, -com.Y, -com.Z
		inertia.Xx, inertia.Yy, inertia.Zz = -inertia.Xx, -inertia.Yy, -inertia.Zz
		inertia.Xy, inertia.Xz, inertia.Yz = -inertia.Xy, -inertia.Xz, -inertia.Yz
	}
	if volume > lin.Epsilon {
		com.X, com.Y, com.Z = com.X/volume, com.Y/volume, com.Z/volume
	}
	return volume, com, inertia
}

func (pc *PolyhedronShapeClass) scaledMesh(scale lin.V3) []lin.V3 {
	out := make([]lin.V3, len(pc.mesh.Vertices))
	for i, v := range pc.mesh.Vertices {
		out[i] = scalePoint(v, scale)
	}
	return out
}

func (pc *PolyhedronShapeClass) Volume(scale lin.V3) float64 {
	vol, _, _ := massProperties(pc.scaledMesh(scale), pc.mesh.Triangles)
	return vol
}

func (pc *PolyhedronShapeClass) LocalCenterOfMass(scale lin.V3) lin.V3 {
	_, com, _ := massProperties(pc.scaledMesh(scale), pc.mesh.Triangles)
	return com
}

func (pc *PolyhedronShapeClass) LocalInertia(mass float64, scale lin.V3) lin.SymmetricMat3 {
	vol, com, inertia := massProperties(pc.scaledMesh(scale), pc.mesh.Triangles)
	if vol < lin.Epsilon {
		return lin.SymmetricMat3{}
	}
	density := mass / vol
	inertia.Scale(&inertia, density)
	// Inertia accumulated about the origin; shift to be about the center of
	// mass via the parallel axis theorem term (skewSymmetricSquared(r) =
	// r*r^T - |r|^2*I, the negative of the usual r-term, so it is added
	// here rather than subtracted — see physical.cpp's aggregation step).
	var offset lin.SymmetricMat3
	lin.SkewSymmetricSquared(&offset, &com)
	offset.Scale(&offset, mass)
	inertia.Add(&inertia, &offset)
	return inertia
}

func (pc *PolyhedronShapeClass) AsPolyhedron(scale lin.V3) Polyhedron {
	return Polyhedron{Vertices: pc.scaledMesh(scale), Triangles: pc.mesh.Triangles}
}

func (pc *PolyhedronShapeClass) ContainsPoint(scale lin.V3, p lin.V3) bool {
	for i := range pc.mesh.Triangles {
		n := pc.AsPolyhedron(scale).FaceNormal(i)
		t := pc.mesh.Triangles[i]
		a := scalePoint(pc.mesh.Vertices[t.A], scale)
		d := n.X*(p.X-a.X) + n.Y*(p.Y-a.Y) + n.Z*(p.Z-a.Z)
		if d > lin.Epsilon {
			return false
		}
	}
	return true
}
