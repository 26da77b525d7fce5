package narrow

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/gazed/physics/math/lin"
)

type edge struct{ x, y uint32 }
type face struct{ x, y, z uint32 }

func polytopeFromSimplex(s simplex) (polytope []lin.V3, faces []face) {
	polytope = []lin.V3{s.a, s.b, s.c, s.d}
	faces = []face{
		{0, 1, 2}, // ABC
		{0, 2, 3}, // ACD
		{0, 3, 1}, // ADB
		{1, 2, 3}, // BCD
	}
	return polytope, faces
}

func faceNormalAndDistance(f face, polytope []lin.V3) (normal lin.V3, distance float64) {
	a, b, c := &polytope[f.x], &polytope[f.y], &polytope[f.z]

	var ab, ac, n lin.V3
	ab.Sub(b, a)
	ac.Sub(c, a)
	n.Cross(&ab, &ac)
	n.Unit()
	if n.X == 0 && n.Y == 0 && n.Z == 0 {
		return normal, 0
	}

	distance = n.Dot(a)
	switch {
	case distance < 0:
		n.Neg(&n)
		distance = -distance
	case distance == 0:
		found := false
		for i := range polytope {
			d := n.Dot(&polytope[i])
			if d != 0 {
				if d >= 0 {
					n.Neg(&n)
				}
				found = true
				break
			}
		}
		if !found {
			panic(fmt.Errorf("narrow: epa: degenerate polytope, all points coplanar"))
		}
	}
	return n, distance
}

func addEdge(edges []edge, e edge) []edge {
	for i, cur := range edges {
		if (e.x == cur.x && e.y == cur.y) || (e.x == cur.y && e.y == cur.x) {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, e)
}

func triangleCentroid(p1, p2, p3 lin.V3) (centroid lin.V3) {
	centroid.Add(&p2, &p3)
	centroid.Add(&centroid, &p1)
	centroid.Scale(&centroid, 1.0/3.0)
	return centroid
}

// maxEPAIterations bounds the polytope-expansion loop; 100 matches the
// teacher's epa().
const maxEPAIterations = 100

// epaEpsilon is how close a new support point's distance along the current
// best normal must be to that normal's face distance before EPA considers
// itself converged.
const epaEpsilon = 0.0001

// EPA expands the polytope from a GJK intersection's terminating simplex to
// recover the penetration normal and depth of a and b. Call only after
// Intersects has reported a hit with this exact simplex.
func EPA(a, b Supporter, s simplex) (normal lin.V3, penetration float64, ok bool) {
	polytope, faces := polytopeFromSimplex(s)

	var normals []lin.V3
	var distances []float64
	minNormal := lin.V3{}
	minDistance := math.MaxFloat64
	for _, f := range faces {
		n, d := faceNormalAndDistance(f, polytope)
		normals = append(normals, n)
		distances = append(distances, d)
		if d < minDistance {
			minDistance = d
			minNormal = n
		}
	}

	var edges []edge
	converged := false
	for it := 0; it < maxEPAIterations; it++ {
		support := supportOfMinkowskiDifference(a, b, minNormal)

		d := minNormal.Dot(&support)
		if math.Abs(d-minDistance) < epaEpsilon {
			normal = minNormal
			penetration = minDistance
			converged = true
			break
		}

		newIndex := uint32(len(polytope))
		polytope = append(polytope, support)

		for i := 0; i < len(normals); i++ {
			n, f := normals[i], faces[i]
			centroid := triangleCentroid(polytope[f.x], polytope[f.y], polytope[f.z])
			var toSupport lin.V3
			toSupport.Sub(&support, &centroid)
			if n.Dot(&toSupport) > 0.0 {
				edges = addEdge(edges, edge{f.x, f.y})
				edges = addEdge(edges, edge{f.y, f.z})
				edges = addEdge(edges, edge{f.z, f.x})

				faces = append(faces[:i], faces[i+1:]...)
				distances = append(distances[:i], distances[i+1:]...)
				normals = append(normals[:i], normals[i+1:]...)
				i--
			}
		}

		for _, e := range edges {
			nf := face{e.x, e.y, newIndex}
			faces = append(faces, nf)
			n, d := faceNormalAndDistance(nf, polytope)
			normals = append(normals, n)
			distances = append(distances, d)
		}

		minDistance = math.MaxFloat64
		for i, d := range distances {
			if d < minDistance {
				minDistance = d
				minNormal = normals[i]
			}
		}
		edges = edges[:0]
	}
	if !converged {
		slog.Warn("narrow: epa did not converge")
	}
	return normal, penetration, converged
}
