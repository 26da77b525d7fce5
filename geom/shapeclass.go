package geom

import (
	"fmt"
	"sync"

	"github.com/gazed/physics/math/lin"
)

// ClassKind identifies which of the closed set of shape classes a
// ShapeClass value is. Per the design notes, ShapeClass is a closed-set
// tagged union — narrow phase only ever needs the support function, so no
// open-world extension point is provided for new kinds, only for new
// polyhedra data (see RegisterShapeClass).
type ClassKind int

const (
	KindBox ClassKind = iota
	KindSphere
	KindCylinder
	KindPolyhedron
)

// Triangle is a single triangle face, as three indices into a vertex list.
type Triangle struct {
	A, B, C int
}

// ShapeClass is an immutable, uniquely-addressable convex shape description.
// Per the base spec's data model: "ShapeClass is immutable and uniquely
// addressable — equality is reference equality on the class plus numerical
// equality on scale." Every method takes the Shape's (width, height, depth)
// scale explicitly — each class knows its own closed-form response to
// scaling (the "canonical stretch law" named in §4.2), which for box and
// cylinder is the standard closed-form inertia recomputed at the scaled
// dimensions rather than a generic congruence transform of the unit tensor.
type ShapeClass interface {
	Kind() ClassKind

	// Tag is the stable serialization identifier for this shape class.
	// Builtin classes have fixed well-known tags; dynamically registered
	// polyhedra get a tag assigned by RegisterShapeClass.
	Tag() uint32

	// SupportPoint returns the vertex index (or -1 if not applicable, e.g.
	// for a sphere) and the scaled point farthest along dir.
	SupportPoint(scale lin.V3, dir lin.V3) (index int, point lin.V3)

	LocalBounds(scale lin.V3) AABB
	MaxRadiusSq(scale lin.V3, center lin.V3) float64
	Volume(scale lin.V3) float64
	LocalCenterOfMass(scale lin.V3) lin.V3

	// LocalInertia returns the inertia tensor of a scaled instance of this
	// class with the given mass, about its local center of mass.
	LocalInertia(mass float64, scale lin.V3) lin.SymmetricMat3

	AsPolyhedron(scale lin.V3) Polyhedron
	ContainsPoint(scale lin.V3, p lin.V3) bool
}

// Polyhedron is a deterministic triangulation of a shape, used for contact
// manifold generation fallback and host-side rendering/debug hooks.
type Polyhedron struct {
	Vertices  []lin.V3
	Triangles []Triangle
}

// FaceNormal returns the unit normal (B-A)x(C-A) of triangle i. It points
// outward for a mesh wound counter-clockwise seen from outside; the
// builtin box, sphere and cylinder meshes are wound the other way, so for
// them it points inward.
func (p Polyhedron) FaceNormal(i int) lin.V3 {
	t := p.Triangles[i]
	var e1, e2, n lin.V3
	e1.Sub(&p.Vertices[t.B], &p.Vertices[t.A])
	e2.Sub(&p.Vertices[t.C], &p.Vertices[t.A])
	n.Cross(&e1, &e2)
	n.Unit()
	return n
}

// registry is the process-wide ShapeClass registry described by the base
// spec's §3/§9/§6: builtins are registered at init(); a host may add
// dynamically-defined polyhedra before constructing its first World.
// Mutation after that point is a misuse error, matching the "Serialization
// registry ... initialize once at process start" design note.
type registry struct {
	mu      sync.Mutex
	byTag   map[uint32]ShapeClass
	sealed  bool
	nextTag uint32
}

var globalRegistry = &registry{
	byTag:   make(map[uint32]ShapeClass),
	nextTag: 1, // 0 is reserved for the PolyhedronShapeClass dynamic tag in the wire format
}

const (
	tagCube     uint32 = 0xFFFFFFF0
	tagSphere   uint32 = 0xFFFFFFF1
	tagCylinder uint32 = 0xFFFFFFF2
)

func init() {
	globalRegistry.byTag[tagCube] = CubeClass
	globalRegistry.byTag[tagSphere] = SphereClass
	globalRegistry.byTag[tagCylinder] = CylinderClass
}

// RegisterShapeClass adds a host-defined ShapeClass (typically a
// PolyhedronShapeClass) to the global registry, assigning it a stable tag
// for serialization. Panics with a plain error if called after the
// registry has been sealed, or if the class is already registered.
func RegisterShapeClass(sc ShapeClass) uint32 {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if globalRegistry.sealed {
		panic(fmt.Errorf("geom: attempt to register ShapeClass after registry sealed: %w", errRegistrySealed))
	}
	for tag, existing := range globalRegistry.byTag {
		if existing == sc {
			panic(fmt.Errorf("geom: attempt to re-register ShapeClass with tag %d", tag))
		}
	}
	tag := globalRegistry.nextTag
	globalRegistry.nextTag++
	globalRegistry.byTag[tag] = sc
	return tag
}

// SealShapeClassRegistry prevents further registration. Called once by the
// first World constructed in a process (see phy.NewWorld).
func SealShapeClassRegistry() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.sealed = true
}

// LookupShapeClass resolves a tag to its ShapeClass, for deserialization.
// Returns false if the tag is unknown (a fatal deserialization error per
// the base spec's §6 "Unknown type tags are a fatal error").
func LookupShapeClass(tag uint32) (ShapeClass, bool) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	sc, ok := globalRegistry.byTag[tag]
	return sc, ok
}

var errRegistrySealed = fmt.Errorf("shape class registry is sealed")
