package phy

import (
	"log/slog"
	"sync"

	"github.com/gazed/physics/bounds"
	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

// Logger is the host-supplied logging sink named in the base spec's §6
// core-consumed API. Defaults to slog.Default(). Nothing in phy writes to
// it: invariant violations panic and are not recovered, and the narrow
// phase's EPA non-convergence warning goes to slog's default logger on
// every occurrence.
var Logger = slog.Default()

// ExternalForce is a per-tick force contributor applied to every
// MotorizedPhysical in a World — a registered tagged union per §3/§9's
// design notes, so a host can add more than the builtin DirectionalGravity
// (grounded on original_source/physics/misc/serialization.cpp's
// serializeDirectionalGravity / dynamicExternalForceSerializer pattern).
type ExternalForce interface {
	// Apply adds this contributor's force (and, if any, moment) to phys's
	// accumulator for the coming integration step.
	Apply(phys *Physical)
	Tag() uint32
}

// DirectionalGravity applies mass*Gravity as a force at each Physical's
// center of mass every tick — the only builtin ExternalForce, matching
// the base spec's §4.8 "directional gravity adds M·g at each COM".
type DirectionalGravity struct {
	Gravity lin.V3
}

func (g DirectionalGravity) Apply(phys *Physical) {
	var f lin.V3
	f.Scale(&g.Gravity, phys.TotalMass)
	phys.ApplyForceAtCenterOfMass(f)
}

func (DirectionalGravity) Tag() uint32 { return externalForceTagDirectionalGravity }

const externalForceTagDirectionalGravity uint32 = 0

// World owns every simulated Physical, every non-simulated terrain Part,
// the broad-phase BoundsTree, the external-force list, the soft-constraint
// groups, and the monotonic tick age. Grounded on the base spec's §4.8
// contract and on the teacher's eng.go for the "one owner of everything
// simulated" shape (there eng owns Pov/Camera/Scene; here World owns
// Physical/Part/BoundsTree).
type World struct {
	physicals []*Physical // one entry per MotorizedPhysical root
	terrain   []*Part

	tree *bounds.Tree
	// handles mirrors which Part (MainPart or Attached, or a terrain Part)
	// backs each BoundsTree leaf, keyed by Part.ID, so RemovePart can find
	// and remove every leaf that Part contributed.
	handles map[string]bounds.Handle

	externalForces []ExternalForce
	groups         []*ConstraintGroup

	Age uint64

	Telemetry Telemetry
	solver    solverInfo

	// gateMu/gateCond implement asyncModification/asyncReadOnlyOperation:
	// callers block on gateCond until the simulation thread is between
	// ticks, per §5's "suspension only between ticks". No third-party
	// concurrency library appears anywhere in the retrieval pack, so this
	// is implemented directly on stdlib sync, per DESIGN.md.
	gateMu   sync.Mutex
	gateCond *sync.Cond
	ticking  bool
}

// NewWorld returns an empty World with the given gravity vector as its
// sole builtin external force. Seals the process-wide ShapeClass registry
// on first call, per the design note that registry mutation during
// simulation is forbidden.
func NewWorld(gravity lin.V3) *World {
	geom.SealShapeClassRegistry()
	w := &World{
		tree:           bounds.New(),
		handles:        make(map[string]bounds.Handle),
		externalForces: []ExternalForce{DirectionalGravity{Gravity: gravity}},
		solver:         defaultSolverInfo,
	}
	w.gateCond = sync.NewCond(&w.gateMu)
	return w
}

// AddExternalForce registers an additional force contributor, applied to
// every Physical from the next tick onward.
func (w *World) AddExternalForce(f ExternalForce) {
	w.externalForces = append(w.externalForces, f)
}

// AddConstraintGroup registers a group of soft constraints, solved once
// per tick in World.tick's step 4.
func (w *World) AddConstraintGroup(g *ConstraintGroup) {
	w.groups = append(w.groups, g)
}

// AddPart wraps part in a fresh MotorizedPhysical unless it already has an
// owning Physical, registers every member Part's bounds in the BoundsTree,
// and adds the resulting root to the simulated set. Matches §4.8's
// addPart(part, isPinned=false) (isPinned is not part of this rework's
// scope — an always-static Part belongs in terrain instead).
func (w *World) AddPart(part *Part) *Physical {
	phys := part.EnsureHasParent()
	w.addPhysicalLeaves(phys.Root())
	w.physicals = append(w.physicals, phys.Root())
	phys.Root().world = w
	return phys.Root()
}

func (w *World) addPhysicalLeaves(phys *Physical) {
	w.addLeaf(phys.MainPart)
	for _, part := range phys.Attached {
		w.addLeaf(part)
	}
	for _, child := range phys.Children {
		w.addPhysicalLeaves(child)
	}
}

func (w *World) addLeaf(part *Part) {
	h := w.tree.Add(worldBounds(part), part)
	w.handles[part.ID.String()] = h
}

// AddTerrainPart registers part as a non-simulated collider: it
// participates in collision but never moves and is never owned by a
// Physical. An invariant violation if part is already attached to a
// Physical — Open Question (a), resolved per DESIGN.md.
func (w *World) AddTerrainPart(part *Part) {
	if part.physical != nil {
		invariantf("addTerrainPart: part %s already belongs to a Physical", part.ID)
	}
	w.terrain = append(w.terrain, part)
	w.addLeaf(part)
}

// RemovePart detaches part from its owning Physical (re-rooting the
// remainder of the tree at part's old Physical, per original_source's
// Physical::makeMainPart supplement in §12) and removes every BoundsTree
// leaf it contributed. A Misuse error if part is not currently in the
// World.
func (w *World) RemovePart(part *Part) error {
	if h, ok := w.handles[part.ID.String()]; ok {
		w.tree.Remove(h)
		delete(w.handles, part.ID.String())
	} else {
		return misusef("removePart: part %s is not in this World", part.ID)
	}

	if part.physical == nil {
		w.removeTerrain(part)
		return nil
	}
	phys := part.physical
	if phys.MainPart == part {
		w.removePhysicalRoot(phys)
		return nil
	}
	for i, attached := range phys.Attached {
		if attached == part {
			phys.Attached = append(phys.Attached[:i], phys.Attached[i+1:]...)
			part.physical = nil
			part.attached = false
			phys.refresh()
			phys.root.refreshTotals()
			return nil
		}
	}
	return misusef("removePart: part %s not found on its Physical", part.ID)
}

func (w *World) removeTerrain(part *Part) {
	for i, t := range w.terrain {
		if t == part {
			w.terrain = append(w.terrain[:i], w.terrain[i+1:]...)
			return
		}
	}
}

func (w *World) removePhysicalRoot(phys *Physical) {
	for i, p := range w.physicals {
		if p == phys {
			w.physicals = append(w.physicals[:i], w.physicals[i+1:]...)
			return
		}
	}
}

// AllParts returns every Part currently in the World (simulated and
// terrain), for read-only host iteration per §6's "Read-only iteration of
// Parts and Physicals (for rendering)".
func (w *World) AllParts() []*Part {
	var out []*Part
	for _, phys := range w.physicals {
		collectParts(phys, &out)
	}
	out = append(out, w.terrain...)
	return out
}

func collectParts(phys *Physical, out *[]*Part) {
	*out = append(*out, phys.MainPart)
	*out = append(*out, phys.Attached...)
	for _, child := range phys.Children {
		collectParts(child, out)
	}
}

// Physicals returns every MotorizedPhysical root currently in the World,
// for read-only host iteration.
func (w *World) Physicals() []*Physical { return w.physicals }

// tick advances the World by one fixed step dt, in the exact 6-step order
// named in §4.8: age, external forces, broad+narrow+resolve, constraint
// groups, integrate, tree refresh. Ordering within a tick matches §5:
// external forces → broad → narrow → soft-constraint impulse → integrate
// → tree-refresh.
func (w *World) tick(dt float64) {
	w.beginTick()
	defer w.endTick()

	// 1. Age advances by 1.
	w.Age++

	// 2. External force contributors.
	for _, phys := range w.physicals {
		for _, f := range w.externalForces {
			f.Apply(phys)
		}
	}

	// 3. Broad+narrow phase, then impulse resolution.
	contacts := collide(w.tree, w.AllParts(), &w.Telemetry)
	resolveContacts(contacts, w.solver)

	// 4. Each ConstraintGroup solved once.
	for _, g := range w.groups {
		g.solve()
	}

	// 5. Each MotorizedPhysical integrates.
	for _, phys := range w.physicals {
		phys.Update(dt)
	}

	// 6. BoundsTree leaf bounds refreshed for every moved Part.
	for _, part := range w.AllParts() {
		if h, ok := w.handles[part.ID.String()]; ok {
			w.tree.Update(h, worldBounds(part))
		}
	}
	w.tree.ImproveStructure()
}

// beginTick/endTick bracket the uninterruptible tick body, per §5's "a
// tick is uninterruptible" — asyncModification/asyncReadOnlyOperation
// block on gateCond while ticking is true.
func (w *World) beginTick() {
	w.gateMu.Lock()
	w.ticking = true
	w.gateMu.Unlock()
}

func (w *World) endTick() {
	w.gateMu.Lock()
	w.ticking = false
	w.gateCond.Broadcast()
	w.gateMu.Unlock()
}

// asyncModification runs f on the calling goroutine once the simulation
// thread is between ticks, blocking any tick from starting until f
// returns. This is the only mutation path observers may use, per §4.8.
func (w *World) asyncModification(f func()) {
	w.gateMu.Lock()
	for w.ticking {
		w.gateCond.Wait()
	}
	defer w.gateMu.Unlock()
	f()
}

// asyncReadOnlyOperation runs f at the tick boundary with a consistent
// snapshot of the World, per §5's "runs f with a consistent snapshot...
// and then resumes". Implemented identically to asyncModification: both
// gate on the same tick boundary, the distinction is a documentation-level
// promise to the caller about what f may do, not a different lock
// discipline.
func (w *World) asyncReadOnlyOperation(f func()) {
	w.asyncModification(f)
}

// solve resolves every soft constraint in the group by the impulse rule
// named in §4.5/§4.8: drive the relative velocity of the two attach points
// to zero, same sequential-impulse structure as the contact resolver.
func (g *ConstraintGroup) solve() {
	for _, pc := range g.Constraints {
		switch c := pc.Constraint.(type) {
		case *BallConstraint:
			solveBallConstraint(pc.PhysA, pc.PhysB, c)
		default:
			invariantf("constraint group: unknown SoftConstraint tag %d", pc.Constraint.Tag())
		}
	}
}

func solveBallConstraint(physA, physB *Physical, c *BallConstraint) {
	pointA := localToWorld(physA, c.AttachA)
	pointB := localToWorld(physB, c.AttachB)

	velA := physA.GetVelocityOfPoint(pointA)
	velB := physB.GetVelocityOfPoint(pointB)
	var relVel lin.V3
	relVel.Sub(&velB, &velA)

	// Baumgarte-corrected position error folds the two attach points'
	// separation back towards zero over a few ticks rather than instantly,
	// avoiding the velocity spike a single-tick full correction would add.
	var posError lin.V3
	posError.Sub(&pointB, &pointA)
	const ballErp = 0.2
	var bias lin.V3
	bias.Scale(&posError, -ballErp)

	var target lin.V3
	target.Add(&relVel, &bias)

	for axis := 0; axis < 3; axis++ {
		var dir lin.V3
		switch axis {
		case 0:
			dir = lin.V3{X: 1}
		case 1:
			dir = lin.V3{Y: 1}
		case 2:
			dir = lin.V3{Z: 1}
		}
		effMassA := effectiveMass(physA, pointA, dir)
		effMassB := effectiveMass(physB, pointB, dir)
		effMass := 1 / (invOrZero(effMassA) + invOrZero(effMassB))
		impulse := -target.Dot(&dir) * effMass

		var j, negJ lin.V3
		j.Scale(&dir, impulse)
		negJ.Scale(&j, -1)
		physA.ApplyImpulse(pointA, negJ)
		physB.ApplyImpulse(pointB, j)
	}
}

// localToWorld converts a point expressed in phys's own MainPart-local
// space (not necessarily the tree root's) to world space, matching how
// BallConstraint.AttachPoints documents its two offsets.
func localToWorld(phys *Physical, local lin.V3) lin.V3 {
	out := local
	return *phys.CFrame.App(&out)
}
