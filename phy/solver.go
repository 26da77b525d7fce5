package phy

import (
	"github.com/gazed/physics/math/lin"
)

// solverInfo carries the per-tick tunables the teacher's solver.go keeps on
// its solverInfo: iteration count and the Baumgarte stabilization term for
// leftover penetration.
type solverInfo struct {
	numIterations int
	erp           float64 // Baumgarte stabilization factor for penetration
	linearSlop    float64 // penetration allowed before ERP kicks in
}

var defaultSolverInfo = solverInfo{numIterations: 8, erp: 0.2, linearSlop: 0.005}

// contactConstraint is one contact's normal constraint plus its derived
// friction constraint, set up once per tick and iterated numIterations
// times. Grounded on the teacher's solverConstraint, simplified to use
// Physical.GetInertiaOfPointInDirectionLocal in place of the teacher's
// per-body imass/iitw solver-body cache — Physical already owns that
// aggregate per §4.6, so there is no separate solver-body bookkeeping to
// maintain. physA/physB are nil for a terrain Part (treated as having
// infinite mass, per §4.8's "mass treated as infinite").
type contactConstraint struct {
	physA, physB *Physical
	pointA       lin.V3 // world-space contact point used against physA
	pointB       lin.V3 // world-space contact point used against physB

	normal  lin.V3 // world space, points from A towards B
	tangent lin.V3

	normalEffMass  float64
	tangentEffMass float64

	restitutionBias float64 // target closing-velocity-along-normal after restitution
	penetrationBias float64 // Baumgarte term added to the normal rhs

	friction float64

	appliedNormalImpulse  float64
	appliedTangentImpulse float64
}

// resolveContacts runs one tick's worth of sequential-impulse (Projected
// Gauss-Seidel) resolution over contacts, grounded on the teacher's
// solver.go: setupConstraints (build the per-contact Jacobian once) then
// solveIterations (numIterations PGS sweeps updating appliedImpulse).
// Split-impulse/warm-starting, which the teacher's solver also implements,
// is not carried — see DESIGN.md for why a single Baumgarte bias term is
// judged sufficient at this solver's 8-iteration default.
func resolveContacts(contacts []Contact, info solverInfo) {
	if len(contacts) == 0 {
		return
	}
	constraints := make([]contactConstraint, 0, len(contacts))
	for _, c := range contacts {
		constraints = append(constraints, setupContactConstraint(c, info))
	}
	for iter := 0; iter < info.numIterations; iter++ {
		for i := range constraints {
			solveNormalConstraint(&constraints[i])
		}
		for i := range constraints {
			solveFrictionConstraint(&constraints[i])
		}
	}
}

// setupContactConstraint builds the Jacobian for one contact: the pair of
// effective masses along the normal and a tangent direction, and the
// restitution/penetration bias terms. Mirrors the teacher's
// setupContactConstraint.
func setupContactConstraint(c Contact, info solverInfo) contactConstraint {
	physA, physB := c.PartA.Physical(), c.PartB.Physical()

	effMassA := effectiveMass(physA, c.PositionOnA, c.Normal)
	effMassB := effectiveMass(physB, c.PositionOnB, c.Normal)
	normalEffMass := 1 / (invOrZero(effMassA) + invOrZero(effMassB))

	velA := velocityOfPoint(physA, c.PositionOnA)
	velB := velocityOfPoint(physB, c.PositionOnB)
	var relVel lin.V3
	relVel.Sub(&velB, &velA)
	closingVel := relVel.Dot(&c.Normal)

	restitution := combinedRestitution(c.PartA, c.PartB)
	restitutionBias := 0.0
	if closingVel < 0 {
		restitutionBias = -restitution * closingVel
	}

	penetration := c.Depth - info.linearSlop
	penetrationBias := 0.0
	if penetration > 0 {
		penetrationBias = info.erp * penetration
	}

	tangent := tangentDirection(relVel, c.Normal)
	tangentMassA := effectiveMass(physA, c.PositionOnA, tangent)
	tangentMassB := effectiveMass(physB, c.PositionOnB, tangent)
	tangentEffMass := 1 / (invOrZero(tangentMassA) + invOrZero(tangentMassB))

	return contactConstraint{
		physA: physA, physB: physB,
		pointA: c.PositionOnA, pointB: c.PositionOnB,
		normal: c.Normal, tangent: tangent,
		normalEffMass:   normalEffMass,
		tangentEffMass:  tangentEffMass,
		restitutionBias: restitutionBias,
		penetrationBias: penetrationBias,
		friction:        combinedFriction(c.PartA, c.PartB),
	}
}

// effectiveMass returns phys's effective mass resisting acceleration of its
// contact point along world direction dir, or +Inf for a static (terrain,
// nil Physical) part — the direction is rotated into phys's body-local
// frame before calling GetInertiaOfPointInDirectionLocal, which operates in
// local space per physical.go.
func effectiveMass(phys *Physical, point, dir lin.V3) float64 {
	if phys == nil {
		return lin.Large
	}
	root := phys.Root()
	com := phys.WorldCenterOfMass()
	var rWorld lin.V3
	rWorld.Sub(&point, &com)

	rotT := lin.NewM3().Transpose(lin.NewM3().SetQ(root.CFrame.Rot))
	var rLocal, dLocal lin.V3
	rLocal.MultMv(rotT, &rWorld)
	dLocal.MultMv(rotT, &dir)
	return phys.GetInertiaOfPointInDirectionLocal(rLocal, dLocal)
}

// invOrZero returns 1/m, or 0 for an effectively-infinite mass — the
// "static body contributes nothing to the combined inverse mass" rule.
func invOrZero(mass float64) float64 {
	if mass >= lin.Large {
		return 0
	}
	return 1 / mass
}

func velocityOfPoint(phys *Physical, point lin.V3) lin.V3 {
	if phys == nil {
		return lin.V3{}
	}
	return phys.GetVelocityOfPoint(point)
}

// tangentDirection picks a friction direction: the component of relVel
// perpendicular to normal when there is meaningful lateral sliding,
// otherwise an arbitrary axis perpendicular to normal via V3.Plane (the
// same btPlaneSpace1-derived fallback the teacher's convertContacts uses).
func tangentDirection(relVel, normal lin.V3) lin.V3 {
	var along lin.V3
	closing := relVel.Dot(&normal)
	along.Scale(&normal, closing)
	var lateral lin.V3
	lateral.Sub(&relVel, &along)
	if lateral.LenSqr() > lin.Epsilon {
		lateral.Unit()
		return lateral
	}
	var p1, p2 lin.V3
	normal.Plane(&p1, &p2)
	return p1
}

// combinedRestitution and combinedFriction match the teacher's simple
// product/average combination rule (no per-material-pair table).
func combinedRestitution(a, b *Part) float64 { return a.Restitution * b.Restitution }
func combinedFriction(a, b *Part) float64    { return (a.Friction + b.Friction) / 2 }

// solveNormalConstraint runs one PGS sweep over the normal (non-
// penetration) constraint: clamp the accumulated impulse at zero (a
// contact only pushes) and apply the delta impulse to both Physicals.
func solveNormalConstraint(sc *contactConstraint) {
	velA := velocityOfPoint(sc.physA, sc.pointA)
	velB := velocityOfPoint(sc.physB, sc.pointB)
	var relVel lin.V3
	relVel.Sub(&velB, &velA)
	closingVel := relVel.Dot(&sc.normal)

	target := sc.restitutionBias + sc.penetrationBias
	deltaImpulse := (target - closingVel) * sc.normalEffMass

	newImpulse := sc.appliedNormalImpulse + deltaImpulse
	if newImpulse < 0 {
		newImpulse = 0
	}
	deltaImpulse = newImpulse - sc.appliedNormalImpulse
	sc.appliedNormalImpulse = newImpulse

	applyContactImpulse(sc, sc.normal, deltaImpulse)
}

// solveFrictionConstraint runs one PGS sweep over the Coulomb friction
// constraint, bounded by μ*appliedNormalImpulse per the base spec's §4.7
// contract, applied as a second impulse pass right after the normal
// impulse (Open Question (b), resolved in DESIGN.md).
func solveFrictionConstraint(sc *contactConstraint) {
	limit := sc.friction * sc.appliedNormalImpulse
	if limit <= 0 {
		sc.appliedTangentImpulse = 0
		return
	}

	velA := velocityOfPoint(sc.physA, sc.pointA)
	velB := velocityOfPoint(sc.physB, sc.pointB)
	var relVel lin.V3
	relVel.Sub(&velB, &velA)
	slidingVel := relVel.Dot(&sc.tangent)

	deltaImpulse := -slidingVel * sc.tangentEffMass
	newImpulse := sc.appliedTangentImpulse + deltaImpulse
	if newImpulse > limit {
		newImpulse = limit
	} else if newImpulse < -limit {
		newImpulse = -limit
	}
	deltaImpulse = newImpulse - sc.appliedTangentImpulse
	sc.appliedTangentImpulse = newImpulse

	applyContactImpulse(sc, sc.tangent, deltaImpulse)
}

// applyContactImpulse applies +impulse*dir to B at its contact point and
// -impulse*dir to A at its contact point, matching §4.7's "applies ±j·n̂ as
// an impulse on both Physicals." A nil Physical (terrain) simply absorbs
// nothing.
func applyContactImpulse(sc *contactConstraint, dir lin.V3, impulse float64) {
	var j, negJ lin.V3
	j.Scale(&dir, impulse)
	negJ.Scale(&j, -1)

	if sc.physA != nil {
		sc.physA.ApplyImpulse(sc.pointA, negJ)
	}
	if sc.physB != nil {
		sc.physB.ApplyImpulse(sc.pointB, j)
	}
}
