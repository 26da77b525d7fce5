package phy

import (
	"github.com/google/uuid"

	"github.com/gazed/physics/math/lin"
)

// Motion is a MotorizedPhysical's aggregate motion state: the base spec's
// motionOfCenterOfMass. Only the root of a connected articulated body (a
// Physical with no parent) carries one — descendant Physicals move by
// forward kinematics through their HardConstraint's relative motion, not
// by independent integration. Ported from physical.cpp's update(), which
// keeps exactly these fields on its Physical/MotorizedPhysical split.
type Motion struct {
	Velocity            lin.V3
	AngularVelocity     lin.V3
	Acceleration        lin.V3
	AngularAcceleration lin.V3

	totalForce  lin.V3
	totalMoment lin.V3
}

// Physical is one node of an articulated rigid body tree: either the root
// (a MotorizedPhysical, Parent == nil, carrying Motion) or a child attached
// to its parent by a HardConstraint. Each node's own MainPart plus its
// rigidly welded Attached parts form a single "rigid body" sub-unit; the
// node's aggregated Mass/LocalCenterOfMass/LocalInertia describe that
// sub-unit alone, expressed in MainPart's local frame — TotalMass etc.
// (valid only at the root) describe the whole connected tree.
//
// Grounded directly on the original engine's Physical/MotorizedPhysical
// split in physical.cpp: refresh() below is that file's
// refreshWithNewParts(), and Update is its update(deltaT).
type Physical struct {
	ID uuid.UUID

	MainPart *Part
	Attached []*Part

	parent           *Physical
	parentConstraint HardConstraint
	attachOnParent   *lin.T // in parent.MainPart local space
	attachOnChild    *lin.T // in this.MainPart local space

	root     *Physical // the tree's MotorizedPhysical; == self at the root
	Children []*Physical

	Mass              float64
	LocalCenterOfMass lin.V3
	LocalInertia      lin.SymmetricMat3
	localInvInertia   lin.SymmetricMat3
	boundingRadiusSq  float64

	// CFrame is this node's MainPart world frame; for the root it is the
	// authoritative simulated state, for descendants it is recomputed each
	// tick from the parent chain plus constraint relative motion.
	CFrame *lin.T

	Motion Motion // meaningful only when IsRoot()

	// TotalMass/TotalLocalCenterOfMass/TotalInertia describe the whole
	// connected articulated body and are only valid, and only maintained,
	// at the root.
	TotalMass              float64
	TotalLocalCenterOfMass lin.V3
	TotalInertia           lin.SymmetricMat3
	totalInvInertia        lin.SymmetricMat3

	world *World
}

func newRigidBodyPhysical(mainPart *Part) *Physical {
	phys := &Physical{
		ID:       uuid.New(),
		MainPart: mainPart,
		CFrame:   lin.NewT().Set(mainPart.CFrame),
	}
	phys.root = phys
	mainPart.physical = phys
	mainPart.localAttach = nil
	phys.refresh()
	phys.refreshTotals()
	return phys
}

// IsRoot reports whether p is the MotorizedPhysical of its tree.
func (p *Physical) IsRoot() bool { return p.parent == nil }

// Root returns the MotorizedPhysical at the root of p's tree.
func (p *Physical) Root() *Physical { return p.root }

// refresh recomputes this node's own Mass/LocalCenterOfMass/LocalInertia
// from MainPart and Attached, exactly mirroring physical.cpp's
// refreshWithNewParts(): mass and center of mass are a weighted sum, and
// inertia is each part's inertia rotated into the node frame plus the
// parallel-axis term for its offset from the aggregate center of mass.
func (p *Physical) refresh() {
	mass := p.MainPart.Mass()
	var weightedCOM lin.V3
	mainCOM := p.MainPart.Shape.LocalCenterOfMass()
	weightedCOM.Scale(&mainCOM, mass)

	type contribution struct {
		mass   float64
		com    lin.V3
		rot    *lin.M3
		localI lin.SymmetricMat3
	}
	contribs := make([]contribution, 0, 1+len(p.Attached))
	identity := lin.M3I
	contribs = append(contribs, contribution{mass: mass, com: mainCOM, rot: identity, localI: p.MainPart.Shape.LocalInertia(mass)})

	for _, part := range p.Attached {
		m := part.Mass()
		rot := lin.NewM3().SetQ(part.localAttach.Rot)
		partCOM := part.Shape.LocalCenterOfMass()
		var worldOffsetCOM lin.V3
		worldOffsetCOM.MultMv(rot, &partCOM)
		worldOffsetCOM.Add(&worldOffsetCOM, part.localAttach.Loc)

		var weighted lin.V3
		weighted.Scale(&worldOffsetCOM, m)
		weightedCOM.Add(&weightedCOM, &weighted)
		mass += m

		contribs = append(contribs, contribution{mass: m, com: worldOffsetCOM, rot: rot, localI: part.Shape.LocalInertia(m)})
	}

	if mass < lin.Epsilon {
		invariantf("physical %s: aggregate mass is zero or negative", p.ID)
	}
	var com lin.V3
	com.Scale(&weightedCOM, 1/mass)

	var inertia lin.SymmetricMat3
	for _, c := range contribs {
		var basis lin.SymmetricMat3
		lin.TransformBasis(&basis, &c.localI, c.rot)
		inertia.Add(&inertia, &basis)

		var offset lin.V3
		offset.Sub(&c.com, &com)
		var parallel lin.SymmetricMat3
		lin.SkewSymmetricSquared(&parallel, &offset)
		parallel.Scale(&parallel, c.mass)
		inertia.Add(&inertia, &parallel)
	}

	p.Mass = mass
	p.LocalCenterOfMass = com
	p.LocalInertia = inertia
	inv, _ := p.localInvInertia.Inv(&inertia)
	p.localInvInertia = *inv

	radiusSq := p.MainPart.Shape.MaxRadiusSq(com)
	for _, part := range p.Attached {
		var localCenter lin.V3
		localCenter.Sub(part.localAttach.Loc, &com)
		r := part.Shape.MaxRadiusSq(localCenter)
		if r > radiusSq {
			radiusSq = r
		}
	}
	p.boundingRadiusSq = radiusSq
}

// refreshTotals recomputes TotalMass/TotalLocalCenterOfMass/TotalInertia
// for the whole tree rooted at p (p must be the root). Each descendant's
// own aggregate is folded in using its current attach transform relative
// to the root's MainPart frame.
func (p *Physical) refreshTotals() {
	if !p.IsRoot() {
		invariantf("refreshTotals called on non-root physical %s", p.ID)
	}

	type node struct {
		phys  *Physical
		frame *lin.T // this node's MainPart frame, relative to root MainPart frame
	}
	stack := []node{{phys: p, frame: lin.NewT().SetI()}}

	mass := 0.0
	var weightedCOM lin.V3
	type contribution struct {
		mass  float64
		com   lin.V3
		rot   *lin.M3
		localI lin.SymmetricMat3
	}
	var contribs []contribution

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var worldCOM lin.V3
		worldCOM.Set(&n.phys.LocalCenterOfMass)
		n.frame.App(&worldCOM)

		contribs = append(contribs, contribution{mass: n.phys.Mass, com: worldCOM, rot: lin.NewM3().SetQ(n.frame.Rot), localI: n.phys.LocalInertia})
		var weighted lin.V3
		weighted.Scale(&worldCOM, n.phys.Mass)
		weightedCOM.Add(&weightedCOM, &weighted)
		mass += n.phys.Mass

		for _, child := range n.phys.Children {
			childFrame := childFrameRelativeToParent(child)
			combined := lin.NewT()
			combined.Mult(n.frame, childFrame)
			stack = append(stack, node{phys: child, frame: combined})
		}
	}

	if mass < lin.Epsilon {
		invariantf("physical %s: total aggregate mass is zero or negative", p.ID)
	}
	var com lin.V3
	com.Scale(&weightedCOM, 1/mass)

	var inertia lin.SymmetricMat3
	for _, c := range contribs {
		var basis lin.SymmetricMat3
		lin.TransformBasis(&basis, &c.localI, c.rot)
		inertia.Add(&inertia, &basis)

		var offset lin.V3
		offset.Sub(&c.com, &com)
		var parallel lin.SymmetricMat3
		lin.SkewSymmetricSquared(&parallel, &offset)
		parallel.Scale(&parallel, c.mass)
		inertia.Add(&inertia, &parallel)
	}

	p.TotalMass = mass
	p.TotalLocalCenterOfMass = com
	p.TotalInertia = inertia
	inv, _ := p.totalInvInertia.Inv(&inertia)
	p.totalInvInertia = *inv
}

// childFrameRelativeToParent returns child's MainPart frame relative to
// parent's MainPart frame, composing parent's attach, the constraint's
// current relative motion, and the inverse of child's own attach — the
// forward-kinematics step named in the base spec's Physical invariant
// (ii): "each child Part's world CFrame equals parent's CFrame composed
// with its local attach CFrame."
func childFrameRelativeToParent(child *Physical) *lin.T {
	relative := child.parentConstraint.RelativeMotion()
	attachPointInParent := lin.NewT()
	attachPointInParent.Mult(child.attachOnParent, relative.CFrame)

	invChildAttach := lin.NewT().Invert(child.attachOnChild)
	out := lin.NewT()
	out.Mult(attachPointInParent, invChildAttach)
	return out
}

// ApplyForceAtCenterOfMass applies a world-space force f at the body's
// center of mass, contributing no moment.
func (p *Physical) ApplyForceAtCenterOfMass(f lin.V3) {
	root := p.root
	root.Motion.totalForce.Add(&root.Motion.totalForce, &f)
}

// ApplyForce applies a world-space force f at world-space point origin,
// contributing moment (origin - centerOfMass) x f in addition to the
// force itself.
func (p *Physical) ApplyForce(origin, f lin.V3) {
	root := p.root
	root.Motion.totalForce.Add(&root.Motion.totalForce, &f)

	com := p.WorldCenterOfMass()
	var r, moment lin.V3
	r.Sub(&origin, &com)
	moment.Cross(&r, &f)
	root.Motion.totalMoment.Add(&root.Motion.totalMoment, &moment)
}

// ApplyMoment adds a pure moment (torque) m to the root's accumulator.
func (p *Physical) ApplyMoment(m lin.V3) {
	root := p.root
	root.Motion.totalMoment.Add(&root.Motion.totalMoment, &m)
}

// ApplyImpulseAtCenterOfMass instantaneously changes velocity by j/TotalMass.
func (p *Physical) ApplyImpulseAtCenterOfMass(j lin.V3) {
	root := p.root
	var dv lin.V3
	dv.Scale(&j, 1/root.TotalMass)
	root.Motion.Velocity.Add(&root.Motion.Velocity, &dv)
}

// ApplyImpulse applies impulse j (world space) at world-space point origin:
// an immediate velocity change plus an immediate angular velocity change
// via the inverse inertia tensor.
func (p *Physical) ApplyImpulse(origin, j lin.V3) {
	root := p.root
	var dv lin.V3
	dv.Scale(&j, 1/root.TotalMass)
	root.Motion.Velocity.Add(&root.Motion.Velocity, &dv)

	com := p.WorldCenterOfMass()
	var r, angImpulse lin.V3
	r.Sub(&origin, &com)
	angImpulse.Cross(&r, &j)
	p.ApplyAngularImpulse(angImpulse)
}

// ApplyAngularImpulse instantaneously changes angular velocity by
// Iinv * angularImpulse (angularImpulse expressed in world space).
func (p *Physical) ApplyAngularImpulse(angularImpulse lin.V3) {
	root := p.root
	rot := lin.NewM3().SetQ(root.CFrame.Rot)
	var local lin.V3
	rotT := lin.NewM3().Transpose(rot)
	local.MultMv(rotT, &angularImpulse)

	var localDelta lin.V3
	root.totalInvInertia.MultV(&localDelta, &local)

	var worldDelta lin.V3
	worldDelta.MultMv(rot, &localDelta)
	root.Motion.AngularVelocity.Add(&root.Motion.AngularVelocity, &worldDelta)
}

// WorldCenterOfMass returns this node's total center of mass in world
// space (valid for any node; uses the root's TotalLocalCenterOfMass and
// frame).
func (p *Physical) WorldCenterOfMass() lin.V3 {
	root := p.root
	var com lin.V3
	com.MultvQ(&root.TotalLocalCenterOfMass, root.CFrame.Rot)
	com.Add(&com, root.CFrame.Loc)
	return com
}

// GetVelocityOfPoint returns the world-space velocity of the material
// point currently located at world-space position point, accounting for
// both linear and angular motion. Ported from physical.cpp's
// getVelocityOfPoint.
func (p *Physical) GetVelocityOfPoint(point lin.V3) lin.V3 {
	root := p.root
	com := p.WorldCenterOfMass()
	var r, angTerm, v lin.V3
	r.Sub(&point, &com)
	angTerm.Cross(&root.Motion.AngularVelocity, &r)
	v.Add(&root.Motion.Velocity, &angTerm)
	return v
}

// GetAccelerationOfPoint returns the world-space acceleration of the
// material point at world-space position point, as of the last Update.
// Ported from physical.cpp's getAccelerationOfPoint.
func (p *Physical) GetAccelerationOfPoint(point lin.V3) lin.V3 {
	root := p.root
	com := p.WorldCenterOfMass()
	var r, angAccelTerm, centripetal, omegaCrossR, a lin.V3
	r.Sub(&point, &com)
	angAccelTerm.Cross(&root.Motion.AngularAcceleration, &r)
	omegaCrossR.Cross(&root.Motion.AngularVelocity, &r)
	centripetal.Cross(&root.Motion.AngularVelocity, &omegaCrossR)
	a.Add(&root.Motion.Acceleration, &angAccelTerm)
	a.Add(&a, &centripetal)
	return a
}

// GetPointAccelerationMatrix returns the symmetric matrix mapping a force
// applied at local-space point rLocal to the acceleration produced at that
// same point: (1/M)*I3 + Iinv conjugated by [r]x^T. Used by the contact
// solver to compute effective mass along the contact normal. Ported from
// physical.cpp's getPointAccelerationMatrix.
func (p *Physical) GetPointAccelerationMatrix(rLocal lin.V3) lin.SymmetricMat3 {
	root := p.root
	var diag lin.SymmetricMat3
	diag.SetDiagonal(&lin.DiagonalMat3{Xx: 1 / root.TotalMass, Yy: 1 / root.TotalMass, Zz: 1 / root.TotalMass})

	var crossMat lin.M3
	lin.SkewSymmetric(&crossMat, &rLocal)
	var rotational lin.SymmetricMat3
	lin.MultiplyLeftRight(&rotational, &root.totalInvInertia, &crossMat)

	var result lin.SymmetricMat3
	result.Add(&diag, &rotational)
	return result
}

// GetInertiaOfPointInDirectionLocal returns the effective inertia (mass
// resisting acceleration) of the point rLocal along local-space direction
// dLocal, 1 / (d^T M d / |d|^2) where M is GetPointAccelerationMatrix.
// Ported from physical.cpp's getInertiaOfPointInDirectionLocal.
func (p *Physical) GetInertiaOfPointInDirectionLocal(rLocal, dLocal lin.V3) float64 {
	m := p.GetPointAccelerationMatrix(rLocal)
	var md lin.V3
	m.MultV(&md, &dLocal)
	denom := dLocal.Dot(&md)
	lenSq := dLocal.LenSqr()
	if denom < lin.Epsilon || lenSq < lin.Epsilon {
		return lin.Large
	}
	return 1 / (denom / lenSq)
}

// Update advances the root's motion by dt: semi-implicit Euler integration
// of the accumulated force/moment, followed by constraint phase advance
// and re-aggregation. This is physical.cpp's update(deltaT), generalized
// from a single rigid body to the whole articulated tree via
// refreshTotals/childFrameRelativeToParent.
func (p *Physical) Update(dt float64) {
	if !p.IsRoot() {
		invariantf("Update called on non-root physical %s", p.ID)
	}

	m := &p.Motion
	m.Acceleration.Scale(&m.totalForce, 1/p.TotalMass)

	// TotalInertia/totalInvInertia are expressed in the root's body-local
	// frame, so the accumulated world-space moment is rotated in, the
	// angular acceleration computed, and the result rotated back out.
	rot := lin.NewM3().SetQ(p.CFrame.Rot)
	rotT := lin.NewM3().Transpose(rot)
	var localMoment lin.V3
	localMoment.MultMv(rotT, &m.totalMoment)
	var localAngAccel lin.V3
	p.totalInvInertia.MultV(&localAngAccel, &localMoment)
	var worldAngAccel lin.V3
	worldAngAccel.MultMv(rot, &localAngAccel)
	m.AngularAcceleration = worldAngAccel

	m.totalForce = lin.V3{}
	m.totalMoment = lin.V3{}

	var oldVelocity lin.V3
	oldVelocity.Set(&m.Velocity)

	var dv lin.V3
	dv.Scale(&m.Acceleration, dt)
	m.Velocity.Add(&m.Velocity, &dv)

	var dw lin.V3
	dw.Scale(&worldAngAccel, dt)
	m.AngularVelocity.Add(&m.AngularVelocity, &dw)

	// Δx = v_old*dt + 1/2*a*dt^2, not plain v_old*dt: the extra half-accel
	// term is what keeps a constant-acceleration drop matching the closed
	// form (x = 1/2*g*t^2) instead of drifting low by O(g*dt) over a run.
	var dx, halfAccelTerm lin.V3
	dx.Scale(&oldVelocity, dt)
	halfAccelTerm.Scale(&m.Acceleration, 0.5*dt*dt)
	dx.Add(&dx, &halfAccelTerm)

	var dr lin.V3
	dr.Scale(&m.AngularVelocity, dt)
	var deltaRot lin.M3
	lin.FromRotationVec(&deltaRot, &dr)
	var deltaQ lin.Q
	deltaQ.SetM(&deltaRot)

	var newRot lin.Q
	newRot.Mult(&deltaQ, p.CFrame.Rot)
	newRot.Unit()
	p.CFrame.Rot.Set(&newRot)
	p.CFrame.Loc.Add(p.CFrame.Loc, &dx)

	for _, child := range p.Children {
		child.parentConstraint.Update(dt)
	}
	p.propagate()
	p.refreshTotals()
}

// propagate recomputes every descendant's CFrame (and, transitively, its
// member Parts' world CFrames) from the root's current CFrame.
func (p *Physical) propagate() {
	p.propagateParts()
	for _, child := range p.Children {
		childFrame := childFrameRelativeToParent(child)
		child.CFrame.Mult(p.CFrame, childFrame)
		child.propagate()
	}
}

func (p *Physical) propagateParts() {
	p.MainPart.CFrame.Set(p.CFrame)
	for _, part := range p.Attached {
		part.CFrame.Mult(p.CFrame, part.localAttach)
	}
}

// GetKineticEnergy returns the sum of linear and angular kinetic energy of
// the root's current motion.
func (p *Physical) GetKineticEnergy() float64 {
	return p.GetVelocityKineticEnergy() + p.getAngularKineticEnergy()
}

// GetVelocityKineticEnergy returns 1/2 * M * |v|^2.
func (p *Physical) GetVelocityKineticEnergy() float64 {
	root := p.root
	return 0.5 * root.TotalMass * root.Motion.Velocity.LenSqr()
}

// getAngularKineticEnergy returns 1/2 * w^T * I * w. TotalInertia is
// expressed in the root's body-local frame, so the world-space angular
// velocity is rotated into that frame first.
func (p *Physical) getAngularKineticEnergy() float64 {
	root := p.root
	rotT := lin.NewM3().Transpose(lin.NewM3().SetQ(root.CFrame.Rot))
	var localW lin.V3
	localW.MultMv(rotT, &root.Motion.AngularVelocity)
	var iw lin.V3
	root.TotalInertia.MultV(&iw, &localW)
	return 0.5 * localW.Dot(&iw)
}

// IsValid checks, recursively through Children, that each node's Mass
// matches the sum of its member Parts' masses and that each child links
// back to its parent. Attached Parts' frames are not checked. Intended
// for tests and diagnostics, not the simulation hot path.
func (p *Physical) IsValid() bool {
	sum := p.MainPart.Mass()
	for _, part := range p.Attached {
		sum += part.Mass()
	}
	if lin.Aeq(sum, p.Mass) == false {
		return false
	}
	for _, child := range p.Children {
		if child.parent != p {
			return false
		}
		if !child.IsValid() {
			return false
		}
	}
	return true
}
