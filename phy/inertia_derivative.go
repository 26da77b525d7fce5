package phy

import "github.com/gazed/physics/math/lin"

// InertiaDerivatives is the rigid-subtree Taylor expansion named in the
// base spec's §4.6: the composite center-of-mass location and its motion,
// the composite inertia, and the internal angular momentum contributed by
// joint motion, each carried to the derivative order the underlying
// HardConstraints can actually supply. Used by articulated contact
// resolution to predict how a subtree's effective mass along a contact
// normal changes over the step instead of freezing it at the start-of-tick
// value.
type InertiaDerivatives struct {
	CenterOfMass             lin.V3
	CenterOfMassVelocity     lin.V3
	CenterOfMassAcceleration lin.V3

	AngularVelocity     lin.V3
	AngularAcceleration lin.V3

	Inertia         lin.SymmetricMat3
	InertiaRate     lin.SymmetricMat3 // dI/dt
	InertiaRateRate lin.SymmetricMat3 // d2I/dt2

	// InternalAngularMomentum is the angular momentum, about the tree's
	// total center of mass, contributed by descendants' motion relative
	// to the root's own rigid rotation — subtract out the root's bulk
	// spin and what remains is due to joint motion alone.
	InternalAngularMomentum lin.V3
	// InternalAngularMomentumRate is dL/dt. A second derivative is not
	// computed: differentiating it again would need the jerk (third
	// position derivative) of each joint, and HardConstraint only
	// exposes motion to second order (RelativeMotion's Linear/Angular
	// Acceleration fields).
	InternalAngularMomentumRate lin.V3
}

// InertiaDerivativeScratch is the monotonic, caller-supplied arena
// ComputeInertiaDerivatives walks the tree into: one entry per Physical,
// reused tick over tick so the recursion itself never allocates. Sized by
// NewInertiaDerivativeScratch or CountPhysicals.
type InertiaDerivativeScratch []inertiaNodeKinematics

type inertiaNodeKinematics struct {
	mass         float64
	com          lin.V3
	comVelocity  lin.V3
	comAccel     lin.V3
	angVelocity  lin.V3
	angAccel     lin.V3
	worldInertia lin.SymmetricMat3 // this node's own inertia, rotated to world, about its own COM
}

// CountPhysicals returns the number of Physicals in root's tree (root
// included), the size NewInertiaDerivativeScratch allocates.
func CountPhysicals(root *Physical) int {
	n := 1
	for _, child := range root.Children {
		n += CountPhysicals(child)
	}
	return n
}

// NewInertiaDerivativeScratch allocates a scratch arena sized for root's
// tree as it stands right now. Per the base spec's memory discipline, a
// simulation loop allocates this once per tick per root and otherwise
// holds no steady-state per-tick allocations; re-allocating is only needed
// when the tree's shape changes (Attach/detach).
func NewInertiaDerivativeScratch(root *Physical) InertiaDerivativeScratch {
	return make(InertiaDerivativeScratch, CountPhysicals(root))
}

// ComputeInertiaDerivatives walks root's tree (root must be a
// MotorizedPhysical) computing every node's world-space center of mass,
// angular velocity, and their first and second time derivatives by
// propagating each HardConstraint's RelativeMotion down the parent chain,
// then folds the nodes into the subtree's aggregate Taylor expansion via
// the parallel-axis theorem. scratch must have at least
// CountPhysicals(root) entries (see NewInertiaDerivativeScratch) and is
// overwritten in place, not appended to.
func (root *Physical) ComputeInertiaDerivatives(scratch InertiaDerivativeScratch) InertiaDerivatives {
	if !root.IsRoot() {
		invariantf("ComputeInertiaDerivatives called on non-root physical %s", root.ID)
	}
	n := CountPhysicals(root)
	if len(scratch) < n {
		invariantf("inertia-derivative scratch too small: need %d entries, have %d", n, len(scratch))
	}

	idx := 0
	var walk func(p *Physical, parent *inertiaNodeKinematics)
	walk = func(p *Physical, parent *inertiaNodeKinematics) {
		node := &scratch[idx]
		idx++

		var com lin.V3
		com.Set(&p.LocalCenterOfMass)
		p.CFrame.App(&com)

		rot := lin.NewM3().SetQ(p.CFrame.Rot)
		var worldInertia lin.SymmetricMat3
		lin.TransformBasis(&worldInertia, &p.LocalInertia, rot)

		var comVel, comAccel, angVel, angAccel lin.V3
		if parent == nil {
			angVel = p.Motion.AngularVelocity
			angAccel = p.Motion.AngularAcceleration
			comVel = p.GetVelocityOfPoint(com)
			comAccel = p.GetAccelerationOfPoint(com)
		} else {
			angVel, angAccel = composeAngularKinematics(p, parent)
			comVel, comAccel = composeLinearKinematics(p, parent, com, angVel, angAccel)
		}

		*node = inertiaNodeKinematics{
			mass:         p.Mass,
			com:          com,
			comVelocity:  comVel,
			comAccel:     comAccel,
			angVelocity:  angVel,
			angAccel:     angAccel,
			worldInertia: worldInertia,
		}

		for _, child := range p.Children {
			walk(child, node)
		}
	}
	walk(root, nil)

	return foldInertiaDerivatives(scratch[:n])
}

// composeAngularKinematics returns p's world-space angular
// velocity/acceleration as parent's plus p's HardConstraint's relative
// spin, rotated from parent's attach frame into world space — the
// standard transport-theorem composition for a joint's relative angular
// motion riding on top of its parent's rotation.
func composeAngularKinematics(p *Physical, parent *inertiaNodeKinematics) (lin.V3, lin.V3) {
	relative := p.parentConstraint.RelativeMotion()
	rot := lin.NewM3().SetQ(p.parent.CFrame.Rot)

	var relVelWorld, relAccelWorld lin.V3
	relVelWorld.MultMv(rot, &relative.AngularVelocity)
	relAccelWorld.MultMv(rot, &relative.AngularAcceleration)

	var angVel lin.V3
	angVel.Add(&parent.angVelocity, &relVelWorld)

	var coriolis lin.V3
	coriolis.Cross(&parent.angVelocity, &relVelWorld)
	var angAccel lin.V3
	angAccel.Add(&parent.angAccel, &relAccelWorld)
	angAccel.Add(&angAccel, &coriolis)

	return angVel, angAccel
}

// composeLinearKinematics returns the world velocity and acceleration of
// p's own center of mass com, given p's already-composed angular
// kinematics and parent's node kinematics. It transports parent's rigid
// motion out to the attach point, adds the constraint's relative linear
// motion observed in parent's rotating frame (with its Coriolis term),
// then applies the rigid offset from the attach point out to com — the
// parallel-axis theorem's kinematic counterpart: v = v_ref + ω×r,
// a = a_ref + α×r + ω×(ω×r).
func composeLinearKinematics(p *Physical, parent *inertiaNodeKinematics, com, angVel, angAccel lin.V3) (lin.V3, lin.V3) {
	relative := p.parentConstraint.RelativeMotion()
	rot := lin.NewM3().SetQ(p.parent.CFrame.Rot)

	var relVelWorld, relAccelWorld lin.V3
	relVelWorld.MultMv(rot, &relative.LinearVelocity)
	relAccelWorld.MultMv(rot, &relative.LinearAcceleration)

	var attachLocal lin.V3
	attachLocal.Set(p.attachOnParent.Loc)
	attachPoint := p.parent.CFrame.App(&attachLocal)

	var rParent lin.V3
	rParent.Sub(attachPoint, &parent.com)
	var parentAngTerm, attachVel lin.V3
	parentAngTerm.Cross(&parent.angVelocity, &rParent)
	attachVel.Add(&parent.comVelocity, &parentAngTerm)
	attachVel.Add(&attachVel, &relVelWorld)

	var parentAlphaTerm, parentOmegaCrossR, parentCentripetal, attachAccel lin.V3
	parentAlphaTerm.Cross(&parent.angAccel, &rParent)
	parentOmegaCrossR.Cross(&parent.angVelocity, &rParent)
	parentCentripetal.Cross(&parent.angVelocity, &parentOmegaCrossR)
	attachAccel.Add(&parent.comAccel, &parentAlphaTerm)
	attachAccel.Add(&attachAccel, &parentCentripetal)
	attachAccel.Add(&attachAccel, &relAccelWorld)

	var coriolis lin.V3
	coriolis.Cross(&parent.angVelocity, &relVelWorld)
	coriolis.Scale(&coriolis, 2)
	attachAccel.Add(&attachAccel, &coriolis)

	var r lin.V3
	r.Sub(&com, attachPoint)

	var angTerm, v lin.V3
	angTerm.Cross(&angVel, &r)
	v.Add(&attachVel, &angTerm)

	var alphaTerm, omegaCrossR, centripetal, a lin.V3
	alphaTerm.Cross(&angAccel, &r)
	omegaCrossR.Cross(&angVel, &r)
	centripetal.Cross(&angVel, &omegaCrossR)
	a.Add(&attachAccel, &alphaTerm)
	a.Add(&a, &centripetal)

	return v, a
}

// foldInertiaDerivatives combines per-node kinematics into the subtree's
// aggregate Taylor expansion: center-of-mass location/velocity/
// acceleration are mass-weighted sums (the parallel-axis theorem's
// zeroth-order term), composite inertia and its rate/rate-of-rate use the
// world-frame commutator identity dI/dt = ω×I - Iω× (and its derivative)
// summed with each node's own parallel-axis offset contribution, and
// internal angular momentum is each non-root node's momentum about the
// total center of mass with the root's own bulk rotation subtracted out.
func foldInertiaDerivatives(nodes []inertiaNodeKinematics) InertiaDerivatives {
	var out InertiaDerivatives
	totalMass := 0.0
	for _, n := range nodes {
		totalMass += n.mass
	}
	if totalMass < lin.Epsilon {
		return out
	}

	for _, n := range nodes {
		var weighted lin.V3
		weighted.Scale(&n.com, n.mass)
		out.CenterOfMass.Add(&out.CenterOfMass, &weighted)
		weighted.Scale(&n.comVelocity, n.mass)
		out.CenterOfMassVelocity.Add(&out.CenterOfMassVelocity, &weighted)
		weighted.Scale(&n.comAccel, n.mass)
		out.CenterOfMassAcceleration.Add(&out.CenterOfMassAcceleration, &weighted)
	}
	out.CenterOfMass.Scale(&out.CenterOfMass, 1/totalMass)
	out.CenterOfMassVelocity.Scale(&out.CenterOfMassVelocity, 1/totalMass)
	out.CenterOfMassAcceleration.Scale(&out.CenterOfMassAcceleration, 1/totalMass)

	root := nodes[0]
	out.AngularVelocity = root.angVelocity
	out.AngularAcceleration = root.angAccel

	for _, n := range nodes {
		var offset lin.V3
		offset.Sub(&n.com, &out.CenterOfMass)
		var parallel lin.SymmetricMat3
		lin.SkewSymmetricSquared(&parallel, &offset)
		parallel.Scale(&parallel, n.mass)
		out.Inertia.Add(&out.Inertia, &n.worldInertia)
		out.Inertia.Add(&out.Inertia, &parallel)

		rate := commutator(&n.angVelocity, &n.worldInertia)
		out.InertiaRate.Add(&out.InertiaRate, &rate)

		rateRate := commutatorDerivative(&n.angVelocity, &n.angAccel, &n.worldInertia, &rate)
		out.InertiaRateRate.Add(&out.InertiaRateRate, &rateRate)
	}

	for _, n := range nodes[1:] {
		var offset lin.V3
		offset.Sub(&n.com, &out.CenterOfMass)

		var rigidVel, relVel lin.V3
		rigidVel.Cross(&root.angVelocity, &offset)
		rigidVel.Add(&rigidVel, &root.comVelocity)
		relVel.Sub(&n.comVelocity, &rigidVel)

		var translational lin.V3
		translational.Cross(&offset, &relVel)
		translational.Scale(&translational, n.mass)
		out.InternalAngularMomentum.Add(&out.InternalAngularMomentum, &translational)

		var spinRelVel, spin lin.V3
		spinRelVel.Sub(&n.angVelocity, &root.angVelocity)
		n.worldInertia.MultV(&spin, &spinRelVel)
		out.InternalAngularMomentum.Add(&out.InternalAngularMomentum, &spin)

		var relAccel, translationalRate lin.V3
		relAccel.Sub(&n.comAccel, &rigidVel)
		translationalRate.Cross(&offset, &relAccel)
		translationalRate.Scale(&translationalRate, n.mass)
		out.InternalAngularMomentumRate.Add(&out.InternalAngularMomentumRate, &translationalRate)
	}

	return out
}

// commutator returns ω×I - Iω×, the world-frame rate of change of a
// rigid body's inertia tensor rotating at angular velocity ω. The result
// is symmetric (since I is symmetric), so the antisymmetric floating-point
// residue of the matrix products is averaged out by symmetrize.
func commutator(angVel *lin.V3, inertia *lin.SymmetricMat3) lin.SymmetricMat3 {
	var skew lin.M3
	lin.SkewSymmetric(&skew, angVel)
	var im lin.M3
	inertia.ToM3(&im)

	var left, right, diff lin.M3
	left.Mult(&skew, &im)
	right.Mult(&im, &skew)
	diff.Sub(&left, &right)

	return symmetrize(&diff)
}

// commutatorDerivative returns d/dt(ω×I - Iω×) = α×I - Iα× + ω×(dI/dt) -
// (dI/dt)ω×, the product-rule derivative of commutator, needed for the
// composite inertia's second derivative.
func commutatorDerivative(angVel, angAccel *lin.V3, inertia, rate *lin.SymmetricMat3) lin.SymmetricMat3 {
	alphaTerm := commutator(angAccel, inertia)

	var skewOmega, rateM lin.M3
	lin.SkewSymmetric(&skewOmega, angVel)
	rate.ToM3(&rateM)

	var left, right, diff lin.M3
	left.Mult(&skewOmega, &rateM)
	right.Mult(&rateM, &skewOmega)
	diff.Sub(&left, &right)
	omegaTerm := symmetrize(&diff)

	var out lin.SymmetricMat3
	out.Add(&alphaTerm, &omegaTerm)
	return out
}

// symmetrize averages m with its transpose, folding the floating-point
// asymmetry out of a matrix product that is symmetric in exact arithmetic.
func symmetrize(m *lin.M3) lin.SymmetricMat3 {
	return lin.SymmetricMat3{
		Xx: m.Xx,
		Yy: m.Yy,
		Zz: m.Zz,
		Xy: 0.5 * (m.Xy + m.Yx),
		Xz: 0.5 * (m.Xz + m.Zx),
		Yz: 0.5 * (m.Yz + m.Zy),
	}
}
