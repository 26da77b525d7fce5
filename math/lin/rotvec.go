// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// SetRotationVector updates q to be the rotation exp([ω]×) described by the
// rotation vector w (direction = axis, length = angle in radians). This is
// the exponential-map factored out of T.Integrate so that callers needing
// just "rotation accumulated this tick" (the Physical update step) do not
// have to go through a full transform integration. See:
//
//	"Practical Parameterization of Rotations Using the Exponential Map",
//	F. Sebastian Grassia
func (q *Q) SetRotationVector(w *V3) *Q {
	angLen := w.Len()
	fac := 0.0
	if angLen < 0.001 {
		fac = 0.5 - angLen*angLen*0.020833333333
	} else {
		fac = math.Sin(0.5*angLen) / angLen
	}
	q.X, q.Y, q.Z, q.W = w.X*fac, w.Y*fac, w.Z*fac, math.Cos(angLen*0.5)
	return q
}

// FromRotationVec returns a new rotation matrix m = exp([w]×), used by the
// Physical.update() integration step (base spec §4.6 step 4: ΔR).
func FromRotationVec(m *M3, w *V3) *M3 {
	var q Q
	q.SetRotationVector(w)
	return m.SetQ(&q)
}
