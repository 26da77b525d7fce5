// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Symmetric and diagonal 3x3 matrices used to represent inertia tensors.
// Split out from M3 because inertia tensors are always symmetric and this
// lets the physics layer avoid storing (and recomputing) the redundant
// off-diagonal mirror terms.

import "math"

// SymmetricMat3 is a 3x3 symmetric matrix, stored as its six independent
// elements. Used to represent inertia tensors, which are always symmetric.
type SymmetricMat3 struct {
	Xx, Xy, Xz float64
	Yy, Yz     float64
	Zz         float64
}

// DiagonalMat3 is a 3x3 matrix with non-zero elements only on the diagonal.
type DiagonalMat3 struct {
	Xx, Yy, Zz float64
}

// SymmetricMat3I is the symmetric identity matrix. Never modify.
var SymmetricMat3I = &SymmetricMat3{Xx: 1, Yy: 1, Zz: 1}

// SetS explicitly sets the six independent elements of sm.
// The updated matrix sm is returned.
func (sm *SymmetricMat3) SetS(xx, xy, xz, yy, yz, zz float64) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = xx, xy, xz
	sm.Yy, sm.Yz = yy, yz
	sm.Zz = zz
	return sm
}

// Set assigns all element values from sa to sm. The updated matrix sm is returned.
func (sm *SymmetricMat3) Set(sa *SymmetricMat3) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = sa.Xx, sa.Xy, sa.Xz
	sm.Yy, sm.Yz = sa.Yy, sa.Yz
	sm.Zz = sa.Zz
	return sm
}

// SetDiagonal builds sm from a diagonal matrix dm.
func (sm *SymmetricMat3) SetDiagonal(dm *DiagonalMat3) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = dm.Xx, 0, 0
	sm.Yy, sm.Yz = dm.Yy, 0
	sm.Zz = dm.Zz
	return sm
}

// ToM3 expands sm into a full (non-symmetric-optimized) M3.
func (sm *SymmetricMat3) ToM3(m *M3) *M3 {
	m.Xx, m.Xy, m.Xz = sm.Xx, sm.Xy, sm.Xz
	m.Yx, m.Yy, m.Yz = sm.Xy, sm.Yy, sm.Yz
	m.Zx, m.Zy, m.Zz = sm.Xz, sm.Yz, sm.Zz
	return m
}

// Add (+) adds sa and sb storing the result in sm. sm may be one of the inputs.
func (sm *SymmetricMat3) Add(sa, sb *SymmetricMat3) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = sa.Xx+sb.Xx, sa.Xy+sb.Xy, sa.Xz+sb.Xz
	sm.Yy, sm.Yz = sa.Yy+sb.Yy, sa.Yz+sb.Yz
	sm.Zz = sa.Zz + sb.Zz
	return sm
}

// AddDiagonal (+) adds a diagonal matrix dm to sm, storing the result in sm.
func (sm *SymmetricMat3) AddDiagonal(sa *SymmetricMat3, dm *DiagonalMat3) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = sa.Xx+dm.Xx, sa.Xy, sa.Xz
	sm.Yy, sm.Yz = sa.Yy+dm.Yy, sa.Yz
	sm.Zz = sa.Zz + dm.Zz
	return sm
}

// Sub (-) subtracts sb from sa storing the result in sm. sm may be one of the inputs.
func (sm *SymmetricMat3) Sub(sa, sb *SymmetricMat3) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = sa.Xx-sb.Xx, sa.Xy-sb.Xy, sa.Xz-sb.Xz
	sm.Yy, sm.Yz = sa.Yy-sb.Yy, sa.Yz-sb.Yz
	sm.Zz = sa.Zz - sb.Zz
	return sm
}

// Scale multiplies every element of sa by s, storing the result in sm.
func (sm *SymmetricMat3) Scale(sa *SymmetricMat3, s float64) *SymmetricMat3 {
	sm.Xx, sm.Xy, sm.Xz = sa.Xx*s, sa.Xy*s, sa.Xz*s
	sm.Yy, sm.Yz = sa.Yy*s, sa.Yz*s
	sm.Zz = sa.Zz * s
	return sm
}

// MultV multiplies symmetric matrix sm by column vector a, returning the
// result in v. v may not alias a.
func (sm *SymmetricMat3) MultV(v, a *V3) *V3 {
	v.X = sm.Xx*a.X + sm.Xy*a.Y + sm.Xz*a.Z
	v.Y = sm.Xy*a.X + sm.Yy*a.Y + sm.Yz*a.Z
	v.Z = sm.Xz*a.X + sm.Yz*a.Y + sm.Zz*a.Z
	return v
}

// Det returns the determinant of sm.
func (sm *SymmetricMat3) Det() float64 {
	return sm.Xx*(sm.Yy*sm.Zz-sm.Yz*sm.Yz) -
		sm.Xy*(sm.Xy*sm.Zz-sm.Yz*sm.Xz) +
		sm.Xz*(sm.Xy*sm.Yz-sm.Yy*sm.Xz)
}

// Inv updates sm to be the inverse of sa. If sa is singular, sm is set to
// a regularized inverse (sa + epsilon*I)^-1 instead of failing outright —
// callers that hit this path should log once, per the numerical-error
// handling policy for singular inertia tensors.
func (sm *SymmetricMat3) Inv(sa *SymmetricMat3) (result *SymmetricMat3, regularized bool) {
	det := sa.Det()
	if det == 0 || math.Abs(det) < Epsilon {
		reg := SymmetricMat3{}
		reg.Set(sa)
		reg.Xx += Epsilon
		reg.Yy += Epsilon
		reg.Zz += Epsilon
		det = reg.Det()
		if det == 0 {
			sm.Set(SymmetricMat3I)
			return sm, true
		}
		return sm.invFrom(&reg, det), true
	}
	return sm.invFrom(sa, det), false
}

func (sm *SymmetricMat3) invFrom(sa *SymmetricMat3, det float64) *SymmetricMat3 {
	invDet := 1 / det
	xx := (sa.Yy*sa.Zz - sa.Yz*sa.Yz) * invDet
	xy := (sa.Xz*sa.Yz - sa.Xy*sa.Zz) * invDet
	xz := (sa.Xy*sa.Yz - sa.Xz*sa.Yy) * invDet
	yy := (sa.Xx*sa.Zz - sa.Xz*sa.Xz) * invDet
	yz := (sa.Xz*sa.Xy - sa.Xx*sa.Yz) * invDet
	zz := (sa.Xx*sa.Yy - sa.Xy*sa.Xy) * invDet
	sm.Xx, sm.Xy, sm.Xz = xx, xy, xz
	sm.Yy, sm.Yz = yy, yz
	sm.Zz = zz
	return sm
}

// skewSymmetric builds the 3x3 cross-product-equivalent matrix [v]x such
// that [v]x * w == v.Cross(w) for any vector w. Ported from the relative
// motion algebra in the original engine's math utilities (skewSymmetric /
// createCrossProductEquivalent).
func skewSymmetric(m *M3, v *V3) *M3 {
	return m.SetSkewSym(v)
}

// skewSymmetricSquared returns [v]x * [v]x, the matrix used by the
// parallel-axis theorem term m*(skewSymmetricSquared(r)) when aggregating
// inertia of an offset point mass.
func skewSymmetricSquared(sm *SymmetricMat3, v *V3) *SymmetricMat3 {
	xx := v.X * v.X
	yy := v.Y * v.Y
	zz := v.Z * v.Z
	sm.Xx = -(yy + zz)
	sm.Xy = v.X * v.Y
	sm.Xz = v.X * v.Z
	sm.Yy = -(xx + zz)
	sm.Yz = v.Y * v.Z
	sm.Zz = -(xx + yy)
	return sm
}

// SkewSymmetricSquared is the exported form of skewSymmetricSquared, used
// by the Physical aggregation step (parallel-axis theorem term).
func SkewSymmetricSquared(sm *SymmetricMat3, v *V3) *SymmetricMat3 {
	return skewSymmetricSquared(sm, v)
}

// SkewSymmetric is the exported form of skewSymmetric.
func SkewSymmetric(m *M3, v *V3) *M3 {
	return skewSymmetric(m, v)
}

// TransformBasis returns R * S * R^T for symmetric matrix s and rotation r,
// i.e. the inertia tensor s re-expressed in the basis rotated by r. This is
// the standard similarity transform used whenever an inertia tensor known
// in a part's local frame must be expressed in its parent's frame.
func TransformBasis(sm *SymmetricMat3, s *SymmetricMat3, r *M3) *SymmetricMat3 {
	var full, tmp, rt M3
	s.ToM3(&full)
	rt.Transpose(r)
	tmp.Mult(r, &full)
	full.Mult(&tmp, &rt)
	sm.Xx, sm.Xy, sm.Xz = full.Xx, full.Xy, full.Xz
	sm.Yy, sm.Yz = full.Yy, full.Yz
	sm.Zz = full.Zz
	return sm
}

// MultiplyLeftRight returns M^T * A * M for symmetric matrix a and general
// matrix m, used to build getPointAccelerationMatrix's rotational term
// (invInertia conjugated by the cross-product-equivalent of the offset).
func MultiplyLeftRight(sm *SymmetricMat3, a *SymmetricMat3, m *M3) *SymmetricMat3 {
	var full, tmp, mt M3
	a.ToM3(&full)
	mt.Transpose(m)
	tmp.Mult(&mt, &full)
	full.Mult(&tmp, m)
	sm.Xx, sm.Xy, sm.Xz = full.Xx, full.Xy, full.Xz
	sm.Yy, sm.Yz = full.Yy, full.Yz
	sm.Zz = full.Zz
	return sm
}
