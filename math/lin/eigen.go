// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Eigendecomposition of symmetric 3x3 matrices. Nothing in the rest of
// this package needs general eigensolving, so this is the one file in
// the module that reaches past the hand-rolled vector/matrix/quaternion
// algebra and uses gonum's symmetric eigensolver directly.

import "gonum.org/v1/gonum/mat"

// Eigen holds the eigenvalues (principal moments of inertia) and
// corresponding eigenvectors (principal axes) of a SymmetricMat3,
// sorted ascending by eigenvalue.
type Eigen struct {
	Values [3]float64
	Axes   [3]V3
}

// Eigen computes the eigendecomposition of sm, for example to recover a
// body's principal axes of inertia. Nothing else in the module calls it.
func (sm *SymmetricMat3) Eigen() Eigen {
	sym := mat.NewSymDense(3, []float64{
		sm.Xx, sm.Xy, sm.Xz,
		sm.Xy, sm.Yy, sm.Yz,
		sm.Xz, sm.Yz, sm.Zz,
	})

	var es mat.EigenSym
	es.Factorize(sym, true)

	var vectors mat.Dense
	es.VectorsTo(&vectors)
	values := es.Values(nil)

	result := Eigen{}
	for i := 0; i < 3; i++ {
		result.Values[i] = values[i]
		result.Axes[i] = V3{
			X: vectors.At(0, i),
			Y: vectors.At(1, i),
			Z: vectors.At(2, i),
		}
	}
	return result
}
