// Package phy is the physics core: Part, the Physical tree, hard and soft
// constraints, the collision pipeline, World, and Ticker. Grounded on
// gazed/vu's physics package for the ambient style (tagged-union variants,
// log/slog diagnostics, solver structure) and on the original Physics3D
// engine's engine/physical.cpp for the Physical aggregation/motion math,
// which the teacher's Body type does not attempt (it models single rigid
// bodies, not articulated trees).
package phy

import "fmt"

// InvariantViolation is panicked for the fatal invariant-violation class of
// error named in the error handling design: a terrain Part that already
// belongs to a Physical, a zero aggregate mass, a root-only operation on a
// non-root Physical, an unknown soft-constraint tag, and similar "this
// should be impossible" conditions. The bounds and geom packages panic
// with plain errors for their own invariants (BoundsTree depth,
// re-registering a ShapeClass). The simulation thread never recovers from one of these mid-
// tick — it is expected to terminate the process, the same way the
// original engine's assertion failures do.
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return "phy: invariant violation: " + e.msg }

func invariantf(format string, args ...any) {
	panic(&InvariantViolation{msg: fmt.Sprintf(format, args...)})
}

// MisuseError is returned (not panicked) for caller mistakes that are fatal
// to the specific call but not to the simulation: removing a Part that
// isn't in the World, attaching a Part to itself or attaching one that is
// already attached. The serial package reports an incompatible version as
// a plain error.
type MisuseError struct {
	msg string
}

func (e *MisuseError) Error() string { return "phy: " + e.msg }

func misusef(format string, args ...any) error {
	return &MisuseError{msg: fmt.Sprintf(format, args...)}
}
