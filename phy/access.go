package phy

import "github.com/gazed/physics/math/lin"

// The methods in this file expose otherwise-private tree-linkage fields
// for read-only host iteration and for phy/serial, matching §6's
// "Read-only iteration of Parts and Physicals (for rendering)" contract —
// observers must still go through World.asyncReadOnlyOperation to get a
// consistent snapshot, per §5.

// Parent returns p's parent Physical, or nil if p is a root.
func (p *Physical) Parent() *Physical { return p.parent }

// ParentConstraint returns the HardConstraint connecting p to its parent,
// or nil if p is a root.
func (p *Physical) ParentConstraint() HardConstraint { return p.parentConstraint }

// AttachOnParent returns the attach frame on the parent side, in the
// parent's MainPart-local space, or nil if p is a root.
func (p *Physical) AttachOnParent() *lin.T { return p.attachOnParent }

// AttachOnChild returns the attach frame on p's side, in p's own
// MainPart-local space, or nil if p is a root.
func (p *Physical) AttachOnChild() *lin.T { return p.attachOnChild }

// SetCFrame directly relocates a root Physical and its whole subtree —
// used by phy/serial to restore a MotorizedPhysical's saved pose. Not for
// live simulation use outside a World.asyncModification closure, per §5.
func (p *Physical) SetCFrame(frame *lin.T) {
	if !p.IsRoot() {
		invariantf("SetCFrame called on non-root physical %s", p.ID)
	}
	p.CFrame.Set(frame)
	p.propagate()
	p.refreshTotals()
}

// Terrain returns every non-simulated terrain Part in w.
func (w *World) Terrain() []*Part { return w.terrain }

// ExternalForces returns every registered ExternalForce contributor.
func (w *World) ExternalForces() []ExternalForce { return w.externalForces }

// ConstraintGroups returns every registered ConstraintGroup.
func (w *World) ConstraintGroups() []*ConstraintGroup { return w.groups }
