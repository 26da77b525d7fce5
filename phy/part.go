package phy

import (
	"github.com/google/uuid"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
)

// Part is the smallest rigid primitive: a Shape placed at a world frame
// with material properties, and a weak back-link to its owning Physical.
// Grounded on the base data model's Part entry and on physical.cpp's Part
// (mass/friction/bounciness fields, back-pointer to the owning Physical).
type Part struct {
	ID uuid.UUID

	Shape geom.Shape

	// Density, Friction, Restitution ("bounciness"), and Conveyor are the
	// material properties named by the data model; Mass is derived.
	Density     float64
	Friction    float64
	Restitution float64
	Conveyor    lin.V3

	// CFrame is this Part's world-space frame. Kept in sync by the owning
	// Physical's update()/propagate step; hosts must treat it as read-only
	// outside of World.asyncModification.
	CFrame *lin.T

	// localAttach is this Part's frame relative to its Physical's main
	// part, set at attach time; nil for a Physical's main part itself.
	localAttach *lin.T

	physical *Physical
	attached bool
}

// NewPart returns an unattached Part with the given shape and material
// properties, located at the identity frame. Call Physical.EnsureHasParent
// (directly, or implicitly via World.AddPart) before simulating it.
func NewPart(shape geom.Shape, density, friction, restitution float64) *Part {
	return &Part{
		ID:          uuid.New(),
		Shape:       shape,
		Density:     density,
		Friction:    friction,
		Restitution: restitution,
		CFrame:      lin.NewT(),
	}
}

// Mass returns this Part's mass (shape volume times density).
func (p *Part) Mass() float64 {
	return p.Shape.Volume() * p.Density
}

// Physical returns the Physical this Part is a member of, or nil if it has
// not yet been attached to one.
func (p *Part) Physical() *Physical {
	return p.physical
}

// SetCFrame relocates an unattached Part, or the main part of a Physical
// that is not yet part of a World. Once a Part is simulated, its frame
// moves only through the owning Physical's motion — callers that need to
// teleport a live Part should go through World.asyncModification.
func (p *Part) SetCFrame(frame *lin.T) {
	p.CFrame.Set(frame)
}

// EnsureHasParent wraps a solitary Part in a fresh single-part Physical if
// it does not already have one, returning that Physical either way. This
// is the Go analogue of the original engine's Part::ensureHasParent.
func (p *Part) EnsureHasParent() *Physical {
	if p.physical != nil {
		return p.physical
	}
	return newRigidBodyPhysical(p)
}

// Attach rigidly welds child to p's owning Physical at the given frame
// (child's CFrame relative to the Physical's main part). child must not
// already be attached anywhere. This is the "rigid body" attachment kind
// named in the data model — no relative motion, only a fixed offset.
func (p *Part) Attach(child *Part, attachCFrame *lin.T) error {
	if child == p {
		return misusef("attach: part cannot attach to itself")
	}
	if child.attached {
		return misusef("attach: part %s is already attached", child.ID)
	}
	owner := p.EnsureHasParent()
	child.localAttach = lin.NewT().Set(attachCFrame)
	child.attached = true
	child.physical = owner
	owner.Attached = append(owner.Attached, child)
	owner.refresh()
	owner.root.refreshTotals()
	return nil
}

// AttachWithConstraint attaches child as the main part of a new, separate
// Physical connected to p's Physical via a HardConstraint — the
// "articulated" attachment kind named in the data model. attachOnParent
// and attachOnChild are expressed in each side's own main-part-local
// space.
func (p *Part) AttachWithConstraint(child *Part, hc HardConstraint, attachOnParent, attachOnChild *lin.T) (*Physical, error) {
	if child == p {
		return nil, misusef("attach: part cannot attach to itself")
	}
	if child.attached {
		return nil, misusef("attach: part %s is already attached", child.ID)
	}
	parent := p.EnsureHasParent()
	childPhysical := newRigidBodyPhysical(child)
	childPhysical.parent = parent
	childPhysical.parentConstraint = hc
	childPhysical.attachOnParent = lin.NewT().Set(attachOnParent)
	childPhysical.attachOnChild = lin.NewT().Set(attachOnChild)
	childPhysical.root = parent.root
	parent.Children = append(parent.Children, childPhysical)
	child.attached = true
	parent.refresh()
	parent.root.refreshTotals()
	return childPhysical, nil
}
