// Package serial implements the physics core's persisted-state binary
// schema named in the base spec's §6: a versioned stream of external
// forces, world age, the shape-class registry, every MotorizedPhysical
// (recursively, through its HardConstraint-connected children), every
// terrain Part, and every soft ConstraintGroup — in that exact order.
//
// Grounded on original_source/physics/misc/serialization.cpp's
// serializeRawPartWithCFrame/serializeRigidBodyInContext/
// serializeConstraintInContext field order, and on the teacher's
// established preference for explicit, allocation-light, non-gob/json
// serialization of simulation state (see SPEC_FULL.md §6/§10): every
// field is written with encoding/binary in little-endian order, declared
// by a fixed version/endian header.
package serial

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
	"github.com/gazed/physics/phy"
)

// CurrentVersion is the only versionId this package writes or accepts.
// An unrecognized versionId on read is a fatal error per §6.
const CurrentVersion uint32 = 1

// builtinTagFloor is the smallest tag reserved for the three builtin
// ShapeClasses (see geom's tagCube/tagSphere/tagCylinder) — any tag below
// it names a host-registered PolyhedronShapeClass.
const builtinTagFloor uint32 = 0xFFFFFFF0

const (
	externalForceTagDirectionalGravity uint32 = 0
)

// Write serializes w's entire persisted state to out. Returns the first
// I/O error encountered, if any.
func Write(w *phy.World, out io.Writer) error {
	bw := &writer{w: out}

	bw.u32(CurrentVersion)

	forces := w.ExternalForces()
	bw.u32(uint32(len(forces)))
	for _, f := range forces {
		writeExternalForce(bw, f)
	}

	bw.u64(w.Age)

	tags := collectShapeTags(w)
	bw.u32(uint32(len(tags)))
	for _, tag := range tags {
		writeShapeClassEntry(bw, tag)
	}

	physicals := w.Physicals()
	terrain := w.Terrain()
	bw.u64(uint64(len(physicals)))
	bw.u64(uint64(len(terrain)))

	for _, p := range physicals {
		writeMotorizedPhysical(bw, p)
	}
	for _, t := range terrain {
		writeGlobalPart(bw, t)
	}

	groups := w.ConstraintGroups()
	physIndex := indexPhysicals(physicals)
	bw.u32(uint32(len(groups)))
	for _, g := range groups {
		writeConstraintGroup(bw, g, physIndex)
	}

	return bw.err
}

// Read deserializes a World previously written by Write. The World's
// ShapeClass registry (builtins plus any host-registered polyhedra) must
// already be populated exactly as it was when w was written — §9's
// "Serialization registry ... initialize once at process start" design
// note means this package validates referenced tags rather than
// reconstructing ShapeClass objects from the wire (see DESIGN.md).
func Read(in io.Reader) (*phy.World, error) {
	br := &reader{r: in}

	version := br.u32()
	if br.err == nil && version != CurrentVersion {
		return nil, fmt.Errorf("serial: unknown versionId %d", version)
	}

	forceCount := br.u32()
	var gravity lin.V3
	for i := uint32(0); i < forceCount; i++ {
		g, err := readExternalForce(br)
		if err != nil {
			return nil, err
		}
		gravity = g
	}

	age := br.u64()

	tagCount := br.u32()
	for i := uint32(0); i < tagCount; i++ {
		if err := readShapeClassEntry(br); err != nil {
			return nil, err
		}
	}
	if br.err != nil {
		return nil, br.err
	}

	physicalCount := br.u64()
	terrainCount := br.u64()

	w := phy.NewWorld(gravity)
	w.Age = age

	physicals := make([]*phy.Physical, 0, physicalCount)
	for i := uint64(0); i < physicalCount; i++ {
		p, err := readMotorizedPhysical(br, w)
		if err != nil {
			return nil, err
		}
		physicals = append(physicals, p)
	}
	for i := uint64(0); i < terrainCount; i++ {
		part, err := readGlobalPart(br)
		if err != nil {
			return nil, err
		}
		w.AddTerrainPart(part)
	}

	groupCount := br.u32()
	for i := uint32(0); i < groupCount; i++ {
		if err := readConstraintGroup(br, w, physicals); err != nil {
			return nil, err
		}
	}

	if br.err != nil {
		return nil, br.err
	}
	return w, nil
}

// ---- low-level writer/reader ----------------------------------------

type writer struct {
	w   io.Writer
	err error
}

func (bw *writer) raw(v any) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

func (bw *writer) u32(v uint32)   { bw.raw(v) }
func (bw *writer) u64(v uint64)   { bw.raw(v) }
func (bw *writer) i32(v int32)    { bw.raw(v) }
func (bw *writer) f64(v float64)  { bw.raw(v) }

func (bw *writer) v3(v lin.V3) {
	bw.f64(v.X)
	bw.f64(v.Y)
	bw.f64(v.Z)
}

func (bw *writer) q(v *lin.Q) {
	bw.f64(v.X)
	bw.f64(v.Y)
	bw.f64(v.Z)
	bw.f64(v.W)
}

func (bw *writer) t(v *lin.T) {
	bw.v3(*v.Loc)
	bw.q(v.Rot)
}

type reader struct {
	r   io.Reader
	err error
}

func (br *reader) raw(v any) {
	if br.err != nil {
		return
	}
	br.err = binary.Read(br.r, binary.LittleEndian, v)
}

func (br *reader) u32() (v uint32) { br.raw(&v); return }
func (br *reader) u64() (v uint64) { br.raw(&v); return }
func (br *reader) i32() (v int32)  { br.raw(&v); return }
func (br *reader) f64() (v float64) { br.raw(&v); return }

func (br *reader) v3() lin.V3 {
	return lin.V3{X: br.f64(), Y: br.f64(), Z: br.f64()}
}

func (br *reader) rq() *lin.Q {
	return &lin.Q{X: br.f64(), Y: br.f64(), Z: br.f64(), W: br.f64()}
}

func (br *reader) t() *lin.T {
	loc := br.v3()
	rot := br.rq()
	return &lin.T{Loc: &loc, Rot: rot}
}

// ---- shape class registry --------------------------------------------

func collectShapeTags(w *phy.World) []uint32 {
	seen := make(map[uint32]bool)
	var tags []uint32
	add := func(part *phy.Part) {
		tag := part.Shape.Class.Tag()
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	for _, part := range w.AllParts() {
		add(part)
	}
	return tags
}

func writeShapeClassEntry(bw *writer, tag uint32) {
	bw.u32(tag)
	if tag >= builtinTagFloor {
		bw.u32(0) // builtin: empty vertex table
		bw.u32(0) // and empty triangle table
		return
	}
	class, ok := geom.LookupShapeClass(tag)
	if !ok {
		bw.err = fmt.Errorf("serial: shape class tag %d not registered", tag)
		return
	}
	mesh := class.AsPolyhedron(lin.V3{X: 1, Y: 1, Z: 1})
	bw.u32(uint32(len(mesh.Vertices)))
	for _, v := range mesh.Vertices {
		bw.v3(v)
	}
	bw.u32(uint32(len(mesh.Triangles)))
	for _, t := range mesh.Triangles {
		bw.i32(int32(t.A))
		bw.i32(int32(t.B))
		bw.i32(int32(t.C))
	}
}

// readShapeClassEntry validates that tag is already known in this
// process's ShapeClass registry, per the registration-at-init model this
// rework assumes (see Read's doc comment) — it does not reconstruct a
// PolyhedronShapeClass from the wire, since RegisterShapeClass assigns
// tags per-process and cannot be told to reuse a specific one.
func readShapeClassEntry(br *reader) error {
	tag := br.u32()
	vertCount := br.u32()
	for i := uint32(0); i < vertCount; i++ {
		br.v3()
	}
	triCount := br.u32()
	for i := uint32(0); i < triCount; i++ {
		br.i32()
		br.i32()
		br.i32()
	}
	if br.err != nil {
		return br.err
	}
	if _, ok := geom.LookupShapeClass(tag); !ok {
		return fmt.Errorf("serial: unknown shape class tag %d", tag)
	}
	return nil
}

// ---- external forces ---------------------------------------------------

func writeExternalForce(bw *writer, f phy.ExternalForce) {
	bw.u32(f.Tag())
	switch g := f.(type) {
	case phy.DirectionalGravity:
		bw.v3(g.Gravity)
	default:
		bw.err = fmt.Errorf("serial: unknown ExternalForce tag %d", f.Tag())
	}
}

func readExternalForce(br *reader) (lin.V3, error) {
	tag := br.u32()
	switch tag {
	case externalForceTagDirectionalGravity:
		g := br.v3()
		if br.err != nil {
			return lin.V3{}, br.err
		}
		return g, nil
	default:
		return lin.V3{}, fmt.Errorf("serial: unknown ExternalForce tag %d", tag)
	}
}

// ---- parts --------------------------------------------------------------

func writeShape(bw *writer, s geom.Shape) {
	bw.u32(s.Class.Tag())
	bw.f64(s.W)
	bw.f64(s.H)
	bw.f64(s.D)
}

func readShape(br *reader) geom.Shape {
	tag := br.u32()
	w, h, d := br.f64(), br.f64(), br.f64()
	if br.err != nil {
		return geom.Shape{}
	}
	class, ok := geom.LookupShapeClass(tag)
	if !ok {
		br.err = fmt.Errorf("serial: unknown shape class tag %d", tag)
		return geom.Shape{}
	}
	return geom.NewShape(class, w, h, d)
}

// writePartWithoutCFrame mirrors serializeRawPartWithoutCFrame: shape then
// material properties, omitting the CFrame that its caller writes
// separately (a part attached inside a RigidBody is positioned by its
// attach transform, not by its own absolute frame).
func writePartWithoutCFrame(bw *writer, p *phy.Part) {
	writeShape(bw, p.Shape)
	bw.f64(p.Density)
	bw.f64(p.Friction)
	bw.f64(p.Restitution)
	bw.v3(p.Conveyor)
}

func readPartWithoutCFrame(br *reader) *phy.Part {
	shape := readShape(br)
	density, friction, restitution := br.f64(), br.f64(), br.f64()
	conveyor := br.v3()
	if br.err != nil {
		return nil
	}
	part := phy.NewPart(shape, density, friction, restitution)
	part.Conveyor = conveyor
	return part
}

func writeGlobalPart(bw *writer, p *phy.Part) {
	bw.t(p.CFrame)
	writePartWithoutCFrame(bw, p)
}

func readGlobalPart(br *reader) (*phy.Part, error) {
	frame := br.t()
	part := readPartWithoutCFrame(br)
	if br.err != nil {
		return nil, br.err
	}
	part.SetCFrame(frame)
	return part, nil
}

// ---- rigid bodies / MotorizedPhysical -----------------------------------

func writeRigidBodyInContext(bw *writer, phys *phy.Physical) {
	writePartWithoutCFrame(bw, phys.MainPart)
	bw.u32(uint32(len(phys.Attached)))
	for _, part := range phys.Attached {
		bw.t(part.CFrame) // local attach frame is reconstructed by the reader below
		writePartWithoutCFrame(bw, part)
	}
}

func writeMotorizedPhysical(bw *writer, phys *phy.Physical) {
	bw.v3(phys.Motion.Velocity)
	bw.v3(phys.Motion.AngularVelocity)
	bw.v3(phys.Motion.Acceleration)
	bw.v3(phys.Motion.AngularAcceleration)
	bw.t(phys.CFrame)

	writeRigidBodyInContext(bw, phys)

	bw.u32(uint32(len(phys.Children)))
	for _, child := range phys.Children {
		bw.t(child.AttachOnChild())
		bw.t(child.AttachOnParent())
		writeHardConstraint(bw, child.ParentConstraint())
		writeRigidBodyInContext(bw, child)
		bw.u32(uint32(len(child.Children)))
		writeChildrenRecursive(bw, child)
	}
}

// writeChildrenRecursive writes every descendant of child below its own
// direct children list, depth-first — the wire format nests
// HardConnection+RigidBody+childCount+[...] arbitrarily deep, matching the
// base spec's recursive grammar in §6.
func writeChildrenRecursive(bw *writer, phys *phy.Physical) {
	for _, child := range phys.Children {
		bw.t(child.AttachOnChild())
		bw.t(child.AttachOnParent())
		writeHardConstraint(bw, child.ParentConstraint())
		writeRigidBodyInContext(bw, child)
		bw.u32(uint32(len(child.Children)))
		writeChildrenRecursive(bw, child)
	}
}

func readMotorizedPhysical(br *reader, w *phy.World) (*phy.Physical, error) {
	velocity := br.v3()
	angularVelocity := br.v3()
	acceleration := br.v3()
	angularAcceleration := br.v3()
	frame := br.t()

	mainPart, attached, err := readRigidBodyInContext(br)
	if err != nil {
		return nil, err
	}
	for _, a := range attached {
		if err := mainPart.Attach(a.part, a.attach); err != nil {
			return nil, err
		}
	}

	childCount := br.u32()
	if err := readChildrenRecursive(br, mainPart, int(childCount)); err != nil {
		return nil, err
	}

	// AddPart registers BoundsTree leaves for the whole subtree in one
	// walk, so every Attach/AttachWithConstraint above must run first.
	phys := w.AddPart(mainPart)

	phys.Motion.Velocity = velocity
	phys.Motion.AngularVelocity = angularVelocity
	phys.Motion.Acceleration = acceleration
	phys.Motion.AngularAcceleration = angularAcceleration
	phys.SetCFrame(frame)

	if br.err != nil {
		return nil, br.err
	}
	return phys, nil
}

type attachedPart struct {
	attach *lin.T
	part   *phy.Part
}

func readRigidBodyInContext(br *reader) (*phy.Part, []attachedPart, error) {
	mainPart := readPartWithoutCFrame(br)
	count := br.u32()
	attached := make([]attachedPart, 0, count)
	for i := uint32(0); i < count; i++ {
		attach := br.t()
		part := readPartWithoutCFrame(br)
		attached = append(attached, attachedPart{attach: attach, part: part})
	}
	if br.err != nil {
		return nil, nil, br.err
	}
	return mainPart, attached, nil
}

func readChildrenRecursive(br *reader, parentMainPart *phy.Part, count int) error {
	for i := 0; i < count; i++ {
		attachOnChild := br.t()
		attachOnParent := br.t()
		hc, err := readHardConstraint(br)
		if err != nil {
			return err
		}
		childMainPart, attached, err := readRigidBodyInContext(br)
		if err != nil {
			return err
		}
		grandchildCount := br.u32()

		childPhys, err := parentMainPart.AttachWithConstraint(childMainPart, hc, attachOnParent, attachOnChild)
		if err != nil {
			return err
		}
		for _, a := range attached {
			if err := childMainPart.Attach(a.part, a.attach); err != nil {
				return err
			}
		}
		if err := readChildrenRecursive(br, childMainPart, int(grandchildCount)); err != nil {
			return err
		}
		_ = childPhys
	}
	return nil
}

// ---- hard constraints ---------------------------------------------------

const (
	constraintTagFixed uint32 = 0
	constraintTagMotor uint32 = 1
	constraintTagPiston uint32 = 2
)

func writeHardConstraint(bw *writer, hc phy.HardConstraint) {
	bw.u32(hc.Tag())
	switch c := hc.(type) {
	case phy.FixedConstraint:
		// no payload
	case *phy.ConstantSpeedMotorConstraint:
		bw.f64(c.Speed)
		bw.f64(c.CurrentAngle)
	case *phy.SinusoidalPistonConstraint:
		bw.f64(c.MinValue)
		bw.f64(c.MaxValue)
		bw.f64(c.Period)
		bw.f64(c.CurrentStepInPeriod())
	default:
		bw.err = fmt.Errorf("serial: unknown HardConstraint tag %d", hc.Tag())
	}
}

func readHardConstraint(br *reader) (phy.HardConstraint, error) {
	tag := br.u32()
	switch tag {
	case constraintTagFixed:
		return phy.FixedConstraint{}, br.err
	case constraintTagMotor:
		speed, angle := br.f64(), br.f64()
		m := phy.NewMotorConstraint(speed)
		m.CurrentAngle = angle
		return m, br.err
	case constraintTagPiston:
		min, max, period, phase := br.f64(), br.f64(), br.f64(), br.f64()
		p := phy.NewPistonConstraint(min, max, period)
		p.SetCurrentStepInPeriod(phase)
		return p, br.err
	default:
		return nil, fmt.Errorf("serial: unknown HardConstraint tag %d", tag)
	}
}

// ---- soft constraints / constraint groups -------------------------------

const softConstraintTagBall uint32 = 0

func indexPhysicals(physicals []*phy.Physical) map[*phy.Physical]uint32 {
	idx := make(map[*phy.Physical]uint32, len(physicals))
	for i, p := range physicals {
		idx[p] = uint32(i)
	}
	return idx
}

func writeConstraintGroup(bw *writer, g *phy.ConstraintGroup, physIndex map[*phy.Physical]uint32) {
	bw.u32(uint32(len(g.Constraints)))
	for _, pc := range g.Constraints {
		bw.u32(physIndex[pc.PhysA])
		bw.u32(physIndex[pc.PhysB])
		writeSoftConstraint(bw, pc.Constraint)
	}
}

func writeSoftConstraint(bw *writer, sc phy.SoftConstraint) {
	bw.u32(sc.Tag())
	switch c := sc.(type) {
	case *phy.BallConstraint:
		bw.v3(c.AttachA)
		bw.v3(c.AttachB)
	default:
		bw.err = fmt.Errorf("serial: unknown SoftConstraint tag %d", sc.Tag())
	}
}

func readConstraintGroup(br *reader, w *phy.World, physicals []*phy.Physical) error {
	count := br.u32()
	group := &phy.ConstraintGroup{Constraints: make([]phy.PhysicalConstraint, 0, count)}
	for i := uint32(0); i < count; i++ {
		indexA := br.u32()
		indexB := br.u32()
		sc, err := readSoftConstraint(br)
		if err != nil {
			return err
		}
		if br.err != nil {
			return br.err
		}
		if int(indexA) >= len(physicals) || int(indexB) >= len(physicals) {
			return fmt.Errorf("serial: constraint group references out-of-range physical index")
		}
		group.Constraints = append(group.Constraints, phy.PhysicalConstraint{
			PhysA: physicals[indexA], PhysB: physicals[indexB], Constraint: sc,
		})
	}
	w.AddConstraintGroup(group)
	return nil
}

func readSoftConstraint(br *reader) (phy.SoftConstraint, error) {
	tag := br.u32()
	switch tag {
	case softConstraintTagBall:
		a, b := br.v3(), br.v3()
		return &phy.BallConstraint{AttachA: a, AttachB: b}, br.err
	default:
		return nil, fmt.Errorf("serial: unknown SoftConstraint tag %d", tag)
	}
}
