package phy

import (
	"math"

	"github.com/gazed/physics/math/lin"
)

// RelativeMotion is the CFrame of a HardConstraint's child attach point
// relative to its parent attach point, together with its first and second
// time derivatives. The derivatives are expressed as linear/angular
// velocity and acceleration vectors (not quaternion derivatives), matching
// how the Physical tree's motion state is represented elsewhere, and are
// consumed by the inertia-derivative recursion described in the base
// spec's §4.6.
type RelativeMotion struct {
	CFrame *lin.T

	LinearVelocity  lin.V3
	AngularVelocity lin.V3

	LinearAcceleration  lin.V3
	AngularAcceleration lin.V3
}

// HardConstraint is a kinematic joint enforced by construction: its shape
// of relative motion is a closed analytic function of an internal scalar
// state that Update(dt) advances. Tagged-union-style closed set, per the
// design notes: Fixed, Piston, Motor are the only variants — the narrow/
// solver code never needs an open extension point for new kinds.
type HardConstraint interface {
	// Update advances the constraint's internal phase/angle by dt.
	Update(dt float64)

	// RelativeMotion returns the current relative motion (and its
	// derivatives) of the child attach frame relative to the parent
	// attach frame.
	RelativeMotion() RelativeMotion

	// Tag is this constraint kind's stable serialization tag.
	Tag() uint32
}

// FixedConstraint imposes zero relative motion: child attach coincides
// exactly with parent attach. Ported from the original engine's
// FixedConstraint, which likewise carries no state.
type FixedConstraint struct{}

func (FixedConstraint) Update(dt float64) {}

func (FixedConstraint) RelativeMotion() RelativeMotion {
	return RelativeMotion{CFrame: lin.NewT()}
}

func (FixedConstraint) Tag() uint32 { return constraintTagFixed }

// ConstantSpeedMotorConstraint rotates the child attach about its local Z
// axis at a fixed angular speed (radians/second), accumulating the current
// angle each Update. Matches the original's
// ConstantSpeedMotorConstraint{speed, currentAngle} exactly (see
// serialization.cpp).
type ConstantSpeedMotorConstraint struct {
	Speed       float64
	CurrentAngle float64
}

// NewMotorConstraint returns a motor spinning at the given speed (radians
// per second), starting at angle 0.
func NewMotorConstraint(speed float64) *ConstantSpeedMotorConstraint {
	return &ConstantSpeedMotorConstraint{Speed: speed}
}

func (m *ConstantSpeedMotorConstraint) Update(dt float64) {
	m.CurrentAngle += m.Speed * dt
}

func (m *ConstantSpeedMotorConstraint) RelativeMotion() RelativeMotion {
	t := lin.NewT()
	t.SetAa(0, 0, 1, m.CurrentAngle)
	return RelativeMotion{
		CFrame:          t,
		AngularVelocity: lin.V3{X: 0, Y: 0, Z: m.Speed},
	}
}

func (m *ConstantSpeedMotorConstraint) Tag() uint32 { return constraintTagMotor }

// SinusoidalPistonConstraint slides the child attach along its local Z
// axis between min and max following a raised-cosine ease, completing one
// full cycle every period seconds. Matches the original's
// SinusoidalPistonConstraint{minValue, maxValue, period, currentStepInPeriod}.
type SinusoidalPistonConstraint struct {
	MinValue, MaxValue float64
	Period             float64

	currentStepInPeriod float64
}

// NewPistonConstraint returns a piston oscillating between min and max
// over the given period in seconds.
func NewPistonConstraint(min, max, period float64) *SinusoidalPistonConstraint {
	return &SinusoidalPistonConstraint{MinValue: min, MaxValue: max, Period: period}
}

func (p *SinusoidalPistonConstraint) Update(dt float64) {
	p.currentStepInPeriod += dt
	if p.Period > 0 {
		for p.currentStepInPeriod >= p.Period {
			p.currentStepInPeriod -= p.Period
		}
	}
}

func (p *SinusoidalPistonConstraint) phase() float64 {
	if p.Period <= 0 {
		return 0
	}
	return p.currentStepInPeriod / p.Period
}

// position returns the current piston extension: lerp(min,max, 1/2(1-cos(2*pi*phase))).
func (p *SinusoidalPistonConstraint) position() float64 {
	ease := 0.5 * (1 - math.Cos(2*math.Pi*p.phase()))
	return p.MinValue + (p.MaxValue-p.MinValue)*ease
}

// velocity is d(position)/dt, the closed-form derivative of position().
func (p *SinusoidalPistonConstraint) velocity() float64 {
	if p.Period <= 0 {
		return 0
	}
	w := 2 * math.Pi / p.Period
	return (p.MaxValue - p.MinValue) * 0.5 * w * math.Sin(w*p.currentStepInPeriod)
}

// acceleration is d(velocity)/dt, the closed-form second derivative of
// position().
func (p *SinusoidalPistonConstraint) acceleration() float64 {
	if p.Period <= 0 {
		return 0
	}
	w := 2 * math.Pi / p.Period
	return (p.MaxValue - p.MinValue) * 0.5 * w * w * math.Cos(w*p.currentStepInPeriod)
}

func (p *SinusoidalPistonConstraint) RelativeMotion() RelativeMotion {
	t := lin.NewT()
	t.SetLoc(0, 0, p.position())
	return RelativeMotion{
		CFrame:             t,
		LinearVelocity:     lin.V3{X: 0, Y: 0, Z: p.velocity()},
		LinearAcceleration: lin.V3{X: 0, Y: 0, Z: p.acceleration()},
	}
}

func (p *SinusoidalPistonConstraint) Tag() uint32 { return constraintTagPiston }

// CurrentStepInPeriod returns p's internal phase accumulator, exposed for
// serialization round-trips (phy/serial) since the piston's visible state
// includes its phase, not just its min/max/period configuration.
func (p *SinusoidalPistonConstraint) CurrentStepInPeriod() float64 { return p.currentStepInPeriod }

// SetCurrentStepInPeriod restores p's internal phase accumulator after
// deserialization.
func (p *SinusoidalPistonConstraint) SetCurrentStepInPeriod(v float64) { p.currentStepInPeriod = v }

// Serialization tags for the HardConstraint family, matching the original
// engine's dynamic serializer registry ordering in serialization.cpp.
const (
	constraintTagFixed uint32 = 0
	constraintTagMotor uint32 = 1
	constraintTagPiston uint32 = 2
)

// SoftConstraint is a joint enforced by impulse rather than by
// construction. BallConstraint is presently the only variant.
type SoftConstraint interface {
	// AttachPoints returns the constraint's two attach points, expressed
	// in their respective Physical's main-part-local space.
	AttachPoints() (onA, onB lin.V3)
	Tag() uint32
}

// BallConstraint enforces equal world-space velocity (and, via impulse
// over many ticks, equal position) at two offset points on two different
// Physicals — a ball-and-socket joint. Matches the original's
// BallConstraint{attachA, attachB}.
type BallConstraint struct {
	AttachA, AttachB lin.V3
}

func (b *BallConstraint) AttachPoints() (lin.V3, lin.V3) { return b.AttachA, b.AttachB }
func (b *BallConstraint) Tag() uint32                    { return softConstraintTagBall }

const softConstraintTagBall uint32 = 0

// PhysicalConstraint pairs a SoftConstraint with the two Physicals it
// connects, matching the data model's entry of the same name.
type PhysicalConstraint struct {
	PhysA, PhysB *Physical
	Constraint   SoftConstraint
}

// ConstraintGroup is a set of PhysicalConstraints solved together each
// tick.
type ConstraintGroup struct {
	Constraints []PhysicalConstraint
}
