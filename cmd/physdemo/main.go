// physdemo is a headless console harness for exercising phy.World and
// phy.Ticker during development, in place of gazed-vu/eg's rendering
// demos (there is no rendering front-end in this rework — see
// SPEC_FULL.md Non-goals). Run:
//
//	physdemo [scenario]
//	physdemo -scene world.yaml
//
// Invoking physdemo without arguments lists the available scenarios.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gazed/physics/geom"
	"github.com/gazed/physics/math/lin"
	"github.com/gazed/physics/phy"
)

var sceneFlag = flag.String("scene", "", "run a YAML scene file instead of a builtin scenario")

// scenario combines a demo with a short description, mirroring the
// teacher's eg.go example table.
type scenario struct {
	tag         string
	description string
	run         func()
}

func main() {
	scenarios := []scenario{
		{"freefall", "freefall: single Part under gravity (spec scenario 1)", freefall},
		{"motor", "motor: articulated cylinder driven by a ConstantSpeedMotor (scenario 2)", motor},
		{"rope", "rope: three cubes linked by BallConstraints (scenario 4)", rope},
		{"piston", "piston: a SinusoidalPistonConstraint tracing its closed-form stroke (scenario 5)", piston},
	}

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "physdemo [-scene file.yaml] [scenario]")
		for _, s := range scenarios {
			fmt.Fprintln(os.Stderr, "  "+s.description)
		}
	}
	flag.Parse()

	if *sceneFlag != "" {
		runScene(*sceneFlag)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	for _, s := range scenarios {
		if s.tag == flag.Arg(0) {
			s.run()
			return
		}
	}
	flag.Usage()
	os.Exit(1)
}

// freefall drops a unit box from (0,10,0) under gravity (0,-10,0) and
// prints its height every tenth of a second for one second, matching the
// base spec's scenario 1 acceptance numbers (y ≈ 5.0, vy ≈ -10.0 at t=1s).
func freefall() {
	world := phy.NewWorld(lin.V3{X: 0, Y: -10, Z: 0})
	box := phy.NewPart(geom.NewCube(1), 1, 0.5, 0.2)
	box.SetCFrame(frameAt(0, 10, 0))
	phys := world.AddPart(box)

	ticker := phy.NewTicker(world, 120)
	for step := 0; step < 10; step++ {
		for i := 0; i < 12; i++ {
			ticker.RunTick(1.0 / 120)
		}
		slog.Info("freefall", "t", float64(step+1)/10, "y", phys.CFrame.Loc.Y, "vy", phys.Motion.Velocity.Y)
	}
}

// motor spins a child cylinder about an attached ConstantSpeedMotor and
// prints the child's angular velocity relative to main, matching scenario
// 2's steady-state expectation of exactly (0,0,1.0).
func motor() {
	world := phy.NewWorld(lin.V3{})
	main := phy.NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)
	child := phy.NewPart(geom.NewCylinder(1, 1), 1, 0.5, 0)

	motorC := phy.NewMotorConstraint(1.0)
	_, err := main.AttachWithConstraint(child, motorC, lin.NewT(), lin.NewT())
	if err != nil {
		slog.Error("motor: attach failed", "err", err)
		os.Exit(1)
	}
	world.AddPart(main)

	ticker := phy.NewTicker(world, 20)
	for step := 0; step < 20; step++ {
		ticker.RunTick(0.05)
	}
	slog.Info("motor", "childAngularVelocity", motorC.RelativeMotion().AngularVelocity)
}

// rope links three unit cubes in a row with two BallConstraints at ±2
// along z and reports the three cubes' positions after 1,000 ticks, from
// which scenario 4's 1e-3 attach-point drift can be checked.
func rope() {
	world := phy.NewWorld(lin.V3{X: 0, Y: -10, Z: 0})

	a := phy.NewPart(geom.NewCube(1), 1, 0.5, 0)
	b := phy.NewPart(geom.NewCube(1), 1, 0.5, 0)
	c := phy.NewPart(geom.NewCube(1), 1, 0.5, 0)
	a.SetCFrame(frameAt(0, 0, -2))
	b.SetCFrame(frameAt(0, 0, 0))
	c.SetCFrame(frameAt(0, 0, 2))

	physA := world.AddPart(a)
	physB := world.AddPart(b)
	physC := world.AddPart(c)

	world.AddConstraintGroup(&phy.ConstraintGroup{
		Constraints: []phy.PhysicalConstraint{
			{PhysA: physA, PhysB: physB, Constraint: &phy.BallConstraint{AttachA: lin.V3{Z: 1}, AttachB: lin.V3{Z: -1}}},
			{PhysA: physB, PhysB: physC, Constraint: &phy.BallConstraint{AttachA: lin.V3{Z: 1}, AttachB: lin.V3{Z: -1}}},
		},
	})

	ticker := phy.NewTicker(world, 120)
	for i := 0; i < 1000; i++ {
		ticker.RunTick(1.0 / 120)
	}
	slog.Info("rope", "posA", *physA.CFrame.Loc, "posB", *physB.CFrame.Loc, "posC", *physC.CFrame.Loc)
}

// piston drives a SinusoidalPistonConstraint through its full closed-form
// stroke and reports the final attach position, matching scenario 5.
func piston() {
	world := phy.NewWorld(lin.V3{})
	main := phy.NewPart(geom.NewCube(1), 1, 0.5, 0)
	rod := phy.NewPart(geom.NewCube(1), 1, 0.5, 0)

	rodPhys, err := main.AttachWithConstraint(rod, phy.NewPistonConstraint(0, 1, 1.0), lin.NewT(), lin.NewT())
	if err != nil {
		slog.Error("piston: attach failed", "err", err)
		os.Exit(1)
	}
	world.AddPart(main)

	ticker := phy.NewTicker(world, 1000)
	for i := 0; i < 10000; i++ {
		ticker.RunTick(0.001)
	}
	slog.Info("piston", "attachZ", rodPhys.CFrame.Loc.Z)
}

func frameAt(x, y, z float64) *lin.T {
	t := lin.NewT()
	t.SetLoc(x, y, z)
	return t
}

// runScene loads a YAML scene file, ticks it for a fixed 5 seconds of
// simulated time (in 1/60s increments, under the Ticker's default catch-up
// clamp), and prints every MotorizedPhysical's final pose.
func runScene(path string) {
	world, ticker, err := loadScene(path)
	if err != nil {
		slog.Error("runScene", "err", err)
		os.Exit(1)
	}
	for i := 0; i < 300; i++ {
		ticker.RunTick(1.0 / 60)
	}
	for i, phys := range world.Physicals() {
		slog.Info("scene result", "index", i, "pos", *phys.CFrame.Loc)
	}
}
