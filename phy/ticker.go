package phy

import (
	"sync"
)

// defaultTickSkipThreshold is the default catch-up cap named in §4.9/§9 Open Question
// (c): real time accumulated beyond this many seconds since the last
// drain is discarded rather than replayed as extra low-fidelity steps.
// Grounded directly on eng.go's capTime = 0.2, the "spiral of death"
// guard its own comment names.
const defaultTickSkipThreshold = 0.2

// Ticker drives a World's tick() at a fixed rate, accumulating real time
// supplied by runTick and draining it in fixed dt steps. Grounded on
// eng.go's (eng *engine) Action() loop: the same fixed dt, updateTime
// accumulator, capTime clamp, and `for updateTime >= dt { ...; updateTime
// -= dt }` drain shape, generalized here to call World.tick(dt) instead of
// eng's scene/camera/input update.
type Ticker struct {
	world *World
	dt    float64 // fixed simulation timestep, seconds

	mu              sync.Mutex
	speed           float64 // multiplier applied to real elapsed time before accumulation
	paused          bool
	updateTime      float64
	tickSkipThreshold float64
}

// NewTicker returns a Ticker driving world at the given fixed rate
// (ticks per second), initially running at normal speed.
func NewTicker(world *World, rate float64, opts ...Option) *Ticker {
	cfg := tickerDefaults
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ticker{
		world:             world,
		dt:                1 / rate,
		speed:             1.0,
		tickSkipThreshold: cfg.tickSkipThreshold,
	}
}

// Start resumes draining real time into ticks (a no-op if already running).
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// Stop pauses the Ticker. Per §5's cancellation contract, this call itself
// never interrupts a tick in flight — RunTick (called from the same
// goroutine driving the loop) simply stops being invoked again afterward.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

// IsPaused reports whether the Ticker is currently stopped.
func (t *Ticker) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// SetSpeed sets the real-time-to-sim-time multiplier (1.0 = normal,
// 0 = equivalent to pause per §5, 2.0 = double speed). Not present in
// eng.go's fixed-rate loop; grounded on config.go's functional-options
// convention as the natural place for a runtime-tunable multiplier.
func (t *Ticker) SetSpeed(multiplier float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.speed = multiplier
}

// GetSpeed returns the current speed multiplier.
func (t *Ticker) GetSpeed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speed
}

// RunTick accumulates elapsedReal seconds of real time (already capped at
// tickSkipThreshold, discarding any excess per Open Question (c)) and
// drains whole dt steps from the accumulator, calling World.tick(dt) once
// per step. While paused it ignores elapsedReal and runs exactly one
// World.tick(dt), so a host can single-step a paused simulation.
func (t *Ticker) RunTick(elapsedReal float64) {
	t.mu.Lock()
	if t.paused {
		t.mu.Unlock()
		t.world.tick(t.dt)
		return
	}
	elapsed := elapsedReal * t.speed
	if elapsed > t.tickSkipThreshold {
		elapsed = t.tickSkipThreshold
	}
	t.updateTime += elapsed
	dt := t.dt
	steps := 0
	for t.updateTime >= dt*(1-1e-9) { // tolerate float error in the accumulator
		t.updateTime -= dt
		steps++
	}
	t.mu.Unlock()

	for i := 0; i < steps; i++ {
		t.world.tick(dt)
	}
}
