// Package physics is a small rigid-body registry: sphere bodies addressed by
// generational handles and advanced with a fixed-substep integrator.
package physics

import (
	"math"

	"void-arena/internal/vmath"
)

const (
	DefaultFixedStep   = 1.0 / 60.0
	DefaultMaxSubSteps = 3
)

// Handle addresses a body. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle was ever issued.
func (h Handle) Valid() bool {
	return h.gen != 0
}

// Body is a sphere rigid body.
type Body struct {
	Position      vmath.Vec3
	Velocity      vmath.Vec3
	Orientation   vmath.Quat
	Radius        float64
	Mass          float64
	LinearDamping float64 // Fraction of velocity lost per second, [0,1)
}

type slot struct {
	body  Body
	gen   uint32
	alive bool
}

// World owns all bodies. It is not safe for concurrent use.
type World struct {
	slots []slot
	free  []uint32
	live  int

	FixedStep   float64
	MaxSubSteps int

	accumulator float64
	time        float64
}

// NewWorld creates an empty world with the default substep settings.
func NewWorld() *World {
	return &World{
		FixedStep:   DefaultFixedStep,
		MaxSubSteps: DefaultMaxSubSteps,
	}
}

// Add inserts a body and returns its handle.
func (w *World) Add(b Body) Handle {
	if b.Orientation == (vmath.Quat{}) {
		b.Orientation = vmath.Identity
	}

	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.slots = append(w.slots, slot{})
		idx = uint32(len(w.slots) - 1)
	}

	s := &w.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.body = b
	s.alive = true
	w.live++

	return Handle{index: idx, gen: s.gen}
}

// Remove retires the body. Stale or unknown handles return false.
func (w *World) Remove(h Handle) bool {
	s := w.lookup(h)
	if s == nil {
		return false
	}
	s.alive = false
	s.body = Body{}
	w.free = append(w.free, h.index)
	w.live--
	return true
}

// Get returns the live body for h, or nil for a stale handle.
// The pointer is invalidated by the next Add.
func (w *World) Get(h Handle) *Body {
	s := w.lookup(h)
	if s == nil {
		return nil
	}
	return &s.body
}

// Len returns the number of live bodies.
func (w *World) Len() int {
	return w.live
}

// Clear removes every body. Outstanding handles become stale.
func (w *World) Clear() {
	w.free = w.free[:0]
	for i := range w.slots {
		s := &w.slots[i]
		if s.alive {
			s.alive = false
			s.body = Body{}
		}
		w.free = append(w.free, uint32(i))
	}
	w.live = 0
	w.accumulator = 0
}

// Time returns the simulated time consumed by substeps.
func (w *World) Time() float64 {
	return w.time
}

// Step advances the world by delta seconds using fixed substeps and returns
// the number of substeps taken. Time beyond MaxSubSteps is dropped.
func (w *World) Step(delta float64) int {
	if delta <= 0 {
		return 0
	}

	w.accumulator += delta
	steps := 0
	for w.accumulator >= w.FixedStep && steps < w.MaxSubSteps {
		w.integrate(w.FixedStep)
		w.accumulator -= w.FixedStep
		w.time += w.FixedStep
		steps++
	}
	w.accumulator = math.Mod(w.accumulator, w.FixedStep)

	return steps
}

func (w *World) integrate(dt float64) {
	for i := range w.slots {
		s := &w.slots[i]
		if !s.alive {
			continue
		}
		b := &s.body
		if b.LinearDamping > 0 {
			b.Velocity = b.Velocity.Scale(math.Pow(1-b.LinearDamping, dt))
		}
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
	}
}

func (w *World) lookup(h Handle) *slot {
	if h.gen == 0 || int(h.index) >= len(w.slots) {
		return nil
	}
	s := &w.slots[h.index]
	if !s.alive || s.gen != h.gen {
		return nil
	}
	return s
}
