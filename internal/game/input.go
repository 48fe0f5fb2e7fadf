package game

import (
	"math"
	"sync"
)

const (
	// Keyboard turns at half the stick rate.
	keyboardTurn = 0.5

	gamepadStickDeadzone   = 0.2
	gamepadTriggerDeadzone = 0.1
	gamepadFireThreshold   = 0.3
	gamepadBrakeGain       = 1.4 // Stick brake is 0.7 of thrust, brake factor is 0.5
)

// InputSource supplies one control sample per tick.
type InputSource interface {
	Sample() ControlSample
}

// InputSourceFunc adapts a function to InputSource
type InputSourceFunc func() ControlSample

func (f InputSourceFunc) Sample() ControlSample { return f() }

// idleInput is used until a source is attached.
var idleInput = InputSourceFunc(func() ControlSample { return ControlSample{} })

// LatestInput holds the most recent sample pushed by any producer
// (network, terminal). Safe for concurrent use.
type LatestInput struct {
	mu     sync.Mutex
	sample ControlSample
}

// Submit replaces the current sample.
func (l *LatestInput) Submit(c ControlSample) {
	l.mu.Lock()
	l.sample = c.Clamp()
	l.mu.Unlock()
}

// Sample returns the current sample.
func (l *LatestInput) Sample() ControlSample {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sample
}

// KeyboardState is the set of held flight keys.
type KeyboardState struct {
	Forward bool // w
	Back    bool // s
	Left    bool // a
	Right   bool // d
	NoseUp  bool // q
	NoseDn  bool // e
	Boost   bool // b
	Fire    bool // space
}

// Sample maps held keys to a control sample.
func (k KeyboardState) Sample() ControlSample {
	var c ControlSample
	if k.Forward {
		c.Thrust = 1
	}
	if k.Back {
		c.Brake = 1
	}
	if k.Right {
		c.Yaw += keyboardTurn
	}
	if k.Left {
		c.Yaw -= keyboardTurn
	}
	if k.NoseUp {
		c.Pitch += keyboardTurn
	}
	if k.NoseDn {
		c.Pitch -= keyboardTurn
	}
	c.Boost = k.Boost
	c.Fire = k.Fire
	return c
}

// GamepadState is a standard-layout gamepad reading. Stick Y axes are
// positive downward as reported by browsers.
type GamepadState struct {
	LeftX, LeftY   float64
	RightX, RightY float64
	LeftTrigger    float64
	RightTrigger   float64
	B              bool
}

// Sample maps the gamepad to a control sample. Left stick: up thrusts, down
// brakes, sideways yaws. Right stick Y pitches. Right trigger thrusts and
// fires past its threshold, left trigger brakes over everything. B boosts.
func (g GamepadState) Sample() ControlSample {
	var c ControlSample

	if g.LeftY < -gamepadStickDeadzone {
		c.Thrust = -g.LeftY
	}
	if g.LeftY > gamepadStickDeadzone {
		c.Brake = math.Min(1, g.LeftY*gamepadBrakeGain)
	}
	if g.RightTrigger > gamepadTriggerDeadzone {
		c.Thrust = g.RightTrigger
		c.Brake = 0
	}
	if g.LeftTrigger > gamepadTriggerDeadzone {
		c.Brake = g.LeftTrigger
	}

	if math.Abs(g.LeftX) > InputDeadzone {
		c.Yaw = g.LeftX
	}
	if math.Abs(g.RightY) > InputDeadzone {
		c.Pitch = -g.RightY
	}

	c.Boost = g.B
	c.Fire = g.RightTrigger > gamepadFireThreshold
	return c.Clamp()
}
