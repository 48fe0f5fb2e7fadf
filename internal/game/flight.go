package game

import (
	"math"

	"void-arena/internal/vmath"
)

const (
	MaxSpeed        = 50.0
	MaxAcceleration = 0.5
	Friction        = 0.98 // Velocity multiplier applied every tick
	TurnRate        = 2.0  // rad/s at full deflection
	RateDecay       = 0.9  // Per-tick turn rate decay without input
	BrakeFactor     = 0.5
	BoostMultiplier = 2.0
	InputDeadzone   = 0.1
	ShieldRegenRate = 0.3 // Shield units per second
	FireCooldown    = 0.2 // Seconds between player shots

	// Acceleration is tuned per 60 Hz frame.
	frameScale = 60.0
)

// ControlSample is one tick of normalized pilot input.
type ControlSample struct {
	Thrust float64 `json:"thrust" msgpack:"thrust"` // [0,1]
	Brake  float64 `json:"brake" msgpack:"brake"`   // [0,1]
	Yaw    float64 `json:"yaw" msgpack:"yaw"`       // [-1,1], positive turns right
	Pitch  float64 `json:"pitch" msgpack:"pitch"`   // [-1,1], positive noses up
	Boost  bool    `json:"boost" msgpack:"boost"`
	Fire   bool    `json:"fire" msgpack:"fire"`
}

// Clamp bounds every axis to its valid range. NaN becomes zero.
func (c ControlSample) Clamp() ControlSample {
	c.Thrust = clampAxis(c.Thrust, 0, 1)
	c.Brake = clampAxis(c.Brake, 0, 1)
	c.Yaw = clampAxis(c.Yaw, -1, 1)
	c.Pitch = clampAxis(c.Pitch, -1, 1)
	return c
}

func clampAxis(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

// Acceleration returns the signed forward acceleration for the sample.
// Brake overrides thrust.
func (c ControlSample) Acceleration() float64 {
	accel := 0.0
	if c.Thrust > InputDeadzone {
		accel = MaxAcceleration * c.Thrust
	}
	if c.Brake > InputDeadzone {
		accel = -MaxAcceleration * c.Brake * BrakeFactor
	}
	return accel
}

// turnRate returns the new angular rate for one axis.
func turnRate(deflection, current float64) float64 {
	if math.Abs(deflection) > InputDeadzone {
		return deflection * TurnRate
	}
	return current * RateDecay
}

// fly applies one control sample to the ship. Returns true when a player
// projectile should be fired this tick.
func (s *Session) fly(in ControlSample, delta float64) bool {
	body := s.world.Get(s.shipBody)
	if body == nil {
		return false
	}
	in = in.Clamp()
	ship := &s.ship

	mult := 1.0
	if in.Boost {
		mult = BoostMultiplier
	}
	ship.Boosting = in.Boost

	forward := vmath.Forward.Rotate(body.Orientation)
	accel := in.Acceleration()
	vel := body.Velocity.Add(forward.Scale(accel * mult * delta * frameScale))
	vel = vel.Scale(Friction)
	body.Velocity = vel.ClampLen(MaxSpeed * mult)

	ship.YawRate = turnRate(in.Yaw, ship.YawRate)
	ship.PitchRate = turnRate(in.Pitch, ship.PitchRate)
	// A positive Y rotation turns left, so right yaw subtracts.
	ship.Yaw -= ship.YawRate * delta
	ship.Pitch += ship.PitchRate * delta
	body.Orientation = vmath.FromYawPitch(ship.Yaw, ship.Pitch)

	if ship.Shield < s.cfg.MaxShield {
		ship.Shield = math.Min(s.cfg.MaxShield, ship.Shield+ShieldRegenRate*delta)
	}

	if in.Fire && ship.Elapsed-ship.LastFire >= FireCooldown {
		ship.LastFire = ship.Elapsed
		return true
	}
	return false
}
