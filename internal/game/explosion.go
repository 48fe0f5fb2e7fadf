package game

import (
	"math/rand"

	"void-arena/internal/vmath"
)

const (
	ExplosionParticles  = 15
	ExplosionSpread     = 15.0 // Each velocity component is uniform in ±Spread/2
	ExplosionLifetime   = 0.8
	explosionAlphaScale = 1.25
)

// ExplosionParticle is a visual-only fragment. It has no physics body.
type ExplosionParticle struct {
	Position vmath.Vec3
	Velocity vmath.Vec3
	Lifetime float64
}

// Alpha is the fade value derived from remaining lifetime.
func (p ExplosionParticle) Alpha() float64 {
	a := p.Lifetime * explosionAlphaScale
	if a > 1 {
		return 1
	}
	if a < 0 {
		return 0
	}
	return a
}

// spawnExplosion appends a burst at pos. Particles beyond the limit are dropped.
func spawnExplosion(particles []ExplosionParticle, pos vmath.Vec3, rng *rand.Rand, limit int) []ExplosionParticle {
	for i := 0; i < ExplosionParticles; i++ {
		if len(particles) >= limit {
			break
		}
		particles = append(particles, ExplosionParticle{
			Position: pos,
			Velocity: vmath.Vec3{
				X: (rng.Float64() - 0.5) * ExplosionSpread,
				Y: (rng.Float64() - 0.5) * ExplosionSpread,
				Z: (rng.Float64() - 0.5) * ExplosionSpread,
			},
			Lifetime: ExplosionLifetime,
		})
	}
	return particles
}

// updateParticles advances and filters in place (zero allocation).
func updateParticles(particles []ExplosionParticle, delta float64) []ExplosionParticle {
	n := 0
	for _, p := range particles {
		p.Lifetime -= delta
		if p.Lifetime <= 0 {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(delta))
		particles[n] = p
		n++
	}
	for i := n; i < len(particles); i++ {
		particles[i] = ExplosionParticle{}
	}
	return particles[:n]
}
