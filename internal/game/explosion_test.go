package game

import (
	"math/rand"
	"testing"

	"void-arena/internal/vmath"
)

func TestSpawnExplosion(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	pos := vmath.Vec3{X: 1, Y: 2, Z: 3}

	particles := spawnExplosion(nil, pos, rng, 300)

	if len(particles) != ExplosionParticles {
		t.Fatalf("Expected %d particles, got %d", ExplosionParticles, len(particles))
	}
	half := ExplosionSpread / 2
	for i, p := range particles {
		if p.Position != pos {
			t.Errorf("particle %d: wrong origin %v", i, p.Position)
		}
		if p.Lifetime != ExplosionLifetime {
			t.Errorf("particle %d: lifetime %v", i, p.Lifetime)
		}
		for _, c := range []float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z} {
			if c < -half || c > half {
				t.Errorf("particle %d: velocity component %v out of range", i, c)
			}
		}
	}
}

func TestSpawnExplosionLimit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	particles := make([]ExplosionParticle, 10)

	particles = spawnExplosion(particles, vmath.Vec3{}, rng, 12)

	if len(particles) != 12 {
		t.Errorf("Expected 12 particles, got %d", len(particles))
	}
}

func TestUpdateParticles(t *testing.T) {
	particles := []ExplosionParticle{
		{Velocity: vmath.Vec3{X: 2}, Lifetime: 0.8},
		{Velocity: vmath.Vec3{Y: -4}, Lifetime: 0.3},
	}

	particles = updateParticles(particles, 0.5)

	if len(particles) != 1 {
		t.Fatalf("Expected 1 surviving particle, got %d", len(particles))
	}
	if !near(particles[0].Position.X, 1, 1e-9) {
		t.Errorf("Expected x=1, got %v", particles[0].Position.X)
	}

	particles = updateParticles(particles, 0.5)
	if len(particles) != 0 {
		t.Errorf("All particles should have expired, got %d", len(particles))
	}
}

func TestParticleAlpha(t *testing.T) {
	tests := []struct {
		life float64
		want float64
	}{
		{0.8, 1},
		{0.4, 0.5},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		p := ExplosionParticle{Lifetime: tt.life}
		if got := p.Alpha(); !near(got, tt.want, 1e-9) {
			t.Errorf("Alpha(life=%v) = %v, want %v", tt.life, got, tt.want)
		}
	}
}
