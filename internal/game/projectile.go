package game

import (
	"void-arena/internal/physics"
	"void-arena/internal/vmath"
)

// Origin tags who fired a projectile
type Origin uint8

const (
	OriginPlayer Origin = iota
	OriginEnemy
)

func (o Origin) String() string {
	if o == OriginEnemy {
		return "enemy"
	}
	return "player"
}

const (
	PlayerProjectileSpeed    = 50.0
	PlayerProjectileLifetime = 3.0
	PlayerProjectileRadius   = 0.18
	PlayerMuzzleOffset       = 3.0 // Spawn distance ahead of the ship

	EnemyProjectileSpeed    = 30.0
	EnemyProjectileLifetime = 4.0
	EnemyProjectileRadius   = 0.25

	projectileMass = 0.05
)

// Projectile is a live shot.
type Projectile struct {
	entityBase

	Origin   Origin
	Lifetime float64 // Seconds remaining
}

// projectileBody builds the body for a shot travelling along dir.
func projectileBody(origin Origin, pos, dir vmath.Vec3) physics.Body {
	speed, radius := PlayerProjectileSpeed, PlayerProjectileRadius
	if origin == OriginEnemy {
		speed, radius = EnemyProjectileSpeed, EnemyProjectileRadius
	}
	return physics.Body{
		Position: pos,
		Velocity: dir.Normalize().Scale(speed),
		Radius:   radius,
		Mass:     projectileMass,
	}
}

func newProjectile(origin Origin) *Projectile {
	life := PlayerProjectileLifetime
	if origin == OriginEnemy {
		life = EnemyProjectileLifetime
	}
	return &Projectile{Origin: origin, Lifetime: life}
}
