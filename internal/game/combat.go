package game

import (
	"log"

	"void-arena/internal/vmath"
)

const (
	RamDistance      = 4.0  // Enemy-ship contact range
	RamDamage        = 25.0 // Shield lost on contact
	HitDistance      = 2.5  // Projectile contact range
	EnemyShotDamage  = 10.0 // Shield lost per enemy hit
	PlayerShotDamage = 1    // Enemy health lost per player hit
)

// enemyFacingAxis is the axis enemy models face in their rest pose.
var enemyFacingAxis = vmath.Vec3{Z: 1}

func (s *Session) spawnStep(delta float64) {
	if s.director.Advance(delta, s.enemies.Len(), s.rng.Float64) {
		s.spawnEnemy()
	}
}

// spawnEnemy places one weighted-random enemy on the annulus around the ship.
func (s *Session) spawnEnemy() bool {
	if s.enemies.Len() >= s.cfg.MaxEnemies {
		return false
	}

	var available func(EnemyKind) bool
	if s.catalog != nil {
		available = s.catalog.Available
	}
	weights := WeightsFor(Difficulty(s.ship.Elapsed, s.ship.Score), available)
	kind, ok := PickKind(weights, s.rng.Float64())
	if !ok {
		return false
	}

	pos := AnnulusPoint(s.ShipPosition(), s.rng.Float64(), s.rng.Float64(), s.rng.Float64())
	enemy := newEnemy(kind, s.rng.Float64()*StatsFor(kind).FireInterval)
	s.enemies.Spawn(enemyBody(kind, pos), enemy)

	s.emit(EventEnemySpawned, SpawnPayload{Kind: kind.String(), X: pos.X, Y: pos.Y, Z: pos.Z})
	return true
}

func (s *Session) firePlayerProjectile() {
	body := s.world.Get(s.shipBody)
	if body == nil {
		return
	}
	forward := vmath.Forward.Rotate(body.Orientation)
	pos := body.Position.Add(forward.Scale(PlayerMuzzleOffset))

	if _, ok := s.projectiles.Spawn(projectileBody(OriginPlayer, pos, forward), newProjectile(OriginPlayer)); !ok {
		return
	}
	s.emit(EventShipFired, FirePayload{X: pos.X, Y: pos.Y, Z: pos.Z})
}

func (s *Session) fireEnemyProjectile(from, target vmath.Vec3) {
	dir := target.Sub(from).Normalize()
	if dir.IsZero() {
		return
	}
	if _, ok := s.projectiles.Spawn(projectileBody(OriginEnemy, from, dir), newProjectile(OriginEnemy)); !ok {
		return
	}
	s.emit(EventEnemyFired, FirePayload{X: from.X, Y: from.Y, Z: from.Z})
}

// resolveCombat runs enemy behaviour then projectile hits. It stops as soon
// as the ship is destroyed.
func (s *Session) resolveCombat(delta float64) {
	if s.resolveEnemies(delta) {
		return
	}
	s.resolveProjectiles(delta)
}

// resolveEnemies handles pursuit, enemy fire and ramming. Returns true on
// game over.
func (s *Session) resolveEnemies(delta float64) bool {
	shipPos := s.ShipPosition()

	for _, e := range s.enemies.Items() {
		body := s.enemies.BodyOf(e)
		if body == nil {
			continue
		}

		dir := shipPos.Sub(body.Position).Normalize()
		body.Velocity = dir.Scale(e.Speed)
		if !dir.IsZero() {
			e.Facing = e.Facing.Slerp(vmath.FromUnitVectors(enemyFacingAxis, dir), enemyTurnFactor)
		}
		pos := body.Position

		e.FireTimer += delta
		if e.FireTimer >= e.FireInterval {
			e.FireTimer = 0
			s.fireEnemyProjectile(pos, shipPos)
		}

		if pos.Dist(shipPos) < RamDistance {
			s.destroyEnemy(e, pos, true)
			if s.applyDamage(RamDamage) {
				return true
			}
		}
	}
	return false
}

// resolveProjectiles expires shots and applies hits. Returns true on game over.
func (s *Session) resolveProjectiles(delta float64) bool {
	shipPos := s.ShipPosition()

	for _, p := range s.projectiles.Items() {
		body := s.projectiles.BodyOf(p)
		if body == nil {
			s.projectiles.Despawn(p.ID())
			continue
		}

		p.Lifetime -= delta
		if p.Lifetime <= 0 {
			s.projectiles.Despawn(p.ID())
			continue
		}
		pos := body.Position

		switch p.Origin {
		case OriginPlayer:
			s.resolvePlayerShot(p, pos)
		case OriginEnemy:
			if pos.Dist(shipPos) < HitDistance {
				s.projectiles.Despawn(p.ID())
				if s.applyDamage(EnemyShotDamage) {
					return true
				}
			}
		}
	}
	return false
}

// resolvePlayerShot checks one player projectile against every enemy. The
// first enemy in range takes the hit.
func (s *Session) resolvePlayerShot(p *Projectile, pos vmath.Vec3) {
	for _, e := range s.enemies.Items() {
		body := s.enemies.BodyOf(e)
		if body == nil || pos.Dist(body.Position) >= HitDistance {
			continue
		}

		enemyPos := body.Position
		s.projectiles.Despawn(p.ID())
		e.Health -= PlayerShotDamage
		if e.Health <= 0 {
			s.ship.Score += e.Points
			s.destroyEnemy(e, enemyPos, false)
		}
		return
	}
}

// destroyEnemy removes e with its body and leaves an explosion behind.
func (s *Session) destroyEnemy(e *Enemy, pos vmath.Vec3, rammed bool) {
	s.particles = spawnExplosion(s.particles, pos, s.rng, s.limits.MaxParticles)
	s.enemies.Despawn(e.ID())

	points := e.Points
	if rammed {
		points = 0
	}
	s.emit(EventEnemyExploded, ExplodedPayload{
		Kind:   e.Kind.String(),
		Points: points,
		Score:  s.ship.Score,
		X:      pos.X,
		Y:      pos.Y,
		Z:      pos.Z,
		Rammed: rammed,
	})
}

// applyDamage subtracts amount from the shield. Reaching zero clamps the
// shield and ends the game. Returns true when the game is over.
func (s *Session) applyDamage(amount float64) bool {
	if s.gameOver {
		return true
	}

	s.ship.Shield -= amount
	s.ship.DamageFlash = damageFlashTime
	if s.ship.Shield <= 0 {
		s.ship.Shield = 0
	}
	s.emit(EventShipDamaged, DamagePayload{Amount: amount, Shield: s.ship.Shield})

	if s.ship.Shield == 0 {
		s.endGame()
		return true
	}
	return false
}

func (s *Session) endGame() {
	s.gameOver = true
	s.ship.Alive = false
	log.Printf("💀 Game over: score %d after %.1fs", s.ship.Score, s.ship.Elapsed)
	s.emit(EventGameOver, GameOverPayload{Score: s.ship.Score, Elapsed: s.ship.Elapsed})
}
