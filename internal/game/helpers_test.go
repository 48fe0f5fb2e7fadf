package game

import (
	"math/rand"
	"testing"

	"void-arena/internal/config"
	"void-arena/internal/vmath"
)

const frame = 1.0 / 60.0

// newTestSession returns a started session with a fixed seed and no enemies.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(config.DefaultSim(), config.DefaultLimits(), rand.New(rand.NewSource(7)))
	s.Start()
	s.enemies.Purge()
	s.pending = s.pending[:0]
	return s
}

func placeEnemy(s *Session, kind EnemyKind, pos vmath.Vec3) *Enemy {
	e, _ := s.enemies.Spawn(enemyBody(kind, pos), newEnemy(kind, 0))
	return e
}

func placeProjectile(s *Session, origin Origin, pos, dir vmath.Vec3) *Projectile {
	p, _ := s.projectiles.Spawn(projectileBody(origin, pos, dir), newProjectile(origin))
	return p
}

func countEvents(events []Event, t EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// recordingSink captures dispatched events.
type recordingSink struct {
	events []Event
}

func (r *recordingSink) HandleEvent(ev Event) {
	r.events = append(r.events, ev)
}

func near(a, b, tol float64) bool {
	d := a - b
	return d < tol && d > -tol
}
