package game

import (
	"errors"
	"log"
	"math"
	"math/rand"

	"void-arena/internal/config"
	"void-arena/internal/physics"
	"void-arena/internal/vmath"

	"github.com/google/uuid"
)

const (
	shipMass          = 5.0
	shipRadius        = 1.5
	shipLinearDamping = 1 - Friction
	damageFlashTime   = 0.1
	neverFired        = -1e9
)

// ErrNotStarted is returned by Tick before Start.
var ErrNotStarted = errors.New("session not started")

// ModelCatalog reports which enemy models could be loaded. Kinds without a
// model are never spawned.
type ModelCatalog interface {
	Available(kind EnemyKind) bool
}

// Ship is the player state not held by its physics body.
type Ship struct {
	Shield      float64
	Score       int
	Elapsed     float64 // Session time in seconds
	Alive       bool
	Yaw         float64
	Pitch       float64
	YawRate     float64
	PitchRate   float64
	Boosting    bool
	LastFire    float64 // Elapsed time of the last player shot
	DamageFlash float64 // Seconds of damage flash remaining
}

// Session owns every piece of mutable simulation state. It is not safe for
// concurrent use; Engine serializes access.
type Session struct {
	cfg    config.SimConfig
	limits config.ResourceLimits
	rng    *rand.Rand

	world       *physics.World
	shipBody    physics.Handle
	ship        Ship
	enemies     *Store[*Enemy]
	projectiles *Store[*Projectile]
	particles   []ExplosionParticle

	director SpawnDirector
	catalog  ModelCatalog
	input    InputSource

	id       string
	tickNum  uint64
	started  bool
	gameOver bool

	pending   []Event
	sinks     []EventSink
	snapshots *SnapshotPool
}

// NewSession creates an idle session. Call Start before Tick.
func NewSession(cfg config.SimConfig, limits config.ResourceLimits, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	world := physics.NewWorld()

	return &Session{
		cfg:         cfg,
		limits:      limits,
		rng:         rng,
		world:       world,
		enemies:     NewStore[*Enemy](world, 0),
		projectiles: NewStore[*Projectile](world, limits.MaxProjectiles),
		particles:   make([]ExplosionParticle, 0, limits.MaxParticles),
		director:    newDirector(cfg),
		input:       idleInput,
		snapshots:   NewSnapshotPool(cfg, limits),
	}
}

// SetCatalog restricts spawning to kinds with an available model.
func (s *Session) SetCatalog(c ModelCatalog) {
	s.catalog = c
}

// SetInput attaches the control source read once per tick.
func (s *Session) SetInput(src InputSource) {
	if src == nil {
		src = idleInput
	}
	s.input = src
}

// AddSink registers an event consumer.
func (s *Session) AddSink(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}

// Start creates the ship and the initial wave. Calling it twice is a no-op.
func (s *Session) Start() {
	if s.started {
		return
	}
	s.started = true
	s.reset()
	log.Printf("🚀 Session %s started with %d enemies", s.id, s.enemies.Len())
	s.publishSnapshot()
	s.dispatchEvents()
}

// Restart discards the current run and begins a fresh one.
func (s *Session) Restart() {
	if !s.started {
		s.Start()
		return
	}
	prev := s.id
	s.reset()
	log.Printf("🔄 Session %s restarted as %s", prev, s.id)
	s.emit(EventSessionRestarted, nil)
	s.publishSnapshot()
	s.dispatchEvents()
}

// IsGameOver reports whether the shield has been depleted.
func (s *Session) IsGameOver() bool {
	return s.gameOver
}

// Tick advances the simulation by delta seconds in fixed order:
// physics, flight, spawning, combat, effect decay, snapshot, events.
// After game over it returns without mutating anything.
func (s *Session) Tick(delta float64) error {
	if !s.started {
		return ErrNotStarted
	}
	if s.gameOver {
		return nil
	}

	delta = s.clampDelta(delta)
	s.tickNum++
	s.ship.Elapsed += delta

	s.world.Step(delta)

	if s.fly(s.input.Sample(), delta) {
		s.firePlayerProjectile()
	}

	s.spawnStep(delta)
	s.resolveCombat(delta)

	s.particles = updateParticles(s.particles, delta)
	if s.ship.DamageFlash > 0 {
		s.ship.DamageFlash = math.Max(0, s.ship.DamageFlash-delta)
	}

	s.publishSnapshot()
	s.dispatchEvents()
	return nil
}

func (s *Session) clampDelta(delta float64) float64 {
	if delta < 0 || math.IsNaN(delta) {
		return 0
	}
	if s.cfg.MaxDelta > 0 && delta > s.cfg.MaxDelta {
		return s.cfg.MaxDelta
	}
	return delta
}

// reset purges every entity and body, then rebuilds the ship and the
// initial enemy population.
func (s *Session) reset() {
	s.enemies.Purge()
	s.projectiles.Purge()
	s.particles = s.particles[:0]
	s.world.Clear()
	s.director.Reset()
	s.pending = s.pending[:0]

	s.id = uuid.NewString()
	s.tickNum = 0
	s.gameOver = false
	s.ship = Ship{
		Shield:   s.cfg.MaxShield,
		Alive:    true,
		LastFire: neverFired,
	}
	s.shipBody = s.world.Add(physics.Body{
		Radius:        shipRadius,
		Mass:          shipMass,
		LinearDamping: shipLinearDamping,
	})

	initial := 1 + s.rng.Intn(2)
	for i := 0; i < initial; i++ {
		s.spawnEnemy()
	}
}

func (s *Session) emit(t EventType, payload interface{}) {
	s.pending = append(s.pending, NewEvent(t, s.tickNum, s.id, payload))
}

func (s *Session) dispatchEvents() {
	if len(s.pending) == 0 {
		return
	}
	for _, ev := range s.pending {
		for _, sink := range s.sinks {
			sink.HandleEvent(ev)
		}
	}
	for i := range s.pending {
		s.pending[i] = Event{}
	}
	s.pending = s.pending[:0]
}

// ShipPosition returns the ship's current position.
func (s *Session) ShipPosition() vmath.Vec3 {
	if b := s.world.Get(s.shipBody); b != nil {
		return b.Position
	}
	return vmath.Vec3{}
}

// ShipState returns a copy of the ship record.
func (s *Session) ShipState() Ship {
	return s.ship
}

// EnemyCount returns the live enemy population.
func (s *Session) EnemyCount() int {
	return s.enemies.Len()
}

// ProjectileCount returns the live projectile count.
func (s *Session) ProjectileCount() int {
	return s.projectiles.Len()
}

// ParticleCount returns the live explosion particle count.
func (s *Session) ParticleCount() int {
	return len(s.particles)
}

// BodyCount returns the number of live physics bodies.
func (s *Session) BodyCount() int {
	return s.world.Len()
}

// ID returns the current run identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the latest published frame, nil before Start.
func (s *Session) Snapshot() *GameSnapshot {
	return s.snapshots.AcquireRead()
}
