package game

import (
	"sync/atomic"
	"time"

	"void-arena/internal/config"
	"void-arena/internal/vmath"
)

// ShipSnapshot is an immutable copy of the player ship for rendering
type ShipSnapshot struct {
	Position    vmath.Vec3 `json:"position" msgpack:"position"`
	Velocity    vmath.Vec3 `json:"velocity" msgpack:"velocity"`
	Orientation vmath.Quat `json:"orientation" msgpack:"orientation"`
	Yaw         float64    `json:"yaw" msgpack:"yaw"`
	Pitch       float64    `json:"pitch" msgpack:"pitch"`
	Shield      float64    `json:"shield" msgpack:"shield"`
	Boosting    bool       `json:"boosting" msgpack:"boosting"`
	DamageFlash float64    `json:"damageFlash" msgpack:"damageFlash"` // Seconds of red flash left
	Alive       bool       `json:"alive" msgpack:"alive"`
}

// EnemySnapshot is an immutable enemy for rendering
type EnemySnapshot struct {
	ID        EntityID   `json:"id" msgpack:"id"`
	Kind      string     `json:"kind" msgpack:"kind"`
	Position  vmath.Vec3 `json:"position" msgpack:"position"`
	Facing    vmath.Quat `json:"facing" msgpack:"facing"`
	Scale     float64    `json:"scale" msgpack:"scale"`
	Health    int        `json:"health" msgpack:"health"`
	MaxHealth int        `json:"maxHealth" msgpack:"maxHealth"`
}

// ProjectileSnapshot is an immutable shot for rendering
type ProjectileSnapshot struct {
	ID       EntityID   `json:"id" msgpack:"id"`
	Origin   string     `json:"origin" msgpack:"origin"`
	Position vmath.Vec3 `json:"position" msgpack:"position"`
	Radius   float64    `json:"radius" msgpack:"radius"`
}

// ParticleSnapshot is an immutable explosion fragment
type ParticleSnapshot struct {
	Position vmath.Vec3 `json:"position" msgpack:"position"`
	Alpha    float64    `json:"alpha" msgpack:"alpha"`
}

// GameSnapshot is a complete immutable frame for the render, HUD and
// network collaborators. Slices are pre-allocated to the resource limits.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence" msgpack:"sequence"`
	Timestamp  time.Time `json:"timestamp" msgpack:"timestamp"`
	TickNumber uint64    `json:"tickNumber" msgpack:"tickNumber"`
	SessionID  string    `json:"sessionId" msgpack:"sessionId"`

	Ship        ShipSnapshot         `json:"ship" msgpack:"ship"`
	Enemies     []EnemySnapshot      `json:"enemies" msgpack:"enemies"`
	Projectiles []ProjectileSnapshot `json:"projectiles" msgpack:"projectiles"`
	Particles   []ParticleSnapshot   `json:"particles" msgpack:"particles"`
	HUD         HUDStats             `json:"hud" msgpack:"hud"`

	GameOver     bool    `json:"gameOver" msgpack:"gameOver"`
	FinalScore   int     `json:"finalScore" msgpack:"finalScore"`
	SurvivalTime float64 `json:"survivalTime" msgpack:"survivalTime"`
}

// Clone returns a deep copy that stays valid after later publishes.
func (s *GameSnapshot) Clone() *GameSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Enemies = append([]EnemySnapshot(nil), s.Enemies...)
	c.Projectiles = append([]ProjectileSnapshot(nil), s.Projectiles...)
	c.Particles = append([]ParticleSnapshot(nil), s.Particles...)
	c.HUD.Radar = append([]RadarContact(nil), s.HUD.Radar...)
	return &c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering lets the tick publish while readers hold the last frame;
// a reader must be done with a frame before two more are published.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
	published atomic.Bool
}

// NewSnapshotPool creates a pool sized by the simulation caps
func NewSnapshotPool(sim config.SimConfig, limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{}

	for i := range pool.snapshots {
		pool.snapshots[i] = GameSnapshot{
			Enemies:     make([]EnemySnapshot, 0, sim.MaxEnemies),
			Projectiles: make([]ProjectileSnapshot, 0, limits.MaxProjectiles),
			Particles:   make([]ParticleSnapshot, 0, limits.MaxParticles),
			HUD:         HUDStats{Radar: make([]RadarContact, 0, sim.MaxEnemies)},
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Slices are reset with capacity preserved.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Enemies = snap.Enemies[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Particles = snap.Particles[:0]
	snap.HUD.Radar = snap.HUD.Radar[:0]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite makes the last acquired slot visible to readers
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
	p.published.Store(true)
}

// AcquireRead returns the latest published snapshot, nil before the first publish
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	if !p.published.Load() {
		return nil
	}
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// publishSnapshot copies the session into the next pool slot.
func (s *Session) publishSnapshot() {
	snap := s.snapshots.AcquireWrite()
	snap.TickNumber = s.tickNum
	snap.SessionID = s.id

	shipPos := vmath.Vec3{}
	snap.Ship = ShipSnapshot{
		Yaw:         s.ship.Yaw,
		Pitch:       s.ship.Pitch,
		Shield:      s.ship.Shield,
		Boosting:    s.ship.Boosting,
		DamageFlash: s.ship.DamageFlash,
		Alive:       s.ship.Alive,
		Orientation: vmath.Identity,
	}
	if body := s.world.Get(s.shipBody); body != nil {
		shipPos = body.Position
		snap.Ship.Position = body.Position
		snap.Ship.Velocity = body.Velocity
		snap.Ship.Orientation = body.Orientation
	}

	nearest := -1.0
	for _, e := range s.enemies.Items() {
		body := s.enemies.BodyOf(e)
		if body == nil {
			continue
		}
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:        e.ID(),
			Kind:      e.Kind.String(),
			Position:  body.Position,
			Facing:    e.Facing,
			Scale:     StatsFor(e.Kind).Size,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
		})

		if d := shipPos.Dist(body.Position); nearest < 0 || d < nearest {
			nearest = d
		}
		if c, ok := RadarPoint(shipPos, s.ship.Yaw, body.Position); ok {
			c.Kind = e.Kind.String()
			snap.HUD.Radar = append(snap.HUD.Radar, c)
		}
	}

	for _, p := range s.projectiles.Items() {
		body := s.projectiles.BodyOf(p)
		if body == nil {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:       p.ID(),
			Origin:   p.Origin.String(),
			Position: body.Position,
			Radius:   body.Radius,
		})
	}

	for _, p := range s.particles {
		snap.Particles = append(snap.Particles, ParticleSnapshot{Position: p.Position, Alpha: p.Alpha()})
	}

	shieldPct := 0.0
	if s.cfg.MaxShield > 0 {
		shieldPct = s.ship.Shield / s.cfg.MaxShield * 100
	}
	snap.HUD.EnemyCount = s.enemies.Len()
	snap.HUD.EnemyCap = s.cfg.MaxEnemies
	snap.HUD.Score = s.ship.Score
	snap.HUD.Elapsed = s.ship.Elapsed
	snap.HUD.Speed = snap.Ship.Velocity.Len()
	snap.HUD.ShieldPercent = shieldPct
	snap.HUD.NearestEnemy = nearest

	snap.GameOver = s.gameOver
	snap.FinalScore = 0
	snap.SurvivalTime = 0
	if s.gameOver {
		snap.FinalScore = s.ship.Score
		snap.SurvivalTime = s.ship.Elapsed
	}

	s.snapshots.PublishWrite()
}
