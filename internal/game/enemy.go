package game

import (
	"void-arena/internal/physics"
	"void-arena/internal/vmath"
)

// EnemyKind enum for enemy classification
type EnemyKind uint8

const (
	EnemyScout EnemyKind = iota
	EnemyFighter
	EnemyHeavy
)

// EnemyKinds lists every kind in selection order.
var EnemyKinds = [...]EnemyKind{EnemyScout, EnemyFighter, EnemyHeavy}

// String returns the kind name used in events and snapshots
func (k EnemyKind) String() string {
	switch k {
	case EnemyScout:
		return "scout"
	case EnemyFighter:
		return "fighter"
	case EnemyHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// EnemyStats is the static per-kind configuration
type EnemyStats struct {
	Health       int
	Speed        float64 // Pursuit speed, units/s
	Size         float64 // Visual scale; body radius is Size*0.9
	Points       int     // Score awarded on destruction
	FireInterval float64 // Seconds between shots
	Model        string  // Model file name
}

var enemyStats = [...]EnemyStats{
	EnemyScout:   {Health: 2, Speed: 8, Size: 1.2, Points: 100, FireInterval: 1.5, Model: "scout.fbx"},
	EnemyFighter: {Health: 4, Speed: 5, Size: 1.5, Points: 200, FireInterval: 2.0, Model: "fighter.fbx"},
	EnemyHeavy:   {Health: 8, Speed: 3, Size: 2.0, Points: 400, FireInterval: 3.0, Model: "heavy.fbx"},
}

const (
	enemyMass          = 1.0
	enemyLinearDamping = 0.9
	enemyRadiusScale   = 0.9
	enemyTurnFactor    = 0.005
)

// StatsFor returns the static configuration for kind.
func StatsFor(k EnemyKind) EnemyStats {
	if int(k) >= len(enemyStats) {
		return enemyStats[EnemyScout]
	}
	return enemyStats[k]
}

// Enemy is a live hostile ship.
type Enemy struct {
	entityBase

	Kind         EnemyKind
	Health       int
	MaxHealth    int
	Speed        float64
	Points       int
	FireInterval float64
	FireTimer    float64
	Facing       vmath.Quat // Cosmetic, eased toward the pursuit direction
}

func newEnemy(kind EnemyKind, fireTimer float64) *Enemy {
	st := StatsFor(kind)
	return &Enemy{
		Kind:         kind,
		Health:       st.Health,
		MaxHealth:    st.Health,
		Speed:        st.Speed,
		Points:       st.Points,
		FireInterval: st.FireInterval,
		FireTimer:    fireTimer,
		Facing:       vmath.Identity,
	}
}

func enemyBody(kind EnemyKind, pos vmath.Vec3) physics.Body {
	return physics.Body{
		Position:      pos,
		Radius:        StatsFor(kind).Size * enemyRadiusScale,
		Mass:          enemyMass,
		LinearDamping: enemyLinearDamping,
	}
}
