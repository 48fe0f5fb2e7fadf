package game

import (
	"math"

	"void-arena/internal/config"
	"void-arena/internal/vmath"
)

const (
	difficultyTimeScale  = 300.0  // Seconds to reach full difficulty by survival
	difficultyScoreScale = 5000.0 // Score to reach full difficulty by points

	SpawnMinDistance = 50.0
	SpawnMaxDistance = 150.0
	SpawnHeightRange = 50.0 // Vertical jitter is ±SpawnHeightRange/2
)

// Difficulty maps survival time and score to [0,1]. Whichever axis is
// further along wins.
func Difficulty(elapsed float64, score int) float64 {
	byTime := math.Min(elapsed/difficultyTimeScale, 1)
	byScore := math.Min(float64(score)/difficultyScoreScale, 1)
	return math.Max(math.Max(byTime, byScore), 0)
}

// KindWeights holds one selection weight per EnemyKind. A zero weight
// excludes the kind.
type KindWeights [len(EnemyKinds)]float64

// Sum returns the total weight.
func (w KindWeights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// WeightsFor returns the kind weights for difficulty. Kinds for which
// available returns false get zero weight; a nil available admits all.
func WeightsFor(difficulty float64, available func(EnemyKind) bool) KindWeights {
	w := KindWeights{
		EnemyScout:   0.7 - 0.4*difficulty,
		EnemyFighter: 0.2 + 0.3*difficulty,
		EnemyHeavy:   0.1 + 0.1*difficulty,
	}
	if available != nil {
		for _, k := range EnemyKinds {
			if !available(k) {
				w[k] = 0
			}
		}
	}
	return w
}

// PickKind selects a kind using draw, a uniform value in [0,1) scaled to the
// weight total. Returns false when every weight is zero.
func PickKind(w KindWeights, draw float64) (EnemyKind, bool) {
	total := w.Sum()
	if total <= 0 {
		return EnemyScout, false
	}

	remaining := draw * total
	last := EnemyScout
	for _, k := range EnemyKinds {
		if w[k] <= 0 {
			continue
		}
		last = k
		remaining -= w[k]
		if remaining <= 0 {
			return k, true
		}
	}
	return last, true
}

// AnnulusPoint maps three uniform draws to a point around center: azimuth
// from u1, radial distance in [50,150] from u2, height jitter from u3.
func AnnulusPoint(center vmath.Vec3, u1, u2, u3 float64) vmath.Vec3 {
	angle := u1 * 2 * math.Pi
	dist := SpawnMinDistance + u2*(SpawnMaxDistance-SpawnMinDistance)
	s, c := math.Sincos(angle)
	return center.Add(vmath.Vec3{
		X: c * dist,
		Y: (u3 - 0.5) * SpawnHeightRange,
		Z: s * dist,
	})
}

// SpawnDirector gates spawns on a timer and the live population.
type SpawnDirector struct {
	Interval float64 // Seconds between evaluations
	Cap      int     // Never spawn at or above this population
	Floor    int     // Below this population a spawn is forced
	Chance   float64 // Spawn probability at or above the floor

	timer float64
}

func newDirector(cfg config.SimConfig) SpawnDirector {
	return SpawnDirector{
		Interval: cfg.SpawnInterval,
		Cap:      cfg.MaxEnemies,
		Floor:    cfg.MinEnemies,
		Chance:   cfg.SpawnChance,
	}
}

// Advance accumulates delta and reports whether to spawn this tick.
// The timer only resets when an evaluation happens, so it keeps running
// while the population sits at the cap.
func (d *SpawnDirector) Advance(delta float64, population int, draw func() float64) bool {
	d.timer += delta
	if population >= d.Cap || d.timer < d.Interval {
		return false
	}
	d.timer = 0

	if population >= d.Floor {
		return draw() < d.Chance
	}
	return true
}

// Timer returns the seconds accumulated since the last evaluation.
func (d *SpawnDirector) Timer() float64 {
	return d.timer
}

// Reset zeroes the timer.
func (d *SpawnDirector) Reset() {
	d.timer = 0
}
