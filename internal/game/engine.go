package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"void-arena/internal/config"
)

// TickStats summarizes one engine tick for observers (metrics, logs).
type TickStats struct {
	Duration    time.Duration
	Delta       float64
	Enemies     int
	Projectiles int
	Particles   int
	Score       int
	Shield      float64
	GameOver    bool
}

// EngineConfig holds everything needed to build an Engine
type EngineConfig struct {
	Sim     config.SimConfig
	Limits  config.ResourceLimits
	Catalog ModelCatalog // Optional
}

// Engine drives a Session in real time. All session access goes through
// the engine mutex, including snapshot copies.
type Engine struct {
	mu      sync.RWMutex
	session *Session
	input   *LatestInput

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	lastTick time.Time

	tickCount int64
	onTick    func(TickStats)

	eventLog *EventLog
	seed     int64
}

// NewEngine creates an engine and its session. The session is started by Start.
func NewEngine(cfg EngineConfig) *Engine {
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tickRate := cfg.Sim.TickRate
	if tickRate <= 0 {
		tickRate = config.DefaultSim().TickRate
	}

	e := &Engine{
		session:  NewSession(cfg.Sim, cfg.Limits, rand.New(rand.NewSource(seed))),
		input:    &LatestInput{},
		tickRate: tickRate,
		eventLog: NewEventLog(),
		seed:     seed,
	}
	e.session.SetInput(e.input)
	e.session.AddSink(e.eventLog)
	if cfg.Catalog != nil {
		e.session.SetCatalog(cfg.Catalog)
	}
	return e
}

// Start begins the session and the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.session.Start()
	e.lastTick = time.Now()
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case now := <-ticker.C:
				e.tick(now)
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Simulation started at %d TPS (seed %d)", e.tickRate, e.seed)
}

// Stop stops the game loop. Safe to call more than once; Start may follow.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Simulation stopped")
}

// tick advances the session by the wall-clock time since the previous tick
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	delta := now.Sub(e.lastTick).Seconds()
	e.lastTick = now
	stats := e.advance(delta)
	observer := e.onTick
	e.mu.Unlock()

	if observer != nil {
		observer(stats)
	}
}

// Step advances the session by delta without the real-time loop. Starts the
// session if needed. Used by hosts that own their own clock, and by tests.
func (e *Engine) Step(delta float64) TickStats {
	e.mu.Lock()
	if !e.session.started {
		e.session.Start()
	}
	stats := e.advance(delta)
	observer := e.onTick
	e.mu.Unlock()

	if observer != nil {
		observer(stats)
	}
	return stats
}

// advance must be called with e.mu held
func (e *Engine) advance(delta float64) TickStats {
	start := time.Now()
	e.tickCount++
	if err := e.session.Tick(delta); err != nil {
		log.Printf("⚠️ Tick skipped: %v", err)
	}

	return TickStats{
		Duration:    time.Since(start),
		Delta:       delta,
		Enemies:     e.session.EnemyCount(),
		Projectiles: e.session.ProjectileCount(),
		Particles:   e.session.ParticleCount(),
		Score:       e.session.ship.Score,
		Shield:      e.session.ship.Shield,
		GameOver:    e.session.gameOver,
	}
}

// SubmitInput replaces the control sample used by upcoming ticks
func (e *Engine) SubmitInput(c ControlSample) {
	e.input.Submit(c)
}

// Restart begins a fresh run
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Restart()
}

// IsGameOver reports whether the current run has ended
func (e *Engine) IsGameOver() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.IsGameOver()
}

// GetSnapshot returns a private copy of the latest snapshot, nil before Start.
// Pool slots are reused by the tick, so callers never see them directly.
func (e *Engine) GetSnapshot() *GameSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.Snapshot().Clone()
}

// AddSink registers an event consumer. Call before Start.
func (e *Engine) AddSink(sink EventSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.AddSink(sink)
}

// SetTickObserver installs a callback run after every tick, outside the lock
func (e *Engine) SetTickObserver(fn func(TickStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// TickCount returns the number of ticks processed
func (e *Engine) TickCount() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tickCount
}

// StartEventLog starts the JSONL journal
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and closes the journal
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns journal counters
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// EventLogCounts returns accepted and dropped journal events
func (e *Engine) EventLogCounts() (total, dropped uint64) {
	return e.eventLog.GetTotalCount(), e.eventLog.GetDroppedCount()
}
