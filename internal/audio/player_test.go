package audio

import (
	"testing"
	"time"

	"void-arena/internal/config"
	"void-arena/internal/game"
)

func testPlayer() *CuePlayer {
	cfg := config.DefaultAudio()
	cfg.Volume = 1
	return NewCuePlayer(cfg)
}

func TestPlayAddsCue(t *testing.T) {
	p := testPlayer()

	if !p.play(game.EventEnemyExploded) {
		t.Fatal("Explosion should have a cue")
	}
	if p.Active() != 1 {
		t.Errorf("Expected 1 active cue, got %d", p.Active())
	}
	if p.play(game.EventTypeUnknown) {
		t.Error("Unknown events should be silent")
	}
}

func TestReadSamplesDrainsCues(t *testing.T) {
	p := testPlayer()
	p.play(game.EventShipFired)

	buf := make([]int16, 2*44100/10)
	if n := p.ReadSamples(buf); n != len(buf) {
		t.Fatalf("Expected %d samples, got %d", len(buf), n)
	}

	nonZero := false
	for _, s := range buf {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("Fire cue should produce sound")
	}

	// 70ms cue is fully consumed by 100ms of output, the next pull retires it
	p.ReadSamples(buf)
	if p.Active() != 0 {
		t.Errorf("Cue should be finished, %d still active", p.Active())
	}
}

func TestEveryEventHasCue(t *testing.T) {
	types := []game.EventType{
		game.EventShipFired,
		game.EventEnemyFired,
		game.EventEnemyExploded,
		game.EventShipDamaged,
		game.EventEnemySpawned,
		game.EventGameOver,
		game.EventSessionRestarted,
	}

	for _, et := range types {
		if _, ok := cueFor(et, 44100); !ok {
			t.Errorf("No cue for %v", et)
		}
	}
}

func TestVoiceLimit(t *testing.T) {
	p := testPlayer()

	for i := 0; i < maxActiveCues+5; i++ {
		p.play(game.EventGameOver)
	}

	if p.Active() != maxActiveCues {
		t.Errorf("Expected %d voices, got %d", maxActiveCues, p.Active())
	}
	if got := p.GetStats()["dropped"].(uint64); got != 5 {
		t.Errorf("Expected 5 dropped cues, got %d", got)
	}
}

func TestHandleEventThroughWorker(t *testing.T) {
	p := testPlayer()
	p.Start()
	defer p.Stop()

	p.HandleEvent(game.NewEvent(game.EventShipDamaged, 1, "s", nil))

	deadline := time.Now().Add(time.Second)
	for p.Active() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.Active() != 1 {
		t.Error("Worker should have queued the cue")
	}
}

func TestDisabledPlayerIgnoresEvents(t *testing.T) {
	cfg := config.DefaultAudio()
	cfg.Enabled = false
	p := NewCuePlayer(cfg)

	p.HandleEvent(game.NewEvent(game.EventShipFired, 1, "s", nil))

	if len(p.queue) != 0 {
		t.Error("Disabled player should not queue cues")
	}
	if err := p.Init(); err != nil {
		t.Errorf("Init on a disabled player should be a no-op, got %v", err)
	}
}

func TestFloatToInt16(t *testing.T) {
	if floatToInt16(0) != 0 {
		t.Error("Zero should map to zero")
	}
	if floatToInt16(2) != 32767 || floatToInt16(-2) != -32768 {
		t.Error("Out of range samples should clamp")
	}
	if v := floatToInt16(0.5); v < 16000 || v > 16500 {
		t.Errorf("Unexpected half-scale value %d", v)
	}
}
