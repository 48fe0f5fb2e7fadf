package audio

import (
	"time"

	"void-arena/internal/game"

	"github.com/gopxl/beep"
)

// cueFor builds the sound for an event type. ok is false for silent events.
func cueFor(t game.EventType, rate beep.SampleRate) (beep.Streamer, bool) {
	switch t {
	case game.EventShipFired:
		return tone(1320, -4000, 70*time.Millisecond, WaveSquare, 0.3, rate), true
	case game.EventEnemyFired:
		return tone(440, -1200, 90*time.Millisecond, WaveSaw, 0.25, rate), true
	case game.EventEnemyExploded:
		return tone(90, 0, 400*time.Millisecond, WaveNoise, 0.6, rate), true
	case game.EventShipDamaged:
		return tone(110, -60, 220*time.Millisecond, WaveSaw, 0.5, rate), true
	case game.EventEnemySpawned:
		return tone(660, 300, 60*time.Millisecond, WaveSine, 0.2, rate), true
	case game.EventGameOver:
		return beep.Seq(
			tone(392, 0, 250*time.Millisecond, WaveSine, 0.5, rate),
			tone(311, 0, 250*time.Millisecond, WaveSine, 0.5, rate),
			tone(196, -40, 600*time.Millisecond, WaveSine, 0.5, rate),
		), true
	case game.EventSessionRestarted:
		return beep.Seq(
			tone(523, 0, 100*time.Millisecond, WaveSine, 0.4, rate),
			tone(784, 0, 160*time.Millisecond, WaveSine, 0.4, rate),
		), true
	default:
		return nil, false
	}
}
