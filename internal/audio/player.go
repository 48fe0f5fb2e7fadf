// Package audio turns simulation events into short synthesized cues.
package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"void-arena/internal/config"
	"void-arena/internal/game"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	cueQueueSize  = 64
	maxActiveCues = 16 // Mixer voices; extra cues are dropped
)

// CuePlayer is a game.EventSink that mixes one cue per event. HandleEvent
// never blocks the tick; a worker goroutine feeds the mixer.
//
// Without Init the mixer is drained by ReadSamples instead of the speaker,
// which is how headless hosts and tests consume it.
type CuePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	volume      float64
	enabled     bool
	initialized bool

	queue    chan game.EventType
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	workBuffer [][2]float64
	played     uint64 // atomic
	dropped    uint64 // atomic
}

// NewCuePlayer creates a stopped player
func NewCuePlayer(cfg config.AudioConfig) *CuePlayer {
	rate := beep.SampleRate(cfg.SampleRate)
	if rate <= 0 {
		rate = beep.SampleRate(config.DefaultAudio().SampleRate)
	}
	return &CuePlayer{
		mixer:      &beep.Mixer{},
		rate:       rate,
		volume:     cfg.Volume,
		enabled:    cfg.Enabled,
		queue:      make(chan game.EventType, cueQueueSize),
		stopChan:   make(chan struct{}),
		workBuffer: make([][2]float64, rate.N(time.Second/30)),
	}
}

// Init opens the audio device and plays the mixer through it
func (p *CuePlayer) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.enabled {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(newVolume(p.mixer, p.volume))
	p.initialized = true
	log.Printf("🔊 Audio cues enabled at %d Hz", p.rate)
	return nil
}

// Start launches the worker
func (p *CuePlayer) Start() {
	if p.running.Swap(true) {
		return
	}
	p.wg.Add(1)
	go p.loop()
}

// Stop halts the worker and silences the mixer
func (p *CuePlayer) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
		if p.running.Load() {
			p.wg.Wait()
		}

		p.lockMixer()
		p.mixer.Clear()
		p.unlockMixer()
	})
}

// HandleEvent queues the cue for ev. Drops when the queue is full.
func (p *CuePlayer) HandleEvent(ev game.Event) {
	if !p.enabled {
		return
	}
	select {
	case p.queue <- ev.Type:
	default:
		atomic.AddUint64(&p.dropped, 1)
	}
}

func (p *CuePlayer) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case t := <-p.queue:
			p.play(t)
		}
	}
}

// play adds the cue for t to the mixer. Returns false if nothing was added.
func (p *CuePlayer) play(t game.EventType) bool {
	cue, ok := cueFor(t, p.rate)
	if !ok {
		return false
	}

	p.lockMixer()
	defer p.unlockMixer()

	if p.mixer.Len() >= maxActiveCues {
		atomic.AddUint64(&p.dropped, 1)
		return false
	}
	p.mixer.Add(cue)
	atomic.AddUint64(&p.played, 1)
	return true
}

// lockMixer guards the mixer against the speaker callback, or against
// ReadSamples when running headless.
func (p *CuePlayer) lockMixer() {
	p.mu.Lock()
	if p.initialized {
		speaker.Lock()
	}
}

func (p *CuePlayer) unlockMixer() {
	if p.initialized {
		speaker.Unlock()
	}
	p.mu.Unlock()
}

// Active returns the number of cues still sounding
func (p *CuePlayer) Active() int {
	p.lockMixer()
	defer p.unlockMixer()
	return p.mixer.Len()
}

// ReadSamples pulls interleaved stereo PCM from the mixer. Only meaningful
// without Init; with a speaker attached it returns silence.
func (p *CuePlayer) ReadSamples(buffer []int16) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		for i := range buffer {
			buffer[i] = 0
		}
		return len(buffer)
	}

	frames := len(buffer) / 2
	for done := 0; done < frames; {
		chunk := p.workBuffer
		if frames-done < len(chunk) {
			chunk = chunk[:frames-done]
		}
		n, _ := p.mixer.Stream(chunk)
		if n == 0 {
			for i := done * 2; i < frames*2; i++ {
				buffer[i] = 0
			}
			break
		}
		for i := 0; i < n; i++ {
			buffer[(done+i)*2] = floatToInt16(chunk[i][0] * p.volume)
			buffer[(done+i)*2+1] = floatToInt16(chunk[i][1] * p.volume)
		}
		done += n
	}
	return frames * 2
}

// GetStats returns cue counters
func (p *CuePlayer) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"played":  atomic.LoadUint64(&p.played),
		"dropped": atomic.LoadUint64(&p.dropped),
		"enabled": p.enabled,
		"speaker": p.initialized,
	}
}

// floatToInt16 converts a [-1,1] sample with soft clipping
func floatToInt16(sample float64) int16 {
	scaled := sample * 32767.0

	if scaled > 30000 {
		scaled = 30000 + (scaled-30000)/4
	} else if scaled < -30000 {
		scaled = -30000 + (scaled+30000)/4
	}

	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}
