package audio

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Config holds player settings.
type Config struct {
	Enabled    bool
	SampleRate int
	Volume     float64 // master volume, 0..1
	MaxPowerMW float64 // power that plays at full cue loudness
}

// Player plays explosion cues through the system speaker.
type Player struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	rng         *rand.Rand
	mixer       *beep.Mixer
	initialized bool
	played      int
}

// NewPlayer creates a player. Call Initialize before playing.
func NewPlayer(cfg Config, seed int64) *Player {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	return &Player{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		rng:   rand.New(rand.NewSource(seed)),
		mixer: &beep.Mixer{},
	}
}

// Initialize opens the speaker. A disabled player stays silent without error.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || !p.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Ready reports whether cues will be heard.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// PlayExplosion queues the explosion cue for a plant of the given power.
// Returns false when the player is silent.
func (p *Player) PlayExplosion(powerMW float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return false
	}
	cue := NewExplosionCue(p.rng, p.rate, p.cfg.Volume*CueGain(powerMW, p.cfg.MaxPowerMW))
	speaker.Lock()
	p.mixer.Add(cue)
	speaker.Unlock()
	p.played++
	return true
}

// Played returns how many cues were queued.
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}
