// Package audio synthesizes the explosion cue with beep. Audio is optional:
// every Player method is safe to call when the speaker never initialized.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Cue timing
const (
	burstDuration = 900 * time.Millisecond
	burstAttack   = 5 * time.Millisecond
	thumpDuration = 600 * time.Millisecond
	thumpAttack   = 2 * time.Millisecond

	thumpStartHz = 90.0
	thumpEndHz   = 35.0

	// minGain is the cue loudness for the weakest plant.
	minGain = 0.25
)

// noiseBurst is low-passed white noise with an exponential decay.
type noiseBurst struct {
	rng      *rand.Rand
	position int
	total    int
	attack   int
	decay    float64 // per-sample multiplier
	level    float64
	smooth   float64 // one-pole low-pass state
	cutoff   float64 // low-pass coefficient in (0, 1]
}

// NewNoiseBurst returns a rumbling noise burst lasting d.
func NewNoiseBurst(rng *rand.Rand, d time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(d)
	return &noiseBurst{
		rng:    rng,
		total:  total,
		attack: rate.N(burstAttack),
		// Reach -60dB at the end of the burst.
		decay:  math.Pow(0.001, 1/float64(max(total, 1))),
		level:  1,
		cutoff: 0.08,
	}
}

func (b *noiseBurst) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if b.position >= b.total {
			return i, i > 0
		}
		white := b.rng.Float64()*2 - 1
		b.smooth += b.cutoff * (white - b.smooth)

		gain := b.level
		if b.position < b.attack {
			gain *= float64(b.position) / float64(b.attack)
		}
		// Low-pass loses energy; compensate so peaks stay near 1.
		v := clampUnit(b.smooth * gain * 3)
		samples[i][0] = v
		samples[i][1] = v

		b.level *= b.decay
		b.position++
	}
	return len(samples), true
}

func (b *noiseBurst) Err() error { return nil }

// thump is a sine sweeping down in pitch with a linear release.
type thump struct {
	rate     beep.SampleRate
	phase    float64
	position int
	total    int
	attack   int
}

// NewThump returns a low sine thump lasting d.
func NewThump(d time.Duration, rate beep.SampleRate) beep.Streamer {
	return &thump{rate: rate, total: rate.N(d), attack: rate.N(thumpAttack)}
}

func (t *thump) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.total {
			return i, i > 0
		}
		progress := float64(t.position) / float64(t.total)
		freq := thumpStartHz + (thumpEndHz-thumpStartHz)*progress

		vol := 1 - progress
		if t.position < t.attack {
			vol *= float64(t.position) / float64(t.attack)
		}
		v := math.Sin(2*math.Pi*t.phase) * vol
		samples[i][0] = v
		samples[i][1] = v

		t.phase += freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *thump) Err() error { return nil }

// CueGain maps plant power to cue loudness in [minGain, 1].
func CueGain(powerMW, maxPowerMW float64) float64 {
	if maxPowerMW <= 0 {
		return 1
	}
	p := math.Max(0, math.Min(1, powerMW/maxPowerMW))
	return minGain + (1-minGain)*p
}

// NewExplosionCue mixes the noise burst and thump, scaled by volume.
func NewExplosionCue(rng *rand.Rand, rate beep.SampleRate, volume float64) beep.Streamer {
	mixed := beep.Mix(
		newVolume(NewNoiseBurst(rng, burstDuration, rate), 0.55),
		newVolume(NewThump(thumpDuration, rate), 0.45),
	)
	return newVolume(beep.Take(rate.N(burstDuration), mixed), volume)
}

// newVolume wraps s with a linear gain; math.Log2(0) is -Inf, so zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
