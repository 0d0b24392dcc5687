package audio

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(8000)

// drain streams s to exhaustion and returns every sample of the left channel.
func drain(t *testing.T, s beep.Streamer) []float64 {
	t.Helper()
	var out []float64
	buf := make([][2]float64, 512)
	for guard := 0; guard < 1000; guard++ {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, buf[i][0])
		}
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func peak(samples []float64) float64 {
	var m float64
	for _, v := range samples {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func TestGeneratorsLengthAndRange(t *testing.T) {
	tests := []struct {
		name string
		s    beep.Streamer
		d    time.Duration
	}{
		{"noise", NewNoiseBurst(rand.New(rand.NewSource(1)), 250*time.Millisecond, testRate), 250 * time.Millisecond},
		{"thump", NewThump(300*time.Millisecond, testRate), 300 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := drain(t, tt.s)
			if len(samples) != testRate.N(tt.d) {
				t.Errorf("got %d samples, want %d", len(samples), testRate.N(tt.d))
			}
			if p := peak(samples); p > 1 || p == 0 {
				t.Errorf("peak = %v, want in (0, 1]", p)
			}
			if samples[0] != 0 {
				t.Errorf("first sample = %v, want 0 (attack starts silent)", samples[0])
			}
		})
	}
}

func TestNoiseBurstDecays(t *testing.T) {
	samples := drain(t, NewNoiseBurst(rand.New(rand.NewSource(2)), time.Second, testRate))
	q := len(samples) / 4
	head, tail := peak(samples[:q]), peak(samples[3*q:])
	if tail >= head/4 {
		t.Errorf("tail peak %v not well below head peak %v", tail, head)
	}
}

func TestCueGain(t *testing.T) {
	tests := []struct {
		name  string
		power float64
		want  float64
	}{
		{"zero power", 0, minGain},
		{"full power", 8000, 1},
		{"over max", 20000, 1},
		{"half", 4000, minGain + (1-minGain)/2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CueGain(tt.power, 8000); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CueGain(%v) = %v, want %v", tt.power, got, tt.want)
			}
		})
	}
	if CueGain(100, 0) != 1 {
		t.Error("missing max power should play at full loudness")
	}
}

func TestExplosionCueScalesWithVolume(t *testing.T) {
	quiet := drain(t, NewExplosionCue(rand.New(rand.NewSource(3)), testRate, 0.2))
	loud := drain(t, NewExplosionCue(rand.New(rand.NewSource(3)), testRate, 0.8))

	if len(quiet) != testRate.N(burstDuration) || len(loud) != len(quiet) {
		t.Fatalf("lengths %d/%d, want %d", len(quiet), len(loud), testRate.N(burstDuration))
	}
	for i := range quiet {
		if math.Abs(loud[i]-4*quiet[i]) > 1e-9 {
			t.Fatalf("sample %d: loud %v is not 4x quiet %v", i, loud[i], quiet[i])
		}
	}

	silent := drain(t, NewExplosionCue(rand.New(rand.NewSource(3)), testRate, 0))
	if peak(silent) != 0 {
		t.Error("zero volume should be silent")
	}
}

func TestPlayerSilentWithoutInit(t *testing.T) {
	p := NewPlayer(Config{Enabled: false, Volume: 1, MaxPowerMW: 8000}, 1)

	if err := p.Initialize(); err != nil {
		t.Fatalf("disabled Initialize: %v", err)
	}
	if p.Ready() {
		t.Error("disabled player should not be ready")
	}
	if p.PlayExplosion(5000) {
		t.Error("disabled player should not play")
	}
	if p.Played() != 0 {
		t.Errorf("Played() = %d, want 0", p.Played())
	}
	p.Close()
}
