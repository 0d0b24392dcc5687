package telemetry

import "gonum.org/v1/gonum/stat"

// windowSlack absorbs float drift when summing many small steps.
const windowSlack = 1e-9

// Collector accumulates events within sim-time windows and produces
// WindowStats. Windows close on accumulated step time, so they span the same
// simulated duration whatever dt each tick uses.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int
	elapsed         float64

	// Event counters for current window
	explosions int
	emitted    int
	dropped    int
	expired    int
	advected   int
}

// NewCollector creates a stats collector whose windows last
// windowDurationSec simulated seconds.
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordExplosion records a release and how much of the burst fit the pool.
func (c *Collector) RecordExplosion(emitted, dropped int) {
	c.explosions++
	c.emitted += emitted
	c.dropped += dropped
}

// RecordStep records one advection step of dt seconds.
func (c *Collector) RecordStep(dt float64, advected, expired int) {
	c.elapsed += dt
	c.advected += advected
	c.expired += expired
}

// ShouldFlush returns true once the window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.elapsed > 0 && c.elapsed >= c.windowDurationSec-windowSlack
}

// Elapsed returns the simulated seconds recorded in the current window.
func (c *Collector) Elapsed() float64 {
	return c.elapsed
}

// PlumeSample is the end-of-window state the caller measures.
type PlumeSample struct {
	Capacity  int
	Lives     []float64
	Speeds    []float64
	Xs, Zs    []float64
	Coverage  float64
	MeanAlpha float64
}

// Flush produces a WindowStats ending at currentTick and simTime, and resets
// counters for the next window.
func (c *Collector) Flush(currentTick int, simTime float64, sample PlumeSample) WindowStats {
	lifeMean, _, lifeP10, lifeP50, lifeP90 := ComputeDistribution(sample.Lives)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,
		WindowSec:       c.elapsed,

		Particles: len(sample.Lives),

		Explosions: c.explosions,
		Emitted:    c.emitted,
		Dropped:    c.dropped,
		Expired:    c.expired,
		Advected:   c.advected,

		LifeMean: lifeMean,
		LifeP10:  lifeP10,
		LifeP50:  lifeP50,
		LifeP90:  lifeP90,

		Coverage:  sample.Coverage,
		MeanAlpha: sample.MeanAlpha,
	}
	if sample.Capacity > 0 {
		stats.PoolFill = float64(len(sample.Lives)) / float64(sample.Capacity)
	}
	if len(sample.Speeds) > 0 {
		stats.SpeedMean, stats.SpeedStd = stat.PopMeanStdDev(sample.Speeds, nil)
	}
	if len(sample.Xs) > 0 {
		stats.CentroidX, stats.SpreadX = stat.PopMeanStdDev(sample.Xs, nil)
		stats.CentroidZ, stats.SpreadZ = stat.PopMeanStdDev(sample.Zs, nil)
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.elapsed = 0
	c.explosions = 0
	c.emitted = 0
	c.dropped = 0
	c.expired = 0
	c.advected = 0

	return stats
}

// WindowDuration returns the simulated seconds per window.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
