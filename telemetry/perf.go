package telemetry

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation step.
const (
	PhaseAdvect    = "advect"
	PhaseDeposit   = "deposit"
	PhaseEmit      = "emit"
	PhaseTelemetry = "telemetry"
)

// phases lists every phase in reporting order.
var phases = []string{PhaseAdvect, PhaseDeposit, PhaseEmit, PhaseTelemetry}

// PerfCollector times simulation ticks and their phases over a rolling
// window of ticks. Phases outside the known set get their own slot the first
// time they are seen.
type PerfCollector struct {
	now func() time.Time

	window int
	filled int
	next   int
	ticks  []time.Duration   // ring of tick durations
	slots  [][]time.Duration // ring of per-phase durations, one row per tick
	names  []string          // phase name per slot
	slotOf map[string]int

	current    []time.Duration // phase durations of the open tick
	tickStart  time.Time
	phaseStart time.Time
	openSlot   int // -1 when no phase is running

	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		now:      time.Now,
		window:   window,
		ticks:    make([]time.Duration, window),
		slots:    make([][]time.Duration, window),
		slotOf:   make(map[string]int),
		openSlot: -1,
	}
	for _, name := range phases {
		p.slot(name)
	}
	return p
}

// slot returns the index for phase, adding it when new.
func (p *PerfCollector) slot(phase string) int {
	if i, ok := p.slotOf[phase]; ok {
		return i
	}
	i := len(p.names)
	p.names = append(p.names, phase)
	p.slotOf[phase] = i
	p.current = append(p.current, 0)
	return i
}

// closePhase charges the running phase up to t.
func (p *PerfCollector) closePhase(t time.Time) {
	if p.openSlot >= 0 {
		p.current[p.openSlot] += t.Sub(p.phaseStart)
		p.openSlot = -1
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	clear(p.current)
	p.openSlot = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	t := p.now()
	p.closePhase(t)
	p.openSlot = p.slot(phase)
	p.phaseStart = t
}

// AddPhase credits d to phase in the current tick. Use it for work timed
// outside the tick, such as bursts emitted between frames.
func (p *PerfCollector) AddPhase(phase string, d time.Duration) {
	p.current[p.slot(phase)] += d
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)

	p.ticks[p.next] = t.Sub(p.tickStart)
	p.slots[p.next] = append(p.slots[p.next][:0], p.current...)
	p.next = (p.next + 1) % p.window
	if p.filled < p.window {
		p.filled++
	}
}

// RecordFrame marks the start of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = t.Sub(p.lastFrame)
	}
	p.lastFrame = t
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Samples int // ticks in the window

	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration
	StdTickDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average tick, in percent

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Samples:       p.filled,
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.filled == 0 {
		return s
	}

	ticks := make([]float64, p.filled)
	sums := make([]time.Duration, len(p.names))
	for i := 0; i < p.filled; i++ {
		ticks[i] = float64(p.ticks[i])
		for slot, d := range p.slots[i] {
			sums[slot] += d
		}
	}
	mean, std := stat.PopMeanStdDev(ticks, nil)
	slices.Sort(ticks)

	s.AvgTickDuration = time.Duration(mean)
	s.StdTickDuration = time.Duration(std)
	s.MinTickDuration = time.Duration(ticks[0])
	s.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	s.P95TickDuration = time.Duration(Percentile(ticks, 0.95))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}

	for slot, sum := range sums {
		if sum == 0 {
			continue
		}
		name := p.names[slot]
		avg := sum / time.Duration(p.filled)
		s.PhaseAvg[name] = avg
		if mean > 0 {
			s.PhasePct[name] = float64(avg) / mean * 100
		}
	}
	return s
}

// attrs returns the flat attributes shared by LogStats and LogValue.
func (s PerfStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("std_tick_us", s.StdTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return attrs
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.attrs()...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int     `csv:"window_end"`
	Samples      int     `csv:"samples"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	StdTickUS    int64   `csv:"std_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	AdvectPct    float64 `csv:"advect_pct"`
	DepositPct   float64 `csv:"deposit_pct"`
	EmitPct      float64 `csv:"emit_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the perf log.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Samples:      s.Samples,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		StdTickUS:    s.StdTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		AdvectPct:    s.PhasePct[PhaseAdvect],
		DepositPct:   s.PhasePct[PhaseDeposit],
		EmitPct:      s.PhasePct[PhaseEmit],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
