package sim

import (
	"log/slog"

	"github.com/pthm-cable/fallout/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (w *World) flushTelemetry() {
	if !w.collector.ShouldFlush() {
		return
	}

	stats := w.collector.Flush(w.tick, w.simTime, w.samplePlume())
	perfStats := w.perf.Stats()

	if w.statsCallback != nil {
		w.statsCallback(stats)
	}

	if w.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := w.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := w.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range w.bookmarks.Check(stats) {
		if w.logStats {
			bm.LogBookmark()
		}
		if err := w.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePlume collects the per-particle distributions for a window flush.
func (w *World) samplePlume() telemetry.PlumeSample {
	s := &w.sample
	s.Capacity = w.pool.Cap()
	s.Lives = s.Lives[:0]
	s.Speeds = s.Speeds[:0]
	s.Xs = s.Xs[:0]
	s.Zs = s.Zs[:0]
	for i := range w.pool.Particles {
		p := &w.pool.Particles[i]
		s.Lives = append(s.Lives, p.Life)
		s.Speeds = append(s.Speeds, p.Speed)
		s.Xs = append(s.Xs, p.Position.X)
		s.Zs = append(s.Zs, p.Position.Z)
	}
	s.Coverage = w.mask.Coverage()
	s.MeanAlpha = w.mask.MeanAlpha()
	return *s
}
