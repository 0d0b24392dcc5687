package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated plume statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	WindowSec       float64 `csv:"window_sec"`

	// Pool state at window end
	Particles int     `csv:"particles"`
	PoolFill  float64 `csv:"pool_fill"`

	// Events during window
	Explosions int `csv:"explosions"`
	Emitted    int `csv:"emitted"`
	Dropped    int `csv:"dropped"`
	Expired    int `csv:"expired"`
	Advected   int `csv:"advected"` // particle-steps that had wind around them

	// Remaining life distribution (sampled at window end)
	LifeMean float64 `csv:"life_mean"`
	LifeP10  float64 `csv:"life_p10"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`

	// Plume shape on the map plane
	CentroidX float64 `csv:"centroid_x"`
	CentroidZ float64 `csv:"centroid_z"`
	SpreadX   float64 `csv:"spread_x"`
	SpreadZ   float64 `csv:"spread_z"`

	// Ground contamination
	Coverage  float64 `csv:"coverage"`
	MeanAlpha float64 `csv:"mean_alpha"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, population std and percentiles.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("window_sec", s.WindowSec),
		slog.Int("particles", s.Particles),
		slog.Float64("pool_fill", s.PoolFill),
		slog.Int("explosions", s.Explosions),
		slog.Int("emitted", s.Emitted),
		slog.Int("dropped", s.Dropped),
		slog.Int("expired", s.Expired),
		slog.Int("advected", s.Advected),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_p10", s.LifeP10),
		slog.Float64("life_p50", s.LifeP50),
		slog.Float64("life_p90", s.LifeP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("centroid_x", s.CentroidX),
		slog.Float64("centroid_z", s.CentroidZ),
		slog.Float64("spread_x", s.SpreadX),
		slog.Float64("spread_z", s.SpreadZ),
		slog.Float64("coverage", s.Coverage),
		slog.Float64("mean_alpha", s.MeanAlpha),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"emitted", s.Emitted,
		"dropped", s.Dropped,
		"expired", s.Expired,
		"life_p50", s.LifeP50,
		"coverage", s.Coverage,
	)
}
