package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkParticleSpike   BookmarkType = "particle_spike"
	BookmarkCoverage        BookmarkType = "coverage_threshold"
	BookmarkPlumeDissipated BookmarkType = "plume_dissipated"
	BookmarkPoolSaturated   BookmarkType = "pool_saturated"
)

// coverageThresholds are the ground coverage fractions announced once each.
var coverageThresholds = []float64{0.01, 0.05, 0.10, 0.25}

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in a plume's life.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	nextCoverage int  // index of the next coverage threshold to announce
	plumeSeen    bool // particles were alive since the last dissipation
	saturated    bool // the last window dropped particles
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// HistorySize returns how many windows the rolling averages cover.
func (bd *BookmarkDetector) HistorySize() int { return bd.historySize }

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Particle spike: live particles > 2x rolling average
	if b := bd.checkParticleSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Coverage thresholds: each crossed once until the mask is reset
	bookmarks = append(bookmarks, bd.checkCoverage(stats)...)

	// Dissipation: every particle of a plume has expired
	if b := bd.checkDissipated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Saturation: a burst was truncated by the pool
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

// ResetCoverage re-arms the coverage thresholds after the mask is cleared.
func (bd *BookmarkDetector) ResetCoverage() {
	bd.nextCoverage = 0
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkParticleSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Particles
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Particles) > avg*2.0 && stats.Particles >= 100 {
		return &Bookmark{
			Type:        BookmarkParticleSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d particles is %.1fx average (%.0f)", stats.Particles, float64(stats.Particles)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCoverage(stats WindowStats) []Bookmark {
	var out []Bookmark
	for bd.nextCoverage < len(coverageThresholds) && stats.Coverage >= coverageThresholds[bd.nextCoverage] {
		th := coverageThresholds[bd.nextCoverage]
		out = append(out, Bookmark{
			Type:        BookmarkCoverage,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Ground coverage passed %.0f%% (now %.1f%%)", th*100, stats.Coverage*100),
		})
		bd.nextCoverage++
	}
	return out
}

func (bd *BookmarkDetector) checkDissipated(stats WindowStats) *Bookmark {
	if stats.Particles > 0 {
		bd.plumeSeen = true
		return nil
	}
	if !bd.plumeSeen {
		return nil
	}
	bd.plumeSeen = false
	return &Bookmark{
		Type:        BookmarkPlumeDissipated,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Plume dissipated at %.1fs, coverage %.1f%%", stats.SimTimeSec, stats.Coverage*100),
	}
}

func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	wasSaturated := bd.saturated
	bd.saturated = stats.Dropped > 0
	if !bd.saturated || wasSaturated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkPoolSaturated,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Particle pool full, %d particles dropped", stats.Dropped),
	}
}
