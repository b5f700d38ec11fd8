package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkAlgaeBloom      BookmarkType = "algae_bloom"
	BookmarkAlgaeCollapse   BookmarkType = "algae_collapse"
	BookmarkDieOff          BookmarkType = "die_off"
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
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

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentAlgaePeak    float64 // peak algae mean in recent history
	lastAlive          int
	stableWindowsCount int // consecutive windows with steady algae and population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable ecosystem detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		checks := []func(WindowStats) *Bookmark{
			bd.checkAlgaeBloom,
			bd.checkAlgaeCollapse,
			bd.checkDieOff,
			bd.checkExtinction,
			bd.checkStableEcosystem,
		}
		for _, check := range checks {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)

	if stats.AlgaeMean > bd.recentAlgaePeak {
		bd.recentAlgaePeak = stats.AlgaeMean
	}
	bd.lastAlive = stats.Alive

	return bookmarks
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

// recent returns the last n windows in chronological order.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	history := bd.getHistory()
	if len(history) < n {
		return nil
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkAlgaeBloom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.FloorCoverage
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.FloorCoverage > avg*2.0 && stats.FloorCoverage > 0.2 {
		return &Bookmark{
			Type:        BookmarkAlgaeBloom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Algae covers %.0f%% of floor, %.1fx average (%.0f%%)", stats.FloorCoverage*100, stats.FloorCoverage/avg, avg*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkAlgaeCollapse(stats WindowStats) *Bookmark {
	if bd.recentAlgaePeak < 0.05 {
		return nil
	}

	drop := 1.0 - stats.AlgaeMean/bd.recentAlgaePeak
	if drop > 0.5 {
		oldPeak := bd.recentAlgaePeak
		bd.recentAlgaePeak = stats.AlgaeMean
		return &Bookmark{
			Type:        BookmarkAlgaeCollapse,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Algae fell %.0f%% from peak %.3f to %.3f", drop*100, oldPeak, stats.AlgaeMean),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDieOff(stats WindowStats) *Bookmark {
	start := bd.lastAlive
	if start == 0 {
		return nil
	}
	if stats.Deaths >= 3 && float64(stats.Deaths) > 0.1*float64(start) {
		return &Bookmark{
			Type:        BookmarkDieOff,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d of %d entities died in one window", stats.Deaths, start),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if bd.lastAlive > 0 && stats.Alive == 0 {
		return &Bookmark{
			Type:        BookmarkExtinction,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Last %d entities died", bd.lastAlive),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Alive < 10 || stats.AlgaeMean <= 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if window == nil {
		return nil
	}

	var algaeSum, aliveSum float64
	for _, h := range window {
		algaeSum += h.AlgaeMean
		aliveSum += float64(h.Alive)
	}
	algaeMean := algaeSum / 4
	aliveMean := aliveSum / 4

	var algaeVar, aliveVar float64
	for _, h := range window {
		da := h.AlgaeMean - algaeMean
		dp := float64(h.Alive) - aliveMean
		algaeVar += da * da
		aliveVar += dp * dp
	}
	algaeVar /= 4
	aliveVar /= 4

	algaeCV, aliveCV := 1.0, 1.0
	if algaeMean > 0 {
		algaeCV = algaeVar / (algaeMean * algaeMean)
	}
	if aliveMean > 0 {
		aliveCV = aliveVar / (aliveMean * aliveMean)
	}

	if algaeCV < 0.04 && aliveCV < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d entities, algae mean %.3f over 5+ windows", stats.Alive, stats.AlgaeMean),
		}
	}
	return nil
}
